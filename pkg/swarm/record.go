package swarm

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrShape is returned when a record cannot be assigned to a target type.
var ErrShape = errors.New("record does not fit target shape")

// Container builds a value of type T from one Record.
type Container[T any] func(Record) (T, error)

// Typed reads a Reader's records through a Container.
type Typed[T any] struct {
	reader *Reader
	build  Container[T]
	err    error
}

// NewTyped wraps reader so each ReadLine returns a T built by build.
func NewTyped[T any](reader *Reader, build Container[T]) *Typed[T] {
	return &Typed[T]{reader: reader, build: build}
}

// ReadLine returns the next record as a T. It returns false at the end of
// the stream or when the container rejects a record; Err tells them apart.
func (t *Typed[T]) ReadLine() (T, bool) {
	var zero T

	if t.err != nil {
		return zero, false
	}

	record, ok := t.reader.ReadLine()
	if !ok {
		return zero, false
	}

	value, err := t.build(record)
	if err != nil {
		t.err = err

		return zero, false
	}

	return value, true
}

// Err returns the container failure, if any, or else the reader's error.
func (t *Typed[T]) Err() error {
	if t.err != nil {
		return t.err
	}

	return t.reader.Err()
}

//nolint:gochecknoglobals // Reflected field types accepted by Struct
var (
	stringType    = reflect.TypeFor[string]()
	stringPtrType = reflect.TypeFor[*string]()
	lineType      = reflect.TypeFor[Line]()
)

// Struct returns a Container that assigns line i to the i-th exported field
// of T. Fields may be string (exhausted files give ""), *string (nil when
// exhausted) or Line. T must have at least as many exported fields as the
// reader has files; extra fields keep their zero value.
func Struct[T any]() (Container[T], error) {
	target := reflect.TypeFor[T]()
	if target.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrShape, target)
	}

	fields := make([]int, 0, target.NumField())

	for i := range target.NumField() {
		field := target.Field(i)
		if !field.IsExported() {
			continue
		}

		switch field.Type {
		case stringType, stringPtrType, lineType:
		default:
			return nil, fmt.Errorf("%w: field %s has unsupported type %s", ErrShape, field.Name, field.Type)
		}

		fields = append(fields, i)
	}

	return func(record Record) (T, error) {
		var value T

		if len(record) > len(fields) {
			return value, fmt.Errorf("%w: %d lines for %d fields of %s", ErrShape, len(record), len(fields), target)
		}

		out := reflect.ValueOf(&value).Elem()

		for i, line := range record {
			field := out.Field(fields[i])

			switch field.Type() {
			case stringType:
				field.SetString(line.Text)
			case stringPtrType:
				if line.Valid {
					text := line.Text
					field.Set(reflect.ValueOf(&text))
				}
			case lineType:
				field.Set(reflect.ValueOf(line))
			}
		}

		return value, nil
	}, nil
}
