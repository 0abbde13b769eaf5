// Package swarm reads several text files in lock-step, one line from each
// file per call.
//
// It joins parallel data files (columnar exports, aligned logs) without
// loading any of them fully. The files are assumed to be aligned; the only
// check made is that the combined stream ends once every file is exhausted.
package swarm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"runtime"
	"strings"

	"github.com/joe/efs/pkg/filesystem"
	"github.com/joe/efs/pkg/logger"
)

// Reader state errors.
var (
	ErrAlreadyOpen = errors.New("reader is already open")
	ErrNotOpen     = errors.New("reader is not open")
)

// Line is one file's contribution to a Record. Valid is false once the file
// is exhausted.
type Line struct {
	Text  string
	Valid bool
}

// Record holds one Line per file, in the order the paths were given.
type Record []Line

// Texts returns the line texts, with "" for exhausted files.
func (r Record) Texts() []string {
	texts := make([]string, len(r))
	for i, line := range r {
		texts[i] = line.Text
	}

	return texts
}

// Option configures a Reader.
type Option func(*Reader)

// WithFileSystem reads from fsys instead of the local disk.
func WithFileSystem(fsys filesystem.FileSystem) Option {
	return func(r *Reader) {
		r.fsys = fsys
	}
}

// WithLogger reports swallowed close failures at debug level.
func WithLogger(log logger.Logger) Option {
	return func(r *Reader) {
		r.log = log
	}
}

// Reader reads one line from each of its files per ReadLine call.
// A Reader is not safe for concurrent use.
type Reader struct {
	paths   []string
	fsys    filesystem.FileSystem
	log     logger.Logger
	handles *handles
	cleanup runtime.Cleanup
	open    bool
	err     error
}

// handles is kept apart from Reader so the collection safety net can close
// the files without keeping the Reader reachable.
type handles struct {
	files   []filesystem.File
	readers []*bufio.Reader
	done    []bool
}

func (h *handles) closeAll() []error {
	var errs []error

	for _, file := range h.files {
		if err := file.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	h.files = nil
	h.readers = nil
	h.done = nil

	return errs
}

// New creates a Reader over paths. Nothing is opened until Open.
func New(paths []string, opts ...Option) *Reader {
	reader := &Reader{
		paths: append([]string(nil), paths...),
		log:   logger.Discard(),
	}

	for _, opt := range opts {
		opt(reader)
	}

	if reader.fsys == nil {
		reader.fsys = filesystem.NewRealFileSystem()
	}

	return reader
}

// Paths returns the files the reader was built over.
func (r *Reader) Paths() []string {
	return append([]string(nil), r.paths...)
}

// Open opens every file in order. If any file fails to open, the ones
// already opened are closed and the error is returned.
//
// Files still open when an unclosed Reader is garbage collected are closed
// then, at some unspecified time. Call Close.
func (r *Reader) Open() error {
	if r.open {
		return ErrAlreadyOpen
	}

	opened := &handles{
		files:   make([]filesystem.File, 0, len(r.paths)),
		readers: make([]*bufio.Reader, 0, len(r.paths)),
		done:    make([]bool, len(r.paths)),
	}

	for _, path := range r.paths {
		file, err := r.fsys.Open(path)
		if err != nil {
			opened.closeAll()

			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		opened.files = append(opened.files, file)
		opened.readers = append(opened.readers, bufio.NewReader(file))
	}

	r.handles = opened
	r.open = true
	r.err = nil
	r.cleanup = runtime.AddCleanup(r, func(h *handles) { h.closeAll() }, opened)

	return nil
}

// ReadLine returns the next line of every file. An exhausted file yields an
// invalid Line. When every file is exhausted ReadLine returns false; check
// Err to tell the end of the stream from a read failure.
func (r *Reader) ReadLine() (Record, bool) {
	if !r.open {
		if r.err == nil {
			r.err = ErrNotOpen
		}

		return nil, false
	}

	record := make(Record, len(r.handles.readers))
	anyValid := false

	for i, reader := range r.handles.readers {
		if r.handles.done[i] {
			continue
		}

		text, err := readLine(reader)
		if err != nil {
			r.handles.done[i] = true

			if !errors.Is(err, io.EOF) && r.err == nil {
				r.err = fmt.Errorf("failed to read %s: %w", r.paths[i], err)
			}

			continue
		}

		record[i] = Line{Text: text, Valid: true}
		anyValid = true
	}

	if !anyValid {
		return nil, false
	}

	return record, true
}

// Records iterates ReadLine until the stream ends.
func (r *Reader) Records() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for {
			record, ok := r.ReadLine()
			if !ok || !yield(record) {
				return
			}
		}
	}
}

// Err returns the first read failure, or ErrNotOpen when ReadLine was called
// on a closed reader.
func (r *Reader) Err() error {
	return r.err
}

// Close closes every file. It may be called any number of times and always
// returns nil; close failures are only logged.
func (r *Reader) Close() error {
	if !r.open {
		return nil
	}

	r.cleanup.Stop()

	for _, err := range r.handles.closeAll() {
		r.log.LogDebug(fmt.Sprintf("ignoring close failure: %v", err))
	}

	r.handles = nil
	r.open = false

	return nil
}

// Use opens a Reader over paths, runs fn and closes the reader, also when fn
// panics.
func Use(paths []string, fn func(*Reader) error, opts ...Option) error {
	reader := New(paths, opts...)

	if err := reader.Open(); err != nil {
		return err
	}

	defer func() { _ = reader.Close() }()

	return fn(reader)
}

// readLine reads up to and excluding the next "\n" or "\r\n". A final line
// without a terminator is returned; io.EOF means nothing was left.
func readLine(reader *bufio.Reader) (string, error) {
	text, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || text == "") {
		return "", err //nolint:wrapcheck // Wrapped by ReadLine with the file path
	}

	text = strings.TrimSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\r")

	return text, nil
}
