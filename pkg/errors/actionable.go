// Package errors defines the toolkit's error vocabulary and the policy used to
// report failures.
//
// Path algebra is strict and returns typed errors (ErrIndexOutOfRange,
// ErrMalformed, ...). Filesystem convenience operations run under a Policy:
// Ignore and Log turn a failure into a safe default, Raise hands the error to
// the caller.
//
// Basic Usage:
//
//	handler := errors.NewHandler(logger.NewStderrLogger())
//	ok, err := fileops.New(fsys).WithHandler(handler).CopyFile(src, dst)
//	// Under errors.Log: ok == false, err == nil, and the failure was logged
//	// together with its suggestions.
//
// Failures are enriched into ActionableError values carrying a Kind, the
// affected path, and suggestions:
//
//	enriched := errors.NewEnricher().Enrich(err, "/restricted/file.txt")
//	fmt.Println(errors.FormatSuggestions(enriched))
package errors

import "strings"

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	Unwrap() error
	OriginalError() string
	Kind() Kind
	Suggestions() []string
	AffectedPath() string
}

// NewActionableError creates a new ActionableError wrapping cause.
func NewActionableError(
	cause error,
	kind Kind,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		cause:        cause,
		kind:         kind,
		suggestions:  suggestions,
		affectedPath: affectedPath,
	}
}

// FormatSuggestions formats the suggestions from an ActionableError as a bulleted list.
// Returns empty string if the error is nil or has no suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	actionable, ok := err.(ActionableError)
	if !ok {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

type actionableError struct {
	cause        error
	kind         Kind
	suggestions  []string
	affectedPath string
}

// AffectedPath returns the file path affected by this error.
func (e *actionableError) AffectedPath() string {
	return e.affectedPath
}

// Error implements the error interface.
func (e *actionableError) Error() string {
	return e.OriginalError()
}

// Kind returns the error kind.
func (e *actionableError) Kind() Kind {
	return e.kind
}

// OriginalError returns the original error message.
func (e *actionableError) OriginalError() string {
	if e.cause == nil {
		return string(e.kind)
	}

	return e.cause.Error()
}

// Suggestions returns the list of actionable suggestions.
func (e *actionableError) Suggestions() []string {
	return e.suggestions
}

// Unwrap exposes the original error to errors.Is and errors.As.
func (e *actionableError) Unwrap() error {
	return e.cause
}
