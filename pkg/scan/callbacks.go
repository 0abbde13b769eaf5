package scan

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Predefined callbacks. Each emits the entry path.
//
//nolint:gochecknoglobals // Stateless callbacks shared by every scan
var (
	// Identity emits every entry.
	Identity = CallbackFunc[string](func(entry Entry, _ Args) (string, bool) {
		return entry.Path, true
	})

	// DirectoriesOnly emits directories.
	DirectoriesOnly = CallbackFunc[string](func(entry Entry, _ Args) (string, bool) {
		return entry.Path, entry.IsDir
	})

	// FilesOnly emits everything that is not a directory.
	FilesOnly = CallbackFunc[string](func(entry Entry, _ Args) (string, bool) {
		return entry.Path, !entry.IsDir
	})

	// FileNamesOnly emits the bare name of every non-directory.
	FileNamesOnly = CallbackFunc[string](func(entry Entry, _ Args) (string, bool) {
		return entry.Name, !entry.IsDir
	})
)

// MatchPattern compiles pattern once and returns a callback emitting the
// entries whose name matches it at its start.
func MatchPattern(pattern string) (Callback[string], error) {
	compiled, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	return CallbackFunc[string](func(entry Entry, _ Args) (string, bool) {
		return entry.Path, compiled.MatchString(entry.Name)
	}), nil
}

// FileExtensions emits entries whose name ends with any of the given
// suffixes. Comparison is literal, so include the dot: ".txt".
func FileExtensions(extensions ...string) Callback[string] {
	suffixes := append([]string(nil), extensions...)

	return CallbackFunc[string](func(entry Entry, _ Args) (string, bool) {
		for _, suffix := range suffixes {
			if strings.HasSuffix(entry.Name, suffix) {
				return entry.Path, true
			}
		}

		return entry.Path, false
	})
}

// Glob emits entries whose path relative to the scan root matches a
// doublestar pattern, case-insensitively. An empty pattern matches
// everything.
func Glob(pattern string) (Callback[string], error) {
	normalized := strings.ToLower(pattern)

	if !doublestar.ValidatePattern(normalized) {
		return nil, fmt.Errorf("invalid glob %q: %w", pattern, doublestar.ErrBadPattern)
	}

	return CallbackFunc[string](func(entry Entry, _ Args) (string, bool) {
		if normalized == "" {
			return entry.Path, true
		}

		matched, err := doublestar.Match(normalized, strings.ToLower(entry.RelativePath))

		return entry.Path, err == nil && matched
	}), nil
}

// All emits the entry path only when every callback emits.
func All(callbacks ...Callback[string]) Callback[string] {
	return CallbackFunc[string](func(entry Entry, args Args) (string, bool) {
		for _, callback := range callbacks {
			if _, ok := callback.Visit(entry, args); !ok {
				return entry.Path, false
			}
		}

		return entry.Path, true
	})
}

// Any emits the entry path when at least one callback emits.
func Any(callbacks ...Callback[string]) Callback[string] {
	return CallbackFunc[string](func(entry Entry, args Args) (string, bool) {
		for _, callback := range callbacks {
			if _, ok := callback.Visit(entry, args); ok {
				return entry.Path, true
			}
		}

		return entry.Path, false
	})
}

// Not inverts a callback.
func Not(callback Callback[string]) Callback[string] {
	return CallbackFunc[string](func(entry Entry, args Args) (string, bool) {
		_, ok := callback.Visit(entry, args)

		return entry.Path, !ok
	})
}
