package errors

import (
	"errors"
	"regexp"
	"strings"
)

// Enricher enriches standard errors with actionable suggestions.
type Enricher interface {
	Enrich(err error, affectedPath string) error
}

// NewEnricher creates a new Enricher with the default suggestion generator.
func NewEnricher() Enricher {
	return &enricher{
		generator: NewSuggestionGenerator(),
	}
}

//nolint:gochecknoglobals // Compiled regexes shared across all enricher instances
var pathExtractionPatterns = []*regexp.Regexp{
	// Unix/Linux paths (absolute and relative)
	regexp.MustCompile(`\b\w+\s+([./][^\s:]+):`),
	// Windows paths with backslashes
	regexp.MustCompile(`\b\w+\s+([A-Za-z]:\\[^\s:]+):`),
	// Windows paths with forward slashes
	regexp.MustCompile(`\b\w+\s+([A-Za-z]:/[^\s:]+):`),
}

type enricher struct {
	generator SuggestionGenerator
}

// Enrich classifies err and attaches suggestions. An error that is already
// actionable is returned unchanged. When affectedPath is empty the path is
// pulled from the message if it has the usual "op /path: reason" shape.
func (e *enricher) Enrich(err error, affectedPath string) error {
	if err == nil {
		return nil
	}

	var actionableErr ActionableError
	if errors.As(err, &actionableErr) {
		return actionableErr
	}

	if affectedPath == "" {
		affectedPath = extractPath(err.Error())
	}

	kind := Classify(err)

	return NewActionableError(err, kind, e.generator.Generate(kind, affectedPath), affectedPath)
}

// extractPath pulls a path out of messages such as
// "open /home/user/file.txt: permission denied". Returns "" when none is found.
func extractPath(errorMsg string) string {
	for _, pattern := range pathExtractionPatterns {
		if matches := pattern.FindStringSubmatch(errorMsg); len(matches) > 1 {
			path := strings.TrimSpace(matches[1])
			if path != "" {
				return path
			}
		}
	}

	return ""
}
