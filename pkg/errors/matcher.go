package errors

import "strings"

// PatternMatcher matches error messages to kinds using string patterns.
type PatternMatcher interface {
	Match(errorMsg string) Kind
}

// NewPatternMatcher creates a new PatternMatcher with predefined patterns.
// Used for errors that lost their identity on the way up, such as remote
// SFTP status messages.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		patterns: []kindPatterns{
			{KindPermission, []string{"permission denied", "access denied", "operation not permitted"}},
			{KindDiskSpace, []string{"no space left on device", "disk full", "quota exceeded"}},
			{KindNotEmpty, []string{"directory not empty", "cannot remove"}},
			{KindIsDirectory, []string{"is a directory"}},
			{KindNotDirectory, []string{"not a directory"}},
			{KindAlreadyExists, []string{"file exists", "already exists"}},
			{KindNotFound, []string{"no such file or directory", "file not found", "does not exist"}},
			{KindIO, []string{"short write", "input/output error", "i/o error"}},
		},
	}
}

type kindPatterns struct {
	kind     Kind
	patterns []string
}

type patternMatcher struct {
	patterns []kindPatterns
}

// Match returns the first kind whose patterns occur in the message.
func (m *patternMatcher) Match(errorMsg string) Kind {
	lowerMsg := strings.ToLower(errorMsg)

	for _, entry := range m.patterns {
		for _, pattern := range entry.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return entry.kind
			}
		}
	}

	return KindUnknown
}
