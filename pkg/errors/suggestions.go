package errors

import "fmt"

// SuggestionGenerator generates actionable suggestions based on error kind.
type SuggestionGenerator interface {
	Generate(kind Kind, affectedPath string) []string
}

// NewSuggestionGenerator creates a new SuggestionGenerator.
func NewSuggestionGenerator() SuggestionGenerator {
	return &suggestionGenerator{}
}

type suggestionGenerator struct{}

// Generate returns actionable suggestions based on the error kind and affected path.
//
//nolint:cyclop // One branch per kind
func (g *suggestionGenerator) Generate(kind Kind, affectedPath string) []string {
	switch kind {
	case KindPermission:
		return g.generatePermissionSuggestions(affectedPath)
	case KindDiskSpace:
		return g.generateDiskSpaceSuggestions(affectedPath)
	case KindNotFound:
		return g.generateNotFoundSuggestions(affectedPath)
	case KindAlreadyExists:
		return g.generateAlreadyExistsSuggestions(affectedPath)
	case KindNotEmpty:
		return g.generateNotEmptySuggestions(affectedPath)
	case KindIsDirectory, KindNotDirectory:
		return g.generateTypeMismatchSuggestions(kind, affectedPath)
	case KindIO:
		return []string{
			"Verify the source and destination media are functioning correctly",
			"Try the operation again - this may be a transient I/O error",
		}
	case KindIndexOutOfRange:
		return []string{"Use a segment index between 0 and the number of path segments minus one"}
	case KindOverflow:
		return []string{"Raise the maximum limit or clean up previously generated files"}
	case KindMalformed:
		return []string{"Pass a non-empty path without NUL bytes or embedded separators"}
	default:
		return g.generateUnknownSuggestions(affectedPath)
	}
}

func (g *suggestionGenerator) generateAlreadyExistsSuggestions(path string) []string {
	suggestions := []string{"Choose a different name or remove the existing entry first"}

	if path != "" {
		suggestions = append(suggestions, "Check what is currently at "+path)
	}

	return suggestions
}

func (g *suggestionGenerator) generateDiskSpaceSuggestions(path string) []string {
	suggestions := []string{
		"Free up space on the destination device",
		"Check available space with 'df -h'",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify disk usage for the filesystem containing "+path)
	}

	return suggestions
}

func (g *suggestionGenerator) generateNotEmptySuggestions(path string) []string {
	suggestions := []string{
		"Ensure the directory is empty before attempting to remove it",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("List contents with 'ls -la %s'", path))
	}

	suggestions = append(suggestions, "Remove contents first or use a recursive delete if appropriate")

	return suggestions
}

func (g *suggestionGenerator) generateNotFoundSuggestions(path string) []string {
	suggestions := []string{
		"Verify the path exists and is spelled correctly",
	}

	if path != "" {
		suggestions = append(suggestions, "Check if the path exists: "+path)
		suggestions = append(suggestions, "Ensure all parent directories exist for "+path)
	} else {
		suggestions = append(suggestions, "Ensure all parent directories exist")
	}

	return suggestions
}

func (g *suggestionGenerator) generatePermissionSuggestions(path string) []string {
	suggestions := []string{
		"Ensure you have read/write permissions for the files and directories",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Check permissions with 'ls -la %s'", path))
	} else {
		suggestions = append(suggestions, "Check permissions with 'ls -la' on the affected path")
	}

	return suggestions
}

func (g *suggestionGenerator) generateTypeMismatchSuggestions(kind Kind, path string) []string {
	expected := "a file"
	if kind == KindNotDirectory {
		expected = "a directory"
	}

	if path == "" {
		return []string{"The operation expected " + expected}
	}

	return []string{fmt.Sprintf("The operation expected %s at %s", expected, path)}
}

func (g *suggestionGenerator) generateUnknownSuggestions(path string) []string {
	suggestions := []string{
		"Check the error message for more details",
		"Verify file and directory permissions",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify the path is accessible: "+path)
	}

	return suggestions
}
