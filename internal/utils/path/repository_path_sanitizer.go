package pathutils

import (
	"strings"
)

// RepositoryPathSanitizer normalizes repository path inputs consistently across commands.
//
// Sanitization preserves the input order: the dispatcher processes repositories
// exactly in the sequence they were configured.
type RepositoryPathSanitizer struct {
	homeExpander *HomeExpander
}

// NewRepositoryPathSanitizer constructs a RepositoryPathSanitizer with the operating system home lookup.
func NewRepositoryPathSanitizer() *RepositoryPathSanitizer {
	return NewRepositoryPathSanitizerWithExpander(nil)
}

// NewRepositoryPathSanitizerWithExpander constructs a RepositoryPathSanitizer using the provided expander.
func NewRepositoryPathSanitizerWithExpander(homeExpander *HomeExpander) *RepositoryPathSanitizer {
	resolvedExpander := homeExpander
	if resolvedExpander == nil {
		resolvedExpander = NewHomeExpander()
	}
	return &RepositoryPathSanitizer{homeExpander: resolvedExpander}
}

// Sanitize trims whitespace, expands the user's home directory, and removes empty entries.
func (sanitizer *RepositoryPathSanitizer) Sanitize(candidatePaths []string) []string {
	expander := NewHomeExpander()
	if sanitizer != nil && sanitizer.homeExpander != nil {
		expander = sanitizer.homeExpander
	}

	sanitizedPaths := make([]string, 0, len(candidatePaths))
	for candidateIndex := range candidatePaths {
		trimmedCandidate := strings.TrimSpace(candidatePaths[candidateIndex])
		if len(trimmedCandidate) == 0 {
			continue
		}

		expandedPath := expander.Expand(trimmedCandidate)
		if len(expandedPath) == 0 {
			continue
		}

		sanitizedPaths = append(sanitizedPaths, expandedPath)
	}

	if len(sanitizedPaths) == 0 {
		return nil
	}

	return sanitizedPaths
}
