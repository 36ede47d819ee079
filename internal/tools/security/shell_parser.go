// Package security provides security utilities for analyzing and validating tool inputs.
package security

import (
	"strings"
	"unicode"
)

// ContainsShellMetacharacters checks if a string contains any shell metacharacters
// that could be interpreted by the shell (without quote awareness).
func ContainsShellMetacharacters(s string) bool {
	metacharacters := []rune{';', '&', '|', '>', '<', '`', '$', '(', ')', '{', '}', '[', ']', '*', '?', '!', '#', '~', '=', '%', '^'}

	for _, c := range s {
		for _, meta := range metacharacters {
			if c == meta {
				return true
			}
		}
	}
	return false
}

// IsValidFilename checks if a string is a valid, safe filename.
// It rejects names with path traversal attempts or shell metacharacters.
func IsValidFilename(name string) bool {
	if name == "" {
		return false
	}

	// Reject path separators
	if strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return false
	}

	// Reject path traversal
	if name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}

	// Reject shell metacharacters
	if ContainsShellMetacharacters(name) {
		return false
	}

	// Reject control characters
	for _, c := range name {
		if unicode.IsControl(c) {
			return false
		}
	}

	return true
}
