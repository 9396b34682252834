package errors

import (
	"strings"
	"unicode"
)

// ValidateID validates an entity or node identifier.
//
// Identifiers travel into URLs and cache keys, so the rules are conservative:
//   - not empty, at most 256 bytes
//   - no control characters or null bytes
//   - no path separators or traversal sequences
func ValidateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidID, "identifier cannot be empty")
	}

	if len(id) > 256 {
		return New(ErrCodeInvalidID, "identifier too long (max 256 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "identifier contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidID, "identifier contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateDepth checks that an exploration depth is 1 or 2.
func ValidateDepth(depth int) error {
	if depth < 1 || depth > 2 {
		return New(ErrCodeInvalidDepth, "depth must be 1 or 2, got %d", depth)
	}
	return nil
}

// ValidateDirection checks a flow direction string.
// Accepted values are TB, LR and auto (case insensitive); empty means auto.
func ValidateDirection(dir string) error {
	switch strings.ToUpper(dir) {
	case "", "TB", "LR", "AUTO":
		return nil
	}
	return New(ErrCodeInvalidDirection, "invalid direction: %s (must be 'TB', 'LR' or 'auto')", dir)
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
