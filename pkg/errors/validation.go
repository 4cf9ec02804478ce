package errors

import (
	"strings"
	"unicode"
)

// MaxWalkDepth is the deepest tree a caller may request.
// Trees are drawn one band per level, so anything deeper is unreadable anyway.
const MaxWalkDepth = 64

// ValidateRootPath validates a directory path supplied by a user or API client.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//
// Unlike repository paths, roots may be absolute and may contain "..": the
// caller is browsing its own filesystem, and the walker resolves the path
// with filepath.Abs before reading.
func ValidateRootPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateMaxDepth checks that a requested walk depth is within [0, MaxWalkDepth].
func ValidateMaxDepth(depth int) error {
	if depth < 0 {
		return New(ErrCodeInvalidDepth, "depth cannot be negative: %d", depth)
	}
	if depth > MaxWalkDepth {
		return New(ErrCodeInvalidDepth, "depth too large: %d (max %d)", depth, MaxWalkDepth)
	}
	return nil
}

// ValidateFormat checks that format is one of the allowed output formats.
func ValidateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(allowed, ", "))
}
