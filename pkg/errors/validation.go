package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePath validates a user-supplied file path for safety.
// It prevents path traversal attacks and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// namespaceRegex matches valid marker namespaces: lowercase identifiers with
// underscores and digits, as emitted by the marker builders.
var namespaceRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateNamespace validates a marker namespace, e.g. for API queries that
// filter a marker array by namespace.
func ValidateNamespace(ns string) error {
	if ns == "" {
		return New(ErrCodeInvalidInput, "namespace cannot be empty")
	}
	if len(ns) > 128 {
		return New(ErrCodeInvalidInput, "namespace too long (max 128 characters)")
	}
	if !namespaceRegex.MatchString(ns) {
		return New(ErrCodeInvalidInput, "invalid namespace: %q", ns)
	}
	return nil
}

// symbolRegex matches node symbols of the form "p(42)" or a bare decimal id.
var symbolRegex = regexp.MustCompile(`^([A-Za-z]\()?[0-9]+\)?$`)

// ValidateSymbol validates a node symbol as produced by NodeID.Symbol.
func ValidateSymbol(sym string) error {
	if sym == "" {
		return New(ErrCodeInvalidInput, "node symbol cannot be empty")
	}
	if !symbolRegex.MatchString(sym) || strings.Contains(sym, "(") != strings.Contains(sym, ")") {
		return New(ErrCodeInvalidInput, "invalid node symbol: %q", sym)
	}
	return nil
}

// Output formats accepted by the render commands and API.
var validFormats = map[string]bool{
	"json": true,
	"svg":  true,
	"png":  true,
	"pdf":  true,
	"dot":  true,
}

// ValidateOutputFormat validates a requested output format.
func ValidateOutputFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "output format cannot be empty")
	}
	if !validFormats[strings.ToLower(format)] {
		return New(ErrCodeInvalidFormat, "unsupported output format: %q (expected json, svg, png, pdf, or dot)", format)
	}
	return nil
}
