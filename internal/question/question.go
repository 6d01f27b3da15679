// Package question validates and sanitizes caller-supplied question strings
// before they reach any remote call.
package question

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Length bounds for a trimmed question, in characters.
const (
	MinLength = 3
	MaxLength = 500
)

// ValidationError is a caller-fault rejection with a user-facing message.
// The HTTP layer maps it to 400.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationError(msg string) error { return &ValidationError{msg: msg} }

// IsValidation reports whether err is a question validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// denyList holds case-insensitive substrings associated with script injection
// or code execution. The question never reaches an execution context in this
// pipeline, so the check is second-line hardening kept for parity with the
// platform gateway in front of it.
var denyList = []string{
	"<script",
	"javascript:",
	"eval(",
	"exec(",
	"import os",
	"__import__",
}

// Validate applies the ordered validation rules and returns the trimmed
// question. Rules short-circuit on the first failure. Pure and deterministic.
func Validate(q string) (string, error) {
	if q == "" {
		return "", validationError("Question parameter is required")
	}

	trimmed := strings.TrimSpace(q)
	// Bounds count characters, not bytes.
	length := utf8.RuneCountInString(trimmed)
	if length < MinLength {
		return "", validationError("Question must be at least 3 characters long")
	}
	if length > MaxLength {
		return "", validationError("Question must be less than 500 characters")
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range denyList {
		if strings.Contains(lower, pattern) {
			return "", validationError("Question contains prohibited content")
		}
	}

	return trimmed, nil
}

var (
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
	disallowedPattern = regexp.MustCompile(`[^a-zA-Z0-9\s.?!,\-'"]`)
)

// Sanitize strips angle-bracket tags, drops every character outside the
// allowed set (alphanumerics, whitespace, . ? ! , - ' "), and trims.
// Idempotent; call only after Validate.
func Sanitize(q string) string {
	s := tagPattern.ReplaceAllString(q, "")
	s = disallowedPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
