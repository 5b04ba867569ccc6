package config

import (
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigParse    = "CONFIG_PARSE"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
)

// UserError is a configuration error with enough context to act on.
type UserError struct {
	Code       string // Error code for categorization (e.g., "CONFIG_PARSE")
	Message    string // User-friendly error message
	Context    string // File path or setting the error refers to
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, " (at %s)", e.Context)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *UserError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	return b.String()
}

// NewNotFoundError creates an error for a missing config file.
func NewNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    "configuration file not found",
		Context:    path,
		Suggestion: "create it or omit --config to run with defaults",
	}
}

// NewParseError creates an error for unreadable TOML.
func NewParseError(path string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    "configuration is not valid TOML",
		Context:    path,
		Suggestion: "check the syntax near the location the parser reports",
		Underlying: err,
	}
}

// NewInvalidError creates an error for a setting that parsed but cannot
// be used.
func NewInvalidError(setting, message, suggestion string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigInvalid,
		Message:    message,
		Context:    setting,
		Suggestion: suggestion,
	}
}
