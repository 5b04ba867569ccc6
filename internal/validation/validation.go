// Package validation checks externally supplied input (MCP tool calls,
// CLI arguments) before it reaches the loader or the engine, preventing
// path traversal and non-finite numbers from slipping through.
package validation

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strings"
)

// Common validation errors.
var (
	ErrEmptyInput        = errors.New("input cannot be empty")
	ErrInvalidScriptName = errors.New("invalid script name")
	ErrPathTraversal     = errors.New("path traversal detected")
	ErrInvalidNumber     = errors.New("invalid number")
	ErrInvalidPosition   = errors.New("invalid position")
)

// scriptNameRegex matches plain script file names: a name plus extension,
// no directories. Examples: "rows.yaml", "right-triangle.yml", "grid_4.yaml"
var scriptNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._ -]*$`)

// ValidateScriptName validates a script file name for the loader. The
// name must stay inside the scripts directory, so separators and
// traversal sequences are rejected.
func ValidateScriptName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("%w: name contains null byte", ErrInvalidScriptName)
	}
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidScriptName, name)
	}
	if containsPathTraversal(name) {
		return fmt.Errorf("%w: %q contains traversal sequence", ErrPathTraversal, name)
	}
	if !scriptNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidScriptName, name)
	}
	return nil
}

// ValidateCoordinate validates a world coordinate. NaN and infinities
// never come from a real pointer position and would poison distance
// comparisons and JSON encoding downstream.
func ValidateCoordinate(v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("%w: NaN coordinate", ErrInvalidNumber)
	}
	if math.IsInf(v, 0) {
		return fmt.Errorf("%w: infinite coordinate", ErrInvalidNumber)
	}
	return nil
}

// ValidateTolerance validates a snap tolerance. Zero means "use the
// configured default"; negative and non-finite values are rejected.
func ValidateTolerance(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: tolerance must be finite", ErrInvalidNumber)
	}
	if v < 0 {
		return fmt.Errorf("%w: tolerance must not be negative, got %v", ErrInvalidNumber, v)
	}
	return nil
}

// ValidatePosition validates a cursor position from external input.
// Clamping is the engine's job; this only rejects values that cannot be
// meant seriously.
func ValidatePosition(position int) error {
	if position < 0 {
		return fmt.Errorf("%w: position must not be negative, got %d", ErrInvalidPosition, position)
	}
	return nil
}

// containsPathTraversal reports whether the cleaned path still contains
// a ".." segment or an encoded variant.
func containsPathTraversal(path string) bool {
	normalized := filepath.Clean(path)
	for _, seg := range strings.Split(normalized, string(filepath.Separator)) {
		if seg == ".." {
			return true
		}
	}
	if strings.Contains(path, "%2e%2e") || strings.Contains(path, "%2E%2E") {
		return true
	}
	return false
}
