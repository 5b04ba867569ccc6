package figure

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for log operations.
var (
	// ErrUnchanged short-circuits an edit whose params and references
	// are identical to the current ones.
	ErrUnchanged = errors.New("step unchanged")

	// ErrStepNotFound marks a lookup of an id the log never assigned.
	ErrStepNotFound = errors.New("step not found")
)

// Error codes for step operations.
const (
	ErrCodeInvalidReference  = "INVALID_REFERENCE"
	ErrCodeDanglingSelector  = "DANGLING_SNAP_SELECTOR"
	ErrCodeExpression        = "EXPRESSION_ERROR"
	ErrCodeDegenerate        = "DEGENERATE_GEOMETRY"
	ErrCodeExpansionConflict = "EXPANSION_CONFLICT"
	ErrCodeStepNotFound      = "STEP_NOT_FOUND"
	ErrCodeInvalidParams     = "INVALID_PARAMS"
)

// StepError is a user-facing step engine error with an actionable
// suggestion.
type StepError struct {
	Code       string    // Error code for categorization
	Kind       ErrorKind // Status error kind, when the step is marked Error
	Message    string    // User-friendly error message
	StepID     StepID    // Step the error localizes to, when known
	Suggestion string    // Actionable suggestion to fix the error
	Underlying error     // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *StepError) Error() string {
	if e.StepID.IsValid() {
		return fmt.Sprintf("step %s: %s", e.StepID, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain support.
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Format returns a fully formatted error with all details.
func (e *StepError) Format() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.StepID.IsValid() {
		b.WriteString(fmt.Sprintf("\n  Step: %s", e.StepID))
	}
	if e.Suggestion != "" {
		b.WriteString(fmt.Sprintf("\n  Suggestion: %s", e.Suggestion))
	}
	if e.Underlying != nil {
		b.WriteString(fmt.Sprintf("\n  Cause: %s", e.Underlying.Error()))
	}

	return b.String()
}

// WithStepID returns a new StepError with the step set.
func (e *StepError) WithStepID(id StepID) *StepError {
	clone := *e
	clone.StepID = id
	return &clone
}

// WithSuggestion returns a new StepError with suggestion set.
func (e *StepError) WithSuggestion(suggestion string) *StepError {
	clone := *e
	clone.Suggestion = suggestion
	return &clone
}

// WithUnderlying returns a new StepError wrapping another error.
func (e *StepError) WithUnderlying(err error) *StepError {
	clone := *e
	clone.Underlying = err
	return &clone
}

// Common step error constructors.

// NewInvalidReferenceError rejects a forward or nonexistent reference.
func NewInvalidReferenceError(id StepID, ref Reference) *StepError {
	return &StepError{
		Code:       ErrCodeInvalidReference,
		Kind:       ErrKindInvalidReference,
		Message:    fmt.Sprintf("reference %s is not a live earlier step", ref),
		StepID:     id,
		Suggestion: "References must point at existing steps with smaller ids. Re-pick the snap target.",
	}
}

// NewDanglingSelectorError marks a selector its target no longer carries.
func NewDanglingSelectorError(id StepID, ref Reference) *StepError {
	return &StepError{
		Code:       ErrCodeDanglingSelector,
		Kind:       ErrKindDanglingSelector,
		Message:    fmt.Sprintf("selector %s no longer exists on its target", ref),
		StepID:     id,
		Suggestion: "The referenced anchor disappeared, likely after an edit shrank the target. Re-pick the snap target.",
	}
}

// NewExpressionError marks an evaluator failure or timeout.
func NewExpressionError(id StepID, err error) *StepError {
	return &StepError{
		Code:       ErrCodeExpression,
		Kind:       ErrKindExpression,
		Message:    "expression evaluation failed",
		StepID:     id,
		Suggestion: "Check the expression's bindings and that it finishes within the configured timeout.",
		Underlying: err,
	}
}

// NewDegenerateGeometryError marks a construction that collapsed.
func NewDegenerateGeometryError(id StepID, detail string) *StepError {
	return &StepError{
		Code:       ErrCodeDegenerate,
		Kind:       ErrKindDegenerate,
		Message:    fmt.Sprintf("construction produced degenerate geometry: %s", detail),
		StepID:     id,
		Suggestion: "Adjust the parameters so the shape has positive extent.",
	}
}

// NewExpansionConflictError rejects a re-expansion that cannot remap its
// dependents.
func NewExpansionConflictError(id StepID, detail string) *StepError {
	return &StepError{
		Code:       ErrCodeExpansionConflict,
		Kind:       ErrKindExpansionConflict,
		Message:    fmt.Sprintf("cannot re-expand: %s", detail),
		StepID:     id,
		Suggestion: "Steps outside the loop reference instances that would disappear. Re-point or edit those steps first.",
	}
}

// NewStepNotFoundError marks a lookup of an unknown step.
func NewStepNotFoundError(id StepID) *StepError {
	return &StepError{
		Code:       ErrCodeStepNotFound,
		Message:    "no step with this id",
		StepID:     id,
		Suggestion: "List the log to see which ids exist.",
		Underlying: ErrStepNotFound,
	}
}

// NewInvalidParamsError rejects params that fail structural validation.
func NewInvalidParamsError(id StepID, err error) *StepError {
	return &StepError{
		Code:       ErrCodeInvalidParams,
		Message:    "invalid step parameters",
		StepID:     id,
		Suggestion: "Check the operation's parameter shape.",
		Underlying: err,
	}
}
