package figure

// Status is a step's recomputation state.
type Status string

// Step statuses.
const (
	// StatusClean means the geometry matches the current params and
	// references.
	StatusClean Status = "clean"

	// StatusDirty means the step is queued for recomputation.
	StatusDirty Status = "dirty"

	// StatusError means the last recomputation failed; the geometry is
	// frozen at its last good value.
	StatusError Status = "error"
)

// ErrorKind classifies why a step's recomputation failed, or why a
// mutation was rejected.
type ErrorKind string

// Error kinds.
const (
	// ErrKindInvalidReference marks a forward or nonexistent reference.
	// Appends and edits carrying one are rejected outright.
	ErrKindInvalidReference ErrorKind = "invalid_reference"

	// ErrKindDanglingSelector marks a selector that no longer exists on
	// the target's geometry.
	ErrKindDanglingSelector ErrorKind = "dangling_snap_selector"

	// ErrKindExpression marks an evaluator failure or timeout.
	ErrKindExpression ErrorKind = "expression_error"

	// ErrKindDegenerate marks a construction that collapsed.
	ErrKindDegenerate ErrorKind = "degenerate_geometry"

	// ErrKindExpansionConflict marks a re-expansion that cannot remap
	// its dependents. The triggering edit is rejected.
	ErrKindExpansionConflict ErrorKind = "expansion_conflict"
)
