package figure

import "strconv"

// StepID identifies a step in the construction log. IDs are assigned
// monotonically at append time and never reused or reordered; the zero
// value means "no step".
type StepID int64

// NoStep is the zero StepID.
const NoStep StepID = 0

// IsValid reports whether the id could name a step.
func (id StepID) IsValid() bool { return id > 0 }

// Before reports whether this id was assigned before other.
func (id StepID) Before(other StepID) bool { return id < other }

// String formats the id the way the CLI and error messages show steps.
func (id StepID) String() string {
	return "#" + strconv.FormatInt(int64(id), 10)
}
