package figure

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies what changed in a figure.
type EventType string

// Event types for log mutations.
const (
	EventStepAppended      EventType = "step_appended"
	EventStepEdited        EventType = "step_edited"
	EventStepStatusChanged EventType = "step_status_changed"
	EventStepRetired       EventType = "step_retired"
	EventCursorMoved       EventType = "cursor_moved"
)

// Event is one observable change to a figure. Step is zero for cursor
// events; Status and ErrKind are filled only on status changes.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"event"`
	Step      StepID    `json:"step,omitempty"`
	Status    Status    `json:"status,omitempty"`
	ErrKind   ErrorKind `json:"err_kind,omitempty"`
	Cursor    int       `json:"cursor,omitempty"`
}

func newEvent(eventType EventType) Event {
	return Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Type:      eventType,
	}
}

// NewStepEvent builds an appended, edited or retired event for a step.
func NewStepEvent(eventType EventType, step StepID) Event {
	ev := newEvent(eventType)
	ev.Step = step
	return ev
}

// NewStatusEvent builds a status change event. ErrKind is empty unless
// the step entered StatusError.
func NewStatusEvent(step StepID, status Status, errKind ErrorKind) Event {
	ev := newEvent(EventStepStatusChanged)
	ev.Step = step
	ev.Status = status
	ev.ErrKind = errKind
	return ev
}

// NewCursorEvent builds a cursor move event.
func NewCursorEvent(position int) Event {
	ev := newEvent(EventCursorMoved)
	ev.Cursor = position
	return ev
}
