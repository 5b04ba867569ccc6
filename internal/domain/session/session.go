// Package session tracks one interactive editing session: the cursor over
// the live step sequence and a lifecycle machine that mirrors what the
// engine is doing so a UI can show idle/mutating/recomputing badges. The
// machine is observational; the engine's own locking is what enforces
// exclusive mutation.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/google/uuid"
)

// State represents the session's lifecycle state.
type State string

const (
	// StateIdle indicates the session is waiting for input.
	StateIdle State = "idle"
	// StateMutating indicates an append or edit is being validated.
	StateMutating State = "mutating"
	// StateRecomputing indicates dirty steps are being recomputed.
	StateRecomputing State = "recomputing"
	// StateReplaying indicates a script is being replayed into the log.
	StateReplaying State = "replaying"
	// StateError indicates the last lifecycle action failed.
	StateError State = "error"
)

// Event types for the session state machine.
const (
	EventMutate    = "MUTATE"
	EventRecompute = "RECOMPUTE"
	EventSettled   = "SETTLED"
	EventReplay    = "REPLAY"
	EventError     = "ERROR"
	EventRecover   = "RECOVER"
)

// Context holds the counters the state machine maintains.
type Context struct {
	Mutations    int
	Replays      int
	Errors       int
	LastError    error
	LastActivity time.Time
}

// tracker wraps Context with thread-safe access for machine actions.
type tracker struct {
	mu  sync.RWMutex
	ctx Context
}

func (t *tracker) recordMutation() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctx.Mutations++
	t.ctx.LastActivity = time.Now()
}

func (t *tracker) recordReplay() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctx.Replays++
	t.ctx.LastActivity = time.Now()
}

func (t *tracker) recordError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ctx.Errors++
	t.ctx.LastError = err
	t.ctx.LastActivity = time.Now()
}

func (t *tracker) snapshot() Context {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ctx
}

// buildSessionMachine constructs the lifecycle machine. The tracker
// pointer is captured by closures so actions modify the original counters.
func buildSessionMachine(t *tracker) (*statekit.Interpreter[Context], error) {
	machine, err := statekit.NewMachine[Context]("linework-session").
		WithInitial("idle").
		WithContext(t.snapshot()).
		WithAction("recordMutation", func(_ *Context, _ statekit.Event) {
			t.recordMutation()
		}).
		WithAction("recordReplay", func(_ *Context, _ statekit.Event) {
			t.recordReplay()
		}).
		WithAction("recordError", func(_ *Context, event statekit.Event) {
			if payload, ok := event.Payload.(map[string]interface{}); ok {
				if err, ok := payload["error"].(error); ok {
					t.recordError(err)
				}
			}
		}).
		State("idle").
		On(EventMutate).Target("mutating").
		On(EventReplay).Target("replaying").Done().
		State("mutating").
		OnEntry("recordMutation").
		On(EventRecompute).Target("recomputing").
		On(EventSettled).Target("idle").
		On(EventError).Target("error").Done().
		State("recomputing").
		On(EventSettled).Target("idle").
		On(EventError).Target("error").Done().
		State("replaying").
		OnEntry("recordReplay").
		On(EventSettled).Target("idle").
		On(EventError).Target("error").Done().
		State("error").
		OnEntry("recordError").
		On(EventRecover).Target("idle").Done().
		Build()

	if err != nil {
		return nil, err
	}
	return statekit.NewInterpreter(machine), nil
}

// Session is one user's editing context over a figure.
type Session struct {
	id      string
	interp  *statekit.Interpreter[Context]
	tracker *tracker

	mu     sync.RWMutex
	cursor int
}

// New creates a session with a fresh id, cursor at zero and the
// lifecycle machine in idle.
func New() (*Session, error) {
	t := &tracker{}
	interp, err := buildSessionMachine(t)
	if err != nil {
		return nil, fmt.Errorf("failed to build session machine: %w", err)
	}
	interp.Start()

	return &Session{
		id:      uuid.New().String(),
		interp:  interp,
		tracker: t,
	}, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.interp.State().Value)
}

// Close stops the lifecycle machine.
func (s *Session) Close() {
	s.interp.Stop()
}

// Cursor returns the current cursor position. The position counts live
// steps: position n means the first n live steps are visible.
func (s *Session) Cursor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// MoveTo sets the cursor, clamped to [0, liveLen], and returns the
// position it landed on. Cursor moves never touch the log.
func (s *Session) MoveTo(position, liveLen int) int {
	if position < 0 {
		position = 0
	}
	if position > liveLen {
		position = liveLen
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor = position
	return s.cursor
}

// Clamp pulls the cursor back inside [0, liveLen] after the live
// sequence shrank, returning the resulting position.
func (s *Session) Clamp(liveLen int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor > liveLen {
		s.cursor = liveLen
	}
	return s.cursor
}

// Lifecycle notifications, sent by the orchestration layer around engine
// calls. Events with no transition from the current state are ignored.

// BeginMutation marks the start of an append or edit.
func (s *Session) BeginMutation() {
	s.interp.Send(statekit.Event{Type: EventMutate})
}

// BeginRecompute marks the start of the recomputation pass.
func (s *Session) BeginRecompute() {
	s.interp.Send(statekit.Event{Type: EventRecompute})
}

// BeginReplay marks the start of a script replay.
func (s *Session) BeginReplay() {
	s.interp.Send(statekit.Event{Type: EventReplay})
}

// Settle marks the current activity as finished.
func (s *Session) Settle() {
	s.interp.Send(statekit.Event{Type: EventSettled})
}

// Fail marks the current activity as failed.
func (s *Session) Fail(err error) {
	s.interp.Send(statekit.Event{
		Type:    EventError,
		Payload: map[string]interface{}{"error": err},
	})
}

// Recover returns an errored session to idle.
func (s *Session) Recover() {
	s.interp.Send(statekit.Event{Type: EventRecover})
}

// Status is a snapshot of the session for CLIs and tools.
type Status struct {
	ID           string    `json:"id"`
	State        State     `json:"state"`
	Cursor       int       `json:"cursor"`
	Mutations    int       `json:"mutations"`
	Replays      int       `json:"replays"`
	Errors       int       `json:"errors"`
	LastError    string    `json:"last_error,omitempty"`
	LastActivity time.Time `json:"last_activity,omitempty"`
}

// Status returns a snapshot of the session.
func (s *Session) Status() Status {
	ctx := s.tracker.snapshot()
	status := Status{
		ID:           s.id,
		State:        s.State(),
		Cursor:       s.Cursor(),
		Mutations:    ctx.Mutations,
		Replays:      ctx.Replays,
		Errors:       ctx.Errors,
		LastActivity: ctx.LastActivity,
	}
	if ctx.LastError != nil {
		status.LastError = ctx.LastError.Error()
	}
	return status
}
