// Package app wires the construction engine's domain services into the
// use cases the CLI, TUI and MCP surfaces share: replaying scripts,
// reading the step log, snapping, and moving the cursor.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/linework/internal/adapters/logging"
	"github.com/felixgeelhaar/linework/internal/domain/config"
	"github.com/felixgeelhaar/linework/internal/domain/engine"
	"github.com/felixgeelhaar/linework/internal/domain/expr"
	"github.com/felixgeelhaar/linework/internal/domain/figure"
	"github.com/felixgeelhaar/linework/internal/domain/geom"
	"github.com/felixgeelhaar/linework/internal/domain/script"
	"github.com/felixgeelhaar/linework/internal/domain/session"
	"github.com/felixgeelhaar/linework/internal/domain/snap"
	"github.com/felixgeelhaar/linework/internal/ports"
)

// Linework is the application orchestrator. It owns one figure engine,
// one editing session, and the script loader and snap resolver built
// from configuration.
type Linework struct {
	cfg       *config.Config
	logger    ports.Logger
	evaluator expr.Evaluator
	loader    *script.Loader
	resolver  *snap.Resolver
	session   *session.Session

	// mu guards the engine pointer and script name, which a replay
	// swaps wholesale. The engine serializes its own log access.
	mu     sync.RWMutex
	engine *engine.Engine
	script string
}

// New creates the application with a WASM-backed expression evaluator.
// A nil logger disables logging; a nil cfg runs on defaults.
func New(ctx context.Context, cfg *config.Config, logger ports.Logger) (*Linework, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	evaluator, err := expr.NewWazeroEvaluator(ctx, cfg.EvalConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator: %w", err)
	}
	return NewWithEvaluator(cfg, logger, evaluator)
}

// NewWithEvaluator creates the application around a caller-supplied
// evaluator. A nil evaluator turns every expression argument into an
// expression error, which keeps expression-free figures fully usable.
func NewWithEvaluator(cfg *config.Config, logger ports.Logger, evaluator expr.Evaluator) (*Linework, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	sess, err := session.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &Linework{
		cfg:       cfg,
		logger:    logger.With(ports.F("session", sess.ID())),
		evaluator: evaluator,
		loader:    script.NewLoader(cfg.Scripts.Dir),
		resolver:  snap.NewResolver(cfg.SnapOptions()),
		session:   sess,
		engine:    engine.New(evaluator),
	}, nil
}

// Close stops the session machine and releases the evaluator.
func (l *Linework) Close() error {
	l.session.Close()
	if l.evaluator != nil {
		return l.evaluator.Close()
	}
	return nil
}

// ReplayReport summarizes a finished script replay.
type ReplayReport struct {
	Script   string                `json:"script"`
	Authored int                   `json:"authored_steps"`
	Live     int                   `json:"live_steps"`
	Cursor   int                   `json:"cursor"`
	Statuses map[figure.Status]int `json:"statuses"`
}

// Replay loads the named script and replays it into a fresh engine.
// The previous figure stays untouched unless every authored step is
// accepted; subscribers of the old event bus must re-subscribe via
// Events after a successful replay.
func (l *Linework) Replay(ctx context.Context, name string) (*ReplayReport, error) {
	if l.session.State() == session.StateError {
		l.session.Recover()
	}
	l.session.BeginReplay()

	loaded, err := l.loader.Load(name)
	if err != nil {
		l.session.Fail(err)
		l.logger.Error(ctx, "replay failed", ports.F("script", name), ports.F("error", err))
		return nil, err
	}

	fresh := engine.New(l.evaluator)
	for i, op := range loaded.Ops {
		if _, err := fresh.Append(ctx, op.Kind, op.Params, op.Refs); err != nil {
			err = fmt.Errorf("step %d (%s): %w", i+1, op.Kind, err)
			l.session.Fail(err)
			l.logger.Error(ctx, "replay failed", ports.F("script", name), ports.F("error", err))
			return nil, err
		}
	}

	l.mu.Lock()
	l.engine = fresh
	l.script = name
	l.mu.Unlock()

	cursor := l.session.MoveTo(fresh.LiveLen(), fresh.LiveLen())
	fresh.Events().Publish(figure.NewCursorEvent(cursor))
	l.session.Settle()

	report := &ReplayReport{
		Script:   name,
		Authored: len(loaded.Ops),
		Live:     fresh.LiveLen(),
		Cursor:   cursor,
		Statuses: fresh.StatusCounts(),
	}
	l.logger.Info(ctx, "replay finished",
		ports.F("script", name),
		ports.F("authored", report.Authored),
		ports.F("live", report.Live))
	return report, nil
}

// Append adds a step at the tail of the figure, driving the session
// lifecycle around the engine call. A successful append moves the
// cursor to the tail so the new step is visible, even when the user
// had rewound it.
func (l *Linework) Append(ctx context.Context, kind figure.Kind, params figure.Params, refs []figure.Reference) (engine.StepView, error) {
	eng := l.currentEngine()

	l.session.BeginMutation()
	view, err := eng.Append(ctx, kind, params, refs)
	if err != nil {
		l.session.Settle()
		l.logger.Warn(ctx, "append rejected", ports.F("kind", kind), ports.F("error", err))
		return engine.StepView{}, err
	}
	l.session.BeginRecompute()
	l.session.Settle()

	cursor := l.session.MoveTo(eng.LiveLen(), eng.LiveLen())
	eng.Events().Publish(figure.NewCursorEvent(cursor))

	l.logger.Debug(ctx, "step appended",
		ports.F("step", view.ID),
		ports.F("kind", view.Kind),
		ports.F("status", view.Status))
	return view, nil
}

// Edit replaces a step's params and references, driving the session
// lifecycle around the engine call. Editing an expansion step can
// shrink the live sequence; the cursor is clamped back inside it.
func (l *Linework) Edit(ctx context.Context, id figure.StepID, params figure.Params, refs []figure.Reference) error {
	eng := l.currentEngine()

	l.session.BeginMutation()
	err := eng.Edit(ctx, id, params, refs)
	if err != nil {
		l.session.Settle()
		if !errors.Is(err, figure.ErrUnchanged) {
			l.logger.Warn(ctx, "edit rejected", ports.F("step", id), ports.F("error", err))
		}
		return err
	}
	l.session.BeginRecompute()
	l.session.Settle()

	before := l.session.Cursor()
	if cursor := l.session.Clamp(eng.LiveLen()); cursor != before {
		eng.Events().Publish(figure.NewCursorEvent(cursor))
	}

	l.logger.Debug(ctx, "step edited", ports.F("step", id))
	return nil
}

// Steps returns every live step in id order.
func (l *Linework) Steps() []engine.StepView {
	return l.currentEngine().Steps()
}

// Authored returns the live steps a user wrote, without expansion
// instances.
func (l *Linework) Authored() []engine.StepView {
	return l.currentEngine().Authored()
}

// VisibleSteps returns the live steps at or before the session cursor.
func (l *Linework) VisibleSteps() []engine.StepView {
	return l.currentEngine().VisiblePrefix(l.session.Cursor())
}

// Step retrieves one step by id, tombstones included.
func (l *Linework) Step(id figure.StepID) (engine.StepView, bool) {
	return l.currentEngine().Step(id)
}

// Snap resolves candidates for a pointer position. A non-positive
// tolerance uses the configured default; atCursor restricts targets to
// the steps visible at the session cursor.
func (l *Linework) Snap(world geom.Point, tolerance float64, atCursor bool) []snap.Candidate {
	if tolerance <= 0 {
		tolerance = l.cfg.Snap.Tolerance
	}

	eng := l.currentEngine()
	var views []engine.StepView
	if atCursor {
		views = eng.VisiblePrefix(l.session.Cursor())
	} else {
		views = eng.Steps()
	}

	targets := make([]snap.Target, 0, len(views))
	for _, v := range views {
		targets = append(targets, snap.Target{ID: v.ID, Geometry: v.Geometry})
	}
	return l.resolver.Query(world, tolerance, targets)
}

// MoveCursor moves the visibility cursor, clamping to the live step
// range, and reports where it landed.
func (l *Linework) MoveCursor(ctx context.Context, position int) int {
	eng := l.currentEngine()
	landed := l.session.MoveTo(position, eng.LiveLen())
	eng.Events().Publish(figure.NewCursorEvent(landed))
	l.logger.Debug(ctx, "cursor moved", ports.F("cursor", landed))
	return landed
}

// Cursor returns the current cursor position.
func (l *Linework) Cursor() int {
	return l.session.Cursor()
}

// Events returns the current engine's event bus. A successful replay
// installs a fresh engine, so subscriptions do not survive it.
func (l *Linework) Events() *engine.EventBus {
	return l.currentEngine().Events()
}

// Status summarizes the session and the loaded figure.
type Status struct {
	Session  session.Status        `json:"session"`
	Script   string                `json:"script,omitempty"`
	Live     int                   `json:"live_steps"`
	Total    int                   `json:"total_steps"`
	Statuses map[figure.Status]int `json:"statuses"`
}

// Status returns a snapshot for the status command and MCP tool.
func (l *Linework) Status() Status {
	l.mu.RLock()
	eng, name := l.engine, l.script
	l.mu.RUnlock()

	return Status{
		Session:  l.session.Status(),
		Script:   name,
		Live:     eng.LiveLen(),
		Total:    eng.Len(),
		Statuses: eng.StatusCounts(),
	}
}

func (l *Linework) currentEngine() *engine.Engine {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.engine
}
