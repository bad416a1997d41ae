package runtime

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"time"

	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/ports"
)

var _ ports.Controller = (*Engine)(nil)

// Engine is the wizard controller for one definition.
// It is stateless: every operation takes a state and returns a new one,
// never mutating its input.
type Engine struct {
	def    *domain.Definition
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source used for UpdatedAt and action timings.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a controller bound to def.
func NewEngine(def *domain.Definition, opts ...EngineOption) *Engine {
	e := &Engine{
		def:    def,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("flow", def.Name())
	return e
}

// Definition returns the definition driven by this engine.
func (e *Engine) Definition() *domain.Definition {
	return e.def
}

// Start creates the initial state for a session and fires the entry hook.
func (e *Engine) Start(ctx context.Context, sessionID string) *domain.State {
	state := domain.NewState(sessionID, e.def.Name())
	state.UpdatedAt = e.now().UTC()
	e.emitStepEnter(ctx, state)
	e.logger.Debug("wizard started", "session_id", sessionID)
	return state
}

// CanAdvance reports whether the active step's guard accepts the payload.
// Steps without a validator always permit advance.
func (e *Engine) CanAdvance(state *domain.State) bool {
	if err := e.checkState(state); err != nil {
		return false
	}
	if state.Busy() || state.Status == domain.StatusComplete {
		return false
	}
	step, _ := e.def.Step(state.CurrentIndex)
	if step.Terminal {
		return false
	}
	return e.validate(step, state.Payload) == nil
}

// Advance moves the wizard one step forward. For async steps the action is
// executed inline; callers that need to release locks while the action runs
// use Begin, Execute and Resolve instead.
func (e *Engine) Advance(ctx context.Context, state *domain.State) (*domain.State, error) {
	next, err := e.Begin(ctx, state)
	if err != nil {
		return state, err
	}
	if next.Status != domain.StatusSubmitting {
		return next, nil
	}

	result, actionErr := e.Execute(ctx, next)
	return e.Resolve(ctx, next, next.Attempt, result, actionErr)
}

// Begin runs the guard of the active step. Synchronous steps are advanced
// immediately. Async steps are moved to StatusSubmitting with a fresh
// Attempt token; the returned state must then be resolved.
// On rejection the input state is returned untouched alongside the error.
func (e *Engine) Begin(ctx context.Context, state *domain.State) (*domain.State, error) {
	if err := e.checkState(state); err != nil {
		return state, err
	}
	step, _ := e.def.Step(state.CurrentIndex)

	if state.Busy() {
		return state, e.reject(ctx, state, "advance", &domain.BusyError{StepID: step.ID})
	}
	if step.Terminal || state.Status == domain.StatusComplete {
		return state, e.reject(ctx, state, "advance", &domain.BoundaryError{Op: "advance", Index: state.CurrentIndex})
	}

	next := e.cloneState(state)
	next.Status = domain.StatusValidating
	if err := e.validate(step, next.Payload); err != nil {
		return state, e.reject(ctx, state, "advance", &domain.ValidationError{StepID: step.ID, Cause: err})
	}

	if !step.Async {
		return e.moveForward(ctx, next), nil
	}

	next.Status = domain.StatusSubmitting
	next.Attempt++
	next.LastError = ""
	e.logger.Debug("async step submitting", "session_id", next.SessionID, "step", step.ID, "attempt", next.Attempt)
	return next, nil
}

// Execute runs the action of the active async step against a copy of the
// payload and returns only the entries the action added or changed.
func (e *Engine) Execute(ctx context.Context, state *domain.State) (map[string]any, error) {
	step, ok := e.def.Step(state.CurrentIndex)
	if !ok || step.Action == nil {
		return nil, domain.ErrInvalidState
	}

	scratch := make(map[string]any, len(state.Payload))
	for k, v := range state.Payload {
		scratch[k] = v
	}

	e.emitActionCall(ctx, state, step)
	started := e.now()
	err := step.Action(ctx, scratch)
	e.emitActionReturn(ctx, state, step, e.now().Sub(started), err != nil)

	if err != nil {
		return nil, err
	}
	return written(state.Payload, scratch), nil
}

// written returns the entries of after that are new or differ from before.
func written(before, after map[string]any) map[string]any {
	out := make(map[string]any)
	for k, v := range after {
		if old, ok := before[k]; ok && reflect.DeepEqual(old, v) {
			continue
		}
		out[k] = v
	}
	return out
}

// Resolve settles the async transition identified by attempt. A result for
// an attempt that is no longer in flight (cancelled, reset, retreated) is
// discarded with ErrResultDiscarded and the state is returned as is.
func (e *Engine) Resolve(ctx context.Context, state *domain.State, attempt uint64, result map[string]any, actionErr error) (*domain.State, error) {
	if err := e.checkState(state); err != nil {
		return state, err
	}
	if !state.Busy() || state.Attempt != attempt {
		e.logger.Debug("discarding stale async result",
			"session_id", state.SessionID,
			"attempt", attempt,
			"current_attempt", state.Attempt,
			"status", state.Status)
		return state, domain.ErrResultDiscarded
	}

	step, _ := e.def.Step(state.CurrentIndex)
	next := e.cloneState(state)

	if actionErr != nil {
		next.Status = domain.StatusError
		next.LastError = actionErr.Error()
		e.logger.Info("async step failed", "session_id", next.SessionID, "step", step.ID, "err", actionErr)
		return next, &domain.AsyncStepError{StepID: step.ID, Cause: actionErr}
	}

	for k, v := range result {
		next.Payload[k] = v
	}
	return e.moveForward(ctx, next), nil
}

// SubmitField merges one entry into the payload. It never fails and never
// moves the wizard.
func (e *Engine) SubmitField(state *domain.State, key string, value any) *domain.State {
	if state == nil {
		state = domain.NewState("", e.def.Name())
	}
	next := e.cloneState(state)
	if next.Payload == nil {
		next.Payload = make(map[string]any)
	}
	next.Payload[key] = value
	return next
}

// Reset returns a fresh state at the first step. Any in-flight result is
// invalidated.
func (e *Engine) Reset(ctx context.Context, state *domain.State) *domain.State {
	if state == nil {
		return e.Start(ctx, "")
	}
	next := domain.NewState(state.SessionID, e.def.Name())
	next.Attempt = state.Attempt + 1
	next.UpdatedAt = e.now().UTC()
	if state.CurrentIndex != 0 {
		e.emitStepLeave(ctx, state)
		e.emitStepEnter(ctx, next)
	}
	return next
}

// Cancel aborts an in-flight async step without advancing. It is a no-op
// for states that are not submitting.
func (e *Engine) Cancel(ctx context.Context, state *domain.State) *domain.State {
	if state == nil {
		return nil
	}
	next := e.cloneState(state)
	if !state.Busy() {
		return next
	}
	next.Status = domain.StatusIdle
	next.Attempt++
	e.logger.Debug("async step cancelled", "session_id", next.SessionID, "index", next.CurrentIndex)
	return next
}

func (e *Engine) moveForward(ctx context.Context, next *domain.State) *domain.State {
	from := next.CurrentIndex
	to := from + 1
	if last := e.def.Len() - 1; to > last {
		to = last
	}

	next.LastError = ""
	if to != from {
		e.emitStepLeave(ctx, next)
		next.CurrentIndex = to
		next.History = append(next.History, to)
		e.emitStepEnter(ctx, next)
	}

	step, _ := e.def.Step(to)
	if step.Terminal {
		next.Status = domain.StatusComplete
	} else {
		next.Status = domain.StatusIdle
	}
	e.logger.Debug("advanced", "session_id", next.SessionID, "from", from, "to", to, "status", next.Status)
	return next
}

func (e *Engine) validate(step domain.StepSpec, payload map[string]any) error {
	if step.Validate == nil {
		return nil
	}
	return step.Validate(payload)
}

func (e *Engine) reject(ctx context.Context, state *domain.State, op string, err error) error {
	step, _ := e.def.Step(state.CurrentIndex)
	e.logger.Debug("operation rejected", "session_id", state.SessionID, "op", op, "step", step.ID, "err", err)
	if e.hooks.OnRejected != nil {
		e.hooks.OnRejected(ctx, &domain.RejectEvent{
			EventBase: e.base(domain.EventRejected, state),
			StepID:    step.ID,
			Op:        op,
			Err:       err,
		})
	}
	return err
}

// cloneState creates a copy of the state safe for mutation and stamps it.
func (e *Engine) cloneState(src *domain.State) *domain.State {
	next := src.Clone()
	next.UpdatedAt = e.now().UTC()
	return next
}
