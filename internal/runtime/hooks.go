package runtime

import (
	"context"
	"time"

	"github.com/aretw0/novapay/pkg/domain"
)

func (e *Engine) base(t domain.EventType, state *domain.State) domain.EventBase {
	return domain.EventBase{
		Timestamp: e.now().UTC(),
		Type:      t,
		SessionID: state.SessionID,
		Flow:      e.def.Name(),
	}
}

func (e *Engine) emitStepEnter(ctx context.Context, state *domain.State) {
	if e.hooks.OnStepEnter == nil {
		return
	}
	step, _ := e.def.Step(state.CurrentIndex)
	e.hooks.OnStepEnter(ctx, &domain.StepEvent{
		EventBase: e.base(domain.EventStepEnter, state),
		StepID:    step.ID,
		Index:     state.CurrentIndex,
	})
}

func (e *Engine) emitStepLeave(ctx context.Context, state *domain.State) {
	if e.hooks.OnStepLeave == nil {
		return
	}
	step, _ := e.def.Step(state.CurrentIndex)
	e.hooks.OnStepLeave(ctx, &domain.StepEvent{
		EventBase: e.base(domain.EventStepLeave, state),
		StepID:    step.ID,
		Index:     state.CurrentIndex,
	})
}

func (e *Engine) emitActionCall(ctx context.Context, state *domain.State, step domain.StepSpec) {
	if e.hooks.OnActionCall == nil {
		return
	}
	e.hooks.OnActionCall(ctx, &domain.ActionEvent{
		EventBase: e.base(domain.EventActionCall, state),
		StepID:    step.ID,
		Attempt:   state.Attempt,
	})
}

func (e *Engine) emitActionReturn(ctx context.Context, state *domain.State, step domain.StepSpec, d time.Duration, isErr bool) {
	if e.hooks.OnActionReturn == nil {
		return
	}
	e.hooks.OnActionReturn(ctx, &domain.ActionEvent{
		EventBase: e.base(domain.EventActionReturn, state),
		StepID:    step.ID,
		Attempt:   state.Attempt,
		Duration:  d,
		IsError:   isErr,
	})
}
