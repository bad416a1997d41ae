package runtime

import (
	"context"

	"github.com/aretw0/novapay/pkg/domain"
)

// Retreat moves one step back. The payload is kept; history is truncated.
// An in-flight async step is abandoned.
func (e *Engine) Retreat(ctx context.Context, state *domain.State) (*domain.State, error) {
	if err := e.checkState(state); err != nil {
		return state, err
	}
	if state.CurrentIndex == 0 {
		return state, e.reject(ctx, state, "retreat", &domain.BoundaryError{Op: "retreat", Index: 0})
	}
	return e.moveTo(ctx, state, state.CurrentIndex-1), nil
}

// JumpTo moves to any index already reached in history. Skipping ahead
// past validated territory fails with a NavigationError.
func (e *Engine) JumpTo(ctx context.Context, state *domain.State, index int) (*domain.State, error) {
	if err := e.checkState(state); err != nil {
		return state, err
	}
	max := state.MaxVisited()
	if index < 0 || index > max {
		return state, e.reject(ctx, state, "jump", &domain.NavigationError{Target: index, Max: max})
	}
	return e.moveTo(ctx, state, index), nil
}

func (e *Engine) moveTo(ctx context.Context, state *domain.State, index int) *domain.State {
	next := e.cloneState(state)
	if state.Busy() {
		next.Attempt++
	}
	next.LastError = ""
	next.History = truncateHistory(next.History, index)

	if index != state.CurrentIndex {
		e.emitStepLeave(ctx, state)
		next.CurrentIndex = index
		e.emitStepEnter(ctx, next)
	}

	step, _ := e.def.Step(index)
	if step.Terminal {
		next.Status = domain.StatusComplete
	} else {
		next.Status = domain.StatusIdle
	}
	return next
}

// truncateHistory cuts history back to the first visit of index, or keeps
// the entries below index and appends it when it was never visited directly.
func truncateHistory(history []int, index int) []int {
	for i, h := range history {
		if h == index {
			return history[:i+1]
		}
	}
	out := make([]int, 0, len(history)+1)
	for _, h := range history {
		if h < index {
			out = append(out, h)
		}
	}
	return append(out, index)
}
