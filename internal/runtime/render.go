package runtime

import (
	"github.com/aretw0/novapay/pkg/domain"
)

// Render builds the read model of the active step without transitioning.
func (e *Engine) Render(state *domain.State) (domain.View, error) {
	if err := e.checkState(state); err != nil {
		return domain.View{}, err
	}

	step, _ := e.def.Step(state.CurrentIndex)
	total := e.def.Len()

	progress := 100
	if total > 1 {
		progress = state.CurrentIndex * 100 / (total - 1)
	}

	labels := make([]string, 0, total)
	for _, s := range e.def.Steps() {
		labels = append(labels, s.Label)
	}

	return domain.View{
		Flow:       e.def.Name(),
		SessionID:  state.SessionID,
		Step:       step,
		Index:      state.CurrentIndex,
		Total:      total,
		Progress:   progress,
		Status:     state.Status,
		CanAdvance: e.CanAdvance(state),
		CanRetreat: state.CurrentIndex > 0,
		MaxVisited: state.MaxVisited(),
		LastError:  state.LastError,
		Labels:     labels,
	}, nil
}
