package runtime

import (
	"fmt"

	"github.com/aretw0/novapay/pkg/domain"
)

// checkState verifies the state belongs to this engine's definition.
func (e *Engine) checkState(state *domain.State) error {
	if state == nil {
		return fmt.Errorf("%w: nil state", domain.ErrInvalidState)
	}
	if state.Flow != "" && state.Flow != e.def.Name() {
		return fmt.Errorf("%w: state of flow %q driven by %q", domain.ErrInvalidState, state.Flow, e.def.Name())
	}
	if state.CurrentIndex < 0 || state.CurrentIndex >= e.def.Len() {
		return fmt.Errorf("%w: index %d out of range [0,%d)", domain.ErrInvalidState, state.CurrentIndex, e.def.Len())
	}
	return nil
}
