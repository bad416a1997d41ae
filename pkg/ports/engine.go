package ports

import (
	"context"

	"github.com/aretw0/novapay/pkg/domain"
)

// Controller is the stateless wizard controller for one definition.
// Every operation returns a new state and leaves its input untouched.
type Controller interface {
	Definition() *domain.Definition
	Start(ctx context.Context, sessionID string) *domain.State
	Render(state *domain.State) (domain.View, error)

	CanAdvance(state *domain.State) bool
	Advance(ctx context.Context, state *domain.State) (*domain.State, error)

	// Begin, Execute and Resolve split an async Advance so callers can
	// release locks while the action runs.
	Begin(ctx context.Context, state *domain.State) (*domain.State, error)
	Execute(ctx context.Context, state *domain.State) (map[string]any, error)
	Resolve(ctx context.Context, state *domain.State, attempt uint64, result map[string]any, actionErr error) (*domain.State, error)

	Retreat(ctx context.Context, state *domain.State) (*domain.State, error)
	JumpTo(ctx context.Context, state *domain.State, index int) (*domain.State, error)
	SubmitField(state *domain.State, key string, value any) *domain.State
	Reset(ctx context.Context, state *domain.State) *domain.State
	Cancel(ctx context.Context, state *domain.State) *domain.State
}
