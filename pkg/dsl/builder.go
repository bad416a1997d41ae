package dsl

import (
	"fmt"

	"github.com/aretw0/novapay/pkg/domain"
)

// Builder manages the wizard construction. Steps keep declaration order.
type Builder struct {
	name  string
	steps []*StepBuilder
	ids   map[string]*StepBuilder
}

// New creates a new wizard builder.
func New(name string) *Builder {
	return &Builder{
		name: name,
		ids:  make(map[string]*StepBuilder),
	}
}

// Step appends a new step to the wizard.
// If the step already exists, it returns the existing builder.
func (b *Builder) Step(id string) *StepBuilder {
	if sb, ok := b.ids[id]; ok {
		return sb
	}
	sb := &StepBuilder{
		step:    domain.StepSpec{ID: id, Label: id},
		builder: b,
	}
	b.steps = append(b.steps, sb)
	b.ids[id] = sb
	return sb
}

// Build compiles the steps into an immutable definition.
func (b *Builder) Build() (*domain.Definition, error) {
	steps := make([]domain.StepSpec, 0, len(b.steps))
	for _, sb := range b.steps {
		steps = append(steps, sb.step)
	}

	def, err := domain.NewDefinition(b.name, steps...)
	if err != nil {
		return nil, fmt.Errorf("failed to build wizard %s: %w", b.name, err)
	}
	return def, nil
}

// MustBuild is like Build but panics on error. Intended for package-level
// definitions whose shape is fixed at compile time.
func (b *Builder) MustBuild() *domain.Definition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}
