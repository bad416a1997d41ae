package domain

import (
	"context"
	"fmt"
)

// Validator inspects the accumulated payload and returns a non-nil error
// describing why the active step cannot be left yet.
type Validator func(payload map[string]any) error

// Action is the external side-effect executed by an async step
// (e.g. "verify OTP", "process payment"). It may write results back into
// the payload it receives; those writes are merged on success only.
type Action func(ctx context.Context, payload map[string]any) error

// StepSpec describes one step of a wizard.
type StepSpec struct {
	ID          string `json:"id" yaml:"id"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Fields lists the payload keys collected on this step. Used by hosts
	// (CLI, HTTP clients) to know what to prompt for.
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Async marks the step as requiring the Action to succeed before the
	// wizard moves past it.
	Async    bool `json:"async,omitempty" yaml:"async,omitempty"`
	Terminal bool `json:"terminal,omitempty" yaml:"terminal,omitempty"`

	Validate Validator `json:"-" yaml:"-"`
	Action   Action    `json:"-" yaml:"-"`
}

// FieldKind hints how a host should collect a field.
type FieldKind string

const (
	FieldText   FieldKind = "text"
	FieldNumber FieldKind = "number"
	FieldSecret FieldKind = "secret"
	FieldChoice FieldKind = "choice"
	FieldBool   FieldKind = "bool"
)

// Field describes one input collected by a step.
type Field struct {
	Key      string    `json:"key" yaml:"key"`
	Prompt   string    `json:"prompt" yaml:"prompt"`
	Kind     FieldKind `json:"kind" yaml:"kind"`
	Options  []string  `json:"options,omitempty" yaml:"options,omitempty"`
	Default  string    `json:"default,omitempty" yaml:"default,omitempty"`
	Optional bool      `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// HasValidator reports whether the step gates advancement.
func (s StepSpec) HasValidator() bool {
	return s.Validate != nil
}

// Definition is the ordered sequence of steps of one wizard.
// It is immutable once constructed: accessors hand out copies.
type Definition struct {
	name  string
	steps []StepSpec
	index map[string]int
}

// NewDefinition validates the steps and builds an immutable Definition.
func NewDefinition(name string, steps ...StepSpec) (*Definition, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("%w: %s has no steps", ErrInvalidDefinition, name)
	}

	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: %s step %d missing id", ErrInvalidDefinition, name, i)
		}
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s duplicate step id %q", ErrInvalidDefinition, name, s.ID)
		}
		if s.Async && s.Action == nil {
			return nil, fmt.Errorf("%w: %s async step %q has no action", ErrInvalidDefinition, name, s.ID)
		}
		if s.Terminal && i != len(steps)-1 {
			return nil, fmt.Errorf("%w: %s terminal step %q must be last", ErrInvalidDefinition, name, s.ID)
		}
		index[s.ID] = i
	}

	cp := make([]StepSpec, len(steps))
	copy(cp, steps)
	for i := range cp {
		cp[i].Fields = append([]Field(nil), steps[i].Fields...)
	}

	return &Definition{name: name, steps: cp, index: index}, nil
}

// Name returns the flow name.
func (d *Definition) Name() string { return d.name }

// Len returns the number of steps.
func (d *Definition) Len() int { return len(d.steps) }

// Step returns the step at index i.
func (d *Definition) Step(i int) (StepSpec, bool) {
	if i < 0 || i >= len(d.steps) {
		return StepSpec{}, false
	}
	return d.steps[i], true
}

// IndexOf returns the position of the step with the given id.
func (d *Definition) IndexOf(id string) (int, bool) {
	i, ok := d.index[id]
	return i, ok
}

// Steps returns a copy of the step list.
func (d *Definition) Steps() []StepSpec {
	out := make([]StepSpec, len(d.steps))
	copy(out, d.steps)
	return out
}

// WithLabels returns a copy of the definition with labels and descriptions
// replaced for the given step ids. Unknown ids are ignored.
func (d *Definition) WithLabels(labels map[string]string, descriptions map[string]string) *Definition {
	steps := d.Steps()
	for i := range steps {
		if l, ok := labels[steps[i].ID]; ok && l != "" {
			steps[i].Label = l
		}
		if desc, ok := descriptions[steps[i].ID]; ok && desc != "" {
			steps[i].Description = desc
		}
	}
	index := make(map[string]int, len(d.index))
	for k, v := range d.index {
		index[k] = v
	}
	return &Definition{name: d.name, steps: steps, index: index}
}
