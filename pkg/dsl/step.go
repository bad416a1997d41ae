package dsl

import "github.com/aretw0/novapay/pkg/domain"

// StepBuilder provides a fluent API for configuring a step.
type StepBuilder struct {
	step    domain.StepSpec
	builder *Builder
}

// Label sets the human-readable title of the step.
func (s *StepBuilder) Label(label string) *StepBuilder {
	s.step.Label = label
	return s
}

// Describe sets the longer description (markdown allowed).
func (s *StepBuilder) Describe(text string) *StepBuilder {
	s.step.Description = text
	return s
}

// Field declares a text input collected on this step.
func (s *StepBuilder) Field(key, prompt string) *StepBuilder {
	return s.input(domain.Field{Key: key, Prompt: prompt, Kind: domain.FieldText})
}

// Number declares a numeric input.
func (s *StepBuilder) Number(key, prompt, def string) *StepBuilder {
	return s.input(domain.Field{Key: key, Prompt: prompt, Kind: domain.FieldNumber, Default: def})
}

// Secret declares an input that hosts must not echo (MPIN, OTP, password).
func (s *StepBuilder) Secret(key, prompt string) *StepBuilder {
	return s.input(domain.Field{Key: key, Prompt: prompt, Kind: domain.FieldSecret})
}

// Choice declares an input restricted to options.
func (s *StepBuilder) Choice(key, prompt string, options ...string) *StepBuilder {
	return s.input(domain.Field{Key: key, Prompt: prompt, Kind: domain.FieldChoice, Options: options})
}

// Confirm declares a yes/no input.
func (s *StepBuilder) Confirm(key, prompt string) *StepBuilder {
	return s.input(domain.Field{Key: key, Prompt: prompt, Kind: domain.FieldBool})
}

// Optional marks the most recently declared field as optional.
func (s *StepBuilder) Optional() *StepBuilder {
	if n := len(s.step.Fields); n > 0 {
		s.step.Fields[n-1].Optional = true
	}
	return s
}

// Validate sets the guard that must pass before leaving the step.
func (s *StepBuilder) Validate(v domain.Validator) *StepBuilder {
	s.step.Validate = v
	return s
}

// Async marks the step as requiring action to succeed before advancing.
func (s *StepBuilder) Async(action domain.Action) *StepBuilder {
	s.step.Async = true
	s.step.Action = action
	return s
}

// Terminal marks the step as the end of the flow.
func (s *StepBuilder) Terminal() *StepBuilder {
	s.step.Terminal = true
	return s
}

// Step continues the chain with the next step.
func (s *StepBuilder) Step(id string) *StepBuilder {
	return s.builder.Step(id)
}

// Build finishes the chain and compiles the whole wizard.
func (s *StepBuilder) Build() (*domain.Definition, error) {
	return s.builder.Build()
}

// MustBuild is like Build but panics on error.
func (s *StepBuilder) MustBuild() *domain.Definition {
	return s.builder.MustBuild()
}

func (s *StepBuilder) input(f domain.Field) *StepBuilder {
	s.step.Fields = append(s.step.Fields, f)
	return s
}
