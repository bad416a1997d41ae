package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx context.Context, payload map[string]any) error { return nil }

func TestNewDefinition(t *testing.T) {
	tests := []struct {
		name    string
		steps   []StepSpec
		wantErr bool
	}{
		{"empty", nil, true},
		{"missing id", []StepSpec{{Label: "x"}}, true},
		{"duplicate id", []StepSpec{{ID: "a"}, {ID: "a"}}, true},
		{"async without action", []StepSpec{{ID: "a", Async: true}}, true},
		{"terminal not last", []StepSpec{{ID: "a", Terminal: true}, {ID: "b"}}, true},
		{"valid", []StepSpec{{ID: "a"}, {ID: "b", Async: true, Action: noop}, {ID: "c", Terminal: true}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := NewDefinition("flow", tt.steps...)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDefinition)
				assert.Nil(t, def)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.steps), def.Len())
		})
	}
}

func TestDefinition_Immutable(t *testing.T) {
	steps := []StepSpec{{ID: "a", Label: "A"}, {ID: "b", Label: "B"}}
	def, err := NewDefinition("flow", steps...)
	require.NoError(t, err)

	steps[0].Label = "mutated"
	got := def.Steps()
	got[1].Label = "mutated too"

	a, _ := def.Step(0)
	b, _ := def.Step(1)
	assert.Equal(t, "A", a.Label)
	assert.Equal(t, "B", b.Label)

	idx, ok := def.IndexOf("b")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = def.Step(5)
	assert.False(t, ok)
}

func TestDefinition_WithLabels(t *testing.T) {
	def, err := NewDefinition("flow", StepSpec{ID: "a", Label: "A"}, StepSpec{ID: "b", Label: "B"})
	require.NoError(t, err)

	relabeled := def.WithLabels(map[string]string{"a": "First", "zzz": "ignored"}, map[string]string{"b": "second step"})

	a, _ := relabeled.Step(0)
	b, _ := relabeled.Step(1)
	assert.Equal(t, "First", a.Label)
	assert.Equal(t, "second step", b.Description)

	orig, _ := def.Step(0)
	assert.Equal(t, "A", orig.Label)
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("amount must be positive")

	var err error = &ValidationError{StepID: "amount", Cause: cause}
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsRetryable(err))

	err = &BusyError{StepID: "review"}
	assert.ErrorIs(t, err, ErrBusy)
	assert.True(t, IsRetryable(err))

	err = &AsyncStepError{StepID: "otp", Cause: cause}
	assert.ErrorIs(t, err, ErrAsyncStep)
	assert.True(t, IsRetryable(err))

	err = &BoundaryError{Op: "retreat", Index: 0}
	assert.ErrorIs(t, err, ErrBoundary)
	assert.False(t, IsRetryable(err))

	err = &NavigationError{Target: 3, Max: 1}
	assert.ErrorIs(t, err, ErrNavigation)
	assert.False(t, IsRetryable(err))

	var navErr *NavigationError
	assert.True(t, errors.As(err, &navErr))
	assert.Equal(t, 3, navErr.Target)
}

func TestState_Clone(t *testing.T) {
	s := NewState("s1", "send-money")
	s.Payload["recipient"] = "Rahul"

	c := s.Clone()
	c.Payload["recipient"] = "Mom"
	c.History = append(c.History, 1)

	assert.Equal(t, "Rahul", s.Payload["recipient"])
	assert.Equal(t, []int{0}, s.History)
	assert.Equal(t, 1, c.MaxVisited())
}
