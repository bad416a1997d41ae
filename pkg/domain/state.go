package domain

import (
	"time"
)

// Status defines the current mode of a wizard session.
type Status string

const (
	StatusIdle       Status = "idle"       // Waiting for user input
	StatusValidating Status = "validating" // Guard of the active step is running
	StatusSubmitting Status = "submitting" // Async action in flight
	StatusError      Status = "error"      // Last async action failed; retryable
	StatusComplete   Status = "complete"   // Terminal step reached
)

// State represents the current snapshot of a wizard session.
type State struct {
	SessionID string `json:"session_id" yaml:"session_id"`
	Flow      string `json:"flow" yaml:"flow"`

	// CurrentIndex is the 0-based position of the active step.
	CurrentIndex int `json:"current_index" yaml:"current_index"`

	Status Status `json:"status" yaml:"status"`

	// Payload accumulates field values across steps.
	Payload map[string]any `json:"payload" yaml:"payload"`

	// History holds visited indices. Append-only while moving forward,
	// truncated on backward moves.
	History []int `json:"history" yaml:"history"`

	// Attempt identifies the in-flight async transition. Results carrying
	// a stale attempt are discarded.
	Attempt uint64 `json:"attempt" yaml:"attempt"`

	// LastError is the message of the last failed async action, for display.
	LastError string `json:"last_error,omitempty" yaml:"last_error,omitempty"`

	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewState creates a clean state at the first step of a flow.
func NewState(sessionID, flow string) *State {
	return &State{
		SessionID:    sessionID,
		Flow:         flow,
		CurrentIndex: 0,
		Status:       StatusIdle,
		Payload:      make(map[string]any),
		History:      []int{0},
		UpdatedAt:    time.Now().UTC(),
	}
}

// Clone returns a copy safe for mutation.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := *s
	next.Payload = make(map[string]any, len(s.Payload))
	for k, v := range s.Payload {
		next.Payload[k] = v
	}
	next.History = append([]int(nil), s.History...)
	return &next
}

// MaxVisited returns the highest index ever reached in the current history.
func (s *State) MaxVisited() int {
	max := 0
	for _, i := range s.History {
		if i > max {
			max = i
		}
	}
	return max
}

// Busy reports whether an async transition is in flight.
func (s *State) Busy() bool {
	return s.Status == StatusSubmitting
}
