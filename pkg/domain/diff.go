package domain

import (
	"reflect"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	CurrentIndex *int    `json:"current_index,omitempty"`
	Status       *Status `json:"status,omitempty"`

	// Payload contains only changed, added or deleted keys.
	// For deletions, the key is present with a nil value.
	Payload map[string]any `json:"payload,omitempty"`

	// History carries the full visited list whenever it changed, since
	// backward moves truncate it.
	History []int `json:"history,omitempty"`

	LastError *string `json:"last_error,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *State) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.CurrentIndex != newState.CurrentIndex {
		idx := newState.CurrentIndex
		diff.CurrentIndex = &idx
	}
	if oldState == nil || oldState.Status != newState.Status {
		st := newState.Status
		diff.Status = &st
	}
	if oldState == nil || oldState.LastError != newState.LastError {
		if oldState != nil || newState.LastError != "" {
			msg := newState.LastError
			diff.LastError = &msg
		}
	}

	diff.Payload = diffPayload(oldState, newState)

	if oldState == nil || !reflect.DeepEqual(oldState.History, newState.History) {
		diff.History = append([]int(nil), newState.History...)
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffPayload(old *State, new *State) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new.Payload {
			delta[k] = v
		}
		if len(delta) == 0 {
			return nil
		}
		return delta
	}

	for k, newVal := range new.Payload {
		oldVal, exists := old.Payload[k]
		if !exists || !reflect.DeepEqual(oldVal, newVal) {
			delta[k] = newVal
		}
	}

	for k := range old.Payload {
		if _, exists := new.Payload[k]; !exists {
			delta[k] = nil
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.CurrentIndex == nil &&
		d.Status == nil &&
		d.LastError == nil &&
		len(d.Payload) == 0 &&
		len(d.History) == 0
}
