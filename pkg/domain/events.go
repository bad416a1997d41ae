package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepEnter    EventType = "step_enter"
	EventStepLeave    EventType = "step_leave"
	EventActionCall   EventType = "action_call"
	EventActionReturn EventType = "action_return"
	EventRejected     EventType = "rejected"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	Flow      string    `json:"flow"`
}

// StepEvent represents entry into or exit from a step.
type StepEvent struct {
	EventBase
	StepID string `json:"step_id"`
	Index  int    `json:"index"`
}

// ActionEvent represents an async action execution.
type ActionEvent struct {
	EventBase
	StepID   string        `json:"step_id"`
	Attempt  uint64        `json:"attempt"`
	Duration time.Duration `json:"duration,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
}

// RejectEvent is emitted when an operation is refused (validation, busy,
// boundary or navigation).
type RejectEvent struct {
	EventBase
	StepID string `json:"step_id"`
	Op     string `json:"op"`
	Err    error  `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStepEnter    func(context.Context, *StepEvent)
	OnStepLeave    func(context.Context, *StepEvent)
	OnActionCall   func(context.Context, *ActionEvent)
	OnActionReturn func(context.Context, *ActionEvent)
	OnRejected     func(context.Context, *RejectEvent)
}
