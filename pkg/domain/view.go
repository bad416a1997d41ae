package domain

// View is the read model handed to hosts for rendering a step: what is
// active, how far along the flow is and which navigation is possible.
type View struct {
	Flow       string   `json:"flow"`
	SessionID  string   `json:"session_id"`
	Step       StepSpec `json:"step"`
	Index      int      `json:"index"`
	Total      int      `json:"total"`
	Progress   int      `json:"progress"` // 0..100
	Status     Status   `json:"status"`
	CanAdvance bool     `json:"can_advance"`
	CanRetreat bool     `json:"can_retreat"`
	MaxVisited int      `json:"max_visited"`
	LastError  string   `json:"last_error,omitempty"`

	// Labels of every step, in order, for progress indicators.
	Labels []string `json:"labels"`
}
