package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/novapay/pkg/domain"
	"github.com/muesli/termenv"
)

// Stepper renders the header shown above every wizard step.
type Stepper struct {
	profile termenv.Profile
}

// NewStepper detects the terminal color profile.
func NewStepper() *Stepper {
	return &Stepper{profile: termenv.ColorProfile()}
}

// NewPlainStepper never emits color codes.
func NewPlainStepper() *Stepper {
	return &Stepper{profile: termenv.Ascii}
}

// Header renders the step trail, e.g. "✓ Recipient › [2] Amount › 3 Review",
// followed by a progress bar.
func (s *Stepper) Header(view domain.View) string {
	var parts []string
	for i, label := range view.Labels {
		switch {
		case i < view.Index:
			parts = append(parts, s.color("✓ "+label, "#10b981"))
		case i == view.Index:
			parts = append(parts, s.profile.String(fmt.Sprintf("[%d] %s", i+1, label)).Bold().Foreground(s.profile.Color("#6366f1")).String())
		default:
			parts = append(parts, s.color(fmt.Sprintf("%d %s", i+1, label), "#9ca3af"))
		}
	}
	return strings.Join(parts, " › ") + "\n" + s.Bar(view.Progress, 30)
}

// Bar renders a progress bar width cells wide for percent (0-100).
func (s *Stepper) Bar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3d%%", s.color(bar, "#6366f1"), percent)
}

// Status renders a one-line status badge.
func (s *Stepper) Status(view domain.View) string {
	switch view.Status {
	case domain.StatusSubmitting:
		return s.color("⏳ processing…", "#f59e0b")
	case domain.StatusError:
		return s.color("✗ "+view.LastError, "#ef4444")
	case domain.StatusComplete:
		return s.color("✓ complete", "#10b981")
	default:
		return ""
	}
}

func (s *Stepper) color(text, hex string) string {
	return s.profile.String(text).Foreground(s.profile.Color(hex)).String()
}
