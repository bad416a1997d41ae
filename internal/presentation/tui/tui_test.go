package tui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/novapay/internal/presentation/tui"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepper_Header(t *testing.T) {
	s := tui.NewPlainStepper()
	view := domain.View{
		Index:    1,
		Total:    4,
		Progress: 33,
		Labels:   []string{"Recipient", "Amount", "Review", "Success"},
	}

	out := s.Header(view)
	assert.Contains(t, out, "✓ Recipient › [2] Amount › 3 Review › 4 Success")
	assert.Contains(t, out, " 33%")
}

func TestStepper_Bar(t *testing.T) {
	s := tui.NewPlainStepper()
	assert.Equal(t, "█████░░░░░  50%", s.Bar(50, 10))
	assert.Equal(t, "░░░░░░░░░░   0%", s.Bar(-3, 10))
	assert.Equal(t, "██████████ 100%", s.Bar(180, 10))
}

func TestStepper_Status(t *testing.T) {
	s := tui.NewPlainStepper()
	assert.Equal(t, "✗ incorrect MPIN", s.Status(domain.View{Status: domain.StatusError, LastError: "incorrect MPIN"}))
	assert.Empty(t, s.Status(domain.View{Status: domain.StatusIdle}))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.GreaterOrEqual(t, strings.Count(buf.String(), "\n"), 6)
}

func TestRenderer(t *testing.T) {
	out, err := tui.PlainRenderer("**bold**")
	require.NoError(t, err)
	assert.Equal(t, "**bold**", out)

	render := tui.NewRenderer()
	out, err = render("Never share your **MPIN**.")
	require.NoError(t, err)
	assert.Contains(t, out, "MPIN")
}
