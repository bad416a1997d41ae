package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/novapay/internal/runtime"
	"github.com/aretw0/novapay/pkg/adapters/memory"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/flows"
	"github.com/aretw0/novapay/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(t *testing.T, script string) (*Runner, *bytes.Buffer) {
	t.Helper()
	reg, err := flows.Builtin(flows.WithReferenceFunc(func(prefix string) string { return prefix + "-0001" }))
	require.NoError(t, err)

	mgr := session.NewManager(memory.NewStore())
	for _, def := range reg.Definitions() {
		mgr.Register(runtime.NewEngine(def))
	}

	var out bytes.Buffer
	r := NewRunner(mgr, WithIO(strings.NewReader(script), &out), WithPlainOutput())
	return r, &out
}

func TestRunner_SendMoney(t *testing.T) {
	script := strings.Join([]string{
		"2",      // recipient: Rahul K.
		"500",    // amount
		"",       // note (optional)
		"",       // from account (optional)
		"000000", // wrong MPIN
		"123456", // retry
	}, "\n") + "\n"
	r, out := newTestRunner(t, script)

	state, err := r.Start(context.Background(), flows.SendMoney)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, state.Status)
	assert.Equal(t, 3, state.CurrentIndex)
	assert.Equal(t, "Rahul K.", state.Payload["recipient"])
	assert.Equal(t, 500.0, state.Payload["amount"])
	assert.Equal(t, "TXN-0001", state.Payload["reference"])

	text := out.String()
	assert.Contains(t, text, "incorrect MPIN (try again)")
	assert.Contains(t, text, "[4] Success")
	assert.Contains(t, text, "***")
	assert.NotContains(t, text, "mpin             123456")
}

func TestRunner_ValidationReprompts(t *testing.T) {
	script := strings.Join([]string{
		"", // empty recipient
		"Mom",
		"abc", // not a number
		"0",   // rejected by the step
		"", "",
		"250",
		"", "",
		":quit",
	}, "\n") + "\n"
	r, out := newTestRunner(t, script)

	state, err := r.Start(context.Background(), flows.SendMoney)
	assert.ErrorIs(t, err, ErrQuit)
	require.NotNil(t, state)
	assert.Equal(t, 2, state.CurrentIndex)
	assert.Equal(t, 250.0, state.Payload["amount"])

	text := out.String()
	assert.Contains(t, text, "select a recipient")
	assert.Contains(t, text, `"abc" is not a number`)
	assert.Contains(t, text, "must be greater than 0")
}

func TestRunner_Commands(t *testing.T) {
	script := strings.Join([]string{
		"home",    // loan type
		"",        // amount keeps the default
		":back",   // back to the type step
		"",        // keep home
		"",        // keep amount
		":jump 4", // never visited
		":jump 1",
		"",
		"",
		":reset",
		":quit",
	}, "\n") + "\n"
	r, out := newTestRunner(t, script)

	state, err := r.Start(context.Background(), flows.LoanApply)
	assert.ErrorIs(t, err, ErrQuit)
	require.NotNil(t, state)
	assert.Equal(t, 0, state.CurrentIndex)
	assert.Empty(t, state.Payload)

	assert.Contains(t, out.String(), "jump to 3")
}

func TestRunner_CancelUnsticksResumedSession(t *testing.T) {
	script := strings.Join([]string{
		"123456",  // rejected: still submitting
		":cancel", // abandon the stale attempt
		"123456",
	}, "\n") + "\n"
	r, out := newTestRunner(t, script)
	ctx := context.Background()

	state, err := r.sessions.Start(ctx, flows.SendMoney)
	require.NoError(t, err)
	id := state.SessionID
	_, err = r.sessions.SubmitFields(ctx, id, map[string]any{"recipient": "Mom", "amount": 500})
	require.NoError(t, err)
	for range 2 {
		_, err = r.sessions.Advance(ctx, id)
		require.NoError(t, err)
	}

	// A process that crashed mid-payment leaves the session submitting.
	stuck, err := r.sessions.Load(ctx, id)
	require.NoError(t, err)
	stuck.Status = domain.StatusSubmitting
	stuck.Attempt++
	require.NoError(t, r.sessions.Store().Save(ctx, id, stuck))

	state, err = r.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, state.Status)
	assert.Equal(t, "TXN-0001", state.Payload["reference"])
	assert.Contains(t, out.String(), "type :cancel to abandon it")
	assert.Contains(t, out.String(), ":cancel, :quit")
}

func TestRunner_EOFQuits(t *testing.T) {
	r, _ := newTestRunner(t, "")
	state, err := r.Start(context.Background(), flows.ForgotPassword)
	assert.ErrorIs(t, err, ErrQuit)
	require.NotNil(t, state)
	assert.Equal(t, 0, state.CurrentIndex)
}

func TestRunner_UnknownCommand(t *testing.T) {
	r, out := newTestRunner(t, ":dance\n:q\n")
	_, err := r.Start(context.Background(), flows.Register)
	assert.ErrorIs(t, err, ErrQuit)
	assert.Contains(t, out.String(), "unknown command :dance")
}

func TestParseValue(t *testing.T) {
	v, err := parseValue(domain.Field{Kind: domain.FieldNumber}, "1,50,000")
	require.NoError(t, err)
	assert.Equal(t, 150000.0, v)

	v, err = parseValue(domain.Field{Kind: domain.FieldBool}, "Yes")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = parseValue(domain.Field{Kind: domain.FieldBool}, "maybe")
	assert.ErrorIs(t, err, errBadAnswer)

	v, err = parseValue(domain.Field{Kind: domain.FieldChoice, Options: []string{"a", "b"}}, "2")
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	v, err = parseValue(domain.Field{Kind: domain.FieldChoice, Options: []string{"a", "b"}}, "7")
	require.NoError(t, err)
	assert.Equal(t, "7", v)
}
