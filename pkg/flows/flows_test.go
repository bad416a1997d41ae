package flows_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aretw0/novapay/internal/runtime"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/flows"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRef(prefix string) string { return prefix + "-0001" }

func engineFor(t *testing.T, name string) *runtime.Engine {
	t.Helper()
	reg, err := flows.Builtin(flows.WithReferenceFunc(fixedRef))
	require.NoError(t, err)
	def, err := reg.Get(name)
	require.NoError(t, err)
	return runtime.NewEngine(def)
}

func TestBuiltin(t *testing.T) {
	reg, err := flows.Builtin()
	require.NoError(t, err)
	assert.Equal(t, []string{"forgot-password", "loan-apply", "register", "send-money"}, reg.Names())
	assert.Len(t, reg.Definitions(), 4)

	_, err = reg.Get("open-fd")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestSendMoney_Scenario(t *testing.T) {
	engine := engineFor(t, flows.SendMoney)
	ctx := context.Background()

	state := engine.Start(ctx, "s1")
	assert.Equal(t, 0, state.CurrentIndex)

	state = engine.SubmitField(state, "recipient", "Rahul")
	state, err := engine.Advance(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentIndex)

	state = engine.SubmitField(state, "amount", "500")
	state, err = engine.Advance(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentIndex)

	state = engine.SubmitField(state, "mpin", "123456")
	submitting, err := engine.Begin(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSubmitting, submitting.Status)

	result, err := engine.Execute(ctx, submitting)
	require.NoError(t, err)
	done, err := engine.Resolve(ctx, submitting, submitting.Attempt, result, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, done.CurrentIndex)
	assert.Equal(t, domain.StatusComplete, done.Status)
	assert.Equal(t, "TXN-0001", done.Payload["reference"])
	assert.Equal(t, "500.00", done.Payload["amount_settled"])
	assert.Equal(t, "acc_savings", done.Payload["from_account"])
}

func TestSendMoney_Guards(t *testing.T) {
	engine := engineFor(t, flows.SendMoney)
	ctx := context.Background()

	state := engine.Start(ctx, "s1")
	assert.False(t, engine.CanAdvance(state))

	state, err := engine.Advance(ctx, engine.SubmitField(state, "recipient", "Mom"))
	require.NoError(t, err)

	for _, amount := range []any{"0", "-5", "abc", 0.0, "NaN", "+Inf", "-Inf", math.NaN(), math.Inf(1)} {
		_, err := engine.Advance(ctx, engine.SubmitField(state, "amount", amount))
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr, "amount %v", amount)
		assert.Equal(t, "amount", verr.StepID)
	}

	state, err = engine.Advance(ctx, engine.SubmitField(state, "amount", 1250.5))
	require.NoError(t, err)

	_, err = engine.Advance(ctx, engine.SubmitField(state, "mpin", "12345"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	failed, err := engine.Advance(ctx, engine.SubmitField(state, "mpin", "654321"))
	assert.ErrorIs(t, err, flows.ErrInvalidMPIN)
	assert.Equal(t, domain.StatusError, failed.Status)
	assert.Equal(t, 2, failed.CurrentIndex)
}

func TestForgotPassword_OTPFailureThenRetry(t *testing.T) {
	engine := engineFor(t, flows.ForgotPassword)
	ctx := context.Background()

	state := engine.SubmitField(engine.Start(ctx, "s1"), "email", "asha@example.com")
	state, err := engine.Advance(ctx, state)
	require.NoError(t, err)
	require.Equal(t, 1, state.CurrentIndex)
	assert.Equal(t, "a***@example.com", state.Payload["otp_sent_to"])

	state = engine.SubmitField(state, "otp", "000000")
	state, err = engine.Advance(ctx, state)
	var aerr *domain.AsyncStepError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "otp", aerr.StepID)
	assert.True(t, errors.Is(err, flows.ErrInvalidOTP))
	assert.Equal(t, domain.StatusError, state.Status)
	assert.Equal(t, 1, state.CurrentIndex)

	state = engine.SubmitField(state, "otp", "123456")
	state, err = engine.Advance(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentIndex)
	assert.Equal(t, domain.StatusIdle, state.Status)

	state = engine.SubmitField(state, "password", "Secret#2026")
	state = engine.SubmitField(state, "confirm_password", "Secret#2025")
	_, err = engine.Advance(ctx, state)
	assert.ErrorIs(t, err, domain.ErrValidation)

	state = engine.SubmitField(state, "confirm_password", "Secret#2026")
	state, err = engine.Advance(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, state.Status)
	assert.Equal(t, 4, state.Payload["password_strength"])
}

func TestLoanApply_CustomizeHasNoGuard(t *testing.T) {
	engine := engineFor(t, flows.LoanApply)
	ctx := context.Background()

	state := engine.SubmitField(engine.Start(ctx, "s1"), "loan_type", "personal")
	state, err := engine.Advance(ctx, state)
	require.NoError(t, err)
	require.Equal(t, 1, state.CurrentIndex)

	for _, amount := range []any{nil, 1, 50000, 1000000, "999999999"} {
		candidate := engine.SubmitField(state, "amount", amount)
		assert.True(t, engine.CanAdvance(candidate), "amount %v", amount)
		next, err := engine.Advance(ctx, candidate)
		require.NoError(t, err)
		assert.Equal(t, 2, next.CurrentIndex)
	}

	state, err = engine.Advance(ctx, state)
	require.NoError(t, err)

	_, err = engine.Advance(ctx, state)
	assert.ErrorIs(t, err, domain.ErrValidation, "terms must be accepted")

	state, err = engine.Advance(ctx, engine.SubmitField(state, "terms", true))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, state.Status)
	assert.Equal(t, "LN-0001", state.Payload["application_id"])
	assert.Equal(t, float64(23188), state.Payload["emi"])
	assert.Equal(t, 24, state.Payload["tenure"])
}

func TestLoanApply_UnknownType(t *testing.T) {
	engine := engineFor(t, flows.LoanApply)
	state := engine.SubmitField(engine.Start(context.Background(), "s1"), "loan_type", "yacht")
	assert.False(t, engine.CanAdvance(state))
}

func TestRegister_FullJourney(t *testing.T) {
	engine := engineFor(t, flows.Register)
	ctx := context.Background()

	state := engine.Start(ctx, "s1")
	personal := map[string]any{
		"full_name":        "Asha Rao",
		"dob":              "1994-03-12",
		"email":            "asha@example.com",
		"phone":            "9876543210",
		"password":         "Str0ng!pass",
		"confirm_password": "Str0ng!pass",
		"terms":            true,
	}
	for k, v := range personal {
		state = engine.SubmitField(state, k, v)
	}

	bad := engine.SubmitField(state, "phone", "12345")
	_, err := engine.Advance(ctx, bad)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	var ferr *flows.FieldError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "phone", ferr.Field)

	state, err = engine.Advance(ctx, state)
	require.NoError(t, err)
	require.Equal(t, 1, state.CurrentIndex)

	state = engine.SubmitField(state, "id_type", "PAN Card")
	state = engine.SubmitField(state, "id_number", "abcde1234f")
	state, err = engine.Advance(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "verified", state.Payload["kyc_status"])

	state = engine.SubmitField(state, "address_line1", "12 MG Road")
	state = engine.SubmitField(state, "city", "Bengaluru")
	state = engine.SubmitField(state, "pincode", "56001")
	_, err = engine.Advance(ctx, state)
	assert.ErrorIs(t, err, domain.ErrValidation)

	state = engine.SubmitField(state, "pincode", "560001")
	state, err = engine.Advance(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, state.Status)

	// Going back keeps everything entered so far.
	back, err := engine.Retreat(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", back.Payload["full_name"])
	assert.Equal(t, "560001", back.Payload["pincode"])
}

func TestRegister_IdentityNumbers(t *testing.T) {
	engine := engineFor(t, flows.Register)
	def := engine.Definition()
	step, ok := def.Step(1)
	require.True(t, ok)

	tests := []struct {
		idType, number string
		ok             bool
	}{
		{"Aadhaar", "1234 5678 9012", true},
		{"Aadhaar", "12345", false},
		{"PAN Card", "ABCDE1234F", true},
		{"PAN Card", "1234ABCDEF", false},
		{"Passport", "K1234567", true},
		{"Driving License", "", false},
		{"Voter ID", "ABC123456", false},
	}
	for _, tt := range tests {
		err := step.Validate(map[string]any{"id_type": tt.idType, "id_number": tt.number})
		assert.Equal(t, tt.ok, err == nil, "%s %q: %v", tt.idType, tt.number, err)
	}
}

func TestAsyncActionsHonourCancellation(t *testing.T) {
	reg, err := flows.Builtin(flows.WithLatency(time.Hour))
	require.NoError(t, err)
	def, err := reg.Get(flows.ForgotPassword)
	require.NoError(t, err)
	engine := runtime.NewEngine(def)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	state := engine.SubmitField(engine.Start(context.Background(), "s1"), "email", "asha@example.com")
	state, err = engine.Advance(ctx, state)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, domain.StatusError, state.Status)
}
