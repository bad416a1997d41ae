package flows

import (
	"context"
	"strings"

	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/dsl"
)

// ForgotPassword is the flow name of the password reset wizard.
const ForgotPassword = "forgot-password"

// NewForgotPassword builds the reset wizard: email (async OTP dispatch),
// OTP (async verification), new password (async update) and success.
func NewForgotPassword(opts ...Option) (*domain.Definition, error) {
	o := newOptions(opts...)

	return dsl.New(ForgotPassword).
		Step("email").
		Label("Reset Password").
		Describe("Enter your email to receive a verification code.").
		Field("email", "Email").
		Validate(validateResetEmail).
		Async(o.sendOTP).
		Step("otp").
		Label("Verify OTP").
		Describe("Enter the 6-digit code sent to your email.").
		Secret("otp", "OTP").
		Validate(validateOTPFormat).
		Async(o.verifyOTP).
		Step("new_password").
		Label("Set New Password").
		Describe("Create a strong password for your account.").
		Secret("password", "New password").
		Secret("confirm_password", "Confirm password").
		Validate(validateNewPassword).
		Async(o.updatePassword).
		Step("success").
		Label("Password Reset").
		Describe("Your password has been successfully updated.").
		Terminal().
		Build()
}

func validateResetEmail(p map[string]any) error {
	var form ResetForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	if !validEmail(form.Email) {
		return fieldErr("email", "invalid email address")
	}
	return nil
}

func validateOTPFormat(p map[string]any) error {
	var form ResetForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	if !digits(form.OTP, 6) {
		return fieldErr("otp", "must be 6 digits")
	}
	return nil
}

func validateNewPassword(p map[string]any) error {
	var form ResetForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	return checkPasswords(form.Password, form.ConfirmPassword)
}

func (o Options) sendOTP(ctx context.Context, p map[string]any) error {
	if err := o.simulate(ctx); err != nil {
		return err
	}
	var form ResetForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	p["otp_sent_to"] = maskEmail(form.Email)
	return nil
}

func (o Options) verifyOTP(ctx context.Context, p map[string]any) error {
	if err := o.simulate(ctx); err != nil {
		return err
	}
	var form ResetForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	if form.OTP != o.MockOTP {
		return ErrInvalidOTP
	}
	p["otp_verified"] = true
	return nil
}

func (o Options) updatePassword(ctx context.Context, p map[string]any) error {
	if err := o.simulate(ctx); err != nil {
		return err
	}
	var form ResetForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	p["password_strength"] = PasswordStrength(form.Password)
	return nil
}

// maskEmail keeps the first character of the local part: a***@example.com.
func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
