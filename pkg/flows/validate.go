package flows

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidMPIN is returned by the payment backend for a wrong MPIN.
	ErrInvalidMPIN = errors.New("incorrect MPIN")
	// ErrInvalidOTP is returned by the reset backend for a wrong code.
	ErrInvalidOTP = errors.New("invalid or expired OTP")
)

var (
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	panPattern    = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]$`)
	docPattern    = regexp.MustCompile(`^[A-Z0-9]{6,16}$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
)

// FieldError reports which payload key failed and why.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldErr(field, msg string) error {
	return &FieldError{Field: field, Message: msg}
}

func digits(s string, n int) bool {
	return len(s) == n && digitsPattern.MatchString(s)
}

func validEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

func checkPasswords(password, confirm string) error {
	if len(password) < 8 {
		return fieldErr("password", "min 8 characters")
	}
	if password != confirm {
		return fieldErr("confirm_password", "passwords don't match")
	}
	return nil
}
