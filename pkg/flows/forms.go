package flows

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// TransferForm is the payload of the send-money flow.
type TransferForm struct {
	Recipient   string  `mapstructure:"recipient"`
	Amount      float64 `mapstructure:"amount"`
	Note        string  `mapstructure:"note"`
	FromAccount string  `mapstructure:"from_account"`
	MPIN        string  `mapstructure:"mpin"`
	Reference   string  `mapstructure:"reference"`
}

// LoanForm is the payload of the loan-apply flow.
type LoanForm struct {
	Type          string  `mapstructure:"loan_type"`
	Amount        float64 `mapstructure:"amount"`
	Tenure        int     `mapstructure:"tenure"`
	Terms         bool    `mapstructure:"terms"`
	ApplicationID string  `mapstructure:"application_id"`
}

// RegistrationForm is the payload of the register flow, KYC included.
type RegistrationForm struct {
	FullName        string `mapstructure:"full_name"`
	DOB             string `mapstructure:"dob"`
	Email           string `mapstructure:"email"`
	Phone           string `mapstructure:"phone"`
	Password        string `mapstructure:"password"`
	ConfirmPassword string `mapstructure:"confirm_password"`
	ReferralCode    string `mapstructure:"referral_code"`
	Terms           bool   `mapstructure:"terms"`

	IDType   string `mapstructure:"id_type"`
	IDNumber string `mapstructure:"id_number"`

	AddressLine1 string `mapstructure:"address_line1"`
	AddressLine2 string `mapstructure:"address_line2"`
	City         string `mapstructure:"city"`
	State        string `mapstructure:"state"`
	Pincode      string `mapstructure:"pincode"`
	Income       string `mapstructure:"income"`
	Occupation   string `mapstructure:"occupation"`
}

// ResetForm is the payload of the forgot-password flow.
type ResetForm struct {
	Email           string `mapstructure:"email"`
	OTP             string `mapstructure:"otp"`
	Password        string `mapstructure:"password"`
	ConfirmPassword string `mapstructure:"confirm_password"`
}

// Decode reads a wizard payload into one of the typed forms. Inputs arrive
// as strings from terminals and as JSON numbers from HTTP, so decoding is
// weakly typed: "500" and 500.0 both fill a float64.
func Decode(payload map[string]any, form any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           form,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(payload); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}
