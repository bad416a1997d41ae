package flows

import (
	"context"
	"strings"

	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/dsl"
)

// Register is the flow name of the onboarding wizard.
const Register = "register"

// IDTypes are the identity documents accepted for KYC.
var IDTypes = []string{"Aadhaar", "PAN Card", "Passport", "Driving License"}

// States offered on the address step.
var States = []string{"Karnataka", "Maharashtra", "Delhi"}

// NewRegister builds the onboarding wizard: personal details, identity
// (async verification), address and success.
func NewRegister(opts ...Option) (*domain.Definition, error) {
	o := newOptions(opts...)

	return dsl.New(Register).
		Step("personal").
		Label("Personal Details").
		Describe("Create your NovaPay account.").
		Field("full_name", "Full name").
		Field("dob", "Date of birth (YYYY-MM-DD)").
		Field("email", "Email").
		Field("phone", "Mobile number").
		Secret("password", "Password").
		Secret("confirm_password", "Confirm password").
		Field("referral_code", "Referral code").Optional().
		Confirm("terms", "I agree to the terms and privacy policy").
		Validate(validatePersonal).
		Step("identity").
		Label("Identity").
		Describe("Verify your identity with a government ID.").
		Choice("id_type", "ID type", IDTypes...).
		Field("id_number", "ID number").
		Validate(validateIdentity).
		Async(o.verifyIdentity).
		Step("address").
		Label("Address").
		Describe("Where do you live?").
		Field("address_line1", "Address line 1").
		Field("address_line2", "Address line 2").Optional().
		Field("city", "City").
		Choice("state", "State", States...).Optional().
		Field("pincode", "Pincode").
		Choice("income", "Annual income", "Below 5L", "5L - 10L", "10L - 25L", "Above 25L").Optional().
		Choice("occupation", "Occupation", "Salaried", "Self Employed", "Student").Optional().
		Validate(validateAddress).
		Step("success").
		Label("Welcome").
		Describe("Your account is ready.").
		Terminal().
		Build()
}

func validatePersonal(p map[string]any) error {
	var form RegistrationForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	switch {
	case len(strings.TrimSpace(form.FullName)) < 2:
		return fieldErr("full_name", "name is required")
	case strings.TrimSpace(form.DOB) == "":
		return fieldErr("dob", "date of birth is required")
	case !validEmail(form.Email):
		return fieldErr("email", "invalid email address")
	case !digits(form.Phone, 10):
		return fieldErr("phone", "must be 10 digits")
	}
	if err := checkPasswords(form.Password, form.ConfirmPassword); err != nil {
		return err
	}
	if !form.Terms {
		return fieldErr("terms", "you must accept terms")
	}
	return nil
}

func validateIdentity(p map[string]any) error {
	var form RegistrationForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	number := strings.ToUpper(strings.ReplaceAll(form.IDNumber, " ", ""))
	switch form.IDType {
	case "Aadhaar":
		if !digits(number, 12) {
			return fieldErr("id_number", "Aadhaar must be 12 digits")
		}
	case "PAN Card":
		if !panPattern.MatchString(number) {
			return fieldErr("id_number", "PAN must look like ABCDE1234F")
		}
	case "Passport", "Driving License":
		if !docPattern.MatchString(number) {
			return fieldErr("id_number", "enter a valid document number")
		}
	default:
		return fieldErr("id_type", "choose an ID type")
	}
	return nil
}

func validateAddress(p map[string]any) error {
	var form RegistrationForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	switch {
	case strings.TrimSpace(form.AddressLine1) == "":
		return fieldErr("address_line1", "address is required")
	case strings.TrimSpace(form.City) == "":
		return fieldErr("city", "city is required")
	case !digits(form.Pincode, 6):
		return fieldErr("pincode", "must be 6 digits")
	}
	return nil
}

// verifyIdentity simulates the KYC provider.
func (o Options) verifyIdentity(ctx context.Context, p map[string]any) error {
	if err := o.simulate(ctx); err != nil {
		return err
	}
	p["kyc_status"] = "verified"
	p["kyc_reference"] = o.NewReference("KYC")
	return nil
}
