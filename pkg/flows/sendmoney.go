package flows

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/dsl"
)

// SendMoney is the flow name of the transfer wizard.
const SendMoney = "send-money"

// RecentPayees are offered on the recipient step.
var RecentPayees = []string{"Swiggy", "Rahul K.", "Mom", "Landlord", "BESCOM"}

// Accounts are the source accounts a transfer can debit.
var Accounts = []string{"acc_savings", "acc_current", "acc_wallet"}

// NewSendMoney builds the four step transfer wizard:
// recipient, amount, review (MPIN, async payment) and success.
func NewSendMoney(opts ...Option) (*domain.Definition, error) {
	o := newOptions(opts...)

	return dsl.New(SendMoney).
		Step("recipient").
		Label("Recipient").
		Describe("Pick a recent payee or enter a name, UPI ID or mobile number.").
		Choice("recipient", "Send to", RecentPayees...).
		Validate(validateRecipient).
		Step("amount").
		Label("Amount").
		Describe("How much do you want to send?").
		Number("amount", "Amount (INR)", "").
		Field("note", "Note").Optional().
		Choice("from_account", "From account", Accounts...).Optional().
		Validate(validateAmount).
		Step("review").
		Label("Review").
		Describe("**Never share your MPIN, OTP or password with anyone.** NovaPay staff will never ask for these details.").
		Secret("mpin", "Enter 6-digit MPIN to confirm").
		Validate(validateMPINFormat).
		Async(o.processPayment).
		Step("success").
		Label("Success").
		Describe("Transfer successful.").
		Terminal().
		Build()
}

func validateRecipient(p map[string]any) error {
	var form TransferForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	if strings.TrimSpace(form.Recipient) == "" {
		return fieldErr("recipient", "select a recipient")
	}
	return nil
}

func validateAmount(p map[string]any) error {
	var form TransferForm
	if err := Decode(p, &form); err != nil {
		return fieldErr("amount", "enter a number")
	}
	if !(form.Amount > 0) || math.IsInf(form.Amount, 0) {
		return fieldErr("amount", "must be greater than 0")
	}
	return nil
}

func validateMPINFormat(p map[string]any) error {
	var form TransferForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	if !digits(form.MPIN, 6) {
		return fieldErr("mpin", "must be 6 digits")
	}
	return nil
}

// processPayment simulates the payment gateway. On success it records the
// transaction reference and the settled amount.
func (o Options) processPayment(ctx context.Context, p map[string]any) error {
	if err := o.simulate(ctx); err != nil {
		return err
	}
	var form TransferForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	if form.MPIN != o.MockMPIN {
		return ErrInvalidMPIN
	}
	if form.FromAccount == "" {
		p["from_account"] = Accounts[0]
	}
	p["reference"] = o.NewReference("TXN")
	p["amount_settled"] = strconv.FormatFloat(form.Amount, 'f', 2, 64)
	return nil
}
