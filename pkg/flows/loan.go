package flows

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/novapay/pkg/domain"
	"github.com/aretw0/novapay/pkg/dsl"
)

// LoanApply is the flow name of the loan application wizard.
const LoanApply = "loan-apply"

// NewLoanApply builds the loan wizard: type, customize plan (no guard),
// documents (terms, async submission) and success.
func NewLoanApply(opts ...Option) (*domain.Definition, error) {
	o := newOptions(opts...)

	tenures := make([]string, len(Tenures))
	for i, t := range Tenures {
		tenures[i] = strconv.Itoa(t)
	}

	return dsl.New(LoanApply).
		Step("type").
		Label("Loan Type").
		Describe("Personal from 10.5%, Home from 8.5%, Car from 9.2%, Education from 9.0% p.a.").
		Choice("loan_type", "Loan type", LoanTypes()...).
		Validate(validateLoanType).
		Step("customize").
		Label("Customize Plan").
		Describe(fmt.Sprintf("Choose an amount between %d and %d and a tenure.", MinLoanAmount, MaxLoanAmount)).
		Number("amount", "Loan amount (INR)", strconv.Itoa(DefaultLoanAmount)).
		Choice("tenure", "Tenure (months)", tenures...).
		Step("documents").
		Label("Documents").
		Describe("Upload KYC documents and accept the loan agreement.").
		Confirm("terms", "I accept the loan terms and conditions").
		Validate(validateLoanTerms).
		Async(o.submitLoan).
		Step("success").
		Label("Submitted").
		Describe("Your application is under review.").
		Terminal().
		Build()
}

func validateLoanType(p map[string]any) error {
	var form LoanForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	if _, ok := RateFor(form.Type); !ok {
		return fieldErr("loan_type", "choose personal, home, car or education")
	}
	return nil
}

func validateLoanTerms(p map[string]any) error {
	var form LoanForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	if !form.Terms {
		return fieldErr("terms", "you must accept the terms")
	}
	return nil
}

// submitLoan simulates the loan origination backend. It settles the plan
// the customize step left open and records the quote.
func (o Options) submitLoan(ctx context.Context, p map[string]any) error {
	if err := o.simulate(ctx); err != nil {
		return err
	}
	var form LoanForm
	if err := Decode(p, &form); err != nil {
		return err
	}
	rate, ok := RateFor(form.Type)
	if !ok {
		return fmt.Errorf("unknown loan type %q", form.Type)
	}
	amount, tenure := ClampPlan(form.Amount, form.Tenure)

	p["amount"] = amount
	p["tenure"] = tenure
	p["rate"] = rate
	p["emi"] = EMI(amount, rate, tenure)
	p["total_interest"] = TotalInterest(amount, rate, tenure)
	p["application_id"] = o.NewReference("LN")
	return nil
}
