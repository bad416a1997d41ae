package flows

import (
	"math"
	"regexp"
)

// Loan plan bounds offered by the customize step.
const (
	MinLoanAmount     = 50000
	MaxLoanAmount     = 1000000
	DefaultLoanAmount = 500000
	DefaultTenure     = 24
)

// Tenures lists the selectable loan tenures in months.
var Tenures = []int{12, 24, 36, 48, 60}

// LoanRates maps loan types to their starting annual rate in percent.
var LoanRates = map[string]float64{
	"personal":  10.5,
	"home":      8.5,
	"car":       9.2,
	"education": 9.0,
}

// LoanTypes returns the loan type IDs in display order.
func LoanTypes() []string {
	return []string{"personal", "home", "car", "education"}
}

// RateFor returns the annual rate for a loan type and whether it is known.
func RateFor(loanType string) (float64, bool) {
	r, ok := LoanRates[loanType]
	return r, ok
}

// EMI returns the rounded equated monthly instalment for principal borrowed
// at annualRate percent over months.
func EMI(principal, annualRate float64, months int) float64 {
	if months <= 0 || principal <= 0 {
		return 0
	}
	r := annualRate / 1200
	if r == 0 {
		return math.Round(principal / float64(months))
	}
	f := math.Pow(1+r, float64(months))
	return math.Round(principal * r * f / (f - 1))
}

// TotalInterest is what the borrower pays on top of principal.
func TotalInterest(principal, annualRate float64, months int) float64 {
	return EMI(principal, annualRate, months)*float64(months) - principal
}

// ClampPlan bounds the amount to the offered range and snaps tenure to the
// closest selectable value.
func ClampPlan(amount float64, tenure int) (float64, int) {
	switch {
	case amount == 0 || math.IsNaN(amount):
		amount = DefaultLoanAmount
	case amount < MinLoanAmount:
		amount = MinLoanAmount
	case amount > MaxLoanAmount:
		amount = MaxLoanAmount
	}
	if tenure == 0 {
		return amount, DefaultTenure
	}
	best := Tenures[0]
	for _, t := range Tenures {
		if abs(t-tenure) < abs(best-tenure) {
			best = t
		}
	}
	return amount, best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

var (
	upperPattern  = regexp.MustCompile(`[A-Z]`)
	digitPattern  = regexp.MustCompile(`[0-9]`)
	symbolPattern = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// PasswordStrength scores a password from 0 to 4: one point each for being
// longer than 8 characters, an uppercase letter, a digit and a symbol.
func PasswordStrength(pass string) int {
	score := 0
	if len(pass) > 8 {
		score++
	}
	for _, re := range []*regexp.Regexp{upperPattern, digitPattern, symbolPattern} {
		if re.MatchString(pass) {
			score++
		}
	}
	return score
}

// StrengthLabel names a PasswordStrength score.
func StrengthLabel(score int) string {
	labels := []string{"Very weak", "Weak", "Fair", "Good", "Strong"}
	if score < 0 {
		score = 0
	}
	if score >= len(labels) {
		score = len(labels) - 1
	}
	return labels[score]
}
