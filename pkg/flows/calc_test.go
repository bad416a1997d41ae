package flows_test

import (
	"math"
	"testing"

	"github.com/aretw0/novapay/pkg/flows"
	"github.com/stretchr/testify/assert"
)

func TestEMI(t *testing.T) {
	tests := []struct {
		name      string
		principal float64
		rate      float64
		months    int
		want      float64
	}{
		{"default personal plan", 500000, 10.5, 24, 23188},
		{"one year", 100000, 10.5, 12, 8815},
		{"max home loan", 1000000, 8.5, 60, 20517},
		{"zero rate", 120000, 0, 12, 10000},
		{"no tenure", 100000, 10.5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flows.EMI(tt.principal, tt.rate, tt.months))
		})
	}
}

func TestTotalInterest(t *testing.T) {
	assert.Equal(t, float64(56512), flows.TotalInterest(500000, 10.5, 24))
}

func TestClampPlan(t *testing.T) {
	amount, tenure := flows.ClampPlan(0, 0)
	assert.Equal(t, float64(flows.DefaultLoanAmount), amount)
	assert.Equal(t, flows.DefaultTenure, tenure)

	amount, tenure = flows.ClampPlan(10, 30)
	assert.Equal(t, float64(flows.MinLoanAmount), amount)
	assert.Equal(t, 24, tenure)

	amount, tenure = flows.ClampPlan(5e6, 100)
	assert.Equal(t, float64(flows.MaxLoanAmount), amount)
	assert.Equal(t, 60, tenure)

	amount, _ = flows.ClampPlan(math.NaN(), 12)
	assert.Equal(t, float64(flows.DefaultLoanAmount), amount)

	amount, _ = flows.ClampPlan(math.Inf(1), 12)
	assert.Equal(t, float64(flows.MaxLoanAmount), amount)
}

func TestPasswordStrength(t *testing.T) {
	tests := map[string]int{
		"":           0,
		"abcdefgh":   0,
		"abcdefghi":  1,
		"Abcdefghi":  2,
		"Abcdefgh1":  3,
		"Abcdefgh1!": 4,
		"A1!":        3,
	}
	for pass, want := range tests {
		assert.Equal(t, want, flows.PasswordStrength(pass), "password %q", pass)
	}
	assert.Equal(t, "Strong", flows.StrengthLabel(4))
	assert.Equal(t, "Very weak", flows.StrengthLabel(-1))
}
