package metrics_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/novapay/internal/metrics"
	"github.com/aretw0/novapay/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)

	var forwarded int
	hooks := c.Hooks(domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) { forwarded++ },
	})
	ctx := context.Background()
	base := domain.EventBase{Flow: "send-money", SessionID: "s1"}

	hooks.OnStepEnter(ctx, &domain.StepEvent{EventBase: base, StepID: "amount"})
	hooks.OnStepEnter(ctx, &domain.StepEvent{EventBase: base, StepID: "amount"})
	hooks.OnActionReturn(ctx, &domain.ActionEvent{EventBase: base, StepID: "review", Duration: 20 * time.Millisecond, IsError: true})
	hooks.OnRejected(ctx, &domain.RejectEvent{EventBase: base, Op: "advance", Err: &domain.BusyError{StepID: "review"}})

	assert.Equal(t, 2, forwarded)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
		if f.GetName() == "novapay_wizard_step_entries_total" {
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, float64(2), f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, names["novapay_wizard_step_entries_total"])
	assert.True(t, names["novapay_wizard_action_duration_seconds"])
	assert.True(t, names["novapay_wizard_action_errors_total"])
	assert.True(t, names["novapay_wizard_rejections_total"])

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "novapay_wizard_rejections_total"))
}

func TestCollector_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)
	_, err = metrics.New(reg)
	assert.Error(t, err)
}

func TestReason(t *testing.T) {
	tests := map[string]error{
		"validation": &domain.ValidationError{StepID: "a"},
		"busy":       &domain.BusyError{},
		"boundary":   &domain.BoundaryError{Op: "retreat"},
		"navigation": &domain.NavigationError{Target: 3},
		"async":      &domain.AsyncStepError{StepID: "c"},
		"other":      fmt.Errorf("boom"),
	}
	for want, err := range tests {
		assert.Equal(t, want, metrics.Reason(err))
	}
}
