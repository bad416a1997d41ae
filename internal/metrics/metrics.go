// Package metrics exposes wizard lifecycle events as Prometheus metrics.
package metrics

import (
	"context"
	"errors"

	"github.com/aretw0/novapay/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the wizard metric vectors.
type Collector struct {
	stepEntries    *prometheus.CounterVec
	actionDuration *prometheus.HistogramVec
	actionErrors   *prometheus.CounterVec
	rejections     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		stepEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "novapay",
				Name:      "wizard_step_entries_total",
				Help:      "Total number of wizard step entries",
			},
			[]string{"flow", "step"},
		),
		actionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "novapay",
				Name:      "wizard_action_duration_seconds",
				Help:      "Duration of async step actions",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"flow", "step"},
		),
		actionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "novapay",
				Name:      "wizard_action_errors_total",
				Help:      "Total number of failed async step actions",
			},
			[]string{"flow", "step"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "novapay",
				Name:      "wizard_rejections_total",
				Help:      "Operations refused by the controller, by reason",
			},
			[]string{"flow", "op", "reason"},
		),
	}

	for _, col := range []prometheus.Collector{c.stepEntries, c.actionDuration, c.actionErrors, c.rejections} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns lifecycle hooks that feed the collectors.
// next, if set, is called after each metric is recorded.
func (c *Collector) Hooks(next domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(ctx context.Context, e *domain.StepEvent) {
			c.stepEntries.WithLabelValues(e.Flow, e.StepID).Inc()
			if next.OnStepEnter != nil {
				next.OnStepEnter(ctx, e)
			}
		},
		OnStepLeave:  next.OnStepLeave,
		OnActionCall: next.OnActionCall,
		OnActionReturn: func(ctx context.Context, e *domain.ActionEvent) {
			c.actionDuration.WithLabelValues(e.Flow, e.StepID).Observe(e.Duration.Seconds())
			if e.IsError {
				c.actionErrors.WithLabelValues(e.Flow, e.StepID).Inc()
			}
			if next.OnActionReturn != nil {
				next.OnActionReturn(ctx, e)
			}
		},
		OnRejected: func(ctx context.Context, e *domain.RejectEvent) {
			c.rejections.WithLabelValues(e.Flow, e.Op, Reason(e.Err)).Inc()
			if next.OnRejected != nil {
				next.OnRejected(ctx, e)
			}
		},
	}
}

// Reason classifies a controller error into a low-cardinality label.
func Reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrBusy):
		return "busy"
	case errors.Is(err, domain.ErrBoundary):
		return "boundary"
	case errors.Is(err, domain.ErrNavigation):
		return "navigation"
	case errors.Is(err, domain.ErrAsyncStep):
		return "async"
	default:
		return "other"
	}
}
