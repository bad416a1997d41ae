package flows

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Default mock credentials accepted by the simulated backends.
const (
	DefaultMockMPIN = "123456"
	DefaultMockOTP  = "123456"
)

// Options tune the simulated backends behind the async steps.
type Options struct {
	MockMPIN string
	MockOTP  string
	// Latency is slept (interruptibly) by every async action.
	Latency time.Duration
	// NewReference produces transaction and application references.
	NewReference func(prefix string) string
}

// Option configures Options.
type Option func(*Options)

// WithMockMPIN sets the MPIN accepted by the payment backend.
func WithMockMPIN(mpin string) Option {
	return func(o *Options) {
		if mpin != "" {
			o.MockMPIN = mpin
		}
	}
}

// WithMockOTP sets the OTP accepted by the password reset backend.
func WithMockOTP(otp string) Option {
	return func(o *Options) {
		if otp != "" {
			o.MockOTP = otp
		}
	}
}

// WithLatency sets the simulated backend latency.
func WithLatency(d time.Duration) Option {
	return func(o *Options) {
		o.Latency = d
	}
}

// WithReferenceFunc overrides reference generation, mostly for tests.
func WithReferenceFunc(fn func(prefix string) string) Option {
	return func(o *Options) {
		if fn != nil {
			o.NewReference = fn
		}
	}
}

func newOptions(opts ...Option) Options {
	o := Options{
		MockMPIN:     DefaultMockMPIN,
		MockOTP:      DefaultMockOTP,
		NewReference: randomReference,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func randomReference(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + strings.ToUpper(id[:10])
}

// simulate waits for the configured latency or until ctx is done.
func (o Options) simulate(ctx context.Context) error {
	if o.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(o.Latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
