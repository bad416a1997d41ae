// Package redact masks sensitive wizard payload values before they leave
// the process through logs or API responses.
package redact

import (
	"regexp"
)

// Mask replaces every redacted value.
const Mask = "***"

// DefaultPatterns match the NovaPay secrets: MPIN, OTP and passwords.
var DefaultPatterns = []string{`(?i)mpin`, `(?i)^otp$`, `(?i)^(confirm_)?password$`, `(?i)^id_number$`}

// Redactor masks values of keys matching its patterns.
type Redactor struct {
	patterns []*regexp.Regexp
}

// New compiles patterns into a Redactor.
func New(patterns ...string) (*Redactor, error) {
	r := &Redactor{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		r.patterns = append(r.patterns, re)
	}
	return r, nil
}

// Default returns a Redactor for DefaultPatterns.
func Default() *Redactor {
	r, _ := New(DefaultPatterns...)
	return r
}

// Sensitive reports whether values stored under key are masked.
func (r *Redactor) Sensitive(key string) bool {
	for _, p := range r.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// Map returns a copy of m with sensitive values masked, nested maps included.
// The input is never modified.
func (r *Redactor) Map(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if r.Sensitive(k) {
			if v != nil && v != "" {
				out[k] = Mask
			} else {
				out[k] = v
			}
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			out[k] = r.Map(sub)
			continue
		}
		out[k] = v
	}
	return out
}
