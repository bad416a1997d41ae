// Package input cleans field values typed by users before they enter a
// wizard payload.
package input

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxSize bounds a single field value (4KB).
const DefaultMaxSize = 4096

var (
	ErrTooLarge    = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitize enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return. Values are
// trimmed of surrounding spaces. limit <= 0 means DefaultMaxSize.
func Sanitize(s string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	// Reject rather than truncate so the payload never holds a partial value.
	if len(s) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTooLarge, len(s), limit)
	}
	if !utf8.ValidString(s) {
		return "", ErrInvalidUTF8
	}

	clean := true
	for _, r := range s {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return strings.TrimSpace(s), nil
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// Value sanitizes strings and passes numbers, booleans and nil through.
// Nested structures are rejected: wizard fields are scalars.
func Value(v any, limit int) (any, error) {
	switch val := v.(type) {
	case nil, bool, float64, int, int64:
		return val, nil
	case string:
		return Sanitize(val, limit)
	default:
		return nil, fmt.Errorf("unsupported field value of type %T", v)
	}
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}
