package redact_test

import (
	"testing"

	"github.com/aretw0/novapay/internal/redact"
)

func TestRedactor_Map(t *testing.T) {
	r := redact.Default()
	payload := map[string]any{
		"recipient":        "Rahul",
		"mpin":             "123456",
		"password":         "secret123",
		"confirm_password": "secret123",
		"otp":              "000000",
		"otp_sent_to":      "a***@example.com",
		"details": map[string]any{
			"id_number": "ABCDE1234F",
			"city":      "Pune",
		},
		"mpin_confirm": "",
	}

	masked := r.Map(payload)

	if payload["mpin"] != "123456" {
		t.Error("input map was modified")
	}
	for _, key := range []string{"mpin", "password", "confirm_password", "otp"} {
		if masked[key] != redact.Mask {
			t.Errorf("expected %s to be masked, got %v", key, masked[key])
		}
	}
	if masked["recipient"] != "Rahul" || masked["otp_sent_to"] != "a***@example.com" {
		t.Errorf("non-sensitive values must pass through: %v", masked)
	}
	details := masked["details"].(map[string]any)
	if details["id_number"] != redact.Mask || details["city"] != "Pune" {
		t.Errorf("nested map not masked correctly: %v", details)
	}
	if masked["mpin_confirm"] != "" {
		t.Errorf("empty values should stay empty to signal absence, got %v", masked["mpin_confirm"])
	}
}

func TestRedactor_DerivedPasswordKeysPassThrough(t *testing.T) {
	r := redact.Default()
	for _, key := range []string{"password_strength", "password_updated", "new_password_hint"} {
		if r.Sensitive(key) {
			t.Errorf("%s should not be masked", key)
		}
	}
	for _, key := range []string{"password", "Password", "confirm_password"} {
		if !r.Sensitive(key) {
			t.Errorf("%s should be masked", key)
		}
	}

	masked := r.Map(map[string]any{"password_strength": 3})
	if masked["password_strength"] != 3 {
		t.Errorf("expected strength score to pass through, got %v", masked["password_strength"])
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	if _, err := redact.New("("); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestRedactor_Nil(t *testing.T) {
	if redact.Default().Map(nil) != nil {
		t.Error("nil map should stay nil")
	}
}
