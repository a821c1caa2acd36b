package middleware

import (
	"strings"
	"testing"
)

func TestValidateTenantID(t *testing.T) {
	valid := []string{"acme", "acme-co", "tenant_42", "A1"}
	for _, v := range valid {
		if err := ValidateTenantID(v); err != nil {
			t.Errorf("ValidateTenantID(%q) = %v, want nil", v, err)
		}
	}

	invalid := []string{"", "has space", "semi;colon", strings.Repeat("x", 65)}
	for _, v := range invalid {
		if err := ValidateTenantID(v); err == nil {
			t.Errorf("ValidateTenantID(%q) = nil, want error", v)
		}
	}
}

func TestValidateSenderRole(t *testing.T) {
	if err := ValidateSenderRole("owner"); err != nil {
		t.Errorf("owner should be valid: %v", err)
	}
	if err := ValidateSenderRole("Provider"); err != nil {
		t.Errorf("role check should be case-insensitive: %v", err)
	}
	if err := ValidateSenderRole("admin"); err == nil {
		t.Error("admin should be rejected")
	}
}

func TestValidateMessageKind(t *testing.T) {
	for _, k := range []string{"", "text", "image", "document", "bid_submission", "system"} {
		if err := ValidateMessageKind(k); err != nil {
			t.Errorf("ValidateMessageKind(%q) = %v, want nil", k, err)
		}
	}
	if err := ValidateMessageKind("voice_note"); err == nil {
		t.Error("voice_note should be rejected")
	}
}

func TestSanitizeString(t *testing.T) {
	got := SanitizeString("hello\x00 world\x07  ")
	if got != "hello world" {
		t.Errorf("SanitizeString = %q, want %q", got, "hello world")
	}
	// tabs and newlines survive
	if got := SanitizeString("a\tb\nc"); got != "a\tb\nc" {
		t.Errorf("SanitizeString stripped whitespace: %q", got)
	}
}

func TestValidateLimit(t *testing.T) {
	if got := ValidateLimit(0); got != 20 {
		t.Errorf("default limit = %d, want 20", got)
	}
	if got := ValidateLimit(500); got != 100 {
		t.Errorf("capped limit = %d, want 100", got)
	}
	if got := ValidateLimit(35); got != 35 {
		t.Errorf("limit = %d, want 35", got)
	}
}

func TestValidateDays(t *testing.T) {
	if got := ValidateDays(-1); got != 7 {
		t.Errorf("default days = %d, want 7", got)
	}
	if got := ValidateDays(1000); got != 365 {
		t.Errorf("capped days = %d, want 365", got)
	}
}
