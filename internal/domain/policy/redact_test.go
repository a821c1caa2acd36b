package policy

import (
	"strings"
	"testing"
)

func TestRedact(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		safeText string
		expected string
	}{
		{
			name:     "safe text wins when present",
			content:  "call me at 555-123-4567",
			safeText: "Let's keep chatting here.",
			expected: "Let's keep chatting here.",
		},
		{
			name:     "dashed phone number substituted",
			content:  "call me at 555-123-4567 tonight",
			expected: "call me at " + PhonePlaceholder + " tonight",
		},
		{
			name:     "parenthesized phone number substituted",
			content:  "my cell is (555) 123-4567",
			expected: "my cell is " + PhonePlaceholder,
		},
		{
			name:     "email substituted",
			content:  "reach me at bob@example.com anytime",
			expected: "reach me at " + EmailPlaceholder + " anytime",
		},
		{
			name:     "phone and email both substituted",
			content:  "555-123-4567 or bob@example.com",
			expected: PhonePlaceholder + " or " + EmailPlaceholder,
		},
		{
			name:     "clean text untouched",
			content:  "the deck will take three weeks",
			expected: "the deck will take three weeks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Redact(tt.content, tt.safeText); got != tt.expected {
				t.Errorf("Redact(%q, %q) = %q, want %q", tt.content, tt.safeText, got, tt.expected)
			}
		})
	}
}

func TestRedactIdempotent(t *testing.T) {
	content := "call 555-123-4567 or write bob@example.com"
	once := Redact(content, "")
	twice := Redact(once, "")
	if once != twice {
		t.Errorf("second pass changed output: %q -> %q", once, twice)
	}
}

func TestBlockPlaceholder(t *testing.T) {
	tests := []struct {
		name    string
		threats []ThreatCategory
		want    string
	}{
		{
			name:    "payment bypass reason",
			threats: []ThreatCategory{ThreatPaymentBypass},
			want:    "off-platform payment",
		},
		{
			name:    "contact info reason",
			threats: []ThreatCategory{ThreatContactInfo},
			want:    "contact information",
		},
		{
			name:    "payment reason wins over contact",
			threats: []ThreatCategory{ThreatContactInfo, ThreatPaymentBypass},
			want:    "off-platform payment",
		},
		{
			name:    "generic reason with no threats",
			threats: nil,
			want:    "policy violation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BlockPlaceholder(tt.threats)
			if !strings.HasPrefix(got, "[BLOCKED - ") || !strings.Contains(got, tt.want) {
				t.Errorf("BlockPlaceholder(%v) = %q, want marker containing %q", tt.threats, got, tt.want)
			}
		})
	}
}
