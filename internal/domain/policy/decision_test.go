package policy

import "testing"

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		threats  []ThreatCategory
		expected Decision
	}{
		{
			name:     "no threats allows",
			threats:  nil,
			expected: DecisionAllow,
		},
		{
			name:     "contact info redacts",
			threats:  []ThreatCategory{ThreatContactInfo},
			expected: DecisionRedact,
		},
		{
			name:     "platform bypass redacts",
			threats:  []ThreatCategory{ThreatPlatformBypass},
			expected: DecisionRedact,
		},
		{
			name:     "social media redacts",
			threats:  []ThreatCategory{ThreatSocialMedia},
			expected: DecisionRedact,
		},
		{
			name:     "external meeting redacts",
			threats:  []ThreatCategory{ThreatExternalMeeting},
			expected: DecisionRedact,
		},
		{
			name:     "payment bypass blocks",
			threats:  []ThreatCategory{ThreatPaymentBypass},
			expected: DecisionBlock,
		},
		{
			name:     "payment bypass wins over contact info",
			threats:  []ThreatCategory{ThreatContactInfo, ThreatPaymentBypass},
			expected: DecisionBlock,
		},
		{
			name:     "payment bypass wins regardless of position",
			threats:  []ThreatCategory{ThreatPaymentBypass, ThreatSocialMedia, ThreatExternalMeeting},
			expected: DecisionBlock,
		},
		{
			name:     "contact info plus platform bypass redacts",
			threats:  []ThreatCategory{ThreatContactInfo, ThreatPlatformBypass},
			expected: DecisionRedact,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.threats); got != tt.expected {
				t.Errorf("Decide(%v) = %q, want %q", tt.threats, got, tt.expected)
			}
		})
	}
}

func TestHasThreat(t *testing.T) {
	threats := []ThreatCategory{ThreatContactInfo, ThreatSocialMedia}
	if !HasThreat(threats, ThreatSocialMedia) {
		t.Error("HasThreat should find social_media")
	}
	if HasThreat(threats, ThreatPaymentBypass) {
		t.Error("HasThreat should not find payment_bypass")
	}
}
