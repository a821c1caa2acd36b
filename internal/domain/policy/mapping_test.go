package policy

import (
	"reflect"
	"testing"
)

func TestMapThreatLabels(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		expected []ThreatCategory
	}{
		{
			name:     "exact enum value passes through",
			labels:   []string{"contact_info"},
			expected: []ThreatCategory{ThreatContactInfo},
		},
		{
			name:     "spaced enum value passes through",
			labels:   []string{"payment bypass"},
			expected: []ThreatCategory{ThreatPaymentBypass},
		},
		{
			name:     "phone wording maps to contact info",
			labels:   []string{"phone number shared"},
			expected: []ThreatCategory{ThreatContactInfo},
		},
		{
			name:     "off-platform payment maps to payment bypass, not platform bypass",
			labels:   []string{"off-platform payment request"},
			expected: []ThreatCategory{ThreatPaymentBypass},
		},
		{
			name:     "instagram handle maps to social media",
			labels:   []string{"shared instagram handle"},
			expected: []ThreatCategory{ThreatSocialMedia},
		},
		{
			name:     "coffee invite maps to external meeting",
			labels:   []string{"suggested grabbing coffee"},
			expected: []ThreatCategory{ThreatExternalMeeting},
		},
		{
			name:     "unrecognized label is dropped",
			labels:   []string{"suspicious vibes"},
			expected: nil,
		},
		{
			name:     "empty label is dropped",
			labels:   []string{"", "   "},
			expected: nil,
		},
		{
			name:     "duplicates collapse",
			labels:   []string{"phone number shared", "email address shared"},
			expected: []ThreatCategory{ThreatContactInfo},
		},
		{
			name:     "mix keeps recognized and drops the rest",
			labels:   []string{"something weird", "venmo mentioned", "circumvent the platform"},
			expected: []ThreatCategory{ThreatPaymentBypass, ThreatPlatformBypass},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapThreatLabels(tt.labels)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("MapThreatLabels(%v) = %v, want %v", tt.labels, got, tt.expected)
			}
		})
	}
}

func TestMapScopeLabels(t *testing.T) {
	tests := []struct {
		name     string
		labels   []string
		expected []ScopeChangeCategory
	}{
		{
			name:     "exact enum value passes through",
			labels:   []string{"timeline_change"},
			expected: []ScopeChangeCategory{ScopeTimelineChange},
		},
		{
			name:     "material wording maps",
			labels:   []string{"wants tile instead of hardwood material"},
			expected: []ScopeChangeCategory{ScopeMaterialChange},
		},
		{
			name:     "deadline wording maps to timeline",
			labels:   []string{"moved the deadline up"},
			expected: []ScopeChangeCategory{ScopeTimelineChange},
		},
		{
			name:     "unrecognized label dropped",
			labels:   []string{"general chatter"},
			expected: nil,
		},
		{
			name:     "duplicates collapse",
			labels:   []string{"bigger deck", "size change"},
			expected: []ScopeChangeCategory{ScopeSizeChange},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapScopeLabels(tt.labels)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("MapScopeLabels(%v) = %v, want %v", tt.labels, got, tt.expected)
			}
		})
	}
}
