package policy

import "strings"

// threatKeywords maps fragments of classifier wording to a category.
// Order matters: the first table whose keyword appears in the label wins,
// and payment wording is checked before the generic bypass wording so that
// "off-platform payment" maps to payment_bypass, not platform_bypass.
var threatKeywords = []struct {
	category ThreatCategory
	words    []string
}{
	{ThreatPaymentBypass, []string{"payment", "cash", "venmo", "paypal", "zelle", "wire transfer", "check directly"}},
	{ThreatContactInfo, []string{"contact", "email", "phone", "number", "address"}},
	{ThreatSocialMedia, []string{"social media", "instagram", "facebook", "whatsapp", "telegram", "handle"}},
	{ThreatExternalMeeting, []string{"meeting", "meet", "coffee", "lunch", "visit", "in person", "in-person"}},
	{ThreatPlatformBypass, []string{"off-platform", "off platform", "external", "outside", "bypass", "circumvent"}},
}

var scopeKeywords = []struct {
	category ScopeChangeCategory
	words    []string
}{
	{ScopeMaterialChange, []string{"material", "instead of", "switch to", "substitute"}},
	{ScopeSizeChange, []string{"size", "bigger", "smaller", "square", "dimension", "extend the"}},
	{ScopeFeatureAddition, []string{"add", "addition", "also include", "extra feature", "new feature"}},
	{ScopeFeatureRemoval, []string{"remove", "removal", "drop", "without the", "skip the"}},
	{ScopeTimelineChange, []string{"timeline", "deadline", "schedule", "sooner", "later", "delay"}},
	{ScopeBudgetChange, []string{"budget", "price change", "cost change", "cheaper", "more expensive"}},
}

// MapThreatLabels converts free-text threat labels into the closed category
// set. Unmapped labels are dropped; a message is never blocked solely because
// the classifier invented a label string we do not recognize.
func MapThreatLabels(labels []string) []ThreatCategory {
	seen := map[ThreatCategory]bool{}
	var out []ThreatCategory
	for _, label := range labels {
		cat, ok := mapThreatLabel(label)
		if !ok || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}

func mapThreatLabel(label string) (ThreatCategory, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return "", false
	}
	// exact enum values pass straight through
	switch ThreatCategory(strings.ReplaceAll(l, " ", "_")) {
	case ThreatContactInfo, ThreatSocialMedia, ThreatExternalMeeting, ThreatPaymentBypass, ThreatPlatformBypass:
		return ThreatCategory(strings.ReplaceAll(l, " ", "_")), true
	}
	for _, entry := range threatKeywords {
		for _, w := range entry.words {
			if strings.Contains(l, w) {
				return entry.category, true
			}
		}
	}
	return "", false
}

// MapScopeLabels converts free-text scope-change labels into the closed
// category set, dropping anything unrecognized.
func MapScopeLabels(labels []string) []ScopeChangeCategory {
	seen := map[ScopeChangeCategory]bool{}
	var out []ScopeChangeCategory
	for _, label := range labels {
		cat, ok := mapScopeLabel(label)
		if !ok || seen[cat] {
			continue
		}
		seen[cat] = true
		out = append(out, cat)
	}
	return out
}

func mapScopeLabel(label string) (ScopeChangeCategory, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == "" {
		return "", false
	}
	switch ScopeChangeCategory(strings.ReplaceAll(l, " ", "_")) {
	case ScopeMaterialChange, ScopeSizeChange, ScopeFeatureAddition, ScopeFeatureRemoval, ScopeTimelineChange, ScopeBudgetChange:
		return ScopeChangeCategory(strings.ReplaceAll(l, " ", "_")), true
	}
	for _, entry := range scopeKeywords {
		for _, w := range entry.words {
			if strings.Contains(l, w) {
				return entry.category, true
			}
		}
	}
	return "", false
}
