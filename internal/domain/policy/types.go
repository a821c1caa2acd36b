package policy

// Decision enum
type Decision string

const (
	DecisionAllow  Decision = "allow"
	DecisionRedact Decision = "redact"
	DecisionBlock  Decision = "block"
)

// ThreatCategory is the closed set of policy violations. Free-text labels
// coming back from the classifier are mapped into this set; anything that
// does not map is dropped.
type ThreatCategory string

const (
	ThreatContactInfo     ThreatCategory = "contact_info"
	ThreatSocialMedia     ThreatCategory = "social_media"
	ThreatExternalMeeting ThreatCategory = "external_meeting"
	ThreatPaymentBypass   ThreatCategory = "payment_bypass"
	ThreatPlatformBypass  ThreatCategory = "platform_bypass"
)

// ScopeChangeCategory is the closed set of project scope changes.
type ScopeChangeCategory string

const (
	ScopeMaterialChange  ScopeChangeCategory = "material_change"
	ScopeSizeChange      ScopeChangeCategory = "size_change"
	ScopeFeatureAddition ScopeChangeCategory = "feature_addition"
	ScopeFeatureRemoval  ScopeChangeCategory = "feature_removal"
	ScopeTimelineChange  ScopeChangeCategory = "timeline_change"
	ScopeBudgetChange    ScopeChangeCategory = "budget_change"
)
