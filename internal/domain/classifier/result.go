package classifier

// Result is the shape every text classification produces, whether it came
// from the external service or the deterministic fallback.
type Result struct {
	ThreatLabels        []string          `json:"threat_labels"`
	Confidence          float64           `json:"confidence"`
	Explanation         string            `json:"explanation"`
	RecommendedAction   string            `json:"recommended_action,omitempty"`
	AlternativeSafeText string            `json:"alternative_safe_text,omitempty"`
	ScopeChangeLabels   []string          `json:"scope_change_labels,omitempty"`
	ScopeChangeDetails  map[string]string `json:"scope_change_details,omitempty"`
	Source              string            `json:"source,omitempty"` // model that produced this, or "fallback"
	TextSample          string            `json:"text_sample,omitempty"`
}

// ImageAnalysis is the fixed output schema of image and document analysis.
// Callers never need defensive parsing: the fields are always populated,
// and a failed analysis comes back fail-closed (detected=true, low confidence).
type ImageAnalysis struct {
	ContactInfoDetected bool     `json:"contact_info_detected"`
	Confidence          float64  `json:"confidence"`
	Explanation         string   `json:"explanation"`
	Phones              []string `json:"phones"`
	Emails              []string `json:"emails"`
	Addresses           []string `json:"addresses"`
	SocialHandles       []string `json:"social_handles"`
	TextSample          string   `json:"text_sample,omitempty"`
}

// FailClosed builds the conservative ImageAnalysis used whenever processing
// of an attachment throws. False negatives cost more than false positives here.
func FailClosed(reason string) ImageAnalysis {
	return ImageAnalysis{
		ContactInfoDetected: true,
		Confidence:          0.5,
		Explanation:         "analysis failed, treating as detected: " + reason,
		Phones:              []string{},
		Emails:              []string{},
		Addresses:           []string{},
		SocialHandles:       []string{},
	}
}
