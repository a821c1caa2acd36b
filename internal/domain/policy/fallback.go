package policy

import (
	"regexp"
	"strings"

	"github.com/hometrade/commsguard/internal/domain/classifier"
)

// FallbackConfidence is reported on every fallback result so downstream
// consumers always see a confidence score, even with the classifier down.
const FallbackConfidence = 0.8

var (
	fallbackPhone   = regexp.MustCompile(`(\+?1[-.\s]?)?(\(?\d{3}\)?[-.\s]?)\d{3}[-.\s]?\d{4}\b`)
	fallbackEmail   = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	fallbackAddress = regexp.MustCompile(`(?i)\b\d{1,5}\s+\w+(\s\w+)?\s+(street|st|avenue|ave|road|rd|boulevard|blvd|drive|dr|lane|ln|court|ct)\b\.?`)
)

var fallbackMeetingWords = []string{
	"meet", "meeting", "coffee", "lunch", "dinner", "come by", "stop by",
	"swing by", "in person", "in-person", "my place", "your place", "visit",
}

// Fallback is the deterministic analyzer engaged when every classifier model
// variant is unavailable. Same input and same pattern set always produce the
// same output. It is intentionally coarser than the primary decision table:
// any hit recommends a block.
func Fallback(content string) classifier.Result {
	var labels []string
	if fallbackPhone.MatchString(content) {
		labels = append(labels, "phone number shared")
	}
	if fallbackEmail.MatchString(content) {
		labels = append(labels, "email address shared")
	}
	if fallbackAddress.MatchString(content) {
		labels = append(labels, "street address shared")
	}
	lower := strings.ToLower(content)
	for _, w := range fallbackMeetingWords {
		if strings.Contains(lower, w) {
			labels = append(labels, "external meeting request")
			break
		}
	}

	action := "allow"
	explanation := "pattern analyzer found no violations"
	if len(labels) > 0 {
		action = "block"
		explanation = "pattern analyzer matched: " + strings.Join(labels, "; ")
	}
	return classifier.Result{
		ThreatLabels:      labels,
		Confidence:        FallbackConfidence,
		Explanation:       explanation,
		RecommendedAction: action,
		Source:            "fallback",
	}
}
