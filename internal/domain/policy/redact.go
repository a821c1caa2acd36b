package policy

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	PhonePlaceholder = "[PHONE REMOVED]"
	EmailPlaceholder = "[EMAIL REMOVED]"
)

var (
	phonePattern = regexp.MustCompile(`(\+?1[-.\s]?)?(\(?\d{3}\)?[-.\s]?)\d{3}[-.\s]?\d{4}\b`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
)

// Redact produces the delivered text for a redact decision. The classifier's
// suggested safe rewrite wins when present; otherwise phone numbers and email
// addresses are substituted deterministically. Substitution is idempotent:
// the placeholders themselves never match the patterns.
func Redact(content, alternativeSafeText string) string {
	if strings.TrimSpace(alternativeSafeText) != "" {
		return alternativeSafeText
	}
	out := phonePattern.ReplaceAllString(content, PhonePlaceholder)
	out = emailPattern.ReplaceAllString(out, EmailPlaceholder)
	return out
}

// BlockPlaceholder is the explicit marker written in place of a blocked bid
// field. Blocked fields are never silently dropped.
func BlockPlaceholder(threats []ThreatCategory) string {
	reason := "policy violation"
	switch {
	case HasThreat(threats, ThreatPaymentBypass):
		reason = "off-platform payment detected"
	case HasThreat(threats, ThreatContactInfo):
		reason = "contact information detected"
	case HasThreat(threats, ThreatExternalMeeting):
		reason = "external meeting request detected"
	case HasThreat(threats, ThreatSocialMedia):
		reason = "social media reference detected"
	case HasThreat(threats, ThreatPlatformBypass):
		reason = "platform bypass detected"
	}
	return fmt.Sprintf("[BLOCKED - %s]", reason)
}
