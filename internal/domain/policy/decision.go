package policy

// Decide maps the detected categories to an action. Evaluation is a strict
// priority table: payment bypass always blocks and is never redacted, every
// other recognized category downgrades to redaction, no categories allows.
func Decide(threats []ThreatCategory) Decision {
	if len(threats) == 0 {
		return DecisionAllow
	}
	for _, t := range threats {
		if t == ThreatPaymentBypass {
			return DecisionBlock
		}
	}
	for _, t := range threats {
		if t == ThreatContactInfo {
			return DecisionRedact
		}
	}
	for _, t := range threats {
		if t == ThreatPlatformBypass {
			return DecisionRedact
		}
	}
	// any remaining recognized category (social media, external meeting)
	return DecisionRedact
}

// HasThreat reports whether cat is in threats.
func HasThreat(threats []ThreatCategory, cat ThreatCategory) bool {
	for _, t := range threats {
		if t == cat {
			return true
		}
	}
	return false
}
