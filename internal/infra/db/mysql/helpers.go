package mysql

import (
	"strings"

	"github.com/hometrade/commsguard/internal/domain/policy"
)

// stringOrDash returns "-" when the input is empty/whitespace
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// joinThreats flattens the category list into one comma-separated column
func joinThreats(cats []policy.ThreatCategory) string {
	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ",")
}

func splitThreats(s string) []policy.ThreatCategory {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []policy.ThreatCategory
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, policy.ThreatCategory(p))
		}
	}
	return out
}
