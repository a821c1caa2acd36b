package scopechange

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hometrade/commsguard/internal/domain/classifier"
	"github.com/hometrade/commsguard/internal/domain/messages"
	"github.com/hometrade/commsguard/internal/domain/policy"
)

// Change is the structured scope-change record handed to the external
// notification dispatcher. This core never sends notifications itself.
type Change struct {
	Categories          []policy.ScopeChangeCategory `json:"categories"`
	Details             map[string]string            `json:"details,omitempty"`
	OtherParticipantIDs []string                     `json:"other_participant_ids"`
	Question            string                       `json:"question"`
}

var categoryPhrases = map[policy.ScopeChangeCategory]string{
	policy.ScopeMaterialChange:  "a material change",
	policy.ScopeSizeChange:      "a size change",
	policy.ScopeFeatureAddition: "an added feature",
	policy.ScopeFeatureRemoval:  "a removed feature",
	policy.ScopeTimelineChange:  "a timeline change",
	policy.ScopeBudgetChange:    "a budget change",
}

// Detect decides whether an owner message describes a project scope change
// that the other bidding providers should hear about. It produces a record
// only when the sender is the owner, the classifier flagged scope-change
// labels that map into the closed category set, and at least one other
// provider has messaged on the transaction. Otherwise it returns nil.
func Detect(role messages.SenderRole, res classifier.Result, otherProviders []string) *Change {
	if role != messages.RoleOwner || len(res.ScopeChangeLabels) == 0 {
		return nil
	}
	cats := policy.MapScopeLabels(res.ScopeChangeLabels)
	if len(cats) == 0 || len(otherProviders) == 0 {
		return nil
	}

	providers := dedupe(otherProviders)
	return &Change{
		Categories:          cats,
		Details:             res.ScopeChangeDetails,
		OtherParticipantIDs: providers,
		Question:            composeQuestion(cats, providers),
	}
}

// composeQuestion builds the owner-only clarifying question naming the other
// providers on the transaction.
func composeQuestion(cats []policy.ScopeChangeCategory, providers []string) string {
	phrases := make([]string, 0, len(cats))
	for _, c := range cats {
		if p, ok := categoryPhrases[c]; ok {
			phrases = append(phrases, p)
		}
	}
	return fmt.Sprintf(
		"It sounds like your project scope changed (%s). %d other provider(s) have bid or messaged on this project: %s. Would you like us to let them know so their bids stay accurate?",
		strings.Join(phrases, ", "), len(providers), strings.Join(providers, ", "),
	)
}

func dedupe(ids []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
