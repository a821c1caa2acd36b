package moderation

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hometrade/commsguard/internal/domain/messages"
	"github.com/hometrade/commsguard/internal/domain/policy"
	"github.com/hometrade/commsguard/internal/domain/scopechange"
)

// annotate produces the private side-channel notes for this outcome. Every
// annotation targets exactly one participant; nothing here is broadcast, and
// nothing here can change the decision that was already made.
func (s *Service) annotate(ctx context.Context, unit *messages.Unit, result *SubmitResult, change *scopechange.Change, threats []policy.ThreatCategory) {
	var anns []*messages.Annotation

	switch result.Decision {
	case policy.DecisionBlock:
		anns = append(anns, s.newAnnotation(unit, unit.SenderRole, unit.SenderID, messages.AnnotationWarning,
			fmt.Sprintf("Your message was not delivered: %s. All contact, scheduling and payment must stay on the platform.", blockReason(threats))))
		if id, role := s.counterpart(ctx, unit); id != "" {
			// the counterpart learns a block happened, never what was in it
			anns = append(anns, s.newAnnotation(unit, role, id, messages.AnnotationInfo,
				"A message in this conversation was redirected for a platform-safety review."))
		}
	case policy.DecisionRedact:
		anns = append(anns, s.newAnnotation(unit, unit.SenderRole, unit.SenderID, messages.AnnotationInfo,
			"Parts of your message were removed before delivery because they looked like contact details or off-platform references."))
	}

	if change != nil {
		anns = append(anns, s.newAnnotation(unit, messages.RoleOwner, unit.SenderID, messages.AnnotationScopeQuestion, change.Question))
	}

	if sugg := s.compareSuggestion(ctx, unit, result); sugg != nil {
		anns = append(anns, sugg)
	}

	for _, a := range anns {
		actx, cancel := context.WithTimeout(ctx, s.callTimeout())
		err := s.Annotations.Save(actx, a)
		cancel()
		if err != nil {
			s.recordStageError(ctx, unit, "annotate", err)
		}
	}
	result.Annotations = anns
}

func (s *Service) newAnnotation(unit *messages.Unit, role messages.SenderRole, targetID string, kind messages.AnnotationKind, content string) *messages.Annotation {
	return &messages.Annotation{
		ID:            uuid.New().String(),
		TenantID:      unit.TenantID,
		TransactionID: unit.TransactionID,
		VisibleToRole: role,
		VisibleToID:   targetID,
		Content:       content,
		Kind:          kind,
		CreatedAt:     s.Clock.Now(),
	}
}

// compareSuggestion is a best-effort UX hint for owners with several bids on
// the table. It never alters or suppresses the decision.
func (s *Service) compareSuggestion(ctx context.Context, unit *messages.Unit, result *SubmitResult) *messages.Annotation {
	if unit.SenderRole != messages.RoleOwner || result.Decision == policy.DecisionBlock {
		return nil
	}
	tx, err := s.Transactions.Get(ctx, unit.TenantID, unit.TransactionID)
	if err != nil || tx == nil || tx.BidCount < 2 {
		return nil
	}
	return s.newAnnotation(unit, messages.RoleOwner, unit.SenderID, messages.AnnotationSuggestion,
		fmt.Sprintf("You have %d providers interested in this project. Want help comparing their bids?", tx.BidCount))
}

// counterpart resolves who should hear that a block occurred: the explicit
// recipient when known, otherwise the transaction owner for provider messages.
func (s *Service) counterpart(ctx context.Context, unit *messages.Unit) (string, messages.SenderRole) {
	other := messages.RoleOwner
	if unit.SenderRole == messages.RoleOwner {
		other = messages.RoleProvider
	}
	if unit.RecipientID != "" {
		return unit.RecipientID, other
	}
	if unit.SenderRole == messages.RoleProvider {
		if tx, err := s.Transactions.Get(ctx, unit.TenantID, unit.TransactionID); err == nil && tx != nil {
			return tx.OwnerID, messages.RoleOwner
		}
	}
	return "", other
}

func blockReason(threats []policy.ThreatCategory) string {
	switch {
	case policy.HasThreat(threats, policy.ThreatPaymentBypass):
		return "it appears to arrange payment outside the platform"
	case policy.HasThreat(threats, policy.ThreatContactInfo):
		return "it appears to share contact information"
	case policy.HasThreat(threats, policy.ThreatExternalMeeting):
		return "it appears to arrange an off-platform meeting"
	case policy.HasThreat(threats, policy.ThreatSocialMedia):
		return "it appears to share social media details"
	case policy.HasThreat(threats, policy.ThreatPlatformBypass):
		return "it appears to move this conversation off the platform"
	}
	return "it violates platform communication policy"
}
