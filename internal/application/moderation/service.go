package moderation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hometrade/commsguard/internal/application"
	"github.com/hometrade/commsguard/internal/domain/bids"
	"github.com/hometrade/commsguard/internal/domain/classifier"
	"github.com/hometrade/commsguard/internal/domain/messages"
	"github.com/hometrade/commsguard/internal/domain/policy"
	"github.com/hometrade/commsguard/internal/domain/stageerrors"
	"github.com/hometrade/commsguard/internal/domain/transactions"
	"github.com/hometrade/commsguard/internal/stats"
)

const (
	// DefaultCallTimeout bounds every external classifier call and
	// persistence write so one slow dependency cannot stall a message forever.
	DefaultCallTimeout = 30 * time.Second

	historyDepth = 3
)

// Service implements the message moderation use-cases.
// Distinct messages may flow through it concurrently; the only shared state
// is the persistence layer and the stats collector, both safe for that.
type Service struct {
	Messages     messages.Repository
	Audit        messages.AuditRepository
	Annotations  messages.AnnotationRepository
	Bids         bids.Repository
	Transactions transactions.Registry
	Classifier   classifier.Client
	Extractor    classifier.TextExtractor
	Evidence     messages.EvidenceStore
	StageErrors  stageerrors.Repository
	Stats        *stats.Collector
	Clock        application.Clock
	CallTimeout  time.Duration
	// Version tags every persisted record with the pipeline revision that
	// produced the decision.
	Version string
}

// SubmitCommand is one inbound message to moderate.
type SubmitCommand struct {
	TenantID       string
	Content        string
	SenderRole     string
	SenderID       string
	RecipientID    string
	TransactionID  string
	ConversationID string
	Kind           string
	Attachments    []messages.Attachment
	Bid            *bids.Submission
}

// SubmitResult is the structured outcome returned for every submission,
// including degraded and fail-closed paths.
type SubmitResult struct {
	MessageID                 string                       `json:"message_id"`
	Approved                  bool                         `json:"approved"`
	DeliveryConfirmed         bool                         `json:"delivery_confirmed"`
	FilteredContent           string                       `json:"filtered_content"`
	Decision                  policy.Decision              `json:"decision"`
	ThreatsDetected           []policy.ThreatCategory      `json:"threats_detected"`
	ConfidenceScore           float64                      `json:"confidence_score"`
	Annotations               []*messages.Annotation       `json:"annotations"`
	ScopeChanges              []policy.ScopeChangeCategory `json:"scope_changes"`
	OtherParticipantsToNotify []string                     `json:"other_participants_to_notify"`
	ScopeQuestion             string                       `json:"scope_question,omitempty"`
	BidSaved                  bool                         `json:"bid_saved,omitempty"`
	BidID                     string                       `json:"bid_id,omitempty"`
	BidSummary                string                       `json:"bid_summary,omitempty"`
}

func (s *Service) callTimeout() time.Duration {
	if s.CallTimeout > 0 {
		return s.CallTimeout
	}
	return DefaultCallTimeout
}

func (s *Service) version() string {
	if s.Version != "" {
		return s.Version
	}
	return "v1"
}

// ingest validates the command and assembles the immutable unit. For bid
// submissions the prose fields are concatenated into the combined
// classification content so short fragments cannot slip through on their own,
// while still being tracked for per-field redaction.
func (s *Service) ingest(cmd SubmitCommand, id messages.MessageID, now time.Time) (*messages.Unit, error) {
	role := messages.SenderRole(cmd.SenderRole)
	switch role {
	case messages.RoleOwner, messages.RoleProvider:
	default:
		return nil, fmt.Errorf("unknown sender role: %q", cmd.SenderRole)
	}
	if cmd.SenderID == "" {
		return nil, fmt.Errorf("sender_id is required")
	}
	if cmd.TransactionID == "" {
		return nil, fmt.Errorf("transaction_id is required")
	}

	kind := messages.Kind(cmd.Kind)
	combined := cmd.Content
	switch kind {
	case messages.KindText, messages.KindImage, messages.KindDocument, messages.KindSystem:
	case messages.KindBidSubmission:
		if cmd.Bid == nil {
			return nil, fmt.Errorf("bid payload is required for bid submissions")
		}
		parts := []string{cmd.Content, cmd.Bid.ProposalText, cmd.Bid.ApproachText, cmd.Bid.WarrantyText}
		var nonEmpty []string
		for _, p := range parts {
			if strings.TrimSpace(p) != "" {
				nonEmpty = append(nonEmpty, p)
			}
		}
		combined = strings.Join(nonEmpty, "\n")
	default:
		return nil, fmt.Errorf("unknown message kind: %q", cmd.Kind)
	}

	return &messages.Unit{
		ID:              id,
		TenantID:        cmd.TenantID,
		OriginalContent: cmd.Content,
		CombinedContent: combined,
		SenderRole:      role,
		SenderID:        cmd.SenderID,
		RecipientID:     cmd.RecipientID,
		TransactionID:   cmd.TransactionID,
		ConversationID:  cmd.ConversationID,
		Kind:            kind,
		Attachments:     cmd.Attachments,
		Bid:             cmd.Bid,
		ReceivedAt:      now,
	}, nil
}

// formatAmount renders a bid amount the way it appears in conversation
// summaries, e.g. 15000 -> "15,000".
func formatAmount(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	whole := int64(amount)
	frac := int64(math.Round((amount - float64(whole)) * 100))
	if frac == 100 {
		whole++
		frac = 0
	}
	str := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, d := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	out := b.String()
	if frac > 0 {
		out = fmt.Sprintf("%s.%02d", out, frac)
	}
	if neg {
		out = "-" + out
	}
	return out
}
