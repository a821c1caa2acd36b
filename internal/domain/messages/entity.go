package messages

import (
	"time"

	"github.com/hometrade/commsguard/internal/domain/bids"
	"github.com/hometrade/commsguard/internal/domain/policy"
)

// MessageID identifier type
type MessageID string

// SenderRole enum
type SenderRole string

const (
	RoleOwner    SenderRole = "owner"
	RoleProvider SenderRole = "provider"
)

// Kind is the closed content-kind variant. Switches over it in ingestion,
// redaction and persistence are exhaustive; there is no catch-all dispatch.
type Kind string

const (
	KindText          Kind = "text"
	KindImage         Kind = "image"
	KindDocument      Kind = "document"
	KindBidSubmission Kind = "bid_submission"
	KindSystem        Kind = "system"
)

// Attachment carries one raw attachment payload for analysis.
type Attachment struct {
	Data     []byte `json:"-"`
	MimeKind string `json:"mime_kind"` // image | document
	Filename string `json:"filename"`
}

// Unit is one analyzable inbound message. Immutable after ingestion: the
// pipeline reads it, it never writes back into it.
type Unit struct {
	ID              MessageID
	TenantID        string
	OriginalContent string
	// CombinedContent is what actually goes to the classifier. For bid
	// submissions the prose fields are concatenated in so short fragments
	// cannot evade detection individually.
	CombinedContent string
	SenderRole      SenderRole
	SenderID        string
	RecipientID     string
	TransactionID   string
	ConversationID  string
	Kind            Kind
	Attachments     []Attachment
	Bid             *bids.Submission
	ReceivedAt      time.Time
}

// Filtered is the outcome of the pipeline for one unit.
type Filtered struct {
	FilteredContent     string                  `json:"filtered_content"`
	Decision            policy.Decision         `json:"decision"`
	ThreatsDetected     []policy.ThreatCategory `json:"threats_detected"`
	Confidence          float64                 `json:"confidence"`
	ApprovedForDelivery bool                    `json:"approved_for_delivery"`
}

// Message is the persisted live-store record. OriginalContent is retained
// for audit only and is never re-exposed to the counterpart.
type Message struct {
	ID              MessageID               `json:"id"`
	TenantID        string                  `json:"tenant_id"`
	TransactionID   string                  `json:"transaction_id"`
	ConversationID  string                  `json:"conversation_id,omitempty"`
	SenderID        string                  `json:"sender_id"`
	SenderRole      SenderRole              `json:"sender_role"`
	RecipientID     string                  `json:"recipient_id,omitempty"`
	Kind            Kind                    `json:"kind"`
	FilteredContent string                  `json:"filtered_content"`
	OriginalContent string                  `json:"-"`
	Threats         []policy.ThreatCategory `json:"threats_detected"`
	Decision        policy.Decision         `json:"decision"`
	Confidence      float64                 `json:"confidence"`
	PipelineVersion string                  `json:"pipeline_version"`
	CreatedAt       time.Time               `json:"created_at"`
}
