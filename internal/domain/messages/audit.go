package messages

import (
	"time"

	"github.com/hometrade/commsguard/internal/domain/policy"
)

// AuditRecord captures a blocked message in full. Blocked content never
// enters the live store; this append-only record is the only place it lives.
type AuditRecord struct {
	ID              string                  `json:"id"`
	TenantID        string                  `json:"tenant_id"`
	MessageID       MessageID               `json:"message_id"`
	TransactionID   string                  `json:"transaction_id"`
	SenderID        string                  `json:"sender_id"`
	SenderRole      SenderRole              `json:"sender_role"`
	OriginalContent string                  `json:"original_content"`
	Threats         []policy.ThreatCategory `json:"threats_detected"`
	Confidence      float64                 `json:"confidence"`
	Explanation     string                  `json:"explanation,omitempty"`
	EvidenceURL     string                  `json:"evidence_url,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
}
