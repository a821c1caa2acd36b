package stageerrors

import "time"

// StageError represents a persisted pipeline stage failure kept for operator
// remediation. A failed bid-field write, for example, never un-saves the bid;
// it lands here instead.
type StageError struct {
	ID        int64     `json:"id"`
	TenantID  string    `json:"tenant_id"`
	MessageID string    `json:"message_id"`
	Stage     string    `json:"stage"` // classify | persist | bid_persist | annotate | evidence
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
