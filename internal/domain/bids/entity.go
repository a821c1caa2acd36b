package bids

import "time"

// BidID identifier type
type BidID string

// Submission is the inbound structured bid payload. Amount and timeline are
// numeric/date fields and are never filtered; the three prose fields are each
// independently subject to classification and redaction.
type Submission struct {
	Amount        float64   `json:"amount"`
	TimelineStart time.Time `json:"timeline_start"`
	TimelineEnd   time.Time `json:"timeline_end"`
	ProposalText  string    `json:"proposal_text"`
	ApproachText  string    `json:"approach_text"`
	WarrantyText  string    `json:"warranty_text"`
}

// Record is the persisted bid with filtered field values.
type Record struct {
	ID                 BidID     `json:"id"`
	TenantID           string    `json:"tenant_id"`
	TransactionID      string    `json:"transaction_id"`
	ProviderID         string    `json:"provider_id"`
	Amount             float64   `json:"amount"`
	TimelineStart      time.Time `json:"timeline_start"`
	TimelineEnd        time.Time `json:"timeline_end"`
	ProposalText       string    `json:"proposal_text"`
	ApproachText       string    `json:"approach_text"`
	WarrantyText       string    `json:"warranty_text"`
	FilteredByPipeline bool      `json:"filtered_by_pipeline"`
	CreatedAt          time.Time `json:"created_at"`
}
