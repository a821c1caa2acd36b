package transactions

// Transaction is the read-only project context supplied to the classifier:
// what kind of work this is and roughly what it should cost.
type Transaction struct {
	ID       string  `json:"id"`
	TenantID string  `json:"tenant_id"`
	OwnerID  string  `json:"owner_id"`
	Category string  `json:"category"`
	Budget   float64 `json:"budget"`
	BidCount int     `json:"bid_count"`
}
