package bids

import "context"

// Repository port for bid records.
type Repository interface {
	Upsert(ctx context.Context, r *Record) error
	Get(ctx context.Context, tenant string, id BidID) (*Record, error)
	ListByTransaction(ctx context.Context, tenant, transactionID string) ([]*Record, error)
}
