package transactions

import "context"

// Registry port for the transaction read model.
type Registry interface {
	Get(ctx context.Context, tenant, id string) (*Transaction, error)
	// OtherProviders returns the deduplicated provider ids that have exchanged
	// at least one message on the transaction, excluding excludeID.
	OtherProviders(ctx context.Context, tenant, transactionID, excludeID string) ([]string, error)
}
