package mysql

import (
	"context"
	"database/sql"

	domain "github.com/hometrade/commsguard/internal/domain/transactions"
)

// TransactionRegistry is a read model over the marketplace's transaction and
// message tables; the pipeline never writes transactions.
type TransactionRegistry struct {
	db *sql.DB
}

func NewTransactionRegistry(db *sql.DB) *TransactionRegistry {
	return &TransactionRegistry{db: db}
}

// Get reads category/budget context plus the bid-history aggregate
func (r *TransactionRegistry) Get(ctx context.Context, tenant, id string) (*domain.Transaction, error) {
	const q = `
SELECT t.id, t.tenant_id, t.owner_id, t.category, t.budget,
       (SELECT COUNT(*) FROM bids b WHERE b.tenant_id = t.tenant_id AND b.transaction_id = t.id) AS bid_count
FROM transactions t
WHERE t.tenant_id=? AND t.id=? LIMIT 1;
`
	var tx domain.Transaction
	if err := r.db.QueryRowContext(ctx, q, tenant, id).Scan(
		&tx.ID, &tx.TenantID, &tx.OwnerID, &tx.Category, &tx.Budget, &tx.BidCount,
	); err != nil {
		return nil, err
	}
	return &tx, nil
}

// OtherProviders returns the deduplicated providers who have exchanged any
// message on the transaction, excluding excludeID.
func (r *TransactionRegistry) OtherProviders(ctx context.Context, tenant, transactionID, excludeID string) ([]string, error) {
	const q = `
SELECT DISTINCT sender_id
FROM filtered_messages
WHERE tenant_id=? AND transaction_id=? AND sender_role='provider' AND sender_id<>?
ORDER BY sender_id;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, transactionID, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
