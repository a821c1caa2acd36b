package postgres

import (
	"context"
	"database/sql"

	domain "github.com/hometrade/commsguard/internal/domain/transactions"
)

type TransactionRegistry struct {
	db *sql.DB
}

func NewTransactionRegistry(db *sql.DB) *TransactionRegistry {
	return &TransactionRegistry{db: db}
}

func (r *TransactionRegistry) Get(ctx context.Context, tenant, id string) (*domain.Transaction, error) {
	const q = `
SELECT t.id, t.tenant_id, t.owner_id, t.category, t.budget,
       (SELECT COUNT(*) FROM bids b WHERE b.tenant_id = t.tenant_id AND b.transaction_id = t.id) AS bid_count
FROM transactions t
WHERE t.tenant_id=$1 AND t.id=$2 LIMIT 1;
`
	var tx domain.Transaction
	if err := r.db.QueryRowContext(ctx, q, tenant, id).Scan(
		&tx.ID, &tx.TenantID, &tx.OwnerID, &tx.Category, &tx.Budget, &tx.BidCount,
	); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRegistry) OtherProviders(ctx context.Context, tenant, transactionID, excludeID string) ([]string, error) {
	const q = `
SELECT DISTINCT sender_id
FROM filtered_messages
WHERE tenant_id=$1 AND transaction_id=$2 AND sender_role='provider' AND sender_id<>$3
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
