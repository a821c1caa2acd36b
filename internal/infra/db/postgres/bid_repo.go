package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/hometrade/commsguard/internal/domain/bids"
)

type BidRepository struct {
	db *sql.DB
}

func NewBidRepository(db *sql.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) Upsert(ctx context.Context, b *domain.Record) error {
	const q = `
INSERT INTO bids
(id, tenant_id, transaction_id, provider_id, amount, timeline_start, timeline_end,
 proposal_text, approach_text, warranty_text, filtered_by_pipeline, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET
 amount=EXCLUDED.amount, timeline_start=EXCLUDED.timeline_start, timeline_end=EXCLUDED.timeline_end,
 proposal_text=EXCLUDED.proposal_text, approach_text=EXCLUDED.approach_text,
 warranty_text=EXCLUDED.warranty_text, filtered_by_pipeline=EXCLUDED.filtered_by_pipeline;
`
	created := b.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		b.ID, b.TenantID, b.TransactionID, b.ProviderID,
		b.Amount, b.TimelineStart, b.TimelineEnd,
		b.ProposalText, b.ApproachText, b.WarrantyText, b.FilteredByPipeline, created,
	)
	return err
}

const bidColumns = `id, tenant_id, transaction_id, provider_id, amount, timeline_start, timeline_end,
       proposal_text, approach_text, warranty_text, filtered_by_pipeline, created_at`

func (r *BidRepository) Get(ctx context.Context, tenant string, id domain.BidID) (*domain.Record, error) {
	const q = `
SELECT ` + bidColumns + `
FROM bids
WHERE tenant_id=$1 AND id=$2 LIMIT 1;
`
	var b domain.Record
	if err := r.db.QueryRowContext(ctx, q, tenant, id).Scan(
		&b.ID, &b.TenantID, &b.TransactionID, &b.ProviderID, &b.Amount, &b.TimelineStart, &b.TimelineEnd,
		&b.ProposalText, &b.ApproachText, &b.WarrantyText, &b.FilteredByPipeline, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BidRepository) ListByTransaction(ctx context.Context, tenant, transactionID string) ([]*domain.Record, error) {
	const q = `
SELECT ` + bidColumns + `
FROM bids
WHERE tenant_id=$1 AND transaction_id=$2
ORDER BY created_at DESC;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Record
	for rows.Next() {
		var b domain.Record
		if err := rows.Scan(
			&b.ID, &b.TenantID, &b.TransactionID, &b.ProviderID, &b.Amount, &b.TimelineStart, &b.TimelineEnd,
			&b.ProposalText, &b.ApproachText, &b.WarrantyText, &b.FilteredByPipeline, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}
