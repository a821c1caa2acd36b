package mysql

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

// Upsert writes the filtered bid field values. Amount and timeline pass
// through untouched; the prose columns only ever hold pipeline-filtered text.
func (r *BidRepository) Upsert(ctx context.Context, b *domain.Record) error {
	const q = `
INSERT INTO bids
(id, tenant_id, transaction_id, provider_id, amount, timeline_start, timeline_end,
 proposal_text, approach_text, warranty_text, filtered_by_pipeline, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 amount=VALUES(amount), timeline_start=VALUES(timeline_start), timeline_end=VALUES(timeline_end),
 proposal_text=VALUES(proposal_text), approach_text=VALUES(approach_text),
 warranty_text=VALUES(warranty_text), filtered_by_pipeline=VALUES(filtered_by_pipeline);
`
	created := b.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		b.ID, stringOrDash(b.TenantID), b.TransactionID, b.ProviderID,
		b.Amount, b.TimelineStart, b.TimelineEnd,
		b.ProposalText, b.ApproachText, b.WarrantyText, b.FilteredByPipeline, created,
	)
	return err
}

const bidColumns = `id, tenant_id, transaction_id, provider_id, amount, timeline_start, timeline_end,
       proposal_text, approach_text, warranty_text, filtered_by_pipeline, created_at`

// Get by ID + Tenant
func (r *BidRepository) Get(ctx context.Context, tenant string, id domain.BidID) (*domain.Record, error) {
	const q = `
SELECT ` + bidColumns + `
FROM bids
WHERE tenant_id=? AND id=? LIMIT 1;
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

// ListByTransaction returns all bids on one transaction
func (r *BidRepository) ListByTransaction(ctx context.Context, tenant, transactionID string) ([]*domain.Record, error) {
	const q = `
SELECT ` + bidColumns + `
FROM bids
WHERE tenant_id=? AND transaction_id=?
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
