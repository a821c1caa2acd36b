package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/hometrade/commsguard/internal/domain/messages"
)

type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, rec *domain.AuditRecord) error {
	const q = `
INSERT INTO blocked_messages_audit
(id, tenant_id, message_id, transaction_id, sender_id, sender_role,
 original_content, threats, confidence, explanation, evidence_url, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12);
`
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, rec.TenantID, rec.MessageID, rec.TransactionID, rec.SenderID, rec.SenderRole,
		rec.OriginalContent, joinThreats(rec.Threats), rec.Confidence, rec.Explanation,
		rec.EvidenceURL, created,
	)
	return err
}

func (r *AuditRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.AuditRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, message_id, transaction_id, sender_id, sender_role,
       original_content, threats, confidence, explanation, evidence_url, created_at
FROM blocked_messages_audit
WHERE tenant_id=$1 ORDER BY created_at DESC LIMIT $2;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		var threats string
		if err := rows.Scan(
			&rec.ID, &rec.TenantID, &rec.MessageID, &rec.TransactionID, &rec.SenderID, &rec.SenderRole,
			&rec.OriginalContent, &threats, &rec.Confidence, &rec.Explanation, &rec.EvidenceURL, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.Threats = splitThreats(threats)
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *AuditRepository) CountSince(ctx context.Context, tenant string, sinceDays int) (int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)
	const q = `SELECT COUNT(*) FROM blocked_messages_audit WHERE tenant_id=$1 AND created_at >= $2;`
	var n int
	if err := r.db.QueryRowContext(ctx, q, tenant, cut).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
