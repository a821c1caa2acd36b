package postgres

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/hometrade/commsguard/internal/domain/messages"
)

type AnnotationRepository struct {
	db *sql.DB
}

func NewAnnotationRepository(db *sql.DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

func (r *AnnotationRepository) Save(ctx context.Context, a *domain.Annotation) error {
	const q = `
INSERT INTO message_annotations
(id, tenant_id, transaction_id, visible_to_role, visible_to_id, content, kind, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8);
`
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		a.ID, a.TenantID, a.TransactionID, a.VisibleToRole, a.VisibleToID, a.Content, a.Kind, created,
	)
	return err
}

func (r *AnnotationRepository) ListForTarget(ctx context.Context, tenant, targetID string, limit int) ([]*domain.Annotation, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, transaction_id, visible_to_role, visible_to_id, content, kind, created_at
FROM message_annotations
WHERE tenant_id=$1 AND visible_to_id=$2
ORDER BY created_at DESC LIMIT $3;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, targetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Annotation
	for rows.Next() {
		var a domain.Annotation
		if err := rows.Scan(&a.ID, &a.TenantID, &a.TransactionID, &a.VisibleToRole, &a.VisibleToID, &a.Content, &a.Kind, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
