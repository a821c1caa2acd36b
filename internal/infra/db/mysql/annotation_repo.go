package mysql

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

// Save inserts one single-target annotation
func (r *AnnotationRepository) Save(ctx context.Context, a *domain.Annotation) error {
	const q = `
INSERT INTO message_annotations
(id, tenant_id, transaction_id, visible_to_role, visible_to_id, content, kind, created_at)
VALUES (?,?,?,?,?,?,?,?);
`
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		a.ID, stringOrDash(a.TenantID), a.TransactionID, a.VisibleToRole, a.VisibleToID,
		a.Content, a.Kind, created,
	)
	return err
}

// ListForTarget returns the newest annotations visible to one participant
func (r *AnnotationRepository) ListForTarget(ctx context.Context, tenant, targetID string, limit int) ([]*domain.Annotation, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, tenant_id, transaction_id, visible_to_role, visible_to_id, content, kind, created_at
FROM message_annotations
WHERE tenant_id=? AND visible_to_id=?
ORDER BY created_at DESC LIMIT ?;
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
