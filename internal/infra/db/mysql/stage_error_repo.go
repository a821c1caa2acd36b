package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/hometrade/commsguard/internal/domain/stageerrors"
)

type StageErrorRepository struct {
	db *sql.DB
}

func NewStageErrorRepository(db *sql.DB) *StageErrorRepository {
	return &StageErrorRepository{db: db}
}

// Save inserts one stage-error entry for operator remediation
func (r *StageErrorRepository) Save(ctx context.Context, e *domain.StageError) error {
	const q = `
INSERT INTO pipeline_stage_errors
(tenant_id, message_id, stage, message, created_at)
VALUES (?,?,?,?,?);
`
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, stringOrDash(e.TenantID), e.MessageID, e.Stage, e.Message, created)
	return err
}

// Latest stage errors per tenant
func (r *StageErrorRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.StageError, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, tenant_id, message_id, stage, message, created_at
FROM pipeline_stage_errors
WHERE tenant_id=? ORDER BY created_at DESC, id DESC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.StageError
	for rows.Next() {
		var e domain.StageError
		if err := rows.Scan(&e.ID, &e.TenantID, &e.MessageID, &e.Stage, &e.Message, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
