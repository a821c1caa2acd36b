package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/hometrade/commsguard/internal/domain/messages"
	"github.com/hometrade/commsguard/internal/domain/policy"
)

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Save insert/update filtered message record. Single-row upsert keeps
// concurrent pipelines for different messages independent.
func (r *MessageRepository) Save(ctx context.Context, m *domain.Message) error {
	const q = `
INSERT INTO filtered_messages
(id, tenant_id, transaction_id, conversation_id, sender_id, sender_role, recipient_id,
 kind, filtered_content, original_content, threats, decision, confidence, pipeline_version, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 filtered_content=VALUES(filtered_content), threats=VALUES(threats),
 decision=VALUES(decision), confidence=VALUES(confidence), pipeline_version=VALUES(pipeline_version);
`
	tenant := stringOrDash(m.TenantID)
	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		m.ID, tenant, m.TransactionID, m.ConversationID, m.SenderID, m.SenderRole, m.RecipientID,
		m.Kind, m.FilteredContent, m.OriginalContent, joinThreats(m.Threats), m.Decision,
		m.Confidence, m.PipelineVersion, created,
	)
	return err
}

const messageColumns = `id, tenant_id, transaction_id, conversation_id, sender_id, sender_role, recipient_id,
       kind, filtered_content, original_content, threats, decision, confidence, pipeline_version, created_at`

func scanMessage(row interface{ Scan(...any) error }) (*domain.Message, error) {
	var m domain.Message
	var threats string
	if err := row.Scan(
		&m.ID, &m.TenantID, &m.TransactionID, &m.ConversationID, &m.SenderID, &m.SenderRole, &m.RecipientID,
		&m.Kind, &m.FilteredContent, &m.OriginalContent, &threats, &m.Decision, &m.Confidence,
		&m.PipelineVersion, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.Threats = splitThreats(threats)
	return &m, nil
}

// Get by ID + Tenant
func (r *MessageRepository) Get(ctx context.Context, tenant string, id domain.MessageID) (*domain.Message, error) {
	const q = `
SELECT ` + messageColumns + `
FROM filtered_messages
WHERE tenant_id=? AND id=? LIMIT 1;
`
	return scanMessage(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Latest delivered messages per tenant
func (r *MessageRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT ` + messageColumns + `
FROM filtered_messages
WHERE tenant_id=? ORDER BY created_at DESC LIMIT ?;
`
	return r.queryMessages(ctx, q, tenant, limit)
}

// History returns the newest delivered turns on one conversation, used as
// classifier context.
func (r *MessageRepository) History(ctx context.Context, tenant, conversationID string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = 3
	}
	const q = `
SELECT ` + messageColumns + `
FROM filtered_messages
WHERE tenant_id=? AND conversation_id=?
ORDER BY created_at DESC LIMIT ?;
`
	return r.queryMessages(ctx, q, tenant, conversationID, limit)
}

// Summary counts delivered messages per decision since N days
func (r *MessageRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)
	const q = `
SELECT COALESCE(SUM(decision = ?),0) AS allowed,
       COALESCE(SUM(decision = ?),0) AS redacted
FROM filtered_messages
WHERE tenant_id=? AND created_at >= ?;
`
	var allowed, redacted int
	if err := r.db.QueryRowContext(ctx, q, policy.DecisionAllow, policy.DecisionRedact, tenant, cut).Scan(&allowed, &redacted); err != nil {
		return 0, 0, err
	}
	return allowed, redacted, nil
}

func (r *MessageRepository) queryMessages(ctx context.Context, q string, args ...any) ([]*domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
