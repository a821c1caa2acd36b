package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/hometrade/commsguard/internal/domain/messages"
	"github.com/hometrade/commsguard/internal/domain/policy"
)

// Connect opens the Postgres pool with the same limits as the MySQL path
func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		return nil, err
	}
	return db, nil
}

type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Save(ctx context.Context, m *domain.Message) error {
	const q = `
INSERT INTO filtered_messages
(id, tenant_id, transaction_id, conversation_id, sender_id, sender_role, recipient_id,
 kind, filtered_content, original_content, threats, decision, confidence, pipeline_version, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (id) DO UPDATE SET
 filtered_content=EXCLUDED.filtered_content, threats=EXCLUDED.threats,
 decision=EXCLUDED.decision, confidence=EXCLUDED.confidence, pipeline_version=EXCLUDED.pipeline_version;
`
	created := m.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		m.ID, m.TenantID, m.TransactionID, m.ConversationID, m.SenderID, m.SenderRole, m.RecipientID,
		m.Kind, m.FilteredContent, m.OriginalContent, joinThreats(m.Threats), m.Decision,
		m.Confidence, m.PipelineVersion, created,
	)
	return err
}

const messageColumns = `id, tenant_id, transaction_id, conversation_id, sender_id, sender_role, recipient_id,
       kind, filtered_content, original_content, threats, decision, confidence, pipeline_version, created_at`

func (r *MessageRepository) Get(ctx context.Context, tenant string, id domain.MessageID) (*domain.Message, error) {
	const q = `
SELECT ` + messageColumns + `
FROM filtered_messages
WHERE tenant_id=$1 AND id=$2 LIMIT 1;
`
	var m domain.Message
	var threats string
	if err := r.db.QueryRowContext(ctx, q, tenant, id).Scan(
		&m.ID, &m.TenantID, &m.TransactionID, &m.ConversationID, &m.SenderID, &m.SenderRole, &m.RecipientID,
		&m.Kind, &m.FilteredContent, &m.OriginalContent, &threats, &m.Decision, &m.Confidence,
		&m.PipelineVersion, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.Threats = splitThreats(threats)
	return &m, nil
}

func (r *MessageRepository) Latest(ctx context.Context, tenant string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT ` + messageColumns + `
FROM filtered_messages
WHERE tenant_id=$1 ORDER BY created_at DESC LIMIT $2;
`
	return r.queryMessages(ctx, q, tenant, limit)
}

func (r *MessageRepository) History(ctx context.Context, tenant, conversationID string, limit int) ([]*domain.Message, error) {
	if limit <= 0 {
		limit = 3
	}
	const q = `
SELECT ` + messageColumns + `
FROM filtered_messages
WHERE tenant_id=$1 AND conversation_id=$2
ORDER BY created_at DESC LIMIT $3;
`
	return r.queryMessages(ctx, q, tenant, conversationID, limit)
}

func (r *MessageRepository) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, error) {
	if sinceDays <= 0 {
		sinceDays = 7
	}
	cut := time.Now().AddDate(0, 0, -sinceDays)
	const q = `
SELECT COUNT(*) FILTER (WHERE decision = $1),
       COUNT(*) FILTER (WHERE decision = $2)
FROM filtered_messages
WHERE tenant_id=$3 AND created_at >= $4;
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
		var m domain.Message
		var threats string
		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.TransactionID, &m.ConversationID, &m.SenderID, &m.SenderRole, &m.RecipientID,
			&m.Kind, &m.FilteredContent, &m.OriginalContent, &threats, &m.Decision, &m.Confidence,
			&m.PipelineVersion, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		m.Threats = splitThreats(threats)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func joinThreats(cats []policy.ThreatCategory) string {
	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		parts = append(parts, string(c))
	}
	return strings.Join(parts, ",")
}

func splitThreats(s string) []policy.ThreatCategory {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []policy.ThreatCategory
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, policy.ThreatCategory(p))
		}
	}
	return out
}
