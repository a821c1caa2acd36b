package messages

import "context"

// Repository port for the live message store.
type Repository interface {
	Save(ctx context.Context, m *Message) error
	Get(ctx context.Context, tenant string, id MessageID) (*Message, error)
	Latest(ctx context.Context, tenant string, limit int) ([]*Message, error)
	// History returns the most recent delivered messages on a conversation,
	// newest first, for classifier context.
	History(ctx context.Context, tenant, conversationID string, limit int) ([]*Message, error)
	// Summary counts delivered messages per decision over the last N days.
	Summary(ctx context.Context, tenant string, sinceDays int) (allowed, redacted int, err error)
}

// AuditRepository port for the append-only blocked-message log.
type AuditRepository interface {
	Append(ctx context.Context, rec *AuditRecord) error
	Latest(ctx context.Context, tenant string, limit int) ([]*AuditRecord, error)
	CountSince(ctx context.Context, tenant string, sinceDays int) (int, error)
}

// AnnotationRepository port for per-target private notes.
type AnnotationRepository interface {
	Save(ctx context.Context, a *Annotation) error
	ListForTarget(ctx context.Context, tenant, targetID string, limit int) ([]*Annotation, error)
}

// EvidenceStore port for retaining raw attachment bytes for audit.
type EvidenceStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
