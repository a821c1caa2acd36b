package messages

import "time"

// AnnotationKind enum
type AnnotationKind string

const (
	AnnotationWarning       AnnotationKind = "warning"
	AnnotationInfo          AnnotationKind = "info"
	AnnotationSuggestion    AnnotationKind = "suggestion"
	AnnotationScopeQuestion AnnotationKind = "scope_question"
)

// Annotation is a private explanatory note. It is always scoped to exactly
// one target participant, never broadcast.
type Annotation struct {
	ID            string         `json:"id"`
	TenantID      string         `json:"tenant_id"`
	TransactionID string         `json:"transaction_id"`
	VisibleToRole SenderRole     `json:"visible_to_role"`
	VisibleToID   string         `json:"visible_to_id"`
	Content       string         `json:"content"`
	Kind          AnnotationKind `json:"kind"`
	CreatedAt     time.Time      `json:"created_at"`
}
