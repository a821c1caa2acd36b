package moderation

import (
	"context"

	"github.com/hometrade/commsguard/internal/domain/bids"
	"github.com/hometrade/commsguard/internal/domain/messages"
)

// Latest returns the newest delivered messages for a tenant
func (s *Service) Latest(ctx context.Context, tenant string, limit int) ([]*messages.Message, error) {
	return s.Messages.Latest(ctx, tenant, limit)
}

// Get returns one delivered message by id
func (s *Service) Get(ctx context.Context, tenant string, id messages.MessageID) (*messages.Message, error) {
	return s.Messages.Get(ctx, tenant, id)
}

// BlockedAudit returns the newest blocked-message audit records
func (s *Service) BlockedAudit(ctx context.Context, tenant string, limit int) ([]*messages.AuditRecord, error) {
	return s.Audit.Latest(ctx, tenant, limit)
}

// GetBid returns one bid record by id
func (s *Service) GetBid(ctx context.Context, tenant string, id bids.BidID) (*bids.Record, error) {
	return s.Bids.Get(ctx, tenant, id)
}

// AnnotationsFor returns the newest annotations visible to one participant
func (s *Service) AnnotationsFor(ctx context.Context, tenant, targetID string, limit int) ([]*messages.Annotation, error) {
	return s.Annotations.ListForTarget(ctx, tenant, targetID, limit)
}

// Summary aggregates moderation outcomes over the last N days
func (s *Service) Summary(ctx context.Context, tenant string, sinceDays int) (map[string]any, error) {
	allowed, redacted, err := s.Messages.Summary(ctx, tenant, sinceDays)
	if err != nil {
		return nil, err
	}
	blocked, err := s.Audit.CountSince(ctx, tenant, sinceDays)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"allowed":  allowed,
		"redacted": redacted,
		"blocked":  blocked,
		"total":    allowed + redacted + blocked,
	}, nil
}
