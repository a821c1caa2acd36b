package moderation

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/hometrade/commsguard/internal/domain/bids"
	"github.com/hometrade/commsguard/internal/domain/classifier"
	"github.com/hometrade/commsguard/internal/domain/messages"
	"github.com/hometrade/commsguard/internal/domain/policy"
	"github.com/hometrade/commsguard/internal/domain/scopechange"
	"github.com/hometrade/commsguard/internal/domain/stageerrors"
)

// SubmitMessage runs one message through the full pipeline: ingest,
// classify, decide, detect scope changes, redact, annotate, persist.
// Stages are strictly sequential for one message; once a message enters the
// pipeline it always runs to a terminal decision, falling back to
// conservative defaults on stage errors rather than propagating them.
func (s *Service) SubmitMessage(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	s.Stats.IncProcessed()
	now := s.Clock.Now()
	id := messages.MessageID(uuid.New().String())

	unit, err := s.ingest(cmd, id, now)
	if err != nil {
		return SubmitResult{}, err
	}

	// Classifier context: transaction summary plus up to the last three
	// delivered turns. Both reads are best-effort.
	txContext := s.transactionContext(ctx, unit)
	history := s.recentHistory(ctx, unit)

	primary := s.classifyText(ctx, unit.CombinedContent, unit, txContext, history)
	confidence := primary.Confidence
	labels := append([]string{}, primary.ThreatLabels...)

	// Attachments are analyzed one at a time; no internal fan-out, so the
	// externally-incurred cost stays proportional to attachment count.
	evidenceURL := ""
	for i := range unit.Attachments {
		analysis, url := s.analyzeAttachment(ctx, unit, &unit.Attachments[i])
		s.Stats.IncAttachmentAnalyzed()
		if evidenceURL == "" {
			evidenceURL = url
		}
		if analysis.ContactInfoDetected {
			labels = append(labels, "contact information in attachment")
		}
		if analysis.Confidence < confidence {
			confidence = analysis.Confidence
		}
	}

	threats := policy.MapThreatLabels(labels)
	decision := s.decide(primary, threats)

	change := s.detectScopeChange(ctx, unit, primary)

	filtered, fieldOutcomes := s.redact(ctx, unit, decision, threats, primary)

	result := SubmitResult{
		MessageID:       string(id),
		Approved:        decision != policy.DecisionBlock,
		FilteredContent: filtered,
		Decision:        decision,
		ThreatsDetected: threats,
		ConfidenceScore: confidence,
	}
	if change != nil {
		result.ScopeChanges = change.Categories
		result.OtherParticipantsToNotify = change.OtherParticipantIDs
		result.ScopeQuestion = change.Question
	}

	s.persist(ctx, unit, &result, threats, confidence, evidenceURL, fieldOutcomes)
	s.annotate(ctx, unit, &result, change, threats)

	switch decision {
	case policy.DecisionAllow:
		s.Stats.IncAllowed()
	case policy.DecisionRedact:
		s.Stats.IncRedacted()
	case policy.DecisionBlock:
		s.Stats.IncBlocked()
	}
	return result, nil
}

// classifyText calls the external classifier under the per-call timeout and
// engages the deterministic fallback analyzer when it is unavailable. The
// caller never sees classifier outages as errors.
func (s *Service) classifyText(ctx context.Context, content string, unit *messages.Unit, txContext string, history []string) classifier.Result {
	cctx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()

	res, err := s.Classifier.ClassifyText(cctx, classifier.Request{
		Content:            content,
		SenderRole:         string(unit.SenderRole),
		TransactionContext: txContext,
		RecentHistory:      history,
	})
	if err != nil {
		s.Stats.IncClassifierError()
		s.Stats.IncFallback()
		log.Printf("classifier unavailable, engaging fallback: tenant=%s message=%s err=%v", unit.TenantID, unit.ID, err)
		return policy.Fallback(content)
	}
	return res
}

// decide applies the priority table. The fallback analyzer is deliberately
// coarser than the primary table: any threat it detects collapses to a block.
func (s *Service) decide(primary classifier.Result, threats []policy.ThreatCategory) policy.Decision {
	if primary.Source == "fallback" && len(threats) > 0 {
		return policy.DecisionBlock
	}
	return policy.Decide(threats)
}

// analyzeAttachment uploads the raw bytes for audit evidence, then runs the
// kind-appropriate analysis. Every failure path is fail-closed.
func (s *Service) analyzeAttachment(ctx context.Context, unit *messages.Unit, att *messages.Attachment) (classifier.ImageAnalysis, string) {
	url := ""
	if s.Evidence != nil && len(att.Data) > 0 {
		key := fmt.Sprintf("%s/%s/%s/%s", unit.TenantID, unit.TransactionID, unit.ID, path.Base(att.Filename))
		uctx, cancel := context.WithTimeout(ctx, s.callTimeout())
		u, err := s.Evidence.Put(uctx, key, att.Data, contentTypeFor(att))
		cancel()
		if err != nil {
			s.recordStageError(ctx, unit, "evidence", err)
		} else {
			url = u
		}
	}

	switch att.MimeKind {
	case "image":
		cctx, cancel := context.WithTimeout(ctx, s.callTimeout())
		defer cancel()
		analysis, err := s.Classifier.ClassifyImage(cctx, att.Data, strings.TrimPrefix(path.Ext(att.Filename), "."))
		if err != nil {
			s.Stats.IncClassifierError()
			return classifier.FailClosed("image analysis error: " + err.Error()), url
		}
		return analysis, url
	default: // document
		return s.analyzeDocument(ctx, unit, att), url
	}
}

// analyzeDocument extracts plain text and routes it through the text
// classifier. Zero-length extraction and extraction errors are fail-closed
// identically to the image path.
func (s *Service) analyzeDocument(ctx context.Context, unit *messages.Unit, att *messages.Attachment) classifier.ImageAnalysis {
	if s.Extractor == nil {
		return classifier.FailClosed("no document extractor configured")
	}
	text, err := s.Extractor.Extract(att.Data, att.Filename)
	if err != nil {
		return classifier.FailClosed("document extraction error: " + err.Error())
	}
	if strings.TrimSpace(text) == "" {
		return classifier.FailClosed("document extraction produced no text")
	}

	res := s.classifyText(ctx, text, unit, "", nil)
	threats := policy.MapThreatLabels(res.ThreatLabels)
	sample := text
	if len(sample) > 500 {
		sample = sample[:500]
	}
	return classifier.ImageAnalysis{
		ContactInfoDetected: len(threats) > 0,
		Confidence:          res.Confidence,
		Explanation:         res.Explanation,
		Phones:              []string{},
		Emails:              []string{},
		Addresses:           []string{},
		SocialHandles:       []string{},
		TextSample:          sample,
	}
}

// detectScopeChange runs only for owner senders with scope-change labels and
// produces nothing when no other provider is on the transaction.
func (s *Service) detectScopeChange(ctx context.Context, unit *messages.Unit, primary classifier.Result) *scopechange.Change {
	if unit.SenderRole != messages.RoleOwner || len(primary.ScopeChangeLabels) == 0 {
		return nil
	}
	others, err := s.Transactions.OtherProviders(ctx, unit.TenantID, unit.TransactionID, unit.SenderID)
	if err != nil {
		s.recordStageError(ctx, unit, "scope_lookup", err)
		return nil
	}
	return scopechange.Detect(unit.SenderRole, primary, others)
}

func (s *Service) transactionContext(ctx context.Context, unit *messages.Unit) string {
	tx, err := s.Transactions.Get(ctx, unit.TenantID, unit.TransactionID)
	if err != nil || tx == nil {
		return ""
	}
	return fmt.Sprintf("project category: %s, budget: $%s, bids so far: %d", tx.Category, formatAmount(tx.Budget), tx.BidCount)
}

func (s *Service) recentHistory(ctx context.Context, unit *messages.Unit) []string {
	if unit.ConversationID == "" {
		return nil
	}
	prior, err := s.Messages.History(ctx, unit.TenantID, unit.ConversationID, historyDepth)
	if err != nil {
		return nil
	}
	var out []string
	for _, m := range prior {
		out = append(out, fmt.Sprintf("%s: %s", m.SenderRole, m.FilteredContent))
	}
	return out
}

func (s *Service) recordStageError(ctx context.Context, unit *messages.Unit, stage string, cause error) {
	log.Printf("stage error: tenant=%s message=%s stage=%s err=%v", unit.TenantID, unit.ID, stage, cause)
	if s.StageErrors == nil {
		return
	}
	e := &stageerrors.StageError{
		TenantID:  unit.TenantID,
		MessageID: string(unit.ID),
		Stage:     stage,
		Message:   cause.Error(),
		CreatedAt: s.Clock.Now(),
	}
	if err := s.StageErrors.Save(ctx, e); err != nil {
		log.Printf("stage error log write failed: tenant=%s stage=%s err=%v", unit.TenantID, stage, err)
	}
}

func contentTypeFor(att *messages.Attachment) string {
	if att.MimeKind == "image" {
		switch strings.ToLower(path.Ext(att.Filename)) {
		case ".png":
			return "image/png"
		case ".gif":
			return "image/gif"
		default:
			return "image/jpeg"
		}
	}
	if strings.ToLower(path.Ext(att.Filename)) == ".pdf" {
		return "application/pdf"
	}
	return "application/octet-stream"
}

// bidFieldOutcome tracks one prose field's independent pass.
type bidFieldOutcome struct {
	field    string
	filtered string
	blocked  bool
}

// redact produces the delivered content. The switch over Kind is exhaustive;
// adding a new kind fails here first.
func (s *Service) redact(ctx context.Context, unit *messages.Unit, decision policy.Decision, threats []policy.ThreatCategory, primary classifier.Result) (string, []bidFieldOutcome) {
	switch unit.Kind {
	case messages.KindText, messages.KindImage, messages.KindDocument, messages.KindSystem:
		switch decision {
		case policy.DecisionBlock:
			return "", nil
		case policy.DecisionRedact:
			return policy.Redact(unit.OriginalContent, primary.AlternativeSafeText), nil
		default:
			return unit.OriginalContent, nil
		}
	case messages.KindBidSubmission:
		outcomes := s.redactBidFields(ctx, unit)
		if decision == policy.DecisionBlock {
			return "", outcomes
		}
		return fmt.Sprintf("Bid submitted: $%s", formatAmount(unit.Bid.Amount)), outcomes
	}
	// unreachable: ingest rejects unknown kinds
	return "", nil
}

// redactBidFields classifies and redacts each prose field on its own pass,
// in addition to the combined pass. Amount and timeline are numeric/date
// fields and are never filtered. A blocked field becomes an explicit
// placeholder; it is never silently dropped and it never blocks the others.
func (s *Service) redactBidFields(ctx context.Context, unit *messages.Unit) []bidFieldOutcome {
	fields := []struct {
		name string
		text string
	}{
		{"proposal", unit.Bid.ProposalText},
		{"approach", unit.Bid.ApproachText},
		{"warranty", unit.Bid.WarrantyText},
	}

	var out []bidFieldOutcome
	for _, f := range fields {
		if strings.TrimSpace(f.text) == "" {
			out = append(out, bidFieldOutcome{field: f.name, filtered: f.text})
			continue
		}
		res := s.classifyText(ctx, f.text, unit, "", nil)
		threats := policy.MapThreatLabels(res.ThreatLabels)
		action := s.decide(res, threats)
		o := bidFieldOutcome{field: f.name}
		switch action {
		case policy.DecisionBlock:
			o.filtered = policy.BlockPlaceholder(threats)
			o.blocked = true
		case policy.DecisionRedact:
			o.filtered = policy.Redact(f.text, res.AlternativeSafeText)
		default:
			o.filtered = f.text
		}
		out = append(out, o)
	}
	return out
}

// persist writes the terminal outcome: approved messages to the live store,
// blocked ones to the append-only audit log, and bid field values to the bid
// record. A live-store failure is surfaced as delivery-not-confirmed, never
// as a false success.
func (s *Service) persist(ctx context.Context, unit *messages.Unit, result *SubmitResult, threats []policy.ThreatCategory, confidence float64, evidenceURL string, fieldOutcomes []bidFieldOutcome) {
	pctx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()

	if result.Decision == policy.DecisionBlock {
		rec := &messages.AuditRecord{
			ID:              uuid.New().String(),
			TenantID:        unit.TenantID,
			MessageID:       unit.ID,
			TransactionID:   unit.TransactionID,
			SenderID:        unit.SenderID,
			SenderRole:      unit.SenderRole,
			OriginalContent: unit.CombinedContent,
			Threats:         threats,
			Confidence:      confidence,
			EvidenceURL:     evidenceURL,
			CreatedAt:       s.Clock.Now(),
		}
		if err := s.Audit.Append(pctx, rec); err != nil {
			s.Stats.IncPersistenceFailure()
			s.recordStageError(ctx, unit, "audit_persist", err)
			return
		}
		result.DeliveryConfirmed = true // blocked outcome recorded
		return
	}

	m := &messages.Message{
		ID:              unit.ID,
		TenantID:        unit.TenantID,
		TransactionID:   unit.TransactionID,
		ConversationID:  unit.ConversationID,
		SenderID:        unit.SenderID,
		SenderRole:      unit.SenderRole,
		RecipientID:     unit.RecipientID,
		Kind:            unit.Kind,
		FilteredContent: result.FilteredContent,
		OriginalContent: unit.OriginalContent,
		Threats:         threats,
		Decision:        result.Decision,
		Confidence:      confidence,
		PipelineVersion: s.version(),
		CreatedAt:       s.Clock.Now(),
	}
	if err := s.Messages.Save(pctx, m); err != nil {
		s.Stats.IncPersistenceFailure()
		s.recordStageError(ctx, unit, "persist", err)
		result.DeliveryConfirmed = false
	} else {
		result.DeliveryConfirmed = true
	}

	// Bid record persists even when individual fields were placeholder
	// blocked; only a fully blocked whole-message submission skips it.
	if unit.Kind == messages.KindBidSubmission {
		s.persistBid(ctx, unit, result, fieldOutcomes)
	}
}

func (s *Service) persistBid(ctx context.Context, unit *messages.Unit, result *SubmitResult, fieldOutcomes []bidFieldOutcome) {
	rec := &bids.Record{
		ID:                 bids.BidID(uuid.New().String()),
		TenantID:           unit.TenantID,
		TransactionID:      unit.TransactionID,
		ProviderID:         unit.SenderID,
		Amount:             unit.Bid.Amount,
		TimelineStart:      unit.Bid.TimelineStart,
		TimelineEnd:        unit.Bid.TimelineEnd,
		FilteredByPipeline: true,
		CreatedAt:          s.Clock.Now(),
	}
	for _, o := range fieldOutcomes {
		switch o.field {
		case "proposal":
			rec.ProposalText = o.filtered
		case "approach":
			rec.ApproachText = o.filtered
		case "warranty":
			rec.WarrantyText = o.filtered
		}
	}

	pctx, cancel := context.WithTimeout(ctx, s.callTimeout())
	defer cancel()
	if err := s.Bids.Upsert(pctx, rec); err != nil {
		// a failed field write does not un-save anything already persisted;
		// it is recorded for operator remediation
		s.Stats.IncPersistenceFailure()
		s.recordStageError(ctx, unit, "bid_persist", err)
		return
	}
	s.Stats.IncBidSaved()
	result.BidSaved = true
	result.BidID = string(rec.ID)
	result.BidSummary = fmt.Sprintf("Bid submitted: $%s", formatAmount(unit.Bid.Amount))
}
