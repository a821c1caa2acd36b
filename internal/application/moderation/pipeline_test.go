package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hometrade/commsguard/internal/domain/bids"
	"github.com/hometrade/commsguard/internal/domain/classifier"
	"github.com/hometrade/commsguard/internal/domain/messages"
	"github.com/hometrade/commsguard/internal/domain/policy"
	"github.com/hometrade/commsguard/internal/domain/stageerrors"
	"github.com/hometrade/commsguard/internal/domain/transactions"
	"github.com/hometrade/commsguard/internal/stats"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeClassifier struct {
	textFn  func(req classifier.Request) (classifier.Result, error)
	imageFn func(data []byte, format string) (classifier.ImageAnalysis, error)
	calls   int
}

func (f *fakeClassifier) ClassifyText(ctx context.Context, req classifier.Request) (classifier.Result, error) {
	f.calls++
	if f.textFn == nil {
		return classifier.Result{Confidence: 0.95, Source: "test-model"}, nil
	}
	return f.textFn(req)
}

func (f *fakeClassifier) ClassifyImage(ctx context.Context, data []byte, format string) (classifier.ImageAnalysis, error) {
	if f.imageFn == nil {
		return classifier.ImageAnalysis{Confidence: 0.95}, nil
	}
	return f.imageFn(data, format)
}

type fakeMessages struct {
	saved   []*messages.Message
	saveErr error
	history []*messages.Message
}

func (f *fakeMessages) Save(ctx context.Context, m *messages.Message) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, m)
	return nil
}

func (f *fakeMessages) Get(ctx context.Context, tenant string, id messages.MessageID) (*messages.Message, error) {
	for _, m := range f.saved {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeMessages) Latest(ctx context.Context, tenant string, limit int) ([]*messages.Message, error) {
	return f.saved, nil
}

func (f *fakeMessages) History(ctx context.Context, tenant, conversationID string, limit int) ([]*messages.Message, error) {
	return f.history, nil
}

func (f *fakeMessages) Summary(ctx context.Context, tenant string, sinceDays int) (int, int, error) {
	return len(f.saved), 0, nil
}

type fakeAudit struct{ appended []*messages.AuditRecord }

func (f *fakeAudit) Append(ctx context.Context, rec *messages.AuditRecord) error {
	f.appended = append(f.appended, rec)
	return nil
}

func (f *fakeAudit) Latest(ctx context.Context, tenant string, limit int) ([]*messages.AuditRecord, error) {
	return f.appended, nil
}

func (f *fakeAudit) CountSince(ctx context.Context, tenant string, sinceDays int) (int, error) {
	return len(f.appended), nil
}

type fakeAnnotations struct{ saved []*messages.Annotation }

func (f *fakeAnnotations) Save(ctx context.Context, a *messages.Annotation) error {
	f.saved = append(f.saved, a)
	return nil
}

func (f *fakeAnnotations) ListForTarget(ctx context.Context, tenant, targetID string, limit int) ([]*messages.Annotation, error) {
	return f.saved, nil
}

type fakeBids struct{ upserted []*bids.Record }

func (f *fakeBids) Upsert(ctx context.Context, r *bids.Record) error {
	f.upserted = append(f.upserted, r)
	return nil
}

func (f *fakeBids) Get(ctx context.Context, tenant string, id bids.BidID) (*bids.Record, error) {
	return nil, errors.New("not found")
}

func (f *fakeBids) ListByTransaction(ctx context.Context, tenant, transactionID string) ([]*bids.Record, error) {
	return f.upserted, nil
}

type fakeRegistry struct {
	tx     *transactions.Transaction
	others []string
}

func (f *fakeRegistry) Get(ctx context.Context, tenant, id string) (*transactions.Transaction, error) {
	return f.tx, nil
}

func (f *fakeRegistry) OtherProviders(ctx context.Context, tenant, transactionID, excludeID string) ([]string, error) {
	return f.others, nil
}

type fakeStageErrors struct{ saved []*stageerrors.StageError }

func (f *fakeStageErrors) Save(ctx context.Context, e *stageerrors.StageError) error {
	f.saved = append(f.saved, e)
	return nil
}

func (f *fakeStageErrors) Latest(ctx context.Context, tenant string, limit int) ([]*stageerrors.StageError, error) {
	return f.saved, nil
}

type testEnv struct {
	svc         *Service
	classifier  *fakeClassifier
	messages    *fakeMessages
	audit       *fakeAudit
	annotations *fakeAnnotations
	bids        *fakeBids
	registry    *fakeRegistry
	stageErrors *fakeStageErrors
	stats       *stats.Collector
}

func newTestEnv() *testEnv {
	env := &testEnv{
		classifier:  &fakeClassifier{},
		messages:    &fakeMessages{},
		audit:       &fakeAudit{},
		annotations: &fakeAnnotations{},
		bids:        &fakeBids{},
		registry:    &fakeRegistry{},
		stageErrors: &fakeStageErrors{},
		stats:       stats.NewCollector(),
	}
	env.svc = &Service{
		Messages:     env.messages,
		Audit:        env.audit,
		Annotations:  env.annotations,
		Bids:         env.bids,
		Transactions: env.registry,
		Classifier:   env.classifier,
		StageErrors:  env.stageErrors,
		Stats:        env.stats,
		Clock:        fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		Version:      "test",
	}
	return env
}

func baseCommand() SubmitCommand {
	return SubmitCommand{
		TenantID:      "t1",
		Content:       "the deck framing looks solid so far",
		SenderRole:    "provider",
		SenderID:      "prov-1",
		RecipientID:   "own-1",
		TransactionID: "tx-1",
		Kind:          "text",
	}
}

func TestSubmitMessage_CleanContentAllowed(t *testing.T) {
	env := newTestEnv()
	cmd := baseCommand()

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, policy.DecisionAllow, res.Decision)
	assert.True(t, res.Approved)
	assert.True(t, res.DeliveryConfirmed)
	assert.Equal(t, cmd.Content, res.FilteredContent)
	assert.Empty(t, res.ThreatsDetected)
	assert.Empty(t, res.Annotations)

	require.Len(t, env.messages.saved, 1)
	assert.Equal(t, cmd.Content, env.messages.saved[0].FilteredContent)
	assert.Empty(t, env.audit.appended)
	assert.Equal(t, uint64(1), env.stats.MessagesAllowed)
}

func TestSubmitMessage_PhoneNumberRedacted(t *testing.T) {
	env := newTestEnv()
	env.classifier.textFn = func(req classifier.Request) (classifier.Result, error) {
		return classifier.Result{
			ThreatLabels: []string{"phone number shared"},
			Confidence:   0.9,
		}, nil
	}
	cmd := baseCommand()
	cmd.Content = "sounds good, call me at 555-123-4567 to set it up"

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, policy.DecisionRedact, res.Decision)
	assert.True(t, res.Approved)
	assert.Contains(t, res.FilteredContent, policy.PhonePlaceholder)
	assert.NotContains(t, res.FilteredContent, "555-123-4567")
	assert.Equal(t, []policy.ThreatCategory{policy.ThreatContactInfo}, res.ThreatsDetected)

	// delivered record carries the redacted text, sender gets one note
	require.Len(t, env.messages.saved, 1)
	assert.NotContains(t, env.messages.saved[0].FilteredContent, "555-123-4567")
	require.Len(t, res.Annotations, 1)
	assert.Equal(t, messages.AnnotationInfo, res.Annotations[0].Kind)
	assert.Equal(t, "prov-1", res.Annotations[0].VisibleToID)
}

func TestSubmitMessage_SafeRewritePreferred(t *testing.T) {
	env := newTestEnv()
	env.classifier.textFn = func(req classifier.Request) (classifier.Result, error) {
		return classifier.Result{
			ThreatLabels:        []string{"contact_info"},
			AlternativeSafeText: "Let's keep coordinating here on the platform.",
			Confidence:          0.9,
		}, nil
	}
	cmd := baseCommand()
	cmd.Content = "email me at bob@example.com"

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, policy.DecisionRedact, res.Decision)
	assert.Equal(t, "Let's keep coordinating here on the platform.", res.FilteredContent)
}

func TestSubmitMessage_PaymentBypassBlocked(t *testing.T) {
	env := newTestEnv()
	env.classifier.textFn = func(req classifier.Request) (classifier.Result, error) {
		return classifier.Result{
			ThreatLabels: []string{"off-platform payment request", "phone number shared"},
			Confidence:   0.97,
		}, nil
	}
	cmd := baseCommand()
	cmd.Content = "pay me in cash and I'll knock 10% off, call 555-123-4567"

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, policy.DecisionBlock, res.Decision)
	assert.False(t, res.Approved)
	assert.True(t, res.DeliveryConfirmed)
	assert.Empty(t, res.FilteredContent)

	// blocked content lands in the audit log only, never the live store
	assert.Empty(t, env.messages.saved)
	require.Len(t, env.audit.appended, 1)
	assert.Equal(t, cmd.Content, env.audit.appended[0].OriginalContent)
	assert.Contains(t, env.audit.appended[0].Threats, policy.ThreatPaymentBypass)

	// sender gets the warning, the recipient learns nothing about the content
	require.Len(t, res.Annotations, 2)
	assert.Equal(t, messages.AnnotationWarning, res.Annotations[0].Kind)
	assert.Equal(t, "prov-1", res.Annotations[0].VisibleToID)
	assert.Equal(t, messages.AnnotationInfo, res.Annotations[1].Kind)
	assert.Equal(t, "own-1", res.Annotations[1].VisibleToID)
	assert.NotContains(t, res.Annotations[1].Content, "cash")
	assert.NotContains(t, res.Annotations[1].Content, "555-123-4567")
}

func TestSubmitMessage_ClassifierOutageEngagesFallback(t *testing.T) {
	env := newTestEnv()
	env.classifier.textFn = func(req classifier.Request) (classifier.Result, error) {
		return classifier.Result{}, classifier.ErrUnavailable
	}
	cmd := baseCommand()
	cmd.Content = "let's meet at the coffee shop on Main to go over the plans"

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	// the coarse pattern analyzer blocks on any hit rather than guessing
	assert.Equal(t, policy.DecisionBlock, res.Decision)
	assert.False(t, res.Approved)
	assert.Equal(t, policy.FallbackConfidence, res.ConfidenceScore)
	assert.Equal(t, uint64(1), env.stats.FallbackEngaged)
	assert.Equal(t, uint64(1), env.stats.ClassifierErrors)
	require.Len(t, env.audit.appended, 1)
}

func TestSubmitMessage_ClassifierOutageCleanContentAllowed(t *testing.T) {
	env := newTestEnv()
	env.classifier.textFn = func(req classifier.Request) (classifier.Result, error) {
		return classifier.Result{}, classifier.ErrUnavailable
	}
	cmd := baseCommand()
	cmd.Content = "the tile order arrived and everything checks out"

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, policy.DecisionAllow, res.Decision)
	assert.True(t, res.Approved)
	assert.Equal(t, cmd.Content, res.FilteredContent)
}

func TestSubmitMessage_ImageAnalysisFailureFailsClosed(t *testing.T) {
	env := newTestEnv()
	env.classifier.imageFn = func(data []byte, format string) (classifier.ImageAnalysis, error) {
		return classifier.ImageAnalysis{}, errors.New("vision endpoint exploded")
	}
	cmd := baseCommand()
	cmd.Kind = "image"
	cmd.Content = "here is the business card I mentioned"
	cmd.Attachments = []messages.Attachment{
		{Data: []byte{0xFF, 0xD8}, MimeKind: "image", Filename: "card.jpg"},
	}

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	// a failed analysis is treated as detected contact info, never ignored
	assert.NotEqual(t, policy.DecisionAllow, res.Decision)
	assert.Contains(t, res.ThreatsDetected, policy.ThreatContactInfo)
	assert.LessOrEqual(t, res.ConfidenceScore, 0.5)
	assert.Equal(t, uint64(1), env.stats.AttachmentsAnalyzed)
}

func TestSubmitMessage_BidFieldsFilteredIndependently(t *testing.T) {
	env := newTestEnv()
	env.classifier.textFn = func(req classifier.Request) (classifier.Result, error) {
		if strings.Contains(req.Content, "jane@example.com") {
			return classifier.Result{
				ThreatLabels: []string{"email address shared"},
				Confidence:   0.92,
			}, nil
		}
		return classifier.Result{Confidence: 0.95}, nil
	}
	cmd := baseCommand()
	cmd.Kind = "bid_submission"
	cmd.Content = ""
	cmd.Bid = &bids.Submission{
		Amount:       15000,
		ProposalText: "full rebuild, questions to jane@example.com",
		ApproachText: "demo first week, rebuild the second",
		WarrantyText: "two years on workmanship",
	}

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	assert.True(t, res.Approved)
	assert.True(t, res.BidSaved)
	assert.Equal(t, "Bid submitted: $15,000", res.FilteredContent)
	assert.Equal(t, "Bid submitted: $15,000", res.BidSummary)

	require.Len(t, env.bids.upserted, 1)
	rec := env.bids.upserted[0]
	assert.Equal(t, float64(15000), rec.Amount)
	assert.True(t, rec.FilteredByPipeline)
	assert.Contains(t, rec.ProposalText, policy.EmailPlaceholder)
	assert.NotContains(t, rec.ProposalText, "jane@example.com")
	// the clean fields pass through untouched
	assert.Equal(t, "demo first week, rebuild the second", rec.ApproachText)
	assert.Equal(t, "two years on workmanship", rec.WarrantyText)
	assert.Equal(t, uint64(1), env.stats.BidsSaved)
}

func TestSubmitMessage_BlockedBidFieldGetsPlaceholder(t *testing.T) {
	env := newTestEnv()
	env.classifier.textFn = func(req classifier.Request) (classifier.Result, error) {
		if strings.Contains(req.Content, "venmo") {
			return classifier.Result{
				ThreatLabels: []string{"venmo payment offer"},
				Confidence:   0.96,
			}, nil
		}
		return classifier.Result{Confidence: 0.95}, nil
	}
	cmd := baseCommand()
	cmd.Kind = "bid_submission"
	cmd.Content = ""
	cmd.Bid = &bids.Submission{
		Amount:       8000,
		ProposalText: "standard refinish job",
		ApproachText: "pay by venmo for a discount",
		WarrantyText: "one year",
	}

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	// the whole submission blocks because the combined content carries the
	// payment offer, and the audit record keeps the original prose
	assert.Equal(t, policy.DecisionBlock, res.Decision)
	assert.False(t, res.Approved)
	assert.Empty(t, env.bids.upserted)
	require.Len(t, env.audit.appended, 1)
	assert.Contains(t, env.audit.appended[0].OriginalContent, "venmo")
}

func TestSubmitMessage_OwnerScopeChangeRaisesQuestion(t *testing.T) {
	env := newTestEnv()
	env.registry.others = []string{"prov-2", "prov-3"}
	env.classifier.textFn = func(req classifier.Request) (classifier.Result, error) {
		return classifier.Result{
			ScopeChangeLabels:  []string{"size change"},
			ScopeChangeDetails: map[string]string{"size": "300 -> 450 sq ft"},
			Confidence:         0.9,
		}, nil
	}
	cmd := baseCommand()
	cmd.SenderRole = "owner"
	cmd.SenderID = "own-1"
	cmd.RecipientID = "prov-1"
	cmd.Content = "actually let's make the deck 450 square feet instead"

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, policy.DecisionAllow, res.Decision)
	assert.Equal(t, []policy.ScopeChangeCategory{policy.ScopeSizeChange}, res.ScopeChanges)
	assert.Equal(t, []string{"prov-2", "prov-3"}, res.OtherParticipantsToNotify)
	assert.Contains(t, res.ScopeQuestion, "prov-2")
	assert.Contains(t, res.ScopeQuestion, "prov-3")

	// the clarifying question goes to the owner alone
	require.Len(t, res.Annotations, 1)
	assert.Equal(t, messages.AnnotationScopeQuestion, res.Annotations[0].Kind)
	assert.Equal(t, "own-1", res.Annotations[0].VisibleToID)
	assert.Equal(t, messages.RoleOwner, res.Annotations[0].VisibleToRole)
}

func TestSubmitMessage_ProviderScopeLabelsIgnored(t *testing.T) {
	env := newTestEnv()
	env.registry.others = []string{"prov-2"}
	env.classifier.textFn = func(req classifier.Request) (classifier.Result, error) {
		return classifier.Result{
			ScopeChangeLabels: []string{"size change"},
			Confidence:        0.9,
		}, nil
	}
	cmd := baseCommand() // provider sender

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	assert.Empty(t, res.ScopeChanges)
	assert.Empty(t, res.ScopeQuestion)
	assert.Empty(t, res.Annotations)
}

func TestSubmitMessage_PersistenceFailureNotReportedAsDelivered(t *testing.T) {
	env := newTestEnv()
	env.messages.saveErr = errors.New("store is down")
	cmd := baseCommand()

	res, err := env.svc.SubmitMessage(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, policy.DecisionAllow, res.Decision)
	assert.True(t, res.Approved)
	assert.False(t, res.DeliveryConfirmed)
	assert.Equal(t, uint64(1), env.stats.PersistenceFailures)

	require.NotEmpty(t, env.stageErrors.saved)
	assert.Equal(t, "persist", env.stageErrors.saved[0].Stage)
}

func TestSubmitMessage_RejectsUnknownRoleAndKind(t *testing.T) {
	env := newTestEnv()

	cmd := baseCommand()
	cmd.SenderRole = "admin"
	_, err := env.svc.SubmitMessage(context.Background(), cmd)
	assert.Error(t, err)

	cmd = baseCommand()
	cmd.Kind = "voice_note"
	_, err = env.svc.SubmitMessage(context.Background(), cmd)
	assert.Error(t, err)

	cmd = baseCommand()
	cmd.Kind = "bid_submission"
	cmd.Bid = nil
	_, err = env.svc.SubmitMessage(context.Background(), cmd)
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   float64
		expected string
	}{
		{15000, "15,000"},
		{950, "950"},
		{1234567, "1,234,567"},
		{8500.5, "8,500.50"},
		{0, "0"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.amount); got != tt.expected {
			t.Errorf("formatAmount(%v) = %q, want %q", tt.amount, got, tt.expected)
		}
	}
}
