package httpserver

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appmod "github.com/hometrade/commsguard/internal/application/moderation"
	"github.com/hometrade/commsguard/internal/domain/bids"
	"github.com/hometrade/commsguard/internal/domain/classifier"
	"github.com/hometrade/commsguard/internal/domain/messages"
	"github.com/hometrade/commsguard/internal/middleware"
	"github.com/hometrade/commsguard/internal/stats"
)

type Router struct {
	svc   *appmod.Service
	stats *stats.Collector
}

func NewRouter(svc *appmod.Service, collector *stats.Collector, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc, stats: collector}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/metrics", r.handleMetrics)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/messages", r.wrap(r.handleSubmit))
		rt.Get("/messages/latest", r.wrap(r.handleLatest))
		rt.Get("/messages/{id}", r.wrap(r.handleGet))
		rt.Get("/audit/blocked", r.wrap(r.handleBlockedAudit))
		rt.Get("/bids/{id}", r.wrap(r.handleGetBid))
		rt.Get("/annotations/{participant}", r.wrap(r.handleAnnotations))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, classifier.ErrQuotaExceeded) {
				http.Error(w, "classifier quota exceeded", http.StatusTooManyRequests)
				return
			}
			var badReq badRequestError
			if errors.As(err, &badReq) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

// wire shape of one attachment in the submit body
type attachmentBody struct {
	DataBase64 string `json:"data_base64"`
	MimeKind   string `json:"mime_kind"`
	Filename   string `json:"filename"`
}

type bidBody struct {
	Amount        float64 `json:"amount"`
	TimelineStart string  `json:"timeline_start"`
	TimelineEnd   string  `json:"timeline_end"`
	ProposalText  string  `json:"proposal_text"`
	ApproachText  string  `json:"approach_text"`
	WarrantyText  string  `json:"warranty_text"`
}

// POST /v1/{tenant}/messages
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequestError{err}
	}

	var body struct {
		Content        string           `json:"content"`
		SenderRole     string           `json:"sender_role"`
		SenderID       string           `json:"sender_id"`
		RecipientID    string           `json:"recipient_id"`
		TransactionID  string           `json:"transaction_id"`
		ConversationID string           `json:"conversation_id"`
		Kind           string           `json:"kind"`
		Attachments    []attachmentBody `json:"attachments"`
		Bid            *bidBody         `json:"bid"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateSenderRole(body.SenderRole); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateMessageKind(body.Kind); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateContent(body.Content); err != nil {
		return badRequestError{err}
	}

	cmd := appmod.SubmitCommand{
		TenantID:       tenant,
		Content:        middleware.SanitizeString(body.Content),
		SenderRole:     body.SenderRole,
		SenderID:       body.SenderID,
		RecipientID:    body.RecipientID,
		TransactionID:  body.TransactionID,
		ConversationID: body.ConversationID,
		Kind:           body.Kind,
	}
	if cmd.Kind == "" {
		cmd.Kind = string(messages.KindText)
	}
	for _, a := range body.Attachments {
		data, err := base64.StdEncoding.DecodeString(a.DataBase64)
		if err != nil {
			return badRequestError{fmt.Errorf("attachment %s: invalid base64: %w", a.Filename, err)}
		}
		cmd.Attachments = append(cmd.Attachments, messages.Attachment{
			Data:     data,
			MimeKind: a.MimeKind,
			Filename: a.Filename,
		})
	}
	if body.Bid != nil {
		sub, err := decodeBid(body.Bid)
		if err != nil {
			return badRequestError{err}
		}
		cmd.Bid = sub
	}

	result, err := r.svc.SubmitMessage(req.Context(), cmd)
	if err != nil {
		return badRequestError{err}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(result)
}

func decodeBid(b *bidBody) (*bids.Submission, error) {
	sub := &bids.Submission{
		Amount:       b.Amount,
		ProposalText: b.ProposalText,
		ApproachText: b.ApproachText,
		WarrantyText: b.WarrantyText,
	}
	if b.TimelineStart != "" {
		t, err := time.Parse("2006-01-02", b.TimelineStart)
		if err != nil {
			return nil, fmt.Errorf("invalid timeline_start: %w", err)
		}
		sub.TimelineStart = t
	}
	if b.TimelineEnd != "" {
		t, err := time.Parse("2006-01-02", b.TimelineEnd)
		if err != nil {
			return nil, fmt.Errorf("invalid timeline_end: %w", err)
		}
		sub.TimelineEnd = t
	}
	return sub, nil
}

// GET /v1/{tenant}/messages/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.Latest(req.Context(), tenant, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/messages/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	m, err := r.svc.Get(req.Context(), tenant, messages.MessageID(id))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(m)
}

// GET /v1/{tenant}/audit/blocked?limit=20
func (r *Router) handleBlockedAudit(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.BlockedAudit(req.Context(), tenant, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/bids/{id}
func (r *Router) handleGetBid(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	b, err := r.svc.GetBid(req.Context(), tenant, bids.BidID(id))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(b)
}

// GET /v1/{tenant}/annotations/{participant}?limit=20
func (r *Router) handleAnnotations(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	participant := chi.URLParam(req, "participant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.AnnotationsFor(req.Context(), tenant, participant, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.svc.Summary(req.Context(), tenant, middleware.ValidateDays(days))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}

// GET /metrics
func (r *Router) handleMetrics(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(r.stats.Snapshot())
}
