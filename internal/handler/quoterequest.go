package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mkessler/panelwerk/internal/domain"
	"github.com/mkessler/panelwerk/internal/erp"
	"github.com/mkessler/panelwerk/internal/export"
	"github.com/mkessler/panelwerk/internal/middleware"
	"github.com/mkessler/panelwerk/internal/postgres"
	"github.com/mkessler/panelwerk/internal/pricing"
)

// createQuoteRequest is the inbound payload for a new quote request.
type createQuoteRequest struct {
	CustomerName      string               `json:"customerName" validate:"required"`
	CustomerNumber    string               `json:"customerNumber" validate:"required"`
	CustomerEmail     string               `json:"customerEmail" validate:"omitempty,email"`
	CustomerReference string               `json:"customerReference"`
	ProductID         string               `json:"productId" validate:"required"`
	ProductName       string               `json:"productName"`
	Configuration     configurationRequest `json:"configuration" validate:"required"`
}

// submitResponse reports the outcome of an ERP submission.
type submitResponse struct {
	ID             uuid.UUID `json:"id"`
	Status         string    `json:"status"`
	ERPQuoteID     string    `json:"erpQuoteId"`
	ERPQuoteNumber string    `json:"erpQuoteNumber"`
	ERPQuoteStatus string    `json:"erpQuoteStatus"`
}

// QuoteRequestHandler serves the quote request lifecycle: create with a
// price snapshot, read, submit to the ERP, and export the manufacturing
// document.
type QuoteRequestHandler struct {
	store    *postgres.QuoteRequestStore
	calc     *pricing.Calculator
	quotes   *erp.QuoteService
	exporter *export.Exporter
	validate *validator.Validate
	logger   *slog.Logger
}

// NewQuoteRequestHandler creates a new quote request handler.
func NewQuoteRequestHandler(
	store *postgres.QuoteRequestStore,
	calc *pricing.Calculator,
	quotes *erp.QuoteService,
	exporter *export.Exporter,
	validate *validator.Validate,
	logger *slog.Logger,
) *QuoteRequestHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuoteRequestHandler{
		store:    store,
		calc:     calc,
		quotes:   quotes,
		exporter: exporter,
		validate: validate,
		logger:   logger,
	}
}

// Create handles POST /api/quote-requests
func (h *QuoteRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context(), h.logger)

	var req createQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, domain.Invalid("quote_request.create", "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, domain.Invalid("quote_request.create", err.Error()))
		return
	}

	cfg := req.Configuration.toDomain()
	if err := cfg.Validate(); err != nil {
		respondError(w, err)
		return
	}

	price := h.calc.Price(cfg)
	price.ItemNumber = req.ProductID

	qr := &postgres.QuoteRequest{
		ID:                uuid.New(),
		CustomerName:      req.CustomerName,
		CustomerNumber:    req.CustomerNumber,
		CustomerEmail:     req.CustomerEmail,
		CustomerReference: req.CustomerReference,
		ProductID:         req.ProductID,
		ProductName:       req.ProductName,
		Configuration:     cfg,
		Price:             price,
		Status:            postgres.RequestStatusNew,
		CreatedAt:         time.Now().UTC(),
	}

	if err := h.store.Create(r.Context(), qr); err != nil {
		logger.Error("failed to create quote request", "error", err)
		respondError(w, err)
		return
	}

	logger.Info("quote request created",
		"quote_request_id", qr.ID,
		"customer_number", qr.CustomerNumber,
		"total", price.TotalPrice,
	)
	respondJSON(w, http.StatusCreated, qr)
}

// Get handles GET /api/quote-requests/{id}
func (h *QuoteRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, domain.Invalid("quote_request.get", "invalid quote request id"))
		return
	}

	qr, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, qr)
}

// List handles GET /api/quote-requests
func (h *QuoteRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	items, err := h.store.List(r.Context(), int32(limit), int32(offset))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"items": items})
}

// Submit handles POST /api/quote-requests/{id}/submit
//
// Callers must serialize submission per quote request; the handler guards
// against re-submission through the record status but provides no
// cross-process locking.
func (h *QuoteRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context(), h.logger)

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, domain.Invalid("quote_request.submit", "invalid quote request id"))
		return
	}

	qr, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	if qr.Status == postgres.RequestStatusSubmitted || qr.Status == postgres.RequestStatusExported {
		respondError(w, domain.ErrQuoteAlreadySubmitted)
		return
	}

	quote, err := buildQuote(qr)
	if err != nil {
		respondError(w, err)
		return
	}

	contract, err := quote.PrepareForSubmission(qr.CustomerNumber)
	if err != nil {
		respondError(w, err)
		return
	}

	created, err := h.quotes.Submit(r.Context(), contract)
	if err != nil {
		logger.Error("ERP submission failed", "quote_request_id", id, "error", err)
		if uerr := h.store.UpdateStatus(r.Context(), id, postgres.RequestStatusFailed, "", ""); uerr != nil {
			logger.Error("failed to record submission failure", "quote_request_id", id, "error", uerr)
		}
		respondError(w, err)
		return
	}

	if err := h.store.UpdateStatus(r.Context(), id, postgres.RequestStatusSubmitted, created.ID, created.Number); err != nil {
		logger.Error("failed to record submission", "quote_request_id", id, "error", err)
		respondError(w, err)
		return
	}

	logger.Info("quote request submitted",
		"quote_request_id", id,
		"erp_quote_number", created.Number,
	)
	respondJSON(w, http.StatusOK, submitResponse{
		ID:             id,
		Status:         postgres.RequestStatusSubmitted,
		ERPQuoteID:     created.ID,
		ERPQuoteNumber: created.Number,
		ERPQuoteStatus: created.Status,
	})
}

// Export handles GET /api/quote-requests/{id}/export
func (h *QuoteRequestHandler) Export(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context(), h.logger)

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		respondError(w, domain.Invalid("quote_request.export", "invalid quote request id"))
		return
	}

	qr, err := h.store.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	quote, err := buildQuote(qr)
	if err != nil {
		respondError(w, err)
		return
	}

	filename := fmt.Sprintf("quote_%s.xml", id)
	doc, err := h.exporter.Export(quote, export.CustomerInfo{
		Name:      qr.CustomerName,
		Number:    qr.CustomerNumber,
		Reference: qr.CustomerReference,
	}, filename, time.Now())
	if err != nil {
		respondError(w, err)
		return
	}

	if qr.Status == postgres.RequestStatusSubmitted {
		if uerr := h.store.UpdateStatus(r.Context(), id, postgres.RequestStatusExported, "", ""); uerr != nil {
			logger.Error("failed to record export", "quote_request_id", id, "error", uerr)
		}
	}

	w.Header().Set("Content-Type", "application/xml; charset=ISO-8859-1")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// buildQuote reconstructs the quote aggregate from a stored request: one
// quote with one line item carrying the price snapshot taken at creation.
func buildQuote(qr *postgres.QuoteRequest) (domain.Quote, error) {
	quote := domain.NewQuote(qr.ID, qr.Price.Currency)
	quote, err := quote.AddLineItem(qr.ProductID, qr.ProductName, qr.Configuration, qr.Price)
	if err != nil {
		return domain.Quote{}, err
	}
	return quote, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
