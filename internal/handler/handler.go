package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"offer-composer-api/internal/drafts"
	"offer-composer-api/internal/models"
	"offer-composer-api/internal/service"
	"offer-composer-api/internal/validation"
)

// Handler provides HTTP handlers for the API.
type Handler struct {
	service     *service.Service
	maxBodySize int64
}

// NewHandlerOptions holds options for creating a handler.
type NewHandlerOptions struct {
	MaxBodySize int64
}

// DefaultHandlerOptions returns default handler options.
func DefaultHandlerOptions() NewHandlerOptions {
	return NewHandlerOptions{
		MaxBodySize: 1 << 20, // 1MB default
	}
}

// NewHandler creates a new handler instance.
func NewHandler(svc *service.Service) *Handler {
	return NewHandlerWithOptions(svc, DefaultHandlerOptions())
}

// NewHandlerWithOptions creates a new handler instance with custom options.
func NewHandlerWithOptions(svc *service.Service, opts NewHandlerOptions) *Handler {
	return &Handler{
		service:     svc,
		maxBodySize: opts.MaxBodySize,
	}
}

// ExtractOffer handles POST /offers/extract
func (h *Handler) ExtractOffer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req models.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "request body is required")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	draft, err := h.service.ExtractOffer(r.Context(), req.Description)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, draftResponse(draft))
}

// GetDraft handles GET /offers/drafts/{draft_id}
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draft_id")

	draft, err := h.service.GetDraft(r.Context(), draftID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, draftResponse(draft))
}

// UpdateDraft handles PUT /offers/drafts/{draft_id}
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	draftID := chi.URLParam(r, "draft_id")

	var req models.UpdateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "request body is required")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	draft, err := h.service.UpdateDraft(r.Context(), draftID, req.Record)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, draftResponse(draft))
}

// PublishDraft handles POST /offers/drafts/{draft_id}/publish
func (h *Handler) PublishDraft(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draft_id")

	receipt, err := h.service.PublishDraft(r.Context(), draftID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondReceipt(w, receipt)
}

// PublishOffer handles POST /offers/publish
func (h *Handler) PublishOffer(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req models.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "request body is required")
			return
		}
		h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}

	receipt, err := h.service.PublishRecord(r.Context(), req.Record)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondReceipt(w, receipt)
}

// ListPublishes handles GET /offers/publishes
func (h *Handler) ListPublishes(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if param := r.URL.Query().Get("limit"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil || parsed <= 0 {
			h.respondError(w, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	entries, err := h.service.ListPublishes(limit)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, entries)
}

func draftResponse(draft models.Draft) models.DraftResponse {
	return models.DraftResponse{
		DraftID:   draft.ID,
		Record:    draft.Record,
		Preview:   draft.Record.Preview(time.Now()),
		UpdatedAt: draft.UpdatedAt,
	}
}

// respondReceipt forwards the opaque LMS receipt unmodified.
func (h *Handler) respondReceipt(w http.ResponseWriter, receipt json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(receipt)
}

// respondServiceError maps pipeline errors onto HTTP statuses: validation
// problems are the caller's fault, missing drafts are 404, everything else
// is an upstream failure surfaced with its diagnostic.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, drafts.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	default:
		h.respondError(w, http.StatusBadGateway, err.Error())
	}
}

// respondJSON sends a JSON response with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response with the given status code and message.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
