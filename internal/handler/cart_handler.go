package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles the anonymous /basket endpoints.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /basket requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Get(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Add handles POST /basket requests.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req model.BasketItemRequest
	if _, ok := decodeRequest(w, r, &req, h.logger); !ok {
		return
	}
	if req.Count == nil {
		writeServiceError(w, &model.ValidationError{Fields: map[string]string{"count": "is required"}}, h.logger)
		return
	}

	view, err := h.service.Add(r.Context(), middleware.SessionIDFromContext(r.Context()), req.ProductID, *req.Count)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Remove handles DELETE /basket requests. An omitted count removes the entry.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req model.BasketItemRequest
	if _, ok := decodeRequest(w, r, &req, h.logger); !ok {
		return
	}

	count := 0
	if req.Count != nil {
		count = *req.Count
	}
	if count < 0 {
		writeServiceError(w, &model.ValidationError{Fields: map[string]string{"count": "must be at least 0"}}, h.logger)
		return
	}

	view, err := h.service.Remove(r.Context(), middleware.SessionIDFromContext(r.Context()), req.ProductID, count)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}
