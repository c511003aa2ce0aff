package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"storefront/internal/auth"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order, checkout and payment HTTP requests.
type OrderHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.CheckoutService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// List handles GET /orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListOrders(r.Context(), profileID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Submit handles POST /orders requests: the cart becomes an order.
func (h *OrderHandler) Submit(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}

	var lines []model.SubmitCartLine
	if _, ok := decodeRequest(w, r, &lines, h.logger); !ok {
		return
	}

	result, err := h.service.SubmitCart(r.Context(), profileID, middleware.SessionIDFromContext(r.Context()), lines)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /order/{id} requests.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}

	orderID, err := pathID(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	detail, err := h.service.GetOrderDetail(r.Context(), profileID, orderID, middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// Finalize handles POST /order/{id} requests and echoes the accepted body.
func (h *OrderHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}

	orderID, err := pathID(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var req model.FinalizeOrderRequest
	body, ok := decodeRequest(w, r, &req, h.logger)
	if !ok {
		return
	}

	if _, err := h.service.FinalizeOrder(r.Context(), profileID, orderID, middleware.SessionIDFromContext(r.Context()), &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeRawJSON(w, http.StatusCreated, body)
}

// Pay handles POST /payment/{id} requests. The payment details are not
// checked; the order is marked paid and the body echoed.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	profileID, ok := h.profileID(w, r)
	if !ok {
		return
	}

	orderID, err := pathID(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	if err := h.service.MarkPaid(r.Context(), profileID, orderID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeRawJSON(w, http.StatusOK, body)
}

func (h *OrderHandler) profileID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	profileID, ok := auth.ProfileIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, model.ErrCodeUnauthorised, "authentication required", h.logger)
		return 0, false
	}
	return profileID, true
}
