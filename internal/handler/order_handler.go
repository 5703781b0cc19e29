package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"orderdesk/internal/backend"
)

// OrderBoard is the orders view of the state store.
type OrderBoard interface {
	ReloadOrders(ctx context.Context) error
	Orders() []backend.OrderSummary
}

// OrderBackend covers the per-order operations the list and detail screens
// call through to the backend.
type OrderBackend interface {
	Order(ctx context.Context, id int) (*backend.OrderDetail, error)
	OrdersByCustomer(ctx context.Context, customerID int) ([]backend.OrderSummary, error)
	UpdateOrderStatus(ctx context.Context, id int, status backend.OrderStatus) error
	DeleteOrder(ctx context.Context, id int) error
}

// OrderHandler serves the order list and detail screens. Order creation goes
// through the draft endpoints, not here.
type OrderHandler struct {
	board   OrderBoard
	backend OrderBackend
}

func NewOrderHandler(board OrderBoard, b OrderBackend) *OrderHandler {
	return &OrderHandler{board: board, backend: b}
}

func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/orders", h.handleList)
	r.Get("/orders/{id}", h.handleDetail)
	r.Get("/orders/customer/{customerId}", h.handleListByCustomer)
	r.Put("/orders/{id}/status", h.handleUpdateStatus)
	r.Delete("/orders/{id}", h.handleDelete)
}

func (h *OrderHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if err := h.board.ReloadOrders(r.Context()); err != nil {
		respondBackendError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"orders":  h.board.Orders(),
	})
}

func (h *OrderHandler) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	order, err := h.backend.Order(r.Context(), id)
	if err != nil {
		respondBackendError(w, err)
		return
	}
	if order == nil {
		respondWithError(w, http.StatusNotFound, "order not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"order":   order,
	})
}

func (h *OrderHandler) handleListByCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.Atoi(chi.URLParam(r, "customerId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	orders, err := h.backend.OrdersByCustomer(r.Context(), customerID)
	if err != nil {
		respondBackendError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"orders":  orders,
	})
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// The status vocabulary is fixed; reject bad values before the call.
	if !backend.ValidStatus(req.Status) {
		respondWithError(w, http.StatusBadRequest, "invalid order status")
		return
	}

	if err := h.backend.UpdateOrderStatus(r.Context(), id, backend.OrderStatus(req.Status)); err != nil {
		respondBackendError(w, err)
		return
	}

	h.reload(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *OrderHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	if err := h.backend.DeleteOrder(r.Context(), id); err != nil {
		respondBackendError(w, err)
		return
	}

	log.Info().Int("order_id", id).Msg("handler: order deleted")
	h.reload(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *OrderHandler) reload(ctx context.Context) {
	if err := h.board.ReloadOrders(ctx); err != nil {
		log.Warn().Err(err).Msg("handler: order snapshot reload failed")
	}
}
