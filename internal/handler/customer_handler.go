package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"orderdesk/internal/backend"
)

// CustomerDirectory is the customer view of the state store.
type CustomerDirectory interface {
	ReloadCustomers(ctx context.Context) error
	Customers() []backend.Customer
}

// CustomerWriter is the mutating slice of the backend client.
type CustomerWriter interface {
	CreateCustomer(ctx context.Context, c backend.CustomerCreate) (int, error)
	UpdateCustomer(ctx context.Context, id int, c backend.CustomerCreate) error
	DeleteCustomer(ctx context.Context, id int) error
}

type CustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// CustomerHandler serves the customers screen: list, create, update, delete.
type CustomerHandler struct {
	directory CustomerDirectory
	writer    CustomerWriter
	validate  *validator.Validate
}

func NewCustomerHandler(directory CustomerDirectory, writer CustomerWriter) *CustomerHandler {
	return &CustomerHandler{
		directory: directory,
		writer:    writer,
		validate:  validator.New(),
	}
}

func (h *CustomerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/customers", h.handleList)
	r.Post("/customers", h.handleCreate)
	r.Put("/customers/{id}", h.handleUpdate)
	r.Delete("/customers/{id}", h.handleDelete)
}

func (h *CustomerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if err := h.directory.ReloadCustomers(r.Context()); err != nil {
		respondBackendError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"customers": h.directory.Customers(),
	})
}

func (h *CustomerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "name and a valid email are required")
		return
	}

	id, err := h.writer.CreateCustomer(r.Context(), backend.CustomerCreate(req))
	if err != nil {
		log.Warn().Err(err).Msg("handler: failed to create customer")
		respondBackendError(w, err)
		return
	}

	h.reload(r.Context())
	respondWithJSON(w, http.StatusCreated, map[string]any{
		"success":    true,
		"customerId": id,
	})
}

func (h *CustomerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	var req CustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "name and a valid email are required")
		return
	}

	if err := h.writer.UpdateCustomer(r.Context(), id, backend.CustomerCreate(req)); err != nil {
		respondBackendError(w, err)
		return
	}

	h.reload(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *CustomerHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid customer id")
		return
	}

	if err := h.writer.DeleteCustomer(r.Context(), id); err != nil {
		respondBackendError(w, err)
		return
	}

	h.reload(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *CustomerHandler) reload(ctx context.Context) {
	if err := h.directory.ReloadCustomers(ctx); err != nil {
		log.Warn().Err(err).Msg("handler: customer snapshot reload failed")
	}
}
