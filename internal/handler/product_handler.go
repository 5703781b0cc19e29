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

// ProductView reads the shared catalog snapshot through the state store.
type ProductView interface {
	ReloadProducts(ctx context.Context) error
	Products() []backend.Product
}

type ProductWriter interface {
	CreateProduct(ctx context.Context, p backend.ProductCreate) (int, error)
	UpdateProduct(ctx context.Context, id int, p backend.ProductCreate) error
}

type ProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

type ProductHandler struct {
	view     ProductView
	writer   ProductWriter
	validate *validator.Validate
}

func NewProductHandler(view ProductView, writer ProductWriter) *ProductHandler {
	return &ProductHandler{
		view:     view,
		writer:   writer,
		validate: validator.New(),
	}
}

func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.handleList)
	r.Post("/products", h.handleCreate)
	r.Put("/products/{id}", h.handleUpdate)
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if err := h.view.ReloadProducts(r.Context()); err != nil {
		respondBackendError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"products": h.view.Products(),
	})
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "name, a non-negative price and stock are required")
		return
	}

	id, err := h.writer.CreateProduct(r.Context(), backend.ProductCreate(req))
	if err != nil {
		log.Warn().Err(err).Msg("handler: failed to create product")
		respondBackendError(w, err)
		return
	}

	h.reload(r.Context())
	respondWithJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"productId": id,
	})
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, http.StatusBadRequest, "name, a non-negative price and stock are required")
		return
	}

	if err := h.writer.UpdateProduct(r.Context(), id, backend.ProductCreate(req)); err != nil {
		respondBackendError(w, err)
		return
	}

	h.reload(r.Context())
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *ProductHandler) reload(ctx context.Context) {
	if err := h.view.ReloadProducts(ctx); err != nil {
		log.Warn().Err(err).Msg("handler: product snapshot reload failed")
	}
}
