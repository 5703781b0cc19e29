package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"orderdesk/internal/backend"
	"orderdesk/internal/composer"
)

// Draft is the composer surface the draft endpoints drive.
type Draft interface {
	Snapshot() composer.Snapshot
	Validate() []string
	SetCustomer(value string)
	SetShippingAddress(address string)
	AddLine()
	RemoveLine(index int)
	SetLineProduct(index int, value string)
	SetLineQuantity(index int, value string)
	Submit(ctx context.Context) (*backend.SubmitResult, error)
	Reset()
}

// DraftHandler exposes the order-composition workflow: one draft per desk,
// mirroring the single new-order form of the original UI.
type DraftHandler struct {
	draft Draft
}

func NewDraftHandler(draft Draft) *DraftHandler {
	return &DraftHandler{draft: draft}
}

func (h *DraftHandler) RegisterRoutes(r chi.Router) {
	r.Get("/draft", h.handleGet)
	r.Put("/draft", h.handleSetHeader)
	r.Delete("/draft", h.handleReset)
	r.Post("/draft/lines", h.handleAddLine)
	r.Put("/draft/lines/{index}", h.handleUpdateLine)
	r.Delete("/draft/lines/{index}", h.handleRemoveLine)
	r.Post("/draft/submit", h.handleSubmit)
}

func (h *DraftHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.respondDraft(w, http.StatusOK)
}

// handleSetHeader sets the draft's customer and shipping address. Values
// arrive as strings, form-style; coercion happens in the composer.
func (h *DraftHandler) handleSetHeader(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CustomerID      *string `json:"customerId"`
		ShippingAddress *string `json:"shippingAddress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CustomerID != nil {
		h.draft.SetCustomer(*req.CustomerID)
	}
	if req.ShippingAddress != nil {
		h.draft.SetShippingAddress(*req.ShippingAddress)
	}
	h.respondDraft(w, http.StatusOK)
}

func (h *DraftHandler) handleAddLine(w http.ResponseWriter, r *http.Request) {
	h.draft.AddLine()
	h.respondDraft(w, http.StatusCreated)
}

func (h *DraftHandler) handleUpdateLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid line index")
		return
	}

	var req struct {
		ProductID *string `json:"productId"`
		Quantity  *string `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ProductID != nil {
		h.draft.SetLineProduct(index, *req.ProductID)
	}
	if req.Quantity != nil {
		h.draft.SetLineQuantity(index, *req.Quantity)
	}
	h.respondDraft(w, http.StatusOK)
}

func (h *DraftHandler) handleRemoveLine(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid line index")
		return
	}

	// Out-of-range removal is a no-op in the composer, by contract.
	h.draft.RemoveLine(index)
	h.respondDraft(w, http.StatusOK)
}

func (h *DraftHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	result, err := h.draft.Submit(r.Context())
	if err != nil {
		var vErr *composer.ValidationError
		switch {
		case errors.As(err, &vErr):
			respondWithError(w, http.StatusBadRequest, vErr.Violation)
		case errors.Is(err, composer.ErrSubmitInFlight):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			respondBackendError(w, err)
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"success":         true,
		"orderId":         result.OrderID,
		"processedByNode": result.ProcessedByNode,
	})
}

func (h *DraftHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.draft.Reset()
	h.respondDraft(w, http.StatusOK)
}

func (h *DraftHandler) respondDraft(w http.ResponseWriter, code int) {
	respondWithJSON(w, code, map[string]any{
		"success":    true,
		"draft":      h.draft.Snapshot(),
		"violations": h.draft.Validate(),
	})
}
