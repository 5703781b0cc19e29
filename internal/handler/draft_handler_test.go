package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/backend"
	"orderdesk/internal/composer"
)

type stubCatalog map[int]backend.Product

func (c stubCatalog) Product(id int) (backend.Product, bool) {
	p, ok := c[id]
	return p, ok
}

type stubGateway struct {
	calls      int
	lastOrder  backend.OrderCreate
	submitFunc func(ctx context.Context, o backend.OrderCreate) (*backend.SubmitResult, error)
}

func (g *stubGateway) SubmitOrder(ctx context.Context, o backend.OrderCreate) (*backend.SubmitResult, error) {
	g.calls++
	g.lastOrder = o
	return g.submitFunc(ctx, o)
}

func newDraftRouter(gw *stubGateway) (*chi.Mux, *composer.Composer) {
	cat := stubCatalog{
		3: {ID: 3, Name: "Keyboard", Price: 10.00, Stock: 5},
	}
	draft := composer.New(cat, gw)
	r := chi.NewRouter()
	NewDraftHandler(draft).RegisterRoutes(r)
	return r, draft
}

type draftResponse struct {
	Success    bool              `json:"success"`
	Draft      composer.Snapshot `json:"draft"`
	Violations []string          `json:"violations"`
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDraftHandler_ComposeFlow(t *testing.T) {
	router, _ := newDraftRouter(&stubGateway{})

	// Fresh draft is empty and invalid.
	w := doJSON(t, router, http.MethodGet, "/draft", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp draftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Draft.Lines)
	assert.NotEmpty(t, resp.Violations)

	// Add a line, pick a product by string id, set quantity.
	w = doJSON(t, router, http.MethodPost, "/draft/lines", "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPut, "/draft/lines/0", `{"productId": "3", "quantity": "2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Draft.Lines, 1)
	assert.Equal(t, 3, resp.Draft.Lines[0].ProductID)
	assert.InDelta(t, 20.00, resp.Draft.Total, 1e-9)

	// Header fields complete the draft.
	w = doJSON(t, router, http.MethodPut, "/draft", `{"customerId": "7", "shippingAddress": "Main St"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.Draft.CustomerID)
	assert.Empty(t, resp.Violations)
}

func TestDraftHandler_SubmitSuccess(t *testing.T) {
	gw := &stubGateway{
		submitFunc: func(ctx context.Context, o backend.OrderCreate) (*backend.SubmitResult, error) {
			return &backend.SubmitResult{OrderID: 42, ProcessedByNode: "node-2"}, nil
		},
	}
	router, draft := newDraftRouter(gw)

	draft.SetCustomer("7")
	draft.SetShippingAddress("Main St")
	draft.AddLine()
	draft.SetLineProduct(0, "3")
	draft.SetLineQuantity(0, "2")

	w := doJSON(t, router, http.MethodPost, "/draft/submit", "")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success": true, "orderId": 42, "processedByNode": "node-2"}`, w.Body.String())

	assert.Equal(t, 1, gw.calls)
	assert.Empty(t, draft.Snapshot().Lines)
}

func TestDraftHandler_SubmitValidationFailure(t *testing.T) {
	gw := &stubGateway{
		submitFunc: func(ctx context.Context, o backend.OrderCreate) (*backend.SubmitResult, error) {
			t.Fatal("gateway must not be called for an invalid draft")
			return nil, nil
		},
	}
	router, draft := newDraftRouter(gw)

	// Stock for product 3 is 5; ask for 6.
	draft.SetCustomer("7")
	draft.SetShippingAddress("Main St")
	draft.AddLine()
	draft.SetLineProduct(0, "3")
	draft.SetLineQuantity(0, "6")

	w := doJSON(t, router, http.MethodPost, "/draft/submit", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t,
		`{"success": false, "error": "line 1: insufficient stock for Keyboard (available: 5)"}`,
		w.Body.String())
	assert.Equal(t, 0, gw.calls)
}

func TestDraftHandler_SubmitBackendError(t *testing.T) {
	gw := &stubGateway{
		submitFunc: func(ctx context.Context, o backend.OrderCreate) (*backend.SubmitResult, error) {
			return nil, &backend.APIError{StatusCode: http.StatusBadRequest, Message: "insufficient stock"}
		},
	}
	router, draft := newDraftRouter(gw)

	draft.SetCustomer("7")
	draft.SetShippingAddress("Main St")
	draft.AddLine()
	draft.SetLineProduct(0, "3")
	draft.SetLineQuantity(0, "2")

	w := doJSON(t, router, http.MethodPost, "/draft/submit", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	// Server-supplied message passes through verbatim.
	assert.JSONEq(t, `{"success": false, "error": "insufficient stock"}`, w.Body.String())

	// Draft retained for correction.
	assert.Len(t, draft.Snapshot().Lines, 1)
}

func TestDraftHandler_RemoveLine(t *testing.T) {
	router, draft := newDraftRouter(&stubGateway{})
	draft.AddLine()
	draft.AddLine()

	w := doJSON(t, router, http.MethodDelete, "/draft/lines/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp draftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Draft.Lines, 1)

	// Out-of-range removal is tolerated.
	w = doJSON(t, router, http.MethodDelete, "/draft/lines/9", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Draft.Lines, 1)

	// A non-numeric index is a client error.
	w = doJSON(t, router, http.MethodDelete, "/draft/lines/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDraftHandler_Reset(t *testing.T) {
	router, draft := newDraftRouter(&stubGateway{})
	draft.SetCustomer("7")
	draft.AddLine()

	w := doJSON(t, router, http.MethodDelete, "/draft", "")
	require.Equal(t, http.StatusOK, w.Code)

	snap := draft.Snapshot()
	assert.Zero(t, snap.CustomerID)
	assert.Empty(t, snap.Lines)
}
