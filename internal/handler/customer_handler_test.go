package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/backend"
)

type mockCustomerDirectory struct {
	reloadCalls int
	customers   []backend.Customer
}

func (m *mockCustomerDirectory) ReloadCustomers(ctx context.Context) error {
	m.reloadCalls++
	return nil
}

func (m *mockCustomerDirectory) Customers() []backend.Customer {
	return m.customers
}

type mockCustomerWriter struct {
	createFunc  func(ctx context.Context, c backend.CustomerCreate) (int, error)
	updateFunc  func(ctx context.Context, id int, c backend.CustomerCreate) error
	deleteFunc  func(ctx context.Context, id int) error
	createCalls int
}

func (m *mockCustomerWriter) CreateCustomer(ctx context.Context, c backend.CustomerCreate) (int, error) {
	m.createCalls++
	return m.createFunc(ctx, c)
}

func (m *mockCustomerWriter) UpdateCustomer(ctx context.Context, id int, c backend.CustomerCreate) error {
	return m.updateFunc(ctx, id, c)
}

func (m *mockCustomerWriter) DeleteCustomer(ctx context.Context, id int) error {
	return m.deleteFunc(ctx, id)
}

func newCustomerRouter(dir *mockCustomerDirectory, w *mockCustomerWriter) *chi.Mux {
	r := chi.NewRouter()
	NewCustomerHandler(dir, w).RegisterRoutes(r)
	return r
}

func TestCustomerHandler_List(t *testing.T) {
	dir := &mockCustomerDirectory{
		customers: []backend.Customer{{ID: 1, Name: "Ada", Email: "ada@example.com"}},
	}
	router := newCustomerRouter(dir, &mockCustomerWriter{})

	w := doJSON(t, router, http.MethodGet, "/customers", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, dir.reloadCalls)
	assert.Contains(t, w.Body.String(), `"name":"Ada"`)
}

func TestCustomerHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		wantCalls      int
	}{
		{
			name:           "success",
			body:           `{"name": "Ada", "email": "ada@example.com", "phone": "555-1234"}`,
			expectedStatus: http.StatusCreated,
			wantCalls:      1,
		},
		{
			name:           "missing_email",
			body:           `{"name": "Ada"}`,
			expectedStatus: http.StatusBadRequest,
			wantCalls:      0,
		},
		{
			name:           "invalid_email",
			body:           `{"name": "Ada", "email": "not-an-email"}`,
			expectedStatus: http.StatusBadRequest,
			wantCalls:      0,
		},
		{
			name:           "invalid_json",
			body:           `{invalid`,
			expectedStatus: http.StatusBadRequest,
			wantCalls:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &mockCustomerWriter{
				createFunc: func(ctx context.Context, c backend.CustomerCreate) (int, error) {
					assert.Equal(t, "Ada", c.Name)
					return 11, nil
				},
			}
			router := newCustomerRouter(&mockCustomerDirectory{}, writer)

			w := doJSON(t, router, http.MethodPost, "/customers", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.wantCalls, writer.createCalls)
			if tt.expectedStatus == http.StatusCreated {
				assert.JSONEq(t, `{"success": true, "customerId": 11}`, w.Body.String())
			}
		})
	}
}

func TestCustomerHandler_CreateBackendError(t *testing.T) {
	writer := &mockCustomerWriter{
		createFunc: func(ctx context.Context, c backend.CustomerCreate) (int, error) {
			return 0, &backend.APIError{StatusCode: http.StatusBadRequest, Message: "email already registered"}
		},
	}
	router := newCustomerRouter(&mockCustomerDirectory{}, writer)

	w := doJSON(t, router, http.MethodPost, "/customers", `{"name": "Ada", "email": "ada@example.com"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success": false, "error": "email already registered"}`, w.Body.String())
}

func TestCustomerHandler_Delete(t *testing.T) {
	deleted := 0
	writer := &mockCustomerWriter{
		deleteFunc: func(ctx context.Context, id int) error {
			deleted = id
			return nil
		},
	}
	dir := &mockCustomerDirectory{}
	router := newCustomerRouter(dir, writer)

	w := doJSON(t, router, http.MethodDelete, "/customers/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, deleted)
	assert.Equal(t, 1, dir.reloadCalls) // snapshot refreshed after mutation
}
