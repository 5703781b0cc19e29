package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// APIError is an application-level failure: the request completed but the
// backend answered success=false. The message is the server's, verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrUnavailable marks transport-level failures (connection refused, timeout,
// malformed response). Callers that only care about the taxonomy can match
// with errors.Is.
var ErrUnavailable = errors.New("backend unavailable")

// Client talks to the external order-management backend. All state lives on
// the backend; the client holds nothing but the connection settings.
type Client struct {
	baseURL string
	httpc   *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
	}
}

// envelope is the {success, error} wrapper the backend puts around every
// response body.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// do performs one request and decodes the response into out (when non-nil).
// A success=false body becomes an *APIError carrying the server message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("backend: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	reqID, err := uuid.NewV4()
	if err == nil {
		req.Header.Set("X-Request-ID", reqID.String())
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("method", method).Str("path", path).Msg("backend: request failed")
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", ErrUnavailable, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: unexpected response (status %d)", ErrUnavailable, resp.StatusCode)
	}

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Bool("success", env.Success).
		Msg("backend: request completed")

	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("backend returned status %d", resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", ErrUnavailable, err)
		}
	}

	return nil
}

// Products fetches the full product list. This is the source the catalog
// cache refreshes from.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var resp struct {
		Products []Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/products", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

func (c *Client) CreateProduct(ctx context.Context, p ProductCreate) (int, error) {
	var resp struct {
		ProductID int `json:"productId"`
	}
	if err := c.do(ctx, http.MethodPost, "/products", p, &resp); err != nil {
		return 0, err
	}
	return resp.ProductID, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int, p ProductCreate) error {
	return c.do(ctx, http.MethodPut, "/products/"+strconv.Itoa(id), p, nil)
}

func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	var resp struct {
		Customers []Customer `json:"customers"`
	}
	if err := c.do(ctx, http.MethodGet, "/customers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Customers, nil
}

func (c *Client) CreateCustomer(ctx context.Context, cu CustomerCreate) (int, error) {
	var resp struct {
		CustomerID int `json:"customerId"`
	}
	if err := c.do(ctx, http.MethodPost, "/customers", cu, &resp); err != nil {
		return 0, err
	}
	return resp.CustomerID, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id int, cu CustomerCreate) error {
	return c.do(ctx, http.MethodPut, "/customers/"+strconv.Itoa(id), cu, nil)
}

func (c *Client) DeleteCustomer(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/customers/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) Orders(ctx context.Context, limit int) ([]OrderSummary, error) {
	path := "/orders"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp struct {
		Orders []OrderSummary `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

func (c *Client) Order(ctx context.Context, id int) (*OrderDetail, error) {
	var resp struct {
		Order *OrderDetail `json:"order"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders/"+strconv.Itoa(id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Order, nil
}

func (c *Client) OrdersByCustomer(ctx context.Context, customerID int) ([]OrderSummary, error) {
	var resp struct {
		Orders []OrderSummary `json:"orders"`
	}
	if err := c.do(ctx, http.MethodGet, "/orders/customer/"+strconv.Itoa(customerID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Orders, nil
}

// SubmitOrder is the submission gateway: exactly one request per call, no
// retries. The composer relies on that.
func (c *Client) SubmitOrder(ctx context.Context, o OrderCreate) (*SubmitResult, error) {
	var resp SubmitResult
	if err := c.do(ctx, http.MethodPost, "/orders", o, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int, status OrderStatus) error {
	body := struct {
		Status string `json:"status"`
	}{Status: status.String()}
	return c.do(ctx, http.MethodPut, "/orders/"+strconv.Itoa(id)+"/status", body, nil)
}

func (c *Client) DeleteOrder(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/orders/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) Health(ctx context.Context) (*NodeHealth, error) {
	var resp NodeHealth
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Nodes(ctx context.Context) ([]NodeHealth, error) {
	var resp struct {
		Nodes []NodeHealth `json:"nodes"`
	}
	if err := c.do(ctx, http.MethodGet, "/health/nodes", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Nodes, nil
}

// VerifyReplicas asks the backend to probe its replica nodes. The frontend
// never contacts replicas directly.
func (c *Client) VerifyReplicas(ctx context.Context) (*ClusterProbe, error) {
	var resp ClusterProbe
	if err := c.do(ctx, http.MethodGet, "/health/replicas", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RunReplication(ctx context.Context) (*ReplicationRun, error) {
	var resp ReplicationRun
	if err := c.do(ctx, http.MethodPost, "/replication/run", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) PendingReplicationLogs(ctx context.Context) ([]ReplicationLog, error) {
	var resp struct {
		Logs []ReplicationLog `json:"logs"`
	}
	if err := c.do(ctx, http.MethodGet, "/replication/logs/pending", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}
