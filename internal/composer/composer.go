// Package composer implements the order-composition workflow: an in-memory
// draft of line items priced from the catalog cache, validated locally and
// submitted to the backend in a single atomic request.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"orderdesk/internal/backend"
)

// Catalog is the read-only product snapshot used for price lookup and stock
// validation.
type Catalog interface {
	Product(id int) (backend.Product, bool)
}

// Gateway persists a finished draft. Implementations must issue exactly one
// request per call and never retry.
type Gateway interface {
	SubmitOrder(ctx context.Context, o backend.OrderCreate) (*backend.SubmitResult, error)
}

// ErrSubmitInFlight rejects a submit while a previous one is still pending.
var ErrSubmitInFlight = errors.New("an order submission is already in progress")

// ValidationError carries the first draft violation found before any network
// call. Its Error text is the violation, verbatim.
type ValidationError struct {
	Violation string
}

func (e *ValidationError) Error() string {
	return e.Violation
}

// Line is one product/quantity/price entry within the draft.
type Line struct {
	ProductID int     `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

// Subtotal is the derived line total.
func (l Line) Subtotal() float64 {
	return float64(l.Quantity) * l.UnitPrice
}

// Snapshot is a point-in-time copy of the draft for rendering.
type Snapshot struct {
	CustomerID      int     `json:"customerId"`
	ShippingAddress string  `json:"shippingAddress"`
	Lines           []Line  `json:"lines"`
	Total           float64 `json:"total"`
}

// Composer owns the draft of the order under construction. All mutators are
// safe for concurrent use; the draft stays mutable while a submission is in
// flight, but a second submit is rejected until the first one settles.
type Composer struct {
	catalog Catalog
	gateway Gateway

	mu              sync.Mutex
	customerID      int
	shippingAddress string
	lines           []Line
	inFlight        bool
	onChange        func()
}

func New(catalog Catalog, gateway Gateway) *Composer {
	return &Composer{
		catalog: catalog,
		gateway: gateway,
	}
}

// OnChange registers a callback fired after a successful submission, so
// dependent views (order list, product stock) can refresh.
func (c *Composer) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// SetCustomer stores the draft's customer. Select inputs arrive as strings;
// anything that does not parse as an integer leaves the customer unset.
func (c *Composer) SetCustomer(value string) {
	id := coerceInt(value)
	c.mu.Lock()
	c.customerID = id
	c.mu.Unlock()
}

func (c *Composer) SetShippingAddress(address string) {
	c.mu.Lock()
	c.shippingAddress = strings.TrimSpace(address)
	c.mu.Unlock()
}

// AddLine appends an empty line: no product, quantity 1, price 0.
func (c *Composer) AddLine() {
	c.mu.Lock()
	c.lines = append(c.lines, Line{ProductID: 0, Quantity: 1, UnitPrice: 0})
	c.mu.Unlock()
}

// RemoveLine drops the line at index. Out-of-range indexes are a no-op, and
// the total never reflects a removed line.
func (c *Composer) RemoveLine(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
}

// SetLineProduct assigns a product to the line at index. The id arrives as a
// string and is coerced to an integer before storage and catalog comparison.
// A product found in the cache sets the line's unit price to the cached
// price; an unknown product sets it to 0.
func (c *Composer) SetLineProduct(index int, value string) {
	id := coerceInt(value)

	price := 0.0
	if p, ok := c.catalog.Product(id); ok {
		price = p.Price
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines[index].ProductID = id
	c.lines[index].UnitPrice = price
}

// SetLineQuantity stores the coerced quantity as-is. Clamping against stock
// is deliberately deferred to validation so the user sees an explicit error
// instead of a silently adjusted value.
func (c *Composer) SetLineQuantity(index int, value string) {
	qty := coerceInt(value)

	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.lines) {
		return
	}
	c.lines[index].Quantity = qty
}

// Total sums quantity x unit price over lines with a product selected and a
// positive quantity. It is recomputed from current state on every call.
func (c *Composer) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalLocked()
}

func (c *Composer) totalLocked() float64 {
	total := 0.0
	for _, l := range c.lines {
		if l.ProductID > 0 && l.Quantity > 0 {
			total += float64(l.Quantity) * l.UnitPrice
		}
	}
	return total
}

// Validate returns the draft's violations in evaluation order; empty means
// the draft is submittable. Per line, only the first failing rule is
// reported. Stock is checked per line, not aggregated across lines that
// reference the same product.
func (c *Composer) Validate() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateLocked()
}

func (c *Composer) validateLocked() []string {
	var violations []string

	if c.customerID == 0 {
		violations = append(violations, "customer is required")
	}
	if c.shippingAddress == "" {
		violations = append(violations, "shipping address is required")
	}
	if len(c.lines) == 0 {
		violations = append(violations, "order must contain at least one line item")
		return violations
	}

	for i, l := range c.lines {
		if l.ProductID == 0 {
			violations = append(violations, fmt.Sprintf("line %d: product is required", i+1))
			continue
		}
		if l.Quantity <= 0 {
			violations = append(violations, fmt.Sprintf("line %d: quantity must be greater than zero", i+1))
			continue
		}
		if p, ok := c.catalog.Product(l.ProductID); ok && l.Quantity > p.Stock {
			violations = append(violations,
				fmt.Sprintf("line %d: insufficient stock for %s (available: %d)", i+1, p.Name, p.Stock))
		}
	}

	return violations
}

// Submit validates the draft and, when clean, sends it to the gateway in one
// request. On success the draft is cleared and the change callback fires; on
// any failure the draft is preserved unchanged so the user can correct and
// retry. There is no automatic retry.
func (c *Composer) Submit(ctx context.Context) (*backend.SubmitResult, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if violations := c.validateLocked(); len(violations) > 0 {
		c.mu.Unlock()
		return nil, &ValidationError{Violation: violations[0]}
	}

	payload := backend.OrderCreate{
		CustomerID:      c.customerID,
		ShippingAddress: c.shippingAddress,
	}
	for _, l := range c.lines {
		if l.ProductID <= 0 {
			continue
		}
		payload.LineItems = append(payload.LineItems, backend.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	c.inFlight = true
	c.mu.Unlock()

	result, err := c.gateway.SubmitOrder(ctx, payload)

	c.mu.Lock()
	c.inFlight = false
	if err != nil {
		c.mu.Unlock()
		log.Warn().Err(err).Int("customer_id", payload.CustomerID).Msg("composer: order submission failed")
		return nil, err
	}

	c.resetLocked()
	onChange := c.onChange
	c.mu.Unlock()

	log.Info().
		Int("order_id", result.OrderID).
		Str("processed_by", result.ProcessedByNode).
		Msg("composer: order submitted")

	if onChange != nil {
		onChange()
	}
	return result, nil
}

// Reset discards the draft, the explicit-cancel path.
func (c *Composer) Reset() {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()
}

func (c *Composer) resetLocked() {
	c.customerID = 0
	c.shippingAddress = ""
	c.lines = nil
}

// Snapshot copies the current draft and its running total.
func (c *Composer) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return Snapshot{
		CustomerID:      c.customerID,
		ShippingAddress: c.shippingAddress,
		Lines:           lines,
		Total:           c.totalLocked(),
	}
}

// coerceInt parses form-style input. Invalid input maps to zero, the unset
// marker.
func coerceInt(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}
