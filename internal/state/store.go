// Package state holds the last-fetched customer, product, and order
// snapshots behind explicit accessors. It replaces the free module-level
// globals of the original UI: sibling views read through the store instead
// of sharing variables.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"orderdesk/internal/backend"
)

// Source is the slice of the backend the store loads from.
type Source interface {
	Customers(ctx context.Context) ([]backend.Customer, error)
	Orders(ctx context.Context, limit int) ([]backend.OrderSummary, error)
}

// ProductCatalog is the product snapshot. Products are not stored twice: the
// catalog cache owns them and the store reads through.
type ProductCatalog interface {
	Refresh(ctx context.Context) error
	Products() []backend.Product
	Len() int
}

// Stats feeds the dashboard counters.
type Stats struct {
	Customers int `json:"customers"`
	Products  int `json:"products"`
	Orders    int `json:"orders"`
}

type Store struct {
	source      Source
	catalog     ProductCatalog
	ordersLimit int

	mu        sync.RWMutex
	customers []backend.Customer
	orders    []backend.OrderSummary
}

func NewStore(source Source, catalog ProductCatalog, ordersLimit int) *Store {
	return &Store{
		source:      source,
		catalog:     catalog,
		ordersLimit: ordersLimit,
	}
}

// ReloadAll refreshes the three snapshots concurrently. Snapshots that fail
// to load keep their previous value; the combined error reports every
// failure.
func (s *Store) ReloadAll(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, 3)

	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = s.ReloadCustomers(ctx)
	}()
	go func() {
		defer wg.Done()
		errs[1] = s.ReloadProducts(ctx)
	}()
	go func() {
		defer wg.Done()
		errs[2] = s.ReloadOrders(ctx)
	}()
	wg.Wait()

	return errors.Join(errs...)
}

func (s *Store) ReloadCustomers(ctx context.Context) error {
	customers, err := s.source.Customers(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("state: failed to reload customers")
		return err
	}
	s.mu.Lock()
	s.customers = customers
	s.mu.Unlock()
	return nil
}

// ReloadProducts refreshes the shared catalog snapshot.
func (s *Store) ReloadProducts(ctx context.Context) error {
	return s.catalog.Refresh(ctx)
}

func (s *Store) ReloadOrders(ctx context.Context) error {
	orders, err := s.source.Orders(ctx, s.ordersLimit)
	if err != nil {
		log.Warn().Err(err).Msg("state: failed to reload orders")
		return err
	}
	s.mu.Lock()
	s.orders = orders
	s.mu.Unlock()
	return nil
}

func (s *Store) Customers() []backend.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]backend.Customer, len(s.customers))
	copy(out, s.customers)
	return out
}

func (s *Store) Products() []backend.Product {
	return s.catalog.Products()
}

func (s *Store) Orders() []backend.OrderSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]backend.OrderSummary, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Customers: len(s.customers),
		Products:  s.catalog.Len(),
		Orders:    len(s.orders),
	}
}
