// Package memory provides map-backed repositories for local runs and tests.
//
// All repositories share one Store. Transactions hold the store lock for
// their whole duration and work on a staged copy that replaces the live
// state only when the unit of work succeeds, so partial writes are never
// observable.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/discount"
	"github.com/xenking/sales-api/internal/domain/invoice"
	"github.com/xenking/sales-api/internal/domain/order"
)

type state struct {
	orders    map[string]order.Order
	invoices  map[string]invoice.Invoice
	discounts map[string]discount.Discount
	apikeys   map[string]auth.APIKeyInfo
}

func newState() *state {
	return &state{
		orders:    map[string]order.Order{},
		invoices:  map[string]invoice.Invoice{},
		discounts: map[string]discount.Discount{},
		apikeys:   map[string]auth.APIKeyInfo{},
	}
}

func (s *state) clone() *state {
	return &state{
		orders:    maps.Clone(s.orders),
		invoices:  maps.Clone(s.invoices),
		discounts: maps.Clone(s.discounts),
		apikeys:   maps.Clone(s.apikeys),
	}
}

// Store holds the shared in-memory state.
type Store struct {
	mu sync.Mutex
	st *state
}

// New returns an empty Store.
func New() *Store {
	return &Store{st: newState()}
}

// view runs fn against tx when inside a transaction, otherwise against the
// live state under the store lock.
func (s *Store) view(tx *state, fn func(*state) error) error {
	if tx != nil {
		return fn(tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

// Orders returns the order repository.
func (s *Store) Orders() *OrderRepository {
	return &OrderRepository{s: s}
}

// Invoices returns the invoice repository.
func (s *Store) Invoices() *InvoiceRepository {
	return &InvoiceRepository{s: s}
}

// Discounts returns the discount repository.
func (s *Store) Discounts() *DiscountRepository {
	return &DiscountRepository{s: s}
}

// APIKeys returns the API key repository.
func (s *Store) APIKeys() *APIKeyRepository {
	return &APIKeyRepository{s: s}
}

var _ order.Transactor = (*Store)(nil)

// InTx runs fn on a staged copy of the state and publishes it only if fn
// succeeds.
func (s *Store) InTx(ctx context.Context, fn order.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.st.clone()
	err := fn(ctx,
		&OrderRepository{s: s, tx: staged},
		&InvoiceRepository{s: s, tx: staged},
	)
	if err != nil {
		return err
	}
	s.st = staged
	return nil
}

// Ping is the readiness check for the in-memory backend.
func (s *Store) Ping(context.Context) error {
	return nil
}
