// Package order implements owner-scoped sales order management.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/invoice"
)

// ErrNotFound is returned when an order does not exist or lies outside the
// caller's scope.
var ErrNotFound = errors.New("order not found")

// Service encapsulates order business logic.
type Service struct {
	orders Repository
	tx     Transactor
	now    func() time.Time
}

// NewService creates an order Service. Reads and single-row writes go through
// orders; creation goes through tx.
func NewService(orders Repository, tx Transactor) *Service {
	return &Service{
		orders: orders,
		tx:     tx,
		now:    time.Now,
	}
}

// List returns the orders visible in scope.
func (s *Service) List(ctx context.Context, scope auth.Scope) ([]Order, error) {
	orders, err := s.orders.List(ctx, scope)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Get returns a single order visible in scope.
func (s *Service) Get(ctx context.Context, scope auth.Scope, id string) (*Order, error) {
	o, err := s.orders.Get(ctx, scope, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", id)
	}
	return o, nil
}

// Create persists a new order owned by caller together with its empty
// invoice. Both rows are written in one transaction: if the invoice cannot be
// created the order is rolled back as well.
func (s *Service) Create(ctx context.Context, caller *auth.Caller, in Input) (*Order, error) {
	now := s.now().UTC()
	o := &Order{
		ID:        uuid.New().String(),
		OwnerID:   caller.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.apply(o)
	if err := validate(o); err != nil {
		return nil, err
	}

	inv := &invoice.Invoice{
		ID:        uuid.New().String(),
		OrderID:   o.ID,
		OwnerID:   o.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context, orders Repository, invoices invoice.Repository) error {
		if err := orders.Create(ctx, o); err != nil {
			return errors.Wrap(err, "create order")
		}
		if err := invoices.Create(ctx, inv); err != nil {
			return errors.Wrap(err, "create invoice")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.InvoiceID = inv.ID
	return o, nil
}

// Update replaces the editable fields of an order in scope.
func (s *Service) Update(ctx context.Context, scope auth.Scope, id string, in Input) (*Order, error) {
	return s.modify(ctx, scope, id, in.apply)
}

// Patch changes only the fields set in p.
func (s *Service) Patch(ctx context.Context, scope auth.Scope, id string, p Patch) (*Order, error) {
	return s.modify(ctx, scope, id, p.apply)
}

func (s *Service) modify(ctx context.Context, scope auth.Scope, id string, change func(*Order)) (*Order, error) {
	o, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}

	change(o)
	if err := validate(o); err != nil {
		return nil, err
	}
	o.UpdatedAt = s.now().UTC()

	if err := s.orders.Update(ctx, scope, o); err != nil {
		return nil, errors.Wrapf(err, "update order %s", id)
	}
	return o, nil
}

// Delete removes an order in scope. Its invoice goes with it.
func (s *Service) Delete(ctx context.Context, scope auth.Scope, id string) error {
	if err := s.orders.Delete(ctx, scope, id); err != nil {
		return errors.Wrapf(err, "delete order %s", id)
	}
	return nil
}
