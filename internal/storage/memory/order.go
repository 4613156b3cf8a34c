package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/order"
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository in memory.
type OrderRepository struct {
	s  *Store
	tx *state
}

// List returns orders in scope, newest first.
func (r *OrderRepository) List(_ context.Context, scope auth.Scope) ([]order.Order, error) {
	var out []order.Order
	err := r.s.view(r.tx, func(st *state) error {
		for _, o := range st.orders {
			if !scope.Allows(o.OwnerID) {
				continue
			}
			out = append(out, withInvoice(st, o))
		}
		return nil
	})
	slices.SortFunc(out, func(a, b order.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, err
}

// Get returns an order in scope or order.ErrNotFound.
func (r *OrderRepository) Get(_ context.Context, scope auth.Scope, id string) (*order.Order, error) {
	var out order.Order
	err := r.s.view(r.tx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok || !scope.Allows(o.OwnerID) {
			return order.ErrNotFound
		}
		out = withInvoice(st, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new order.
func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	return r.s.view(r.tx, func(st *state) error {
		st.orders[o.ID] = copyOrder(*o)
		return nil
	})
}

// Update overwrites an order in scope.
func (r *OrderRepository) Update(_ context.Context, scope auth.Scope, o *order.Order) error {
	return r.s.view(r.tx, func(st *state) error {
		cur, ok := st.orders[o.ID]
		if !ok || !scope.Allows(cur.OwnerID) {
			return order.ErrNotFound
		}
		next := copyOrder(*o)
		next.OwnerID = cur.OwnerID
		next.CreatedAt = cur.CreatedAt
		st.orders[o.ID] = next
		return nil
	})
}

// Delete removes an order in scope together with its invoice.
func (r *OrderRepository) Delete(_ context.Context, scope auth.Scope, id string) error {
	return r.s.view(r.tx, func(st *state) error {
		cur, ok := st.orders[id]
		if !ok || !scope.Allows(cur.OwnerID) {
			return order.ErrNotFound
		}
		delete(st.orders, id)
		for invID, inv := range st.invoices {
			if inv.OrderID == id {
				delete(st.invoices, invID)
			}
		}
		return nil
	})
}

func withInvoice(st *state, o order.Order) order.Order {
	o = copyOrder(o)
	for _, inv := range st.invoices {
		if inv.OrderID == o.ID {
			o.InvoiceID = inv.ID
			break
		}
	}
	return o
}

func copyOrder(o order.Order) order.Order {
	o.Items = slices.Clone(o.Items)
	return o
}
