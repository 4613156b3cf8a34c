package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/invoice"
)

var _ invoice.Repository = (*InvoiceRepository)(nil)

// InvoiceRepository implements invoice.Repository in memory. Ownership is
// taken from the linked order, as the SQL join does.
type InvoiceRepository struct {
	s  *Store
	tx *state
}

// List returns invoices whose order is in scope, newest first.
func (r *InvoiceRepository) List(_ context.Context, scope auth.Scope) ([]invoice.Invoice, error) {
	var out []invoice.Invoice
	err := r.s.view(r.tx, func(st *state) error {
		for _, inv := range st.invoices {
			o, ok := st.orders[inv.OrderID]
			if !ok || !scope.Allows(o.OwnerID) {
				continue
			}
			inv.OwnerID = o.OwnerID
			out = append(out, inv)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b invoice.Invoice) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, err
}

// Get returns an invoice in scope or invoice.ErrNotFound.
func (r *InvoiceRepository) Get(_ context.Context, scope auth.Scope, id string) (*invoice.Invoice, error) {
	var out invoice.Invoice
	err := r.s.view(r.tx, func(st *state) error {
		inv, ok := st.invoices[id]
		if !ok {
			return invoice.ErrNotFound
		}
		o, ok := st.orders[inv.OrderID]
		if !ok || !scope.Allows(o.OwnerID) {
			return invoice.ErrNotFound
		}
		inv.OwnerID = o.OwnerID
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new invoice. The linked order must exist and must not
// already have an invoice.
func (r *InvoiceRepository) Create(_ context.Context, inv *invoice.Invoice) error {
	return r.s.view(r.tx, func(st *state) error {
		if _, ok := st.orders[inv.OrderID]; !ok {
			return errors.Errorf("order %s does not exist", inv.OrderID)
		}
		for _, existing := range st.invoices {
			if existing.OrderID == inv.OrderID {
				return errors.Errorf("order %s already has invoice %s", inv.OrderID, existing.ID)
			}
		}
		st.invoices[inv.ID] = *inv
		return nil
	})
}

// AttachPDF records the storage key of an invoice's PDF.
func (r *InvoiceRepository) AttachPDF(_ context.Context, id, key string) error {
	return r.s.view(r.tx, func(st *state) error {
		inv, ok := st.invoices[id]
		if !ok {
			return invoice.ErrNotFound
		}
		inv.PDFKey = key
		inv.UpdatedAt = time.Now().UTC()
		st.invoices[id] = inv
		return nil
	})
}
