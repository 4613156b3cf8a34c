package order_test

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/invoice"
	"github.com/xenking/sales-api/internal/domain/order"
	"github.com/xenking/sales-api/internal/storage/memory"
)

// brokenInvoices fails every invoice insert.
type brokenInvoices struct {
	invoice.Repository
}

func (brokenInvoices) Create(context.Context, *invoice.Invoice) error {
	return errors.New("invoice table locked")
}

// failingInvoiceTx runs units of work in a real store transaction but swaps
// in a failing invoice repository.
type failingInvoiceTx struct {
	store *memory.Store
}

func (f failingInvoiceTx) InTx(ctx context.Context, fn order.TxFunc) error {
	return f.store.InTx(ctx, func(ctx context.Context, orders order.Repository, invoices invoice.Repository) error {
		return fn(ctx, orders, brokenInvoices{Repository: invoices})
	})
}

func TestService_Create_RollsBackOrderWhenInvoiceFails(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := order.NewService(store.Orders(), failingInvoiceTx{store: store})

	_, err := svc.Create(ctx, &auth.Caller{ID: "alice"}, order.Input{CustomerName: "Acme"})
	require.Error(t, err)

	orders, err := store.Orders().List(ctx, auth.Unrestricted())
	require.NoError(t, err)
	assert.Empty(t, orders, "order must not survive a failed invoice insert")

	invoices, err := store.Invoices().List(ctx, auth.Unrestricted())
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestService_Create_CommitsOrderWithInvoice(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := order.NewService(store.Orders(), store)

	o, err := svc.Create(ctx, &auth.Caller{ID: "alice"}, order.Input{CustomerName: "Acme"})
	require.NoError(t, err)

	invoices, err := store.Invoices().List(ctx, auth.Scope{OwnerID: "alice"})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, o.ID, invoices[0].OrderID)
	assert.Equal(t, o.InvoiceID, invoices[0].ID)

	got, err := store.Orders().Get(ctx, auth.Scope{OwnerID: "alice"}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.InvoiceID, got.InvoiceID)
}
