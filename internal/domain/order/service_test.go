package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/invoice"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	byID      map[string]Order
	createErr error
	lastScope auth.Scope
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{byID: map[string]Order{}}
}

func (m *mockOrderRepo) List(_ context.Context, scope auth.Scope) ([]Order, error) {
	m.lastScope = scope
	var out []Order
	for _, o := range m.byID {
		if scope.Allows(o.OwnerID) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) Get(_ context.Context, scope auth.Scope, id string) (*Order, error) {
	m.lastScope = scope
	o, ok := m.byID[id]
	if !ok || !scope.Allows(o.OwnerID) {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.byID[o.ID] = *o
	return nil
}

func (m *mockOrderRepo) Update(_ context.Context, scope auth.Scope, o *Order) error {
	if cur, ok := m.byID[o.ID]; !ok || !scope.Allows(cur.OwnerID) {
		return ErrNotFound
	}
	m.byID[o.ID] = *o
	return nil
}

func (m *mockOrderRepo) Delete(_ context.Context, scope auth.Scope, id string) error {
	if cur, ok := m.byID[id]; !ok || !scope.Allows(cur.OwnerID) {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type mockInvoiceRepo struct {
	created   []invoice.Invoice
	createErr error
}

func (m *mockInvoiceRepo) List(context.Context, auth.Scope) ([]invoice.Invoice, error) {
	return m.created, nil
}

func (m *mockInvoiceRepo) Get(context.Context, auth.Scope, string) (*invoice.Invoice, error) {
	return nil, invoice.ErrNotFound
}

func (m *mockInvoiceRepo) Create(_ context.Context, inv *invoice.Invoice) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, *inv)
	return nil
}

func (m *mockInvoiceRepo) AttachPDF(context.Context, string, string) error {
	return nil
}

// mockTx hands the unit of work the same repositories without isolation.
type mockTx struct {
	orders   *mockOrderRepo
	invoices *mockInvoiceRepo
	calls    int
}

func (m *mockTx) InTx(ctx context.Context, fn TxFunc) error {
	m.calls++
	return fn(ctx, m.orders, m.invoices)
}

// --- Helpers ---

var fixedNow = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func newTestService() (*Service, *mockOrderRepo, *mockTx) {
	orders := newMockOrderRepo()
	tx := &mockTx{orders: orders, invoices: &mockInvoiceRepo{}}
	svc := NewService(orders, tx)
	svc.now = func() time.Time { return fixedNow }
	return svc, orders, tx
}

var alice = &auth.Caller{ID: "alice"}

func validInput() Input {
	return Input{
		CustomerName: "  Acme Ltd ",
		Currency:     "gbp",
		Items: []Item{
			{SKU: "A-1", Description: "Anvil", Quantity: 2, UnitPrice: decimal.RequireFromString("10.25")},
		},
		Total: decimal.RequireFromString("20.50"),
	}
}

// --- Tests ---

func TestService_Create(t *testing.T) {
	svc, orders, tx := newTestService()

	o, err := svc.Create(context.Background(), alice, validInput())
	require.NoError(t, err)

	assert.Equal(t, 1, tx.calls, "order and invoice share one transaction")
	assert.Equal(t, "alice", o.OwnerID)
	assert.Equal(t, "Acme Ltd", o.CustomerName)
	assert.Equal(t, "GBP", o.Currency)
	assert.Equal(t, fixedNow, o.CreatedAt)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("20.5")))

	require.Len(t, tx.invoices.created, 1)
	inv := tx.invoices.created[0]
	assert.Equal(t, o.ID, inv.OrderID)
	assert.Equal(t, o.InvoiceID, inv.ID)
	assert.False(t, inv.HasPDF())
	assert.Contains(t, orders.byID, o.ID)
}

func TestService_Create_DefaultCurrency(t *testing.T) {
	svc, _, _ := newTestService()

	in := validInput()
	in.Currency = ""
	o, err := svc.Create(context.Background(), alice, in)
	require.NoError(t, err)
	assert.Equal(t, DefaultCurrency, o.Currency)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		field  string
	}{
		{"blank customer", func(in *Input) { in.CustomerName = "   " }, "customer_name"},
		{"long currency", func(in *Input) { in.Currency = "EURO" }, "currency"},
		{"digit currency", func(in *Input) { in.Currency = "123" }, "currency"},
		{"spaced currency", func(in *Input) { in.Currency = "A B" }, "currency"},
		{"accented currency", func(in *Input) { in.Currency = "ÀB" }, "currency"},
		{"symbol currency", func(in *Input) { in.Currency = "€" }, "currency"},
		{"negative total", func(in *Input) { in.Total = decimal.NewFromInt(-1) }, "total"},
		{"sub-cent total", func(in *Input) { in.Total = decimal.RequireFromString("10.005") }, "total"},
		{"total overflows column", func(in *Input) { in.Total = decimal.New(1, 13) }, "total"},
		{"total at column bound", func(in *Input) { in.Total = decimal.New(1, 12) }, "total"},
		{"zero quantity", func(in *Input) { in.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"negative price", func(in *Input) { in.Items[0].UnitPrice = decimal.NewFromInt(-3) }, "items[0].unit_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, tx := newTestService()
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), alice, in)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Zero(t, tx.calls, "invalid input never reaches storage")
		})
	}
}

func TestService_Create_TotalBounds(t *testing.T) {
	for _, total := range []string{"0", "10.00", "10.500", "999999999999.99"} {
		t.Run(total, func(t *testing.T) {
			svc, _, _ := newTestService()
			in := validInput()
			in.Total = decimal.RequireFromString(total)
			in.Currency = "eur"

			o, err := svc.Create(context.Background(), alice, in)
			require.NoError(t, err)
			assert.Equal(t, "EUR", o.Currency)
		})
	}
}

func TestService_Create_InvoiceFailure(t *testing.T) {
	svc, _, tx := newTestService()
	tx.invoices.createErr = errors.New("disk full")

	_, err := svc.Create(context.Background(), alice, validInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create invoice")
}

func TestService_Create_OrderFailure(t *testing.T) {
	svc, orders, tx := newTestService()
	orders.createErr = errors.New("connection reset")

	_, err := svc.Create(context.Background(), alice, validInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
	assert.Empty(t, tx.invoices.created, "invoice is not attempted after the order fails")
}

func TestService_Get_OutOfScope(t *testing.T) {
	svc, _, _ := newTestService()
	o, err := svc.Create(context.Background(), alice, validInput())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), auth.Scope{OwnerID: "bob"}, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := svc.Get(context.Background(), auth.Unrestricted(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)
}

func TestService_UpdateAndPatch(t *testing.T) {
	svc, orders, _ := newTestService()
	o, err := svc.Create(context.Background(), alice, validInput())
	require.NoError(t, err)
	scope := auth.Scope{OwnerID: "alice"}

	notes := "leave at reception"
	patched, err := svc.Patch(context.Background(), scope, o.ID, Patch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, patched.Notes)
	assert.Equal(t, "Acme Ltd", patched.CustomerName)
	assert.Len(t, patched.Items, 1)
	assert.Equal(t, scope, orders.lastScope)

	updated, err := svc.Update(context.Background(), scope, o.ID, Input{CustomerName: "Globex"})
	require.NoError(t, err)
	assert.Equal(t, "Globex", updated.CustomerName)
	assert.Empty(t, updated.Items)
	assert.Empty(t, updated.Notes)
	assert.Equal(t, "alice", updated.OwnerID)

	empty := ""
	_, err = svc.Patch(context.Background(), scope, o.ID, Patch{CustomerName: &empty})
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)

	_, err = svc.Update(context.Background(), auth.Scope{OwnerID: "bob"}, o.ID, Input{CustomerName: "Hijack"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Globex", orders.byID[o.ID].CustomerName)
}

func TestService_Delete(t *testing.T) {
	svc, orders, _ := newTestService()
	o, err := svc.Create(context.Background(), alice, validInput())
	require.NoError(t, err)

	err = svc.Delete(context.Background(), auth.Scope{OwnerID: "bob"}, o.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), auth.Scope{OwnerID: "alice"}, o.ID))
	assert.NotContains(t, orders.byID, o.ID)
}
