package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/invoice"
)

// Order is a sales order owned by the caller that created it.
type Order struct {
	ID           string
	OwnerID      string
	CustomerName string
	Reference    string
	Currency     string
	Items        []Item
	Total        decimal.Decimal
	Notes        string
	// InvoiceID is the invoice created together with the order.
	InvoiceID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item represents a single line item in an order. Prices are recorded as
// supplied and never recomputed.
type Item struct {
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Repository defines persistence operations for orders. Every read and
// targeted write takes the caller's scope so that out-of-scope rows behave as
// if they did not exist.
type Repository interface {
	List(ctx context.Context, scope auth.Scope) ([]Order, error)
	Get(ctx context.Context, scope auth.Scope, id string) (*Order, error)
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, scope auth.Scope, o *Order) error
	Delete(ctx context.Context, scope auth.Scope, id string) error
}

// TxFunc is the unit of work run by a Transactor.
type TxFunc func(ctx context.Context, orders Repository, invoices invoice.Repository) error

// Transactor runs fn against repositories bound to a single transaction.
// The transaction commits only if fn returns nil.
type Transactor interface {
	InTx(ctx context.Context, fn TxFunc) error
}
