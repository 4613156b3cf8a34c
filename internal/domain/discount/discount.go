// Package discount manages discount records. Only active discounts are ever
// visible: deactivated ones stay stored but drop out of every query.
package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind enumerates the supported discount strategies.
type Kind string

const (
	// KindPercentage takes a percentage off the order.
	KindPercentage Kind = "percentage"
	// KindFixed takes a fixed monetary amount off the order.
	KindFixed Kind = "fixed"
)

var (
	// ErrNotFound is returned when no active discount has the given id.
	ErrNotFound = errors.New("discount not found")
	// ErrCodeTaken is returned when another discount already uses the code.
	ErrCodeTaken = errors.New("discount code already exists")
)

// Discount is a named price reduction managed by privileged callers.
type Discount struct {
	ID          string
	Code        string
	Description string
	Kind        Kind
	Value       decimal.Decimal
	Active      bool
	ValidFrom   *time.Time
	ValidUntil  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository persists discounts. Every read and every update or delete
// target lookup is restricted to active rows.
type Repository interface {
	ListActive(ctx context.Context) ([]Discount, error)
	GetActive(ctx context.Context, id string) (*Discount, error)
	Create(ctx context.Context, d *Discount) error
	UpdateActive(ctx context.Context, d *Discount) error
	DeleteActive(ctx context.Context, id string) error
}
