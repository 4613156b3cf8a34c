package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when an order is submitted without one.
const DefaultCurrency = "USD"

// ValidationError describes a rejected order field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Input holds the client-editable order fields. Ownership is never part of it.
type Input struct {
	CustomerName string
	Reference    string
	Currency     string
	Items        []Item
	Total        decimal.Decimal
	Notes        string
}

// Patch holds a partial update; nil fields are left unchanged.
type Patch struct {
	CustomerName *string
	Reference    *string
	Currency     *string
	Items        *[]Item
	Total        *decimal.Decimal
	Notes        *string
}

func (in Input) apply(o *Order) {
	o.CustomerName = strings.TrimSpace(in.CustomerName)
	o.Reference = strings.TrimSpace(in.Reference)
	o.Currency = normalizeCurrency(in.Currency)
	o.Items = in.Items
	o.Total = in.Total
	o.Notes = in.Notes
}

func (p Patch) apply(o *Order) {
	if p.CustomerName != nil {
		o.CustomerName = strings.TrimSpace(*p.CustomerName)
	}
	if p.Reference != nil {
		o.Reference = strings.TrimSpace(*p.Reference)
	}
	if p.Currency != nil {
		o.Currency = normalizeCurrency(*p.Currency)
	}
	if p.Items != nil {
		o.Items = *p.Items
	}
	if p.Total != nil {
		o.Total = *p.Total
	}
	if p.Notes != nil {
		o.Notes = *p.Notes
	}
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

// maxTotal is the exclusive upper bound of orders.total NUMERIC(14, 2).
var maxTotal = decimal.New(1, 12)

func isCurrencyCode(c string) bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

func validate(o *Order) error {
	if o.CustomerName == "" {
		return &ValidationError{Field: "customer_name", Reason: "required"}
	}
	if !isCurrencyCode(o.Currency) {
		return &ValidationError{Field: "currency", Reason: "must be a 3-letter code"}
	}
	if o.Total.IsNegative() {
		return &ValidationError{Field: "total", Reason: "must not be negative"}
	}
	if !o.Total.Equal(o.Total.Truncate(2)) {
		return &ValidationError{Field: "total", Reason: "at most 2 decimal places"}
	}
	if o.Total.GreaterThanOrEqual(maxTotal) {
		return &ValidationError{Field: "total", Reason: "exceeds " + maxTotal.String()}
	}
	for i, item := range o.Items {
		if item.Quantity <= 0 {
			return &ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Reason: "must be greater than 0"}
		}
		if item.UnitPrice.IsNegative() {
			return &ValidationError{Field: fmt.Sprintf("items[%d].unit_price", i), Reason: "must not be negative"}
		}
	}
	return nil
}
