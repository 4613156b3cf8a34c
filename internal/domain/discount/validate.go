package discount

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	// maxValue is the exclusive upper bound of discounts.value NUMERIC(12, 2).
	maxValue = decimal.New(1, 10)
)

// ValidationError describes a rejected discount field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Input holds the fields of a discount as submitted by a client.
type Input struct {
	Code        string
	Description string
	Kind        Kind
	Value       decimal.Decimal
	// Active defaults to true when nil.
	Active     *bool
	ValidFrom  *time.Time
	ValidUntil *time.Time
}

// Patch holds a partial update; nil fields are left unchanged.
type Patch struct {
	Code        *string
	Description *string
	Kind        *Kind
	Value       *decimal.Decimal
	Active      *bool
	ValidFrom   *time.Time
	ValidUntil  *time.Time
}

func (in Input) apply(d *Discount) {
	d.Code = normalizeCode(in.Code)
	d.Description = strings.TrimSpace(in.Description)
	d.Kind = in.Kind
	d.Value = in.Value
	d.Active = in.Active == nil || *in.Active
	d.ValidFrom = in.ValidFrom
	d.ValidUntil = in.ValidUntil
}

func (p Patch) apply(d *Discount) {
	if p.Code != nil {
		d.Code = normalizeCode(*p.Code)
	}
	if p.Description != nil {
		d.Description = strings.TrimSpace(*p.Description)
	}
	if p.Kind != nil {
		d.Kind = *p.Kind
	}
	if p.Value != nil {
		d.Value = *p.Value
	}
	if p.Active != nil {
		d.Active = *p.Active
	}
	if p.ValidFrom != nil {
		d.ValidFrom = p.ValidFrom
	}
	if p.ValidUntil != nil {
		d.ValidUntil = p.ValidUntil
	}
}

// normalizeCode upper-cases codes so lookups are case-insensitive.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func validate(d *Discount) error {
	if d.Code == "" {
		return &ValidationError{Field: "code", Reason: "required"}
	}

	if !d.Value.Equal(d.Value.Truncate(2)) {
		return &ValidationError{Field: "value", Reason: "at most 2 decimal places"}
	}

	switch d.Kind {
	case KindPercentage:
		if !d.Value.IsPositive() || d.Value.GreaterThan(hundred) {
			return &ValidationError{Field: "value", Reason: "percentage must be in (0, 100]"}
		}
	case KindFixed:
		if !d.Value.IsPositive() {
			return &ValidationError{Field: "value", Reason: "fixed amount must be greater than 0"}
		}
		if d.Value.GreaterThanOrEqual(maxValue) {
			return &ValidationError{Field: "value", Reason: "fixed amount exceeds " + maxValue.String()}
		}
	default:
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("unsupported discount kind %q", d.Kind)}
	}

	if d.ValidFrom != nil && d.ValidUntil != nil && d.ValidUntil.Before(*d.ValidFrom) {
		return &ValidationError{Field: "valid_until", Reason: "must not be before valid_from"}
	}
	return nil
}
