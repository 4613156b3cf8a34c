// Package seed loads API keys and the sample discount catalog into a store.
// Progress is logged to the zctx logger carried by the context.
package seed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/sales-api/db"
	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/discount"
)

// KeyStore persists API keys.
type KeyStore interface {
	Upsert(ctx context.Context, info *auth.APIKeyInfo) error
}

// Key is an API key in its raw, unhashed form.
type Key struct {
	ID     string
	Name   string
	Raw    string
	Scopes []string
}

// APIKeys hashes and stores every key.
func APIKeys(ctx context.Context, store KeyStore, pepper []byte, keys ...Key) error {
	for _, k := range keys {
		if k.Raw == "" {
			return errors.Errorf("api key %q has no value", k.ID)
		}
		err := store.Upsert(ctx, &auth.APIKeyInfo{
			ID:      k.ID,
			KeyHash: auth.HashAPIKey(pepper, k.Raw),
			Name:    k.Name,
			Scopes:  k.Scopes,
		})
		if err != nil {
			return errors.Wrapf(err, "upsert api key %s", k.ID)
		}
		zctx.From(ctx).Info("Upserted API key", zap.String("id", k.ID), zap.Strings("scopes", k.Scopes))
	}
	return nil
}

type discountJSON struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Kind        discount.Kind   `json:"kind"`
	Value       decimal.Decimal `json:"value"`
	Active      *bool           `json:"active"`
}

// Catalog parses the embedded sample discounts.
func Catalog() ([]discount.Discount, error) {
	var rows []discountJSON
	if err := json.Unmarshal(db.SeedDiscounts, &rows); err != nil {
		return nil, errors.Wrap(err, "parse discounts JSON")
	}

	now := time.Now().UTC()
	out := make([]discount.Discount, len(rows))
	for i, r := range rows {
		out[i] = discount.Discount{
			ID:          uuid.NewString(),
			Code:        r.Code,
			Description: r.Description,
			Kind:        r.Kind,
			Value:       r.Value,
			Active:      r.Active == nil || *r.Active,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}
	return out, nil
}

// Discounts inserts the sample catalog, skipping codes that already exist.
// It returns the number of discounts inserted.
func Discounts(ctx context.Context, repo discount.Repository) (int, error) {
	catalog, err := Catalog()
	if err != nil {
		return 0, err
	}

	lg := zctx.From(ctx)
	inserted := 0
	for i := range catalog {
		d := &catalog[i]
		switch err := repo.Create(ctx, d); {
		case errors.Is(err, discount.ErrCodeTaken):
			lg.Info("Discount exists, skipping", zap.String("code", d.Code))
		case err != nil:
			return inserted, errors.Wrapf(err, "insert discount %s", d.Code)
		default:
			inserted++
			lg.Info("Inserted discount", zap.String("code", d.Code), zap.Bool("active", d.Active))
		}
	}
	return inserted, nil
}
