package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/xenking/sales-api/internal/domain/discount"
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository in memory.
type DiscountRepository struct {
	s *Store
}

// ListActive returns active discounts ordered by code.
func (r *DiscountRepository) ListActive(context.Context) ([]discount.Discount, error) {
	var out []discount.Discount
	err := r.s.view(nil, func(st *state) error {
		for _, row := range st.discounts {
			if row.Active {
				out = append(out, row)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b discount.Discount) int {
		return strings.Compare(a.Code, b.Code)
	})
	return out, err
}

// GetActive returns an active discount or discount.ErrNotFound.
func (r *DiscountRepository) GetActive(_ context.Context, id string) (*discount.Discount, error) {
	var out discount.Discount
	err := r.s.view(nil, func(st *state) error {
		row, ok := st.discounts[id]
		if !ok || !row.Active {
			return discount.ErrNotFound
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Create stores a new discount; codes are unique across active and inactive
// rows.
func (r *DiscountRepository) Create(_ context.Context, d *discount.Discount) error {
	return r.s.view(nil, func(st *state) error {
		if codeTaken(st, d.Code, d.ID) {
			return discount.ErrCodeTaken
		}
		st.discounts[d.ID] = *d
		return nil
	})
}

// UpdateActive overwrites an active discount.
func (r *DiscountRepository) UpdateActive(_ context.Context, d *discount.Discount) error {
	return r.s.view(nil, func(st *state) error {
		row, ok := st.discounts[d.ID]
		if !ok || !row.Active {
			return discount.ErrNotFound
		}
		if codeTaken(st, d.Code, d.ID) {
			return discount.ErrCodeTaken
		}
		next := *d
		next.CreatedAt = row.CreatedAt
		st.discounts[d.ID] = next
		return nil
	})
}

// DeleteActive removes an active discount.
func (r *DiscountRepository) DeleteActive(_ context.Context, id string) error {
	return r.s.view(nil, func(st *state) error {
		row, ok := st.discounts[id]
		if !ok || !row.Active {
			return discount.ErrNotFound
		}
		delete(st.discounts, id)
		return nil
	})
}

func codeTaken(st *state, code, exceptID string) bool {
	for id, row := range st.discounts {
		if id != exceptID && row.Code == code {
			return true
		}
	}
	return false
}
