package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/sales-api/internal/domain/discount"
)

// Every statement except the insert is restricted to active rows.
const (
	selectDiscountSQL = `SELECT id, code, description, kind, value, active, valid_from, valid_until, created_at, updated_at
	FROM discounts
	WHERE active`

	listDiscountsSQL = selectDiscountSQL + ` ORDER BY code`

	getDiscountSQL = selectDiscountSQL + ` AND id = $1`

	createDiscountSQL = `INSERT INTO discounts
		(id, code, description, kind, value, active, valid_from, valid_until, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateDiscountSQL = `UPDATE discounts
	SET code = $2, description = $3, kind = $4, value = $5, active = $6,
		valid_from = $7, valid_until = $8, updated_at = $9
	WHERE active AND id = $1`

	deleteDiscountSQL = `DELETE FROM discounts WHERE active AND id = $1`
)

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	db dbtx
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{db: pool}
}

// ListActive returns active discounts ordered by code.
func (r *DiscountRepository) ListActive(ctx context.Context) ([]discount.Discount, error) {
	rows, err := r.db.Query(ctx, listDiscountsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query discounts")
	}
	defer rows.Close()

	var out []discount.Discount
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate discounts")
	}
	return out, nil
}

// GetActive returns an active discount or discount.ErrNotFound.
func (r *DiscountRepository) GetActive(ctx context.Context, id string) (*discount.Discount, error) {
	d, err := scanDiscount(r.db.QueryRow(ctx, getDiscountSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, discount.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

// Create inserts a discount. A duplicate code yields discount.ErrCodeTaken.
func (r *DiscountRepository) Create(ctx context.Context, d *discount.Discount) error {
	_, err := r.db.Exec(ctx, createDiscountSQL,
		d.ID, d.Code, d.Description, string(d.Kind), d.Value, d.Active,
		d.ValidFrom, d.ValidUntil, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return discount.ErrCodeTaken
		}
		return errors.Wrapf(err, "insert discount %q", d.Code)
	}
	return nil
}

// UpdateActive overwrites an active discount.
func (r *DiscountRepository) UpdateActive(ctx context.Context, d *discount.Discount) error {
	tag, err := r.db.Exec(ctx, updateDiscountSQL,
		d.ID, d.Code, d.Description, string(d.Kind), d.Value, d.Active,
		d.ValidFrom, d.ValidUntil, d.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return discount.ErrCodeTaken
		}
		return errors.Wrapf(err, "update discount %q", d.ID)
	}
	if tag.RowsAffected() == 0 {
		return discount.ErrNotFound
	}
	return nil
}

// DeleteActive removes an active discount.
func (r *DiscountRepository) DeleteActive(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, deleteDiscountSQL, id)
	if err != nil {
		return errors.Wrapf(err, "delete discount %q", id)
	}
	if tag.RowsAffected() == 0 {
		return discount.ErrNotFound
	}
	return nil
}

func scanDiscount(row pgx.Row) (*discount.Discount, error) {
	var (
		d    discount.Discount
		kind string
	)
	err := row.Scan(
		&d.ID, &d.Code, &d.Description, &kind, &d.Value, &d.Active,
		&d.ValidFrom, &d.ValidUntil, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Kind = discount.Kind(kind)
	return &d, nil
}
