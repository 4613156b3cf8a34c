package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/order"
)

// Ownership is part of every WHERE clause: $1 is scope.All, $2 scope.OwnerID.
const (
	selectOrderSQL = `SELECT o.id, o.owner_id, o.customer_name, o.reference, o.currency,
		o.items, o.total, o.notes, COALESCE(i.id, ''), o.created_at, o.updated_at
	FROM orders o
	LEFT JOIN invoices i ON i.order_id = o.id
	WHERE ($1 OR o.owner_id = $2)`

	listOrdersSQL = selectOrderSQL + ` ORDER BY o.created_at DESC, o.id`

	getOrderSQL = selectOrderSQL + ` AND o.id = $3`

	createOrderSQL = `INSERT INTO orders
		(id, owner_id, customer_name, reference, currency, items, total, notes, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	updateOrderSQL = `UPDATE orders
	SET customer_name = $3, reference = $4, currency = $5, items = $6, total = $7, notes = $8, updated_at = $9
	WHERE ($1 OR owner_id = $2) AND id = $10`

	deleteOrderSQL = `DELETE FROM orders WHERE ($1 OR owner_id = $2) AND id = $3`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	db dbtx
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: pool}
}

// List returns orders in scope, newest first.
func (r *OrderRepository) List(ctx context.Context, scope auth.Scope) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, listOrdersSQL, scope.All, scope.OwnerID)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	var out []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate orders")
	}
	return out, nil
}

// Get returns an order in scope or order.ErrNotFound.
func (r *OrderRepository) Get(ctx context.Context, scope auth.Scope, id string) (*order.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, getOrderSQL, scope.All, scope.OwnerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

// Create persists a new order. Items are stored as JSONB.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	items, err := marshalItems(o.Items)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, createOrderSQL,
		o.ID, o.OwnerID, o.CustomerName, o.Reference, o.Currency,
		items, o.Total, o.Notes, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert order %q", o.ID)
	}
	return nil
}

// Update overwrites the editable columns of an order in scope.
func (r *OrderRepository) Update(ctx context.Context, scope auth.Scope, o *order.Order) error {
	items, err := marshalItems(o.Items)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, updateOrderSQL,
		scope.All, scope.OwnerID,
		o.CustomerName, o.Reference, o.Currency, items, o.Total, o.Notes, o.UpdatedAt,
		o.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "update order %q", o.ID)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Delete removes an order in scope; the invoice is removed by cascade.
func (r *OrderRepository) Delete(ctx context.Context, scope auth.Scope, id string) error {
	tag, err := r.db.Exec(ctx, deleteOrderSQL, scope.All, scope.OwnerID, id)
	if err != nil {
		return errors.Wrapf(err, "delete order %q", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o     order.Order
		items []byte
	)
	err := row.Scan(
		&o.ID, &o.OwnerID, &o.CustomerName, &o.Reference, &o.Currency,
		&items, &o.Total, &o.Notes, &o.InvoiceID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, errors.Wrapf(err, "decode items of order %q", o.ID)
	}
	return &o, nil
}

func marshalItems(items []order.Item) ([]byte, error) {
	if items == nil {
		items = []order.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, errors.Wrap(err, "marshal order items")
	}
	return data, nil
}
