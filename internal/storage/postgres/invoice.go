package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/invoice"
)

// Invoice ownership comes from the linked order.
const (
	selectInvoiceSQL = `SELECT i.id, i.order_id, o.owner_id, COALESCE(i.pdf_key, ''), i.created_at, i.updated_at
	FROM invoices i
	JOIN orders o ON o.id = i.order_id
	WHERE ($1 OR o.owner_id = $2)`

	listInvoicesSQL = selectInvoiceSQL + ` ORDER BY i.created_at DESC, i.id`

	getInvoiceSQL = selectInvoiceSQL + ` AND i.id = $3`

	createInvoiceSQL = `INSERT INTO invoices (id, order_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4)`

	attachPDFSQL = `UPDATE invoices SET pdf_key = $2, updated_at = now() WHERE id = $1`
)

var _ invoice.Repository = (*InvoiceRepository)(nil)

// InvoiceRepository implements invoice.Repository backed by PostgreSQL.
type InvoiceRepository struct {
	db dbtx
}

// NewInvoiceRepository returns an InvoiceRepository that uses the given pool.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{db: pool}
}

// List returns invoices whose order is in scope, newest first.
func (r *InvoiceRepository) List(ctx context.Context, scope auth.Scope) ([]invoice.Invoice, error) {
	rows, err := r.db.Query(ctx, listInvoicesSQL, scope.All, scope.OwnerID)
	if err != nil {
		return nil, errors.Wrap(err, "query invoices")
	}
	defer rows.Close()

	var out []invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate invoices")
	}
	return out, nil
}

// Get returns an invoice in scope or invoice.ErrNotFound.
func (r *InvoiceRepository) Get(ctx context.Context, scope auth.Scope, id string) (*invoice.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx, getInvoiceSQL, scope.All, scope.OwnerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

// Create inserts an invoice without a PDF.
func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	_, err := r.db.Exec(ctx, createInvoiceSQL, inv.ID, inv.OrderID, inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return errors.Wrapf(err, "insert invoice for order %q", inv.OrderID)
	}
	return nil
}

// AttachPDF records the storage key of an invoice's PDF.
func (r *InvoiceRepository) AttachPDF(ctx context.Context, id, key string) error {
	tag, err := r.db.Exec(ctx, attachPDFSQL, id, key)
	if err != nil {
		return errors.Wrapf(err, "attach pdf to invoice %q", id)
	}
	if tag.RowsAffected() == 0 {
		return invoice.ErrNotFound
	}
	return nil
}

func scanInvoice(row pgx.Row) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := row.Scan(&inv.ID, &inv.OrderID, &inv.OwnerID, &inv.PDFKey, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}
