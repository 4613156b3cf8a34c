// Package invoice exposes invoices created alongside orders and the stored
// PDF artifacts attached to them.
package invoice

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/sales-api/internal/domain/auth"
)

var (
	// ErrNotFound is returned when an invoice does not exist or lies outside
	// the caller's scope.
	ErrNotFound = errors.New("invoice not found")
	// ErrPDFMissing is returned when an invoice exists but has no stored PDF.
	ErrPDFMissing = errors.New("invoice pdf missing")
	// ErrFileNotFound is returned by a FileStore for unknown keys.
	ErrFileNotFound = errors.New("file not found")
)

// Invoice is the billing record linked one-to-one with an order.
type Invoice struct {
	ID      string
	OrderID string
	// OwnerID is the owner of the linked order, resolved by the repository.
	OwnerID   string
	PDFKey    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPDF reports whether a PDF artifact was recorded for the invoice.
func (i *Invoice) HasPDF() bool {
	return i.PDFKey != ""
}

// Filename is the attachment name offered to clients on download.
func (i *Invoice) Filename() string {
	return fmt.Sprintf("invoice_%s.pdf", i.OrderID)
}

// Repository defines persistence operations for invoices. Reads take the
// caller's scope, which is matched against the owner of the linked order.
type Repository interface {
	List(ctx context.Context, scope auth.Scope) ([]Invoice, error)
	Get(ctx context.Context, scope auth.Scope, id string) (*Invoice, error)
	Create(ctx context.Context, inv *Invoice) error
	AttachPDF(ctx context.Context, id, key string) error
}

// Blob is an open stored file.
type Blob struct {
	Body io.ReadCloser
	// Size is the length in bytes, or -1 when unknown.
	Size int64
}

// FileStore reads and writes PDF artifacts by key.
type FileStore interface {
	Open(ctx context.Context, key string) (*Blob, error)
	Put(ctx context.Context, key string, r io.Reader) error
}
