package invoice

import (
	"context"
	"io"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/sales-api/internal/domain/auth"
)

// Service serves invoice reads and PDF downloads.
type Service struct {
	invoices Repository
	files    FileStore
	now      func() time.Time
}

// NewService creates an invoice Service.
func NewService(invoices Repository, files FileStore) *Service {
	return &Service{
		invoices: invoices,
		files:    files,
		now:      time.Now,
	}
}

// List returns the invoices visible in scope.
func (s *Service) List(ctx context.Context, scope auth.Scope) ([]Invoice, error) {
	list, err := s.invoices.List(ctx, scope)
	if err != nil {
		return nil, errors.Wrap(err, "list invoices")
	}
	return list, nil
}

// Get returns a single invoice visible in scope.
func (s *Service) Get(ctx context.Context, scope auth.Scope, id string) (*Invoice, error) {
	inv, err := s.invoices.Get(ctx, scope, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get invoice %s", id)
	}
	return inv, nil
}

// Download resolves the invoice in scope and opens its PDF. The invoice is
// returned alongside ErrPDFMissing so callers can report which record lacks
// its artifact. The caller must close the returned Blob.
func (s *Service) Download(ctx context.Context, scope auth.Scope, id string) (*Invoice, *Blob, error) {
	inv, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, nil, err
	}
	if !inv.HasPDF() {
		return inv, nil, ErrPDFMissing
	}

	blob, err := s.files.Open(ctx, inv.PDFKey)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			return inv, nil, errors.Wrapf(ErrPDFMissing, "key %q", inv.PDFKey)
		}
		return inv, nil, errors.Wrapf(err, "open pdf %q", inv.PDFKey)
	}
	return inv, blob, nil
}

// AttachPDF stores r as the PDF of invoice id and records its key. It is an
// operator action and ignores ownership.
func (s *Service) AttachPDF(ctx context.Context, id string, r io.Reader) (*Invoice, error) {
	inv, err := s.Get(ctx, auth.Unrestricted(), id)
	if err != nil {
		return nil, err
	}

	key := PDFKey(inv)
	if err := s.files.Put(ctx, key, r); err != nil {
		return nil, errors.Wrapf(err, "store pdf %q", key)
	}
	if err := s.invoices.AttachPDF(ctx, inv.ID, key); err != nil {
		return nil, errors.Wrapf(err, "attach pdf to invoice %s", inv.ID)
	}

	inv.PDFKey = key
	inv.UpdatedAt = s.now()
	return inv, nil
}

// PDFKey is the storage key under which an invoice's PDF is kept.
func PDFKey(inv *Invoice) string {
	return "invoices/" + inv.ID + "/" + inv.Filename()
}
