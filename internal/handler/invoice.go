package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/sales-api/internal/domain/invoice"
)

// pdfFailure is the fixed body returned when an invoice PDF cannot be served.
var pdfFailure = gin.H{"error": "Failed to generate PDF"}

// Invoice is the API representation of an invoice.
type Invoice struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	HasPDF    bool      `json:"has_pdf"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toInvoice(inv *invoice.Invoice) Invoice {
	return Invoice{
		ID:        inv.ID,
		OrderID:   inv.OrderID,
		HasPDF:    inv.HasPDF(),
		CreatedAt: inv.CreatedAt,
		UpdatedAt: inv.UpdatedAt,
	}
}

func mapInvoiceError(c *gin.Context, op string, err error) {
	if errors.Is(err, invoice.ErrNotFound) {
		writeError(c, http.StatusNotFound, "invoice not found")
		return
	}
	internalError(c, op, err)
}

// ListInvoices handles GET /invoices.
func (h *Handler) ListInvoices(c *gin.Context) {
	list, err := h.invoices.List(c.Request.Context(), h.scope(c))
	if err != nil {
		mapInvoiceError(c, "list invoices", err)
		return
	}
	out := make([]Invoice, len(list))
	for i := range list {
		out[i] = toInvoice(&list[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetInvoice handles GET /invoices/{id}.
func (h *Handler) GetInvoice(c *gin.Context) {
	inv, err := h.invoices.Get(c.Request.Context(), h.scope(c), c.Param("id"))
	if err != nil {
		mapInvoiceError(c, "get invoice", err)
		return
	}
	c.JSON(http.StatusOK, toInvoice(inv))
}

// DownloadInvoice handles GET /invoices/{id}/download, streaming the stored
// PDF as an attachment.
func (h *Handler) DownloadInvoice(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")
	lg := zctx.From(ctx)

	inv, blob, err := h.invoices.Download(ctx, h.scope(c), id)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			writeError(c, http.StatusNotFound, "invoice not found")
			return
		}
		lg.Error("Failed to generate PDF", zap.String("invoice_id", id), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, pdfFailure)
		return
	}
	defer func() { _ = blob.Body.Close() }()

	lg.Info("Invoice downloaded",
		zap.Stringer("caller", caller(c)),
		zap.String("invoice_id", inv.ID),
		zap.String("order_id", inv.OrderID),
	)
	c.DataFromReader(http.StatusOK, blob.Size, "application/pdf", blob.Body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", inv.Filename()),
	})
}
