// Package handler exposes the order, invoice and discount services over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/discount"
	"github.com/xenking/sales-api/internal/domain/invoice"
	"github.com/xenking/sales-api/internal/domain/order"
)

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (*auth.Caller, error)
}

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// Privileged decides who bypasses ownership filters and may manage
	// discounts. Defaults to auth.HasScope("admin").
	Privileged auth.Privilege
}

// Handler serves the /api routes.
type Handler struct {
	authn      Authenticator
	privileged auth.Privilege

	orders    *order.Service
	invoices  *invoice.Service
	discounts *discount.Service
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	authn Authenticator,
	orders *order.Service,
	invoices *invoice.Service,
	discounts *discount.Service,
) *Handler {
	privileged := cfg.Privileged
	if privileged == nil {
		privileged = auth.HasScope("admin")
	}
	return &Handler{
		authn:      authn,
		privileged: privileged,
		orders:     orders,
		invoices:   invoices,
		discounts:  discounts,
	}
}

// Router builds the gin engine serving every route under /api.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.ContextWithFallback = true
	r.HandleMethodNotAllowed = true
	r.NoRoute(func(c *gin.Context) {
		writeError(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		writeError(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	api := r.Group("/api", h.authenticate)

	orders := api.Group("/orders")
	orders.GET("", h.ListOrders)
	orders.POST("", h.CreateOrder)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id", h.UpdateOrder)
	orders.PATCH("/:id", h.PatchOrder)
	orders.DELETE("/:id", h.DeleteOrder)

	invoices := api.Group("/invoices")
	invoices.GET("", h.ListInvoices)
	invoices.GET("/:id", h.GetInvoice)
	invoices.GET("/:id/download", h.DownloadInvoice)

	discounts := api.Group("/discounts", h.requirePrivileged)
	discounts.GET("", h.ListDiscounts)
	discounts.POST("", h.CreateDiscount)
	discounts.GET("/:id", h.GetDiscount)
	discounts.PUT("/:id", h.UpdateDiscount)
	discounts.PATCH("/:id", h.PatchDiscount)
	discounts.DELETE("/:id", h.DeleteDiscount)

	return r
}

// authenticate rejects anonymous requests and stores the caller in the
// request context.
func (h *Handler) authenticate(c *gin.Context) {
	caller, err := h.authn.Authenticate(c.Request)
	if err != nil {
		mapAuthError(c, "authenticate", err)
		return
	}

	ctx := auth.WithCaller(c.Request.Context(), caller)
	ctx = zctx.With(ctx, zap.String("caller_id", caller.ID))
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("sales.caller_id", caller.ID))
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// requirePrivileged answers 403 before any query runs.
func (h *Handler) requirePrivileged(c *gin.Context) {
	if err := auth.Require(h.privileged, caller(c)); err != nil {
		mapAuthError(c, "authorize", err)
		return
	}
	c.Next()
}

// caller returns the authenticated caller. Only valid behind authenticate.
func caller(c *gin.Context) *auth.Caller {
	cl, _ := auth.CallerFrom(c.Request.Context())
	return cl
}

// scope is the ownership filter for the current caller.
func (h *Handler) scope(c *gin.Context) auth.Scope {
	return auth.ScopeFor(caller(c), h.privileged)
}
