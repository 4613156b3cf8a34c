package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xenking/sales-api/internal/domain/order"
)

// OrderRequest is the body of POST and PUT /orders. An owner_id sent by the
// client is not part of it and therefore ignored.
type OrderRequest struct {
	CustomerName string          `json:"customer_name"`
	Reference    string          `json:"reference"`
	Currency     string          `json:"currency"`
	Items        []order.Item    `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Notes        string          `json:"notes"`
}

// OrderPatch is the body of PATCH /orders/{id}.
type OrderPatch struct {
	CustomerName *string          `json:"customer_name"`
	Reference    *string          `json:"reference"`
	Currency     *string          `json:"currency"`
	Items        *[]order.Item    `json:"items"`
	Total        *decimal.Decimal `json:"total"`
	Notes        *string          `json:"notes"`
}

// Order is the API representation of an order.
type Order struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	CustomerName string          `json:"customer_name"`
	Reference    string          `json:"reference"`
	Currency     string          `json:"currency"`
	Items        []order.Item    `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Notes        string          `json:"notes"`
	InvoiceID    string          `json:"invoice_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toOrder(o *order.Order) Order {
	items := o.Items
	if items == nil {
		items = []order.Item{}
	}
	return Order{
		ID:           o.ID,
		OwnerID:      o.OwnerID,
		CustomerName: o.CustomerName,
		Reference:    o.Reference,
		Currency:     o.Currency,
		Items:        items,
		Total:        o.Total,
		Notes:        o.Notes,
		InvoiceID:    o.InvoiceID,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func (r OrderRequest) input() order.Input {
	return order.Input{
		CustomerName: r.CustomerName,
		Reference:    r.Reference,
		Currency:     r.Currency,
		Items:        r.Items,
		Total:        r.Total,
		Notes:        r.Notes,
	}
}

// ListOrders handles GET /orders.
func (h *Handler) ListOrders(c *gin.Context) {
	list, err := h.orders.List(c.Request.Context(), h.scope(c))
	if err != nil {
		mapOrderError(c, "list orders", err)
		return
	}
	out := make([]Order, len(list))
	for i := range list {
		out[i] = toOrder(&list[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetOrder handles GET /orders/{id}.
func (h *Handler) GetOrder(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), h.scope(c), c.Param("id"))
	if err != nil {
		mapOrderError(c, "get order", err)
		return
	}
	c.JSON(http.StatusOK, toOrder(o))
}

// CreateOrder handles POST /orders. The order and its invoice are created
// together.
func (h *Handler) CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.orders.Create(c.Request.Context(), caller(c), req.input())
	if err != nil {
		mapOrderError(c, "create order", err)
		return
	}
	c.JSON(http.StatusCreated, toOrder(o))
}

// UpdateOrder handles PUT /orders/{id}.
func (h *Handler) UpdateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.orders.Update(c.Request.Context(), h.scope(c), c.Param("id"), req.input())
	if err != nil {
		mapOrderError(c, "update order", err)
		return
	}
	c.JSON(http.StatusOK, toOrder(o))
}

// PatchOrder handles PATCH /orders/{id}.
func (h *Handler) PatchOrder(c *gin.Context) {
	var req OrderPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	o, err := h.orders.Patch(c.Request.Context(), h.scope(c), c.Param("id"), order.Patch{
		CustomerName: req.CustomerName,
		Reference:    req.Reference,
		Currency:     req.Currency,
		Items:        req.Items,
		Total:        req.Total,
		Notes:        req.Notes,
	})
	if err != nil {
		mapOrderError(c, "patch order", err)
		return
	}
	c.JSON(http.StatusOK, toOrder(o))
}

// DeleteOrder handles DELETE /orders/{id}.
func (h *Handler) DeleteOrder(c *gin.Context) {
	if err := h.orders.Delete(c.Request.Context(), h.scope(c), c.Param("id")); err != nil {
		mapOrderError(c, "delete order", err)
		return
	}
	c.Status(http.StatusNoContent)
}
