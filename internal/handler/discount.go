package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xenking/sales-api/internal/domain/discount"
)

// DiscountRequest is the body of POST and PUT /discounts.
type DiscountRequest struct {
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Kind        discount.Kind   `json:"kind"`
	Value       decimal.Decimal `json:"value"`
	Active      *bool           `json:"active"`
	ValidFrom   *time.Time      `json:"valid_from"`
	ValidUntil  *time.Time      `json:"valid_until"`
}

// DiscountPatch is the body of PATCH /discounts/{id}.
type DiscountPatch struct {
	Code        *string          `json:"code"`
	Description *string          `json:"description"`
	Kind        *discount.Kind   `json:"kind"`
	Value       *decimal.Decimal `json:"value"`
	Active      *bool            `json:"active"`
	ValidFrom   *time.Time       `json:"valid_from"`
	ValidUntil  *time.Time       `json:"valid_until"`
}

// Discount is the API representation of a discount.
type Discount struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	Kind        discount.Kind   `json:"kind"`
	Value       decimal.Decimal `json:"value"`
	Active      bool            `json:"active"`
	ValidFrom   *time.Time      `json:"valid_from"`
	ValidUntil  *time.Time      `json:"valid_until"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toDiscount(d *discount.Discount) Discount {
	return Discount{
		ID:          d.ID,
		Code:        d.Code,
		Description: d.Description,
		Kind:        d.Kind,
		Value:       d.Value,
		Active:      d.Active,
		ValidFrom:   d.ValidFrom,
		ValidUntil:  d.ValidUntil,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (r DiscountRequest) input() discount.Input {
	return discount.Input{
		Code:        r.Code,
		Description: r.Description,
		Kind:        r.Kind,
		Value:       r.Value,
		Active:      r.Active,
		ValidFrom:   r.ValidFrom,
		ValidUntil:  r.ValidUntil,
	}
}

// ListDiscounts handles GET /discounts.
func (h *Handler) ListDiscounts(c *gin.Context) {
	list, err := h.discounts.List(c.Request.Context())
	if err != nil {
		mapDiscountError(c, "list discounts", err)
		return
	}
	out := make([]Discount, len(list))
	for i := range list {
		out[i] = toDiscount(&list[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetDiscount handles GET /discounts/{id}.
func (h *Handler) GetDiscount(c *gin.Context) {
	d, err := h.discounts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		mapDiscountError(c, "get discount", err)
		return
	}
	c.JSON(http.StatusOK, toDiscount(d))
}

// CreateDiscount handles POST /discounts.
func (h *Handler) CreateDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.discounts.Create(c.Request.Context(), req.input())
	if err != nil {
		mapDiscountError(c, "create discount", err)
		return
	}
	c.JSON(http.StatusCreated, toDiscount(d))
}

// UpdateDiscount handles PUT /discounts/{id}.
func (h *Handler) UpdateDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.discounts.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		mapDiscountError(c, "update discount", err)
		return
	}
	c.JSON(http.StatusOK, toDiscount(d))
}

// PatchDiscount handles PATCH /discounts/{id}.
func (h *Handler) PatchDiscount(c *gin.Context) {
	var req DiscountPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	d, err := h.discounts.Patch(c.Request.Context(), c.Param("id"), discount.Patch{
		Code:        req.Code,
		Description: req.Description,
		Kind:        req.Kind,
		Value:       req.Value,
		Active:      req.Active,
		ValidFrom:   req.ValidFrom,
		ValidUntil:  req.ValidUntil,
	})
	if err != nil {
		mapDiscountError(c, "patch discount", err)
		return
	}
	c.JSON(http.StatusOK, toDiscount(d))
}

// DeleteDiscount handles DELETE /discounts/{id}.
func (h *Handler) DeleteDiscount(c *gin.Context) {
	if err := h.discounts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		mapDiscountError(c, "delete discount", err)
		return
	}
	c.Status(http.StatusNoContent)
}
