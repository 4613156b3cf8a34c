package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/sales-api/internal/domain/auth"
	"github.com/xenking/sales-api/internal/domain/discount"
	"github.com/xenking/sales-api/internal/domain/order"
)

// Error is the body of every API error response except a failed invoice
// download.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Error{Code: status, Message: msg})
}

func badRequest(c *gin.Context, err error) {
	writeError(c, http.StatusBadRequest, "invalid request body: "+err.Error())
}

// internalError logs err and hides it from the client.
func internalError(c *gin.Context, op string, err error) {
	zctx.From(c.Request.Context()).Error("Request failed", zap.String("op", op), zap.Error(err))
	writeError(c, http.StatusInternalServerError, "internal server error")
}

// mapAuthError answers 401 or 403 for credential and privilege failures and
// 500 for anything else, such as an unreachable key store.
func mapAuthError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		zctx.From(c.Request.Context()).Debug("Authentication failed", zap.Error(err))
		writeError(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, auth.ErrForbidden):
		writeError(c, http.StatusForbidden, "forbidden")
	default:
		internalError(c, op, err)
	}
}

// mapOrderError converts order service errors to responses.
func mapOrderError(c *gin.Context, op string, err error) {
	var vErr *order.ValidationError
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(c, http.StatusNotFound, "order not found")
	case errors.As(err, &vErr):
		writeError(c, http.StatusBadRequest, vErr.Error())
	default:
		internalError(c, op, err)
	}
}

// mapDiscountError converts discount service errors to responses.
func mapDiscountError(c *gin.Context, op string, err error) {
	var vErr *discount.ValidationError
	switch {
	case errors.Is(err, discount.ErrNotFound):
		writeError(c, http.StatusNotFound, "discount not found")
	case errors.Is(err, discount.ErrCodeTaken):
		writeError(c, http.StatusConflict, discount.ErrCodeTaken.Error())
	case errors.As(err, &vErr):
		writeError(c, http.StatusBadRequest, vErr.Error())
	default:
		internalError(c, op, err)
	}
}
