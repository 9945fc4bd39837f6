package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/httpx"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/order"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/product"
	"github.com/MOUAYEDSB/terfer-commerce-sub001/internal/user"
)

// respondErr maps domain sentinel errors onto HTTP status codes. Anything
// unrecognized is a 500.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, order.ErrNotFound):
		httpx.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, user.ErrAlreadyExist),
		errors.Is(err, product.ErrAlreadyReviewed),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrNotCancellable),
		errors.Is(err, order.ErrConflict):
		httpx.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, order.ErrInvalidTransition):
		httpx.Error(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, user.ErrForbidden),
		errors.Is(err, product.ErrForbidden),
		errors.Is(err, order.ErrForbidden),
		errors.Is(err, user.ErrDisabled):
		httpx.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, user.ErrBadCredentials):
		httpx.Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, user.ErrInvalidInput),
		errors.Is(err, product.ErrInvalidInput),
		errors.Is(err, product.ErrStockMismatch),
		errors.Is(err, order.ErrInvalidInput),
		errors.Is(err, order.ErrEmptyOrder),
		errors.Is(err, order.ErrVariantRequired),
		errors.Is(err, order.ErrUnknownStatus):
		httpx.Error(c, http.StatusBadRequest, err.Error())
	default:
		httpx.Error(c, http.StatusInternalServerError, "internal server error")
	}
}
