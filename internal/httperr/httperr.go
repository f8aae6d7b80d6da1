// Package httperr maps domain errors onto HTTP statuses for the JSON API.
package httperr

import (
	"errors"
	"net/http"

	cartapp "github.com/dwikikusuma/pizza-cart/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/pizza-cart/internal/checkout/app"
	checkout "github.com/dwikikusuma/pizza-cart/internal/checkout/domain"
	menuapp "github.com/dwikikusuma/pizza-cart/internal/menu/app"
	menu "github.com/dwikikusuma/pizza-cart/internal/menu/domain"
	"github.com/dwikikusuma/pizza-cart/internal/pricing"
	"github.com/gin-gonic/gin"
)

// Status returns the HTTP status, a stable error code and the message shown
// to the client.
func Status(err error) (int, string, string) {
	var (
		rejected *checkout.PaymentRejectedError
		netErr   *checkout.NetworkError
	)

	switch {
	case errors.As(err, &rejected):
		msg := rejected.Detail
		if msg == "" {
			msg = "payment failed"
		}
		return http.StatusPaymentRequired, "PAYMENT_REJECTED", msg
	case errors.As(err, &netErr):
		return http.StatusBadGateway, "UNAVAILABLE", "payment service unavailable"
	case errors.Is(err, menuapp.ErrInvalidInput),
		errors.Is(err, cartapp.ErrInvalidInput),
		errors.Is(err, checkoutapp.ErrInvalidInput),
		errors.Is(err, menu.ErrInvalidSize):
		return http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()
	case errors.Is(err, menuapp.ErrNotFound), errors.Is(err, cartapp.ErrLineNotFound):
		return http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, checkoutapp.ErrEmptyCart):
		return http.StatusConflict, "FAILED_PRECONDITION", err.Error()
	case errors.Is(err, menuapp.ErrFetch):
		return http.StatusBadGateway, "UNAVAILABLE", "failed to fetch items"
	case errors.Is(err, pricing.ErrInvalidPrice):
		return http.StatusInternalServerError, "DATA_INTEGRITY", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

// Write renders err as {"error", "code"}.
func Write(c *gin.Context, err error) {
	status, code, msg := Status(err)
	c.JSON(status, gin.H{"error": msg, "code": code})
}
