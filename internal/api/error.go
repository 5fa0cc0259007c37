package api

import (
	"errors"
	"net/http"

	"farmdirect-be/internal/cart"
	"farmdirect-be/internal/category"
	"farmdirect-be/internal/delivery"
	"farmdirect-be/internal/logger"
	"farmdirect-be/internal/order"
	"farmdirect-be/internal/payment"
	"farmdirect-be/internal/product"
	"farmdirect-be/internal/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError translates domain sentinel errors into HTTP responses.
// Anything unrecognized is a 500 with a generic body; the real error
// goes to the log, not the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	if status == http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("unhandled error",
			zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	// 400
	case errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidStock),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrMissingAddress),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrOrderNotConfirmed),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrInvalidTier),
		errors.Is(err, payment.ErrMissingEmail):
		return http.StatusBadRequest

	// 401
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// 403
	case errors.Is(err, order.ErrForbidden),
		errors.Is(err, product.ErrNotOwner),
		errors.Is(err, delivery.ErrNotAssignee),
		errors.Is(err, payment.ErrNotOrderOwner):
		return http.StatusForbidden

	// 404
	case errors.Is(err, user.ErrUserNotFound),
		errors.Is(err, category.ErrCategoryNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, delivery.ErrDeliveryNotFound),
		errors.Is(err, payment.ErrPaymentNotFound),
		errors.Is(err, payment.ErrSubscriptionNotFound),
		errors.Is(err, payment.ErrNotFarmer):
		return http.StatusNotFound

	// 409
	case errors.Is(err, user.ErrUsernameExists),
		errors.Is(err, user.ErrEmailExists),
		errors.Is(err, order.ErrAlreadyAssigned),
		errors.Is(err, payment.ErrSubscriptionExists):
		return http.StatusConflict

	// 502
	case errors.Is(err, payment.ErrGateway):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
