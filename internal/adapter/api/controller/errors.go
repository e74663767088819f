package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/dto"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/customrequest"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/inventory"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/order"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/product"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/stockreturn"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/service"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
)

// badRequestErrors are domain validation failures that map to 400
var badRequestErrors = []error{
	store.ErrValidation,
	product.ErrEmptyName,
	product.ErrInvalidPrice,
	product.ErrInvalidReturnPercentage,
	product.ErrNonPositiveQuantity,
	product.ErrFractionalUnitQuantity,
	product.ErrQuantityPrecision,
	inventory.ErrNonPositiveQuantity,
	inventory.ErrEmptyProduct,
	order.ErrEmptyCart,
	order.ErrNonPositiveQuantity,
	order.ErrEmptyCustomer,
	stockreturn.ErrInvalidPercentage,
	stockreturn.ErrUnknownBatch,
	stockreturn.ErrNothingToReturn,
	stockreturn.ErrEmptyProcessor,
	customrequest.ErrEmptyCustomer,
	customrequest.ErrEmptyDescription,
	customrequest.ErrInvalidQuote,
}

// respondError translates engine errors onto HTTP status codes. Unrecognized
// errors become 500 and are logged with detail; the client only sees a
// generic message.
func respondError(ctx *gin.Context, log logger.Logger, err error) {
	for _, sentinel := range badRequestErrors {
		if errors.Is(err, sentinel) {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request", err.Error()))
			return
		}
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		ctx.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "not found", err.Error()))
	case errors.Is(err, store.ErrInsufficientStock):
		ctx.JSON(http.StatusConflict, dto.NewErrorResponse(http.StatusConflict, "insufficient stock", err.Error()))
	case errors.Is(err, store.ErrInvalidTransition):
		ctx.JSON(http.StatusUnprocessableEntity, dto.NewErrorResponse(http.StatusUnprocessableEntity, "invalid status transition", err.Error()))
	case errors.Is(err, store.ErrDuplicateKey):
		ctx.JSON(http.StatusConflict, dto.NewErrorResponse(http.StatusConflict, "already exists", err.Error()))
	case errors.Is(err, store.ErrOrderNumberAllocation):
		ctx.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(http.StatusServiceUnavailable, "busy, please retry", ""))
	case errors.Is(err, store.ErrConcurrencyConflict):
		ctx.JSON(http.StatusConflict, dto.NewErrorResponse(http.StatusConflict, "conflicting update, please retry", ""))
	case errors.Is(err, service.ErrOverrideForbidden):
		ctx.JSON(http.StatusForbidden, dto.NewErrorResponse(http.StatusForbidden, "forbidden", err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		ctx.JSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, "invalid credentials", ""))
	default:
		log.Error("unhandled error", "error", err)
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, "internal error", ""))
	}
}
