package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/dto"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/history"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/order"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/service"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
)

// OrderController handles order placement, lookup, and status changes
type OrderController struct {
	orders *service.OrderService
	status *service.StatusService
	logger logger.Logger
}

// NewOrderController creates an OrderController
func NewOrderController(orders *service.OrderService, status *service.StatusService, logger logger.Logger) *OrderController {
	return &OrderController{orders: orders, status: status, logger: logger}
}

// Place creates an order for the authenticated customer
// @Summary Place order
// @Description Places an order, allocating its number and deducting stock atomically
// @Tags orders
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param order body dto.PlaceOrderRequest true "Cart and pickup details"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /orders [post]
func (c *OrderController) Place(ctx *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	placed, err := c.orders.PlaceOrder(ctx.Request.Context(), auth.CallerID(ctx), req.Cart(), req.PickupDate, req.PickupTime)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewOrderResponse(placed))
}

// Get returns one order by id
// @Summary Get order
// @Description Returns one order with its items
// @Tags orders
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Order ID"
// @Success 200 {object} dto.OrderResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /orders/{id} [get]
func (c *OrderController) Get(ctx *gin.Context) {
	o, err := c.orders.GetOrder(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewOrderResponse(o))
}

// GetByNumber looks an order up by its printed number
// @Summary Get order by number
// @Description Returns one order by its day-scoped number
// @Tags orders
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param number path string true "Order number"
// @Success 200 {object} dto.OrderResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /orders/number/{number} [get]
func (c *OrderController) GetByNumber(ctx *gin.Context) {
	o, err := c.orders.GetOrderByNumber(ctx.Request.Context(), ctx.Param("number"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewOrderResponse(o))
}

// ListByDate returns a day's orders; date defaults to today when omitted
// @Summary List orders
// @Description Returns a day's orders in number order
// @Tags orders
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param date query string false "Day (YYYY-MM-DD)"
// @Success 200 {array} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /orders [get]
func (c *OrderController) ListByDate(ctx *gin.Context) {
	day := time.Now()
	if raw := ctx.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", err.Error()))
			return
		}
		day = parsed
	}

	orders, err := c.orders.ListOrdersByDate(ctx.Request.Context(), day)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.NewOrderResponse(o))
	}
	ctx.JSON(http.StatusOK, out)
}

// UpdateStatus moves an order to its next fulfilment status
// @Summary Update order status
// @Description Applies the order status machine and records the change
// @Tags orders
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Order ID"
// @Param change body dto.StatusChangeRequest true "Target status and notes"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /orders/{id}/status [patch]
func (c *OrderController) UpdateStatus(ctx *gin.Context) {
	var req dto.StatusChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	updated, err := c.status.TransitionOrder(ctx.Request.Context(), ctx.Param("id"),
		order.Status(req.Status), auth.CallerID(ctx), actorKind(ctx), req.Notes)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewOrderResponse(updated))
}

// UpdatePayment moves an order's payment status
// @Summary Update payment status
// @Description Applies the payment status machine and records the change
// @Tags orders
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Order ID"
// @Param change body dto.StatusChangeRequest true "Target status and notes"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /orders/{id}/payment [patch]
func (c *OrderController) UpdatePayment(ctx *gin.Context) {
	var req dto.StatusChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	updated, err := c.status.TransitionPayment(ctx.Request.Context(), ctx.Param("id"),
		order.PaymentStatus(req.Status), auth.CallerID(ctx), actorKind(ctx), req.Notes)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewOrderResponse(updated))
}

// History returns an order's audit trail oldest-first
// @Summary Order history
// @Description Returns an order's status changes oldest-first
// @Tags orders
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Order ID"
// @Success 200 {array} dto.HistoryEntryResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /orders/{id}/history [get]
func (c *OrderController) History(ctx *gin.Context) {
	entries, err := c.status.ListHistory(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewHistoryResponse(entries))
}

// actorKind maps the caller's role onto the audit actor kind
func actorKind(ctx *gin.Context) history.ActorKind {
	switch auth.CallerRole(ctx) {
	case auth.RoleOwner, auth.RoleStaff:
		return history.ActorStaff
	default:
		return history.ActorCustomer
	}
}
