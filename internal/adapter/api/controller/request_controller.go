package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/dto"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/customrequest"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/service"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
)

// RequestController handles the custom request lifecycle
type RequestController struct {
	status *service.StatusService
	logger logger.Logger
}

// NewRequestController creates a RequestController
func NewRequestController(status *service.StatusService, logger logger.Logger) *RequestController {
	return &RequestController{status: status, logger: logger}
}

// Create opens a custom request for the authenticated customer
// @Summary Create custom request
// @Description Opens a custom request awaiting staff review
// @Tags requests
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param request body dto.CreateRequestRequest true "Request description"
// @Success 201 {object} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /requests [post]
func (c *RequestController) Create(ctx *gin.Context) {
	var req dto.CreateRequestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	r, err := c.status.CreateRequest(ctx.Request.Context(), auth.CallerID(ctx), req.Description)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewRequestResponse(r))
}

// Get returns one custom request
// @Summary Get custom request
// @Description Returns one custom request
// @Tags requests
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Request ID"
// @Success 200 {object} dto.RequestResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /requests/{id} [get]
func (c *RequestController) Get(ctx *gin.Context) {
	r, err := c.status.GetRequest(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewRequestResponse(r))
}

// ListByStatus returns custom requests filtered by status
// @Summary List custom requests
// @Description Returns custom requests in one lifecycle status
// @Tags requests
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param status query string false "Lifecycle status"
// @Success 200 {array} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /requests [get]
func (c *RequestController) ListByStatus(ctx *gin.Context) {
	status := customrequest.Status(ctx.DefaultQuery("status", string(customrequest.StatusPendingReview)))
	if !status.IsValid() {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "unknown status", string(status)))
		return
	}

	requests, err := c.status.ListRequestsByStatus(ctx.Request.Context(), status)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out := make([]dto.RequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, dto.NewRequestResponse(r))
	}
	ctx.JSON(http.StatusOK, out)
}

// Quote attaches a price quote; staff only
// @Summary Quote custom request
// @Description Attaches a price quote valid for seven days
// @Tags requests
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Request ID"
// @Param quote body dto.QuoteRequestRequest true "Quote amount and notes"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /requests/{id}/quote [post]
func (c *RequestController) Quote(ctx *gin.Context) {
	var req dto.QuoteRequestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	r, err := c.status.QuoteRequest(ctx.Request.Context(), ctx.Param("id"), req.Amount, auth.CallerID(ctx), req.Notes)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewRequestResponse(r))
}

// UpdateStatus applies the request state machine
// @Summary Update request status
// @Description Applies the request status machine and records the change
// @Tags requests
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Request ID"
// @Param change body dto.StatusChangeRequest true "Target status and notes"
// @Success 200 {object} dto.RequestResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /requests/{id}/status [patch]
func (c *RequestController) UpdateStatus(ctx *gin.Context) {
	var req dto.StatusChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	r, err := c.status.TransitionRequest(ctx.Request.Context(), ctx.Param("id"),
		customrequest.Status(req.Status), auth.CallerID(ctx), actorKind(ctx), req.Notes)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewRequestResponse(r))
}

// History returns a request's audit trail oldest-first
// @Summary Request history
// @Description Returns a request's status changes oldest-first
// @Tags requests
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Request ID"
// @Success 200 {array} dto.HistoryEntryResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /requests/{id}/history [get]
func (c *RequestController) History(ctx *gin.Context) {
	entries, err := c.status.ListHistory(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewHistoryResponse(entries))
}
