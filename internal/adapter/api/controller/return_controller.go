package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/dto"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/service"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
)

// ReturnController handles end-of-day supplier return processing
type ReturnController struct {
	returns *service.ReturnService
	logger  logger.Logger
}

// NewReturnController creates a ReturnController
func NewReturnController(returns *service.ReturnService, logger logger.Logger) *ReturnController {
	return &ReturnController{returns: returns, logger: logger}
}

// Process finalizes the day's return decisions
// @Summary Process returns
// @Description Removes the selected batches and records their valuation snapshots
// @Tags returns
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param selections body dto.ProcessReturnRequest true "Per-batch return decisions"
// @Success 201 {object} dto.ReturnResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /returns [post]
func (c *ReturnController) Process(ctx *gin.Context) {
	var req dto.ProcessReturnRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	ret, err := c.returns.ProcessReturn(ctx.Request.Context(), auth.CallerID(ctx), auth.CallerRole(ctx), req.ToSelections())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewReturnResponse(ret))
}

// Get returns one finalized return with its snapshots
// @Summary Get return
// @Description Returns one finalized return with its item snapshots
// @Tags returns
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Return ID"
// @Success 200 {object} dto.ReturnResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /returns/{id} [get]
func (c *ReturnController) Get(ctx *gin.Context) {
	ret, err := c.returns.GetReturn(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewReturnResponse(ret))
}

// List returns finalized returns in a date range; defaults to the last week
// @Summary List returns
// @Description Returns finalized returns within a date range
// @Tags returns
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param from query string false "Start day (YYYY-MM-DD)"
// @Param to query string false "End day (YYYY-MM-DD)"
// @Success 200 {array} dto.ReturnResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /returns [get]
func (c *ReturnController) List(ctx *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -7)

	if raw := ctx.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD", err.Error()))
			return
		}
		from = parsed
	}
	if raw := ctx.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD", err.Error()))
			return
		}
		to = parsed
	}

	returns, err := c.returns.ListReturns(ctx.Request.Context(), from, to)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out := make([]dto.ReturnResponse, 0, len(returns))
	for _, ret := range returns {
		out = append(out, dto.NewReturnResponse(ret))
	}
	ctx.JSON(http.StatusOK, out)
}
