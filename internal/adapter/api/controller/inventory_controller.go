package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/adapter/api/dto"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/service"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
)

// InventoryController handles the catalog and batch stock endpoints
type InventoryController struct {
	inventory *service.InventoryService
	logger    logger.Logger
}

// NewInventoryController creates an InventoryController
func NewInventoryController(inventory *service.InventoryService, logger logger.Logger) *InventoryController {
	return &InventoryController{inventory: inventory, logger: logger}
}

// CreateProduct adds a catalog entry
// @Summary Create product
// @Description Adds a product to the catalog
// @Tags inventory
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param product body dto.ProductRequest true "Product details"
// @Success 201 {object} dto.ProductResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products [post]
func (c *InventoryController) CreateProduct(ctx *gin.Context) {
	var req dto.ProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	p, err := c.inventory.CreateProduct(ctx.Request.Context(), req.Name, req.IsWeightBased,
		req.OriginalCost, req.SalePrice, req.DefaultReturnPercentage, req.LowStockThreshold)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewProductResponse(p))
}

// GetProduct returns one product with its derived stock
// @Summary Get product
// @Description Returns one product with stock summed from its live batches
// @Tags inventory
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Product ID"
// @Success 200 {object} dto.ProductResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products/{id} [get]
func (c *InventoryController) GetProduct(ctx *gin.Context) {
	p, err := c.inventory.GetProduct(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewProductResponse(p))
}

// ListProducts returns the catalog
// @Summary List products
// @Description Returns the catalog ordered by name
// @Tags inventory
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {array} dto.ProductResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products [get]
func (c *InventoryController) ListProducts(ctx *gin.Context) {
	products, err := c.inventory.ListProducts(ctx.Request.Context())
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.NewProductResponse(p))
	}
	ctx.JSON(http.StatusOK, out)
}

// CheckIn records a stock arrival as a new batch
// @Summary Check in stock
// @Description Records a stock arrival as a new dated batch
// @Tags inventory
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Product ID"
// @Param batch body dto.CheckInRequest true "Arrival details"
// @Success 201 {object} dto.BatchResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products/{id}/batches [post]
func (c *InventoryController) CheckIn(ctx *gin.Context) {
	var req dto.CheckInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(http.StatusBadRequest, "invalid request body", err.Error()))
		return
	}

	dateAdded := time.Time{}
	if req.DateAdded != nil {
		dateAdded = *req.DateAdded
	}

	view, err := c.inventory.CheckIn(ctx.Request.Context(), ctx.Param("id"), req.Quantity, dateAdded)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewBatchResponse(view))
}

// ListBatches returns a product's live batches oldest-first with ages
// @Summary List batches
// @Description Returns a product's live batches oldest-first with their ages
// @Tags inventory
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Product ID"
// @Success 200 {array} dto.BatchResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products/{id}/batches [get]
func (c *InventoryController) ListBatches(ctx *gin.Context) {
	views, err := c.inventory.ListBatches(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	out := make([]dto.BatchResponse, 0, len(views))
	for _, v := range views {
		out = append(out, dto.NewBatchResponse(v))
	}
	ctx.JSON(http.StatusOK, out)
}

// GetStock returns a product's total stock
// @Summary Get stock
// @Description Returns a product's stock summed across live batches
// @Tags inventory
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param id path string true "Product ID"
// @Success 200 {object} dto.StockResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /products/{id}/stock [get]
func (c *InventoryController) GetStock(ctx *gin.Context) {
	productID := ctx.Param("id")
	total, err := c.inventory.TotalStock(ctx.Request.Context(), productID)
	if err != nil {
		respondError(ctx, c.logger, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.StockResponse{ProductID: productID, StockQuantity: total})
}
