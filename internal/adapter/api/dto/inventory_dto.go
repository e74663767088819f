package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/product"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/service"
)

// ProductRequest creates a catalog entry
type ProductRequest struct {
	Name                    string          `json:"name" binding:"required"`
	IsWeightBased           bool            `json:"is_weight_based"`
	OriginalCost            decimal.Decimal `json:"original_cost" binding:"required"`
	SalePrice               decimal.Decimal `json:"sale_price" binding:"required"`
	DefaultReturnPercentage int             `json:"default_return_percentage" binding:"required"`
	LowStockThreshold       decimal.Decimal `json:"low_stock_threshold"`
}

// ProductResponse is a catalog entry with its derived stock
type ProductResponse struct {
	ID                      string          `json:"id"`
	Name                    string          `json:"name"`
	IsWeightBased           bool            `json:"is_weight_based"`
	OriginalCost            decimal.Decimal `json:"original_cost"`
	SalePrice               decimal.Decimal `json:"sale_price"`
	DefaultReturnPercentage int             `json:"default_return_percentage"`
	LowStockThreshold       decimal.Decimal `json:"low_stock_threshold"`
	StockQuantity           decimal.Decimal `json:"stock_quantity"`
	LowStock                bool            `json:"low_stock"`
}

// NewProductResponse maps a product to its response shape
func NewProductResponse(p *product.Product) ProductResponse {
	return ProductResponse{
		ID:                      p.ID,
		Name:                    p.Name,
		IsWeightBased:           p.IsWeightBased,
		OriginalCost:            p.OriginalCost,
		SalePrice:               p.SalePrice,
		DefaultReturnPercentage: p.DefaultReturnPercentage,
		LowStockThreshold:       p.LowStockThreshold,
		StockQuantity:           p.StockQuantity,
		LowStock:                p.IsLowStock(),
	}
}

// CheckInRequest records a stock arrival. DateAdded defaults to today when
// omitted.
type CheckInRequest struct {
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	DateAdded *time.Time      `json:"date_added,omitempty"`
}

// BatchResponse is one live batch with its age
type BatchResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	DateAdded string          `json:"date_added"`
	AgeInDays int             `json:"age_in_days"`
}

// NewBatchResponse maps a batch view to its response shape
func NewBatchResponse(v service.BatchView) BatchResponse {
	return BatchResponse{
		ID:        v.ID,
		ProductID: v.ProductID,
		Quantity:  v.Quantity,
		DateAdded: v.DateAdded.Format("2006-01-02"),
		AgeInDays: v.AgeInDays,
	}
}

// StockResponse is a product's total stock
type StockResponse struct {
	ProductID     string          `json:"product_id"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
}
