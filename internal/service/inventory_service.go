package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/inventory"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/product"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/clock"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
)

// BatchView is a batch enriched with its age on the day of the query
type BatchView struct {
	inventory.Batch
	AgeInDays int `json:"age_in_days"`
}

// InventoryService owns the product catalog and batch-level stock
type InventoryService struct {
	store store.Store
	clk   clock.Clock
	log   logger.Logger
}

// NewInventoryService creates an InventoryService
func NewInventoryService(st store.Store, clk clock.Clock, log logger.Logger) *InventoryService {
	return &InventoryService{store: st, clk: clk, log: log}
}

// CreateProduct adds a catalog entry
func (s *InventoryService) CreateProduct(ctx context.Context, name string, isWeightBased bool, originalCost, salePrice decimal.Decimal, defaultReturnPercentage int, lowStockThreshold decimal.Decimal) (*product.Product, error) {
	p, err := product.NewProduct(name, isWeightBased, originalCost, salePrice, defaultReturnPercentage, lowStockThreshold)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.CreateProduct(ctx, p)
	if err != nil {
		return nil, err
	}

	s.log.Info("product created", "product_id", saved.ID, "name", saved.Name)
	return saved, nil
}

// GetProduct returns one product with its derived stock
func (s *InventoryService) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// ListProducts returns the catalog with derived stock quantities
func (s *InventoryService) ListProducts(ctx context.Context) ([]*product.Product, error) {
	return s.store.ListProducts(ctx)
}

// CheckIn records a daily stock arrival as a new batch. A zero dateAdded
// defaults to today; quantities are validated against the product's
// unit-or-weight rules before anything is written.
func (s *InventoryService) CheckIn(ctx context.Context, productID string, quantity decimal.Decimal, dateAdded time.Time) (BatchView, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return BatchView{}, err
	}
	if err := p.ValidateQuantity(quantity); err != nil {
		return BatchView{}, err
	}

	if dateAdded.IsZero() {
		dateAdded = s.clk.Today()
	}

	b, err := inventory.NewBatch(productID, quantity, dateAdded)
	if err != nil {
		return BatchView{}, err
	}

	saved, err := s.store.AddBatch(ctx, b)
	if err != nil {
		return BatchView{}, err
	}

	s.log.Info("stock checked in", "product_id", productID, "batch_id", saved.ID, "quantity", quantity.String())
	return BatchView{Batch: *saved, AgeInDays: saved.AgeInDays(s.clk.Today())}, nil
}

// TotalStock sums a product's live batches
func (s *InventoryService) TotalStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	return s.store.TotalStock(ctx, productID)
}

// ListBatches returns a product's live batches oldest-first with their ages
// as of today
func (s *InventoryService) ListBatches(ctx context.Context, productID string) ([]BatchView, error) {
	batches, err := s.store.ListBatches(ctx, productID)
	if err != nil {
		return nil, err
	}

	today := s.clk.Today()
	views := make([]BatchView, 0, len(batches))
	for _, b := range batches {
		views = append(views, BatchView{Batch: b, AgeInDays: b.AgeInDays(today)})
	}
	return views, nil
}
