package service

import (
	"context"
	"errors"
	"time"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/stockreturn"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/clock"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/notifier"
)

// ErrOverrideForbidden rejects percentage overrides from non-owner staff
var ErrOverrideForbidden = errors.New("only the owner may override return percentages")

// ReturnService runs end-of-day supplier returns
type ReturnService struct {
	store  store.Store
	clk    clock.Clock
	log    logger.Logger
	notify notifier.Notifier
}

// NewReturnService creates a ReturnService
func NewReturnService(st store.Store, clk clock.Clock, log logger.Logger, n notifier.Notifier) *ReturnService {
	return &ReturnService{store: st, clk: clk, log: log, notify: n}
}

// ProcessReturn resolves the day's batch decisions and finalizes them in
// one atomic store call. Every live batch defaults to RETURN at its
// product's default percentage; selections mark the exceptions, either
// keeping a batch or overriding the percentage. Overrides are owner-only.
func (s *ReturnService) ProcessReturn(ctx context.Context, processedBy string, role auth.Role, selections []stockreturn.Selection) (*stockreturn.Return, error) {
	if processedBy == "" {
		return nil, stockreturn.ErrEmptyProcessor
	}

	batches, err := s.store.ListAllBatches(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]string, len(batches))
	for _, b := range batches {
		known[b.ID] = b.ProductID
	}

	keep := make(map[string]bool)
	overrides := make(map[string]int)
	for _, sel := range selections {
		if _, ok := known[sel.BatchID]; !ok {
			return nil, stockreturn.ErrUnknownBatch
		}
		switch sel.Decision {
		case stockreturn.DecisionKeep:
			keep[sel.BatchID] = true
		case stockreturn.DecisionReturn:
			if sel.PercentageOverride != nil {
				if role != auth.RoleOwner {
					return nil, ErrOverrideForbidden
				}
				if err := stockreturn.ValidatePercentage(*sel.PercentageOverride); err != nil {
					return nil, err
				}
				overrides[sel.BatchID] = *sel.PercentageOverride
			}
		default:
			return nil, stockreturn.ErrUnknownBatch
		}
	}

	defaultPct := make(map[string]int)
	resolutions := make([]stockreturn.Resolution, 0, len(batches))
	for _, b := range batches {
		if keep[b.ID] {
			continue
		}

		pct, ok := overrides[b.ID]
		if !ok {
			if pct, ok = defaultPct[b.ProductID]; !ok {
				p, err := s.store.GetProduct(ctx, b.ProductID)
				if err != nil {
					return nil, err
				}
				pct = p.DefaultReturnPercentage
				defaultPct[b.ProductID] = pct
			}
		}
		resolutions = append(resolutions, stockreturn.Resolution{BatchID: b.ID, Percentage: pct})
	}

	if len(resolutions) == 0 {
		return nil, stockreturn.ErrNothingToReturn
	}

	ret, err := s.store.ProcessReturn(ctx, s.clk.Today(), processedBy, resolutions)
	if err != nil {
		return nil, err
	}

	s.log.Info("supplier return processed", "return_id", ret.ID,
		"batches", ret.TotalBatches, "total_value", ret.TotalValue.String())

	err = s.notify.Notify(ctx, ownerRecipient, notifier.EventReturnProcessed, map[string]interface{}{
		"return_id":      ret.ID,
		"total_batches":  ret.TotalBatches,
		"total_quantity": ret.TotalQuantity.String(),
		"total_value":    ret.TotalValue.String(),
	})
	if err != nil {
		s.log.Error("failed to send return processed notification", "return_id", ret.ID, "error", err)
	}

	return ret, nil
}

// GetReturn returns one finalized return with its snapshots
func (s *ReturnService) GetReturn(ctx context.Context, id string) (*stockreturn.Return, error) {
	return s.store.GetReturn(ctx, id)
}

// ListReturns returns finalized returns in a date range, inclusive
func (s *ReturnService) ListReturns(ctx context.Context, from, to time.Time) ([]*stockreturn.Return, error) {
	return s.store.ListReturns(ctx, clock.Date(from), clock.Date(to))
}
