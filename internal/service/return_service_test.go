package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Outis2001/ayubo-cafe-sub003/internal/domain/stockreturn"
	"github.com/Outis2001/ayubo-cafe-sub003/internal/store/memory"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/auth"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/clock"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/logger"
	"github.com/Outis2001/ayubo-cafe-sub003/pkg/notifier"
)

func newReturnService(s *memory.Store) (*ReturnService, *captureNotifier) {
	n := &captureNotifier{}
	return NewReturnService(s, clock.Fixed(frozenNow), logger.NewNop(), n), n
}

func TestProcessReturnDefaultsToReturnAll(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	p := seedProduct(t, s, "Fish Bun", false, 0)
	b1 := seedBatch(t, s, p.ID, 6, frozenNow.AddDate(0, 0, -2))
	b2 := seedBatch(t, s, p.ID, 4, frozenNow.AddDate(0, 0, -1))

	svc, n := newReturnService(s)
	ret, err := svc.ProcessReturn(ctx, "staff-1", auth.RoleStaff, nil)
	require.NoError(t, err)

	// Both batches returned at the product default of 20%.
	assert.Equal(t, 2, ret.TotalBatches)
	assert.True(t, ret.TotalQuantity.Equal(decimal.NewFromInt(10)))
	// cost 200 at 20% = 40 per unit; 10 units = 400
	assert.True(t, ret.TotalValue.Equal(decimal.NewFromInt(400)))

	for _, item := range ret.Items {
		assert.Contains(t, []string{b1.ID, b2.ID}, item.BatchID)
		assert.Equal(t, 20, item.ReturnPercentage)
		assert.Equal(t, "Fish Bun", item.ProductName)
	}

	batches, err := s.ListBatches(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, batches)

	events := n.byType(notifier.EventReturnProcessed)
	require.Len(t, events, 1)
	assert.Equal(t, "owner", events[0].RecipientID)
}

func TestProcessReturnKeepSelection(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	p := seedProduct(t, s, "Egg Bun", false, 0)
	kept := seedBatch(t, s, p.ID, 5, frozenNow)
	returned := seedBatch(t, s, p.ID, 3, frozenNow.AddDate(0, 0, -1))

	svc, _ := newReturnService(s)
	ret, err := svc.ProcessReturn(ctx, "staff-1", auth.RoleStaff, []stockreturn.Selection{
		{BatchID: kept.ID, Decision: stockreturn.DecisionKeep},
	})
	require.NoError(t, err)

	require.Len(t, ret.Items, 1)
	assert.Equal(t, returned.ID, ret.Items[0].BatchID)
	assert.Equal(t, 1, ret.Items[0].AgeAtReturn)

	// The kept batch stays live and keeps aging from its original date.
	batches, err := s.ListBatches(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, kept.ID, batches[0].ID)
	assert.Equal(t, clock.Date(frozenNow), batches[0].DateAdded)
}

func TestProcessReturnOwnerOverride(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Seeni Sambol Bun", false, 0)
	b := seedBatch(t, s, p.ID, 2, frozenNow)

	svc, _ := newReturnService(s)
	pct := 50
	ret, err := svc.ProcessReturn(context.Background(), "owner-1", auth.RoleOwner, []stockreturn.Selection{
		{BatchID: b.ID, Decision: stockreturn.DecisionReturn, PercentageOverride: &pct},
	})
	require.NoError(t, err)

	require.Len(t, ret.Items, 1)
	assert.Equal(t, 50, ret.Items[0].ReturnPercentage)
	// cost 200 at 50% = 100 per unit
	assert.True(t, ret.Items[0].ReturnValuePerUnit.Equal(decimal.NewFromInt(100)))
}

func TestProcessReturnStaffCannotOverride(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Vegetable Roti", false, 0)
	b := seedBatch(t, s, p.ID, 2, frozenNow)

	svc, _ := newReturnService(s)
	pct := 50
	_, err := svc.ProcessReturn(context.Background(), "staff-1", auth.RoleStaff, []stockreturn.Selection{
		{BatchID: b.ID, Decision: stockreturn.DecisionReturn, PercentageOverride: &pct},
	})
	assert.ErrorIs(t, err, ErrOverrideForbidden)

	// Nothing was returned.
	batches, err := s.ListBatches(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Len(t, batches, 1)
}

func TestProcessReturnInvalidOverridePercentage(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Wade", false, 0)
	b := seedBatch(t, s, p.ID, 2, frozenNow)

	svc, _ := newReturnService(s)
	pct := 0
	_, err := svc.ProcessReturn(context.Background(), "owner-1", auth.RoleOwner, []stockreturn.Selection{
		{BatchID: b.ID, Decision: stockreturn.DecisionReturn, PercentageOverride: &pct},
	})
	assert.ErrorIs(t, err, stockreturn.ErrInvalidPercentage)
}

func TestProcessReturnUnknownBatchSelection(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Kokis", false, 0)
	seedBatch(t, s, p.ID, 2, frozenNow)

	svc, _ := newReturnService(s)
	_, err := svc.ProcessReturn(context.Background(), "staff-1", auth.RoleStaff, []stockreturn.Selection{
		{BatchID: "no-such-batch", Decision: stockreturn.DecisionKeep},
	})
	assert.ErrorIs(t, err, stockreturn.ErrUnknownBatch)
}

func TestProcessReturnNothingToReturn(t *testing.T) {
	s := memory.New()
	p := seedProduct(t, s, "Aluwa", false, 0)
	b := seedBatch(t, s, p.ID, 2, frozenNow)

	svc, _ := newReturnService(s)
	_, err := svc.ProcessReturn(context.Background(), "staff-1", auth.RoleStaff, []stockreturn.Selection{
		{BatchID: b.ID, Decision: stockreturn.DecisionKeep},
	})
	assert.ErrorIs(t, err, stockreturn.ErrNothingToReturn)
}

func TestProcessReturnRequiresProcessor(t *testing.T) {
	s := memory.New()
	svc, _ := newReturnService(s)
	_, err := svc.ProcessReturn(context.Background(), "", auth.RoleStaff, nil)
	assert.ErrorIs(t, err, stockreturn.ErrEmptyProcessor)
}

func TestListReturnsByDateRange(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	p := seedProduct(t, s, "Bibikkan", false, 0)
	seedBatch(t, s, p.ID, 3, frozenNow)

	svc, _ := newReturnService(s)
	ret, err := svc.ProcessReturn(ctx, "staff-1", auth.RoleStaff, nil)
	require.NoError(t, err)

	listed, err := svc.ListReturns(ctx, frozenNow.AddDate(0, 0, -7), frozenNow)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, ret.ID, listed[0].ID)

	listed, err = svc.ListReturns(ctx, frozenNow.AddDate(0, 0, -14), frozenNow.AddDate(0, 0, -7))
	require.NoError(t, err)
	assert.Empty(t, listed)

	fetched, err := svc.GetReturn(ctx, ret.ID)
	require.NoError(t, err)
	assert.Equal(t, ret.TotalBatches, fetched.TotalBatches)
}
