package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
	"tradebooks/internal/service"
	"tradebooks/mocks"
)

func stockStores() (*port.Stores, *mocks.MockItemRepo, *mocks.MockStockMovementRepo) {
	items := new(mocks.MockItemRepo)
	movements := new(mocks.MockStockMovementRepo)
	return &port.Stores{Items: items, Movements: movements}, items, movements
}

func TestStockLedger_DecreaseReportsEveryShortfall(t *testing.T) {
	stores, items, movements := stockStores()
	itemA := uuid.New()
	itemB := uuid.New()
	itemC := uuid.New()

	items.On("GetByID", mock.Anything, itemA).Return(&domain.Item{ID: itemA, CurrentStock: dec("1")}, nil)
	items.On("GetByID", mock.Anything, itemB).Return(&domain.Item{ID: itemB, CurrentStock: dec("50")}, nil)
	items.On("GetByID", mock.Anything, itemC).Return(&domain.Item{ID: itemC, CurrentStock: dec("0")}, nil)

	_, err := service.NewStockLedger().Apply(context.Background(), stores, port.StockApplyInput{
		Lines: []port.StockLine{
			{ItemID: itemA, Quantity: dec("5")},
			{ItemID: itemB, Quantity: dec("5")},
			{ItemID: itemC, Quantity: dec("5")},
		},
		Direction: domain.StockDecrease,
		Kind:      domain.MovementConfirmation,
		RefKind:   domain.RefInvoice,
		RefID:     uuid.New(),
	})

	require.Error(t, err)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortfalls, 2, "both failing items are reported")
	assert.Equal(t, itemA, stockErr.Shortfalls[0].ItemID)
	assert.True(t, stockErr.Shortfalls[0].Available.Equal(dec("1")))
	assert.Equal(t, itemC, stockErr.Shortfalls[1].ItemID)
	assert.True(t, stockErr.Shortfalls[1].Available.IsZero())

	// Nothing moved, including the line that had enough stock.
	items.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	movements.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestStockLedger_IncreaseSkipsAvailabilityCheck(t *testing.T) {
	stores, items, movements := stockStores()
	itemID := uuid.New()
	refID := uuid.New()

	items.On("AdjustStock", mock.Anything, itemID, dec("3")).Return(nil)
	movements.On("CreateBatch", mock.Anything, mock.MatchedBy(func(ms []domain.StockMovement) bool {
		return len(ms) == 1 && ms[0].Quantity.Equal(dec("3")) && ms[0].RefID == refID
	})).Return(nil)

	moved, err := service.NewStockLedger().Apply(context.Background(), stores, port.StockApplyInput{
		Lines:     []port.StockLine{{ItemID: itemID, Quantity: dec("3")}},
		Direction: domain.StockIncrease,
		Kind:      domain.MovementReturn,
		RefKind:   domain.RefReturn,
		RefID:     refID,
	})

	require.NoError(t, err)
	require.Len(t, moved, 1)
	items.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestStockLedger_NonPositiveQuantityRejected(t *testing.T) {
	stores, _, _ := stockStores()

	_, err := service.NewStockLedger().Apply(context.Background(), stores, port.StockApplyInput{
		Lines:     []port.StockLine{{ItemID: uuid.New(), Quantity: dec("0")}},
		Direction: domain.StockIncrease,
		Kind:      domain.MovementConfirmation,
		RefKind:   domain.RefInvoice,
		RefID:     uuid.New(),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestStockLedger_RaceOnAdjustSurfacesShortfall(t *testing.T) {
	stores, items, _ := stockStores()
	itemID := uuid.New()

	// Batch check passes, then a concurrent transaction drains the stock
	// before the guarded update lands.
	items.On("GetByID", mock.Anything, itemID).Return(&domain.Item{ID: itemID, CurrentStock: dec("10")}, nil).Once()
	items.On("AdjustStock", mock.Anything, itemID, dec("4").Neg()).Return(domain.ErrInsufficientStock)
	items.On("GetByID", mock.Anything, itemID).Return(&domain.Item{ID: itemID, CurrentStock: dec("2")}, nil).Once()

	_, err := service.NewStockLedger().Apply(context.Background(), stores, port.StockApplyInput{
		Lines:     []port.StockLine{{ItemID: itemID, Quantity: dec("4")}},
		Direction: domain.StockDecrease,
		Kind:      domain.MovementConfirmation,
		RefKind:   domain.RefInvoice,
		RefID:     uuid.New(),
	})

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortfalls, 1)
	assert.True(t, stockErr.Shortfalls[0].Available.Equal(dec("2")))
}
