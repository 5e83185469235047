package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tradebooks/internal/domain"
)

// MockStockMovementRepo is a mock implementation of port.StockMovementRepository.
type MockStockMovementRepo struct {
	mock.Mock
}

func (m *MockStockMovementRepo) CreateBatch(ctx context.Context, movements []domain.StockMovement) error {
	args := m.Called(ctx, movements)
	return args.Error(0)
}

func (m *MockStockMovementRepo) ListByRef(ctx context.Context, refID uuid.UUID) ([]domain.StockMovement, error) {
	args := m.Called(ctx, refID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

func (m *MockStockMovementRepo) ListByItem(ctx context.Context, itemID uuid.UUID, offset, limit int) ([]domain.StockMovement, int, error) {
	args := m.Called(ctx, itemID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.StockMovement), args.Int(1), args.Error(2)
}

func (m *MockStockMovementRepo) List(ctx context.Context, offset, limit int) ([]domain.StockMovement, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.StockMovement), args.Int(1), args.Error(2)
}
