package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"tradebooks/internal/domain"
)

// MockLedgerRepo is a mock implementation of port.LedgerRepository.
type MockLedgerRepo struct {
	mock.Mock
}

func (m *MockLedgerRepo) CreateBatch(ctx context.Context, entries []domain.LedgerEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLedgerRepo) ListByRef(ctx context.Context, refID uuid.UUID) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, refID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepo) ListByAccount(ctx context.Context, account string, offset, limit int) ([]domain.LedgerEntry, int, error) {
	args := m.Called(ctx, account, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Int(1), args.Error(2)
}

func (m *MockLedgerRepo) List(ctx context.Context, offset, limit int) ([]domain.LedgerEntry, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Int(1), args.Error(2)
}

func (m *MockLedgerRepo) AccountBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
