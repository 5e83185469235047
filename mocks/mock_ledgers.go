package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

// MockStockLedger is a mock implementation of port.StockLedger.
type MockStockLedger struct {
	mock.Mock
}

func (m *MockStockLedger) Apply(ctx context.Context, s *port.Stores, in port.StockApplyInput) ([]domain.StockMovement, error) {
	args := m.Called(ctx, s, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

// MockAccountingLedger is a mock implementation of port.AccountingLedger.
type MockAccountingLedger struct {
	mock.Mock
}

func (m *MockAccountingLedger) PostSet(ctx context.Context, s *port.Stores, refKind domain.ReferenceKind, refID uuid.UUID, actor uuid.UUID, postings []port.Posting) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, s, refKind, refID, actor, postings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockAccountingLedger) ReverseByReference(ctx context.Context, s *port.Stores, refID uuid.UUID, memo string, actor uuid.UUID) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, s, refID, memo, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

// MockTaxCodeProvider is a mock implementation of port.TaxCodeProvider.
type MockTaxCodeProvider struct {
	mock.Mock
}

func (m *MockTaxCodeProvider) Get(ctx context.Context, code string) (*domain.TaxCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxCode), args.Error(1)
}

func (m *MockTaxCodeProvider) Invalidate(code string) {
	m.Called(code)
}
