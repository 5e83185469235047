package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tradebooks/internal/domain"
)

// MockTaxCodeRepo is a mock implementation of port.TaxCodeRepository.
type MockTaxCodeRepo struct {
	mock.Mock
}

func (m *MockTaxCodeRepo) Create(ctx context.Context, tc *domain.TaxCode) error {
	args := m.Called(ctx, tc)
	return args.Error(0)
}

func (m *MockTaxCodeRepo) GetByCode(ctx context.Context, code string) (*domain.TaxCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaxCode), args.Error(1)
}

func (m *MockTaxCodeRepo) List(ctx context.Context) ([]domain.TaxCode, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaxCode), args.Error(1)
}

func (m *MockTaxCodeRepo) Update(ctx context.Context, tc *domain.TaxCode) error {
	args := m.Called(ctx, tc)
	return args.Error(0)
}

func (m *MockTaxCodeRepo) Deactivate(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}
