package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"tradebooks/internal/domain"
)

// MockNumberingService is a mock implementation of port.NumberingService.
type MockNumberingService struct {
	mock.Mock
}

func (m *MockNumberingService) Next(ctx context.Context, kind domain.InvoiceKind) (string, error) {
	args := m.Called(ctx, kind)
	return args.String(0), args.Error(1)
}
