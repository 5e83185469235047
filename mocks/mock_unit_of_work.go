package mocks

import (
	"context"

	"tradebooks/internal/port"
)

// MockUnitOfWork is a pass-through implementation of port.UnitOfWork that
// runs the callback against a fixed store bundle without any transaction.
type MockUnitOfWork struct {
	Bundle *port.Stores
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(s *port.Stores) error) error {
	return fn(m.Bundle)
}
