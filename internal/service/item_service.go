package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

// ItemService manages catalog items. Stock levels are read-only here; they
// change only through the stock ledger.
type ItemService interface {
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	List(ctx context.Context, offset, limit int) ([]domain.Item, int, error)
	Update(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Movements(ctx context.Context, itemID uuid.UUID, offset, limit int) ([]domain.StockMovement, int, error)
}

type itemService struct {
	items     port.ItemRepository
	movements port.StockMovementRepository
	taxCodes  port.TaxCodeProvider
}

// NewItemService creates a new ItemService.
func NewItemService(items port.ItemRepository, movements port.StockMovementRepository, taxCodes port.TaxCodeProvider) ItemService {
	return &itemService{items: items, movements: movements, taxCodes: taxCodes}
}

func (s *itemService) validateItem(ctx context.Context, item *domain.Item) error {
	if strings.TrimSpace(item.SKU) == "" {
		return fmt.Errorf("%w: item sku is required", domain.ErrValidation)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: item name is required", domain.ErrValidation)
	}
	if item.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unit price cannot be negative", domain.ErrValidation)
	}
	if item.DefaultTaxCode != "" {
		if _, err := s.taxCodes.Get(ctx, item.DefaultTaxCode); err != nil {
			return fmt.Errorf("%w: unknown default tax code %q", domain.ErrValidation, item.DefaultTaxCode)
		}
	}
	return nil
}

func (s *itemService) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if err := s.validateItem(ctx, item); err != nil {
		return nil, err
	}
	if item.CurrentStock.IsNegative() {
		return nil, fmt.Errorf("%w: opening stock cannot be negative", domain.ErrValidation)
	}
	item.ID = uuid.New()
	item.IsActive = true
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) Get(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return s.items.GetByID(ctx, id)
}

func (s *itemService) List(ctx context.Context, offset, limit int) ([]domain.Item, int, error) {
	return s.items.List(ctx, offset, limit)
}

func (s *itemService) Update(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	existing, err := s.items.GetByID(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if err := s.validateItem(ctx, item); err != nil {
		return nil, err
	}
	// CurrentStock is ledger-owned; carry the stored value through.
	item.CurrentStock = existing.CurrentStock
	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *itemService) Movements(ctx context.Context, itemID uuid.UUID, offset, limit int) ([]domain.StockMovement, int, error) {
	if _, err := s.items.GetByID(ctx, itemID); err != nil {
		return nil, 0, err
	}
	return s.movements.ListByItem(ctx, itemID, offset, limit)
}
