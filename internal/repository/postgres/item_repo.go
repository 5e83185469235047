package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

type itemRepo struct {
	db DBTX
}

// NewItemRepo creates a new PostgreSQL-backed ItemRepository.
func NewItemRepo(db DBTX) port.ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, item *domain.Item) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO items (
			id, sku, name, unit, unit_price, current_stock, default_tax_code,
			is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		item.ID, item.SKU, item.Name, item.Unit, item.UnitPrice, item.CurrentStock,
		item.DefaultTaxCode, item.IsActive, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "sku") {
			return fmt.Errorf("%w: sku already exists", domain.ErrValidation)
		}
		return fmt.Errorf("itemRepo.Create: %w", err)
	}
	return nil
}

func (r *itemRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	var item domain.Item
	err := r.db.GetContext(ctx, &item, "SELECT * FROM items WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("itemRepo.GetByID: %w", err)
	}
	return &item, nil
}

func (r *itemRepo) List(ctx context.Context, offset, limit int) ([]domain.Item, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM items"); err != nil {
		return nil, 0, fmt.Errorf("itemRepo.List count: %w", err)
	}

	var items []domain.Item
	err := r.db.SelectContext(ctx, &items,
		"SELECT * FROM items ORDER BY name LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("itemRepo.List: %w", err)
	}
	return items, total, nil
}

func (r *itemRepo) Update(ctx context.Context, item *domain.Item) error {
	item.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE items SET
			sku = $1, name = $2, unit = $3, unit_price = $4,
			default_tax_code = $5, is_active = $6, updated_at = $7
		 WHERE id = $8`,
		item.SKU, item.Name, item.Unit, item.UnitPrice,
		item.DefaultTaxCode, item.IsActive, item.UpdatedAt,
		item.ID)
	if err != nil {
		return fmt.Errorf("itemRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustStock applies a signed delta as a single conditional UPDATE so that
// the availability check and the mutation are one atomic statement. A missed
// guard means another transaction consumed the stock first.
func (r *itemRepo) AdjustStock(ctx context.Context, itemID uuid.UUID, delta decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE items SET
			current_stock = current_stock + $1, updated_at = NOW()
		 WHERE id = $2 AND current_stock + $1 >= 0`,
		delta, itemID)
	if err != nil {
		return fmt.Errorf("itemRepo.AdjustStock: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM items WHERE id = $1)", itemID); err != nil {
			return fmt.Errorf("itemRepo.AdjustStock check: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientStock
	}
	return nil
}
