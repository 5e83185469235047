package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

type stockMovementRepo struct {
	db DBTX
}

// NewStockMovementRepo creates a new PostgreSQL-backed StockMovementRepository.
// The table is append-only: there are deliberately no update or delete methods.
func NewStockMovementRepo(db DBTX) port.StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateBatch(ctx context.Context, movements []domain.StockMovement) error {
	now := time.Now().UTC()
	for i := range movements {
		m := &movements[i]
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		m.CreatedAt = now
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO stock_movements (
				id, item_id, warehouse, quantity, kind, ref_kind, ref_id, note, actor, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			m.ID, m.ItemID, m.Warehouse, m.Quantity, m.Kind, m.RefKind, m.RefID, m.Note, m.Actor, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("stockMovementRepo.CreateBatch: %w", err)
		}
	}
	return nil
}

func (r *stockMovementRepo) ListByRef(ctx context.Context, refID uuid.UUID) ([]domain.StockMovement, error) {
	var movements []domain.StockMovement
	err := r.db.SelectContext(ctx, &movements,
		"SELECT * FROM stock_movements WHERE ref_id = $1 ORDER BY created_at, id", refID)
	if err != nil {
		return nil, fmt.Errorf("stockMovementRepo.ListByRef: %w", err)
	}
	return movements, nil
}

func (r *stockMovementRepo) ListByItem(ctx context.Context, itemID uuid.UUID, offset, limit int) ([]domain.StockMovement, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM stock_movements WHERE item_id = $1", itemID)
	if err != nil {
		return nil, 0, fmt.Errorf("stockMovementRepo.ListByItem count: %w", err)
	}

	var movements []domain.StockMovement
	err = r.db.SelectContext(ctx, &movements,
		`SELECT * FROM stock_movements WHERE item_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		itemID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("stockMovementRepo.ListByItem: %w", err)
	}
	return movements, total, nil
}

func (r *stockMovementRepo) List(ctx context.Context, offset, limit int) ([]domain.StockMovement, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM stock_movements"); err != nil {
		return nil, 0, fmt.Errorf("stockMovementRepo.List count: %w", err)
	}

	var movements []domain.StockMovement
	err := r.db.SelectContext(ctx, &movements,
		"SELECT * FROM stock_movements ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("stockMovementRepo.List: %w", err)
	}
	return movements, total, nil
}
