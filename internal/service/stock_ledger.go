package service

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

type stockLedger struct{}

// NewStockLedger creates the StockLedger implementation. It is stateless;
// all persistence flows through the transaction-bound stores of the caller.
func NewStockLedger() port.StockLedger {
	return &stockLedger{}
}

func (l *stockLedger) Apply(ctx context.Context, s *port.Stores, in port.StockApplyInput) ([]domain.StockMovement, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: stock application requires at least one line", domain.ErrValidation)
	}
	for _, line := range in.Lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: stock quantity must be positive for item %s", domain.ErrValidation, line.ItemID)
		}
	}

	// For decreases, validate the whole batch before mutating anything so a
	// single failing line rejects the application with a complete shortfall
	// list. The conditional update below remains the race-safe guard.
	if in.Direction == domain.StockDecrease {
		var shortfalls []domain.StockShortfall
		for _, line := range in.Lines {
			item, err := s.Items.GetByID(ctx, line.ItemID)
			if err != nil {
				return nil, fmt.Errorf("stockLedger.Apply: looking up item %s: %w", line.ItemID, err)
			}
			if item.CurrentStock.LessThan(line.Quantity) {
				shortfalls = append(shortfalls, domain.StockShortfall{
					ItemID:    line.ItemID,
					Requested: line.Quantity,
					Available: item.CurrentStock,
				})
			}
		}
		if len(shortfalls) > 0 {
			return nil, &domain.InsufficientStockError{Shortfalls: shortfalls}
		}
	}

	movements := make([]domain.StockMovement, 0, len(in.Lines))
	for _, line := range in.Lines {
		delta := line.Quantity
		if in.Direction == domain.StockDecrease {
			delta = delta.Neg()
		}
		if err := s.Items.AdjustStock(ctx, line.ItemID, delta); err != nil {
			// A concurrent transaction may have consumed the stock between
			// the batch check and here; surface it as the structured error.
			if in.Direction == domain.StockDecrease {
				item, lookupErr := s.Items.GetByID(ctx, line.ItemID)
				if lookupErr == nil {
					return nil, &domain.InsufficientStockError{Shortfalls: []domain.StockShortfall{{
						ItemID:    line.ItemID,
						Requested: line.Quantity,
						Available: item.CurrentStock,
					}}}
				}
			}
			return nil, fmt.Errorf("stockLedger.Apply: adjusting item %s: %w", line.ItemID, err)
		}
		movements = append(movements, domain.StockMovement{
			ItemID:    line.ItemID,
			Warehouse: line.Warehouse,
			Quantity:  delta,
			Kind:      in.Kind,
			RefKind:   in.RefKind,
			RefID:     in.RefID,
			Note:      in.Note,
			Actor:     in.Actor,
		})
	}

	if err := s.Movements.CreateBatch(ctx, movements); err != nil {
		return nil, fmt.Errorf("stockLedger.Apply: writing movements: %w", err)
	}

	log.Printf("stockLedger.Apply: wrote %d %s movements for %s %s",
		len(movements), in.Direction, in.RefKind, in.RefID)
	return movements, nil
}
