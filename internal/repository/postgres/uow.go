package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tradebooks/internal/port"
)

type unitOfWork struct {
	db *sqlx.DB
}

// NewUnitOfWork creates a transaction boundary over the connection pool.
func NewUnitOfWork(db *sqlx.DB) port.UnitOfWork {
	return &unitOfWork{db: db}
}

// Stores builds a repository bundle bound to the given runner. Handed a
// *sqlx.DB it serves untransacted reads; inside Do it binds to the tx.
func Stores(db DBTX) *port.Stores {
	return &port.Stores{
		Invoices:  NewInvoiceRepo(db),
		Movements: NewStockMovementRepo(db),
		Items:     NewItemRepo(db),
		Parties:   NewPartyRepo(db),
		Ledger:    NewLedgerRepo(db),
		TaxCodes:  NewTaxCodeRepo(db),
		Numbers:   NewNumberingService(db),
	}
}

func (u *unitOfWork) Do(ctx context.Context, fn func(s *port.Stores) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unitOfWork.Do begin: %w", err)
	}

	if err := fn(Stores(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("unitOfWork.Do rollback after %v: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unitOfWork.Do commit: %w", err)
	}
	return nil
}
