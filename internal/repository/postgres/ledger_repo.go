package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

type ledgerRepo struct {
	db DBTX
}

// NewLedgerRepo creates a new PostgreSQL-backed LedgerRepository.
// Like stock movements, ledger entries are append-only.
func NewLedgerRepo(db DBTX) port.LedgerRepository {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) CreateBatch(ctx context.Context, entries []domain.LedgerEntry) error {
	now := time.Now().UTC()
	for i := range entries {
		e := &entries[i]
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		e.CreatedAt = now
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO ledger_entries (
				id, account, direction, amount, ref_kind, ref_id, memo, actor, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ID, e.Account, e.Direction, e.Amount, e.RefKind, e.RefID, e.Memo, e.Actor, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("ledgerRepo.CreateBatch: %w", err)
		}
	}
	return nil
}

func (r *ledgerRepo) ListByRef(ctx context.Context, refID uuid.UUID) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := r.db.SelectContext(ctx, &entries,
		"SELECT * FROM ledger_entries WHERE ref_id = $1 ORDER BY created_at, id", refID)
	if err != nil {
		return nil, fmt.Errorf("ledgerRepo.ListByRef: %w", err)
	}
	return entries, nil
}

func (r *ledgerRepo) ListByAccount(ctx context.Context, account string, offset, limit int) ([]domain.LedgerEntry, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM ledger_entries WHERE account = $1", account)
	if err != nil {
		return nil, 0, fmt.Errorf("ledgerRepo.ListByAccount count: %w", err)
	}

	var entries []domain.LedgerEntry
	err = r.db.SelectContext(ctx, &entries,
		`SELECT * FROM ledger_entries WHERE account = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		account, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ledgerRepo.ListByAccount: %w", err)
	}
	return entries, total, nil
}

func (r *ledgerRepo) List(ctx context.Context, offset, limit int) ([]domain.LedgerEntry, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM ledger_entries"); err != nil {
		return nil, 0, fmt.Errorf("ledgerRepo.List count: %w", err)
	}

	var entries []domain.LedgerEntry
	err := r.db.SelectContext(ctx, &entries,
		"SELECT * FROM ledger_entries ORDER BY created_at DESC LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ledgerRepo.List: %w", err)
	}
	return entries, total, nil
}

// AccountBalance derives debit-minus-credit from the entries themselves; no
// running counter exists to drift out of sync.
func (r *ledgerRepo) AccountBalance(ctx context.Context, account string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.GetContext(ctx, &balance,
		`SELECT COALESCE(SUM(CASE WHEN direction = 'debit' THEN amount ELSE -amount END), 0)
		 FROM ledger_entries WHERE account = $1`, account)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ledgerRepo.AccountBalance: %w", err)
	}
	return balance, nil
}
