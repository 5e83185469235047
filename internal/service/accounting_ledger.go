package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

type accountingLedger struct{}

// NewAccountingLedger creates the AccountingLedger implementation.
func NewAccountingLedger() port.AccountingLedger {
	return &accountingLedger{}
}

// PostSet validates every posting before any entry is written, then writes
// one debit and one credit per posting under the shared reference. The
// debit and credit sums are equal by construction.
func (l *accountingLedger) PostSet(ctx context.Context, s *port.Stores, refKind domain.ReferenceKind, refID uuid.UUID, actor uuid.UUID, postings []port.Posting) ([]domain.LedgerEntry, error) {
	if len(postings) == 0 {
		return nil, fmt.Errorf("%w: posting set is empty", domain.ErrValidation)
	}
	for i, p := range postings {
		if p.Debit == "" || p.Credit == "" {
			return nil, fmt.Errorf("%w: posting %d is missing an account", domain.ErrValidation, i)
		}
		if p.Debit == p.Credit {
			return nil, fmt.Errorf("%w: posting %d debits and credits the same account %s", domain.ErrValidation, i, p.Debit)
		}
		if p.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: posting %d amount must be positive", domain.ErrValidation, i)
		}
	}

	entries := make([]domain.LedgerEntry, 0, 2*len(postings))
	for _, p := range postings {
		entries = append(entries,
			domain.LedgerEntry{
				Account:   p.Debit,
				Direction: domain.Debit,
				Amount:    p.Amount,
				RefKind:   refKind,
				RefID:     refID,
				Memo:      p.Memo,
				Actor:     actor,
			},
			domain.LedgerEntry{
				Account:   p.Credit,
				Direction: domain.Credit,
				Amount:    p.Amount,
				RefKind:   refKind,
				RefID:     refID,
				Memo:      p.Memo,
				Actor:     actor,
			})
	}

	if err := s.Ledger.CreateBatch(ctx, entries); err != nil {
		return nil, fmt.Errorf("accountingLedger.PostSet: %w", err)
	}

	log.Printf("accountingLedger.PostSet: posted %d entries for %s %s", len(entries), refKind, refID)
	return entries, nil
}

// ReverseByReference posts the debit/credit-swapped image of every entry
// recorded for the reference. The originals stay in place: the audit trail
// shows both the application and its reversal, netting to zero per account.
func (l *accountingLedger) ReverseByReference(ctx context.Context, s *port.Stores, refID uuid.UUID, memo string, actor uuid.UUID) ([]domain.LedgerEntry, error) {
	originals, err := s.Ledger.ListByRef(ctx, refID)
	if err != nil {
		return nil, fmt.Errorf("accountingLedger.ReverseByReference: %w", err)
	}
	if len(originals) == 0 {
		return nil, nil
	}

	reversals := make([]domain.LedgerEntry, 0, len(originals))
	for _, e := range originals {
		dir := domain.Debit
		if e.Direction == domain.Debit {
			dir = domain.Credit
		}
		reversals = append(reversals, domain.LedgerEntry{
			Account:   e.Account,
			Direction: dir,
			Amount:    e.Amount,
			RefKind:   e.RefKind,
			RefID:     e.RefID,
			Memo:      memo,
			Actor:     actor,
		})
	}

	if err := s.Ledger.CreateBatch(ctx, reversals); err != nil {
		return nil, fmt.Errorf("accountingLedger.ReverseByReference: writing reversals: %w", err)
	}

	log.Printf("accountingLedger.ReverseByReference: reversed %d entries for %s", len(reversals), refID)
	return reversals, nil
}
