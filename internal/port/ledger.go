package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
)

// StockLine is one item/quantity pair of a stock ledger application.
// Quantity is always positive; the direction supplies the sign.
type StockLine struct {
	ItemID    uuid.UUID
	Warehouse string
	Quantity  decimal.Decimal
}

// StockApplyInput describes one batch application against the stock ledger.
type StockApplyInput struct {
	Lines     []StockLine
	Direction domain.StockDirection
	Kind      domain.MovementKind
	RefKind   domain.ReferenceKind
	RefID     uuid.UUID
	Note      string
	Actor     uuid.UUID
}

// StockLedger owns inventory quantity mutation and the append-only movement
// trail. Decreases validate availability for the whole batch before touching
// anything; reversal is an apply in the opposite direction that keeps the
// original movements intact.
type StockLedger interface {
	Apply(ctx context.Context, s *Stores, in StockApplyInput) ([]domain.StockMovement, error)
}

// Posting is one balanced debit/credit pair to write against the ledger.
type Posting struct {
	Debit  string
	Credit string
	Amount decimal.Decimal
	Memo   string
}

// AccountingLedger owns double-entry posting. Every call writes balanced
// entry sets or nothing; reversal swaps debit and credit per account for an
// existing reference.
type AccountingLedger interface {
	// PostSet validates every posting first and then writes two entries per
	// posting, all tagged with the same reference.
	PostSet(ctx context.Context, s *Stores, refKind domain.ReferenceKind, refID uuid.UUID, actor uuid.UUID, postings []Posting) ([]domain.LedgerEntry, error)
	// ReverseByReference re-reads all entries for the reference and posts
	// their debit/credit-swapped images with the given memo.
	ReverseByReference(ctx context.Context, s *Stores, refID uuid.UUID, memo string, actor uuid.UUID) ([]domain.LedgerEntry, error)
}

// TaxCodeProvider resolves tax codes for pricing. The production
// implementation is a read-through cache with synchronous invalidation.
type TaxCodeProvider interface {
	Get(ctx context.Context, code string) (*domain.TaxCode, error)
	Invalidate(code string)
}
