package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
)

// ListInvoicesFilter is the closed set of recognized invoice list options.
type ListInvoicesFilter struct {
	Kind          domain.InvoiceKind
	Status        domain.InvoiceStatus
	PaymentStatus domain.PaymentStatus
	PartyID       *uuid.UUID
	Number        string
}

// InvoiceRepository defines the contract for invoice persistence. Lines are
// loaded and saved together with their document.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	GetByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	// GetForUpdate loads the invoice under a row lock, serializing
	// effect-producing transitions on the same document.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, filter ListInvoicesFilter, offset, limit int) ([]domain.Invoice, int, error)
	// ListReturnsByOriginal returns all return documents (with lines)
	// referencing the given original invoice.
	ListReturnsByOriginal(ctx context.Context, originalID uuid.UUID) ([]domain.Invoice, error)
	// UpdateDraft replaces lines and totals of a draft document.
	UpdateDraft(ctx context.Context, inv *domain.Invoice) error
	// UpdateStatus persists a lifecycle transition guarded by the version
	// stamp; returns domain.ErrInvalidState when the guard misses.
	UpdateStatus(ctx context.Context, inv *domain.Invoice) error
	UpdatePayment(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	// PaidTotalByParty sums paid_amount over the party's confirmed sale
	// documents. Payments post no ledger entries, so credit exposure nets
	// this out of the receivable balance.
	PaidTotalByParty(ctx context.Context, partyID uuid.UUID) (decimal.Decimal, error)
}

// StockMovementRepository defines the contract for the append-only stock
// movement trail. Movements are never updated or deleted.
type StockMovementRepository interface {
	CreateBatch(ctx context.Context, movements []domain.StockMovement) error
	ListByRef(ctx context.Context, refID uuid.UUID) ([]domain.StockMovement, error)
	ListByItem(ctx context.Context, itemID uuid.UUID, offset, limit int) ([]domain.StockMovement, int, error)
	List(ctx context.Context, offset, limit int) ([]domain.StockMovement, int, error)
}

// ItemRepository defines the contract for catalog item persistence.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	List(ctx context.Context, offset, limit int) ([]domain.Item, int, error)
	Update(ctx context.Context, item *domain.Item) error
	// AdjustStock applies a signed delta with a conditional update that
	// refuses to take current_stock below zero; a missed guard surfaces as
	// domain.ErrInsufficientStock.
	AdjustStock(ctx context.Context, itemID uuid.UUID, delta decimal.Decimal) error
}

// PartyRepository defines the contract for customer/supplier persistence.
type PartyRepository interface {
	Create(ctx context.Context, party *domain.Party) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Party, error)
	List(ctx context.Context, kind domain.PartyKind, offset, limit int) ([]domain.Party, int, error)
	Update(ctx context.Context, party *domain.Party) error
}

// LedgerRepository defines the contract for the append-only accounting
// ledger. Entries are never updated or deleted.
type LedgerRepository interface {
	CreateBatch(ctx context.Context, entries []domain.LedgerEntry) error
	ListByRef(ctx context.Context, refID uuid.UUID) ([]domain.LedgerEntry, error)
	ListByAccount(ctx context.Context, account string, offset, limit int) ([]domain.LedgerEntry, int, error)
	List(ctx context.Context, offset, limit int) ([]domain.LedgerEntry, int, error)
	// AccountBalance derives debit-minus-credit for an account from its
	// entries.
	AccountBalance(ctx context.Context, account string) (decimal.Decimal, error)
}

// TaxCodeRepository defines the contract for tax code persistence.
type TaxCodeRepository interface {
	Create(ctx context.Context, tc *domain.TaxCode) error
	GetByCode(ctx context.Context, code string) (*domain.TaxCode, error)
	List(ctx context.Context) ([]domain.TaxCode, error)
	Update(ctx context.Context, tc *domain.TaxCode) error
	Deactivate(ctx context.Context, code string) error
}

// NumberingService issues the next human-readable document number for a
// kind. Implementations must guarantee uniqueness under concurrent issuance.
type NumberingService interface {
	Next(ctx context.Context, kind domain.InvoiceKind) (string, error)
}
