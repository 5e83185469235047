package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

// PartyBalance is a party together with its ledger-derived balance. For
// customers a positive balance is money owed to us; for suppliers the
// account is a liability, so the owed amount is the negated debit balance.
type PartyBalance struct {
	Party   *domain.Party   `json:"party"`
	Account string          `json:"account"`
	Balance decimal.Decimal `json:"balance"`
}

// PartyService manages customer and supplier master data.
type PartyService interface {
	Create(ctx context.Context, party *domain.Party) (*domain.Party, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Party, error)
	List(ctx context.Context, kind domain.PartyKind, offset, limit int) ([]domain.Party, int, error)
	Update(ctx context.Context, party *domain.Party) (*domain.Party, error)
	Balance(ctx context.Context, id uuid.UUID) (*PartyBalance, error)
}

type partyService struct {
	parties port.PartyRepository
	ledger  port.LedgerRepository
}

// NewPartyService creates a new PartyService.
func NewPartyService(parties port.PartyRepository, ledger port.LedgerRepository) PartyService {
	return &partyService{parties: parties, ledger: ledger}
}

func validateParty(party *domain.Party) error {
	if strings.TrimSpace(party.Name) == "" {
		return fmt.Errorf("%w: party name is required", domain.ErrValidation)
	}
	if party.Kind != domain.PartyCustomer && party.Kind != domain.PartySupplier {
		return fmt.Errorf("%w: party kind must be customer or supplier", domain.ErrValidation)
	}
	if party.CreditLimit.IsNegative() {
		return fmt.Errorf("%w: credit limit cannot be negative", domain.ErrValidation)
	}
	if party.PaymentTermsDays < 0 {
		return fmt.Errorf("%w: payment terms cannot be negative", domain.ErrValidation)
	}
	return nil
}

func (s *partyService) Create(ctx context.Context, party *domain.Party) (*domain.Party, error) {
	if err := validateParty(party); err != nil {
		return nil, err
	}
	party.ID = uuid.New()
	party.IsActive = true
	if err := s.parties.Create(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

func (s *partyService) Get(ctx context.Context, id uuid.UUID) (*domain.Party, error) {
	return s.parties.GetByID(ctx, id)
}

func (s *partyService) List(ctx context.Context, kind domain.PartyKind, offset, limit int) ([]domain.Party, int, error) {
	return s.parties.List(ctx, kind, offset, limit)
}

func (s *partyService) Update(ctx context.Context, party *domain.Party) (*domain.Party, error) {
	existing, err := s.parties.GetByID(ctx, party.ID)
	if err != nil {
		return nil, err
	}
	// Kind is immutable; the ledger account code is derived from it.
	party.Kind = existing.Kind
	if err := validateParty(party); err != nil {
		return nil, err
	}
	if err := s.parties.Update(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

func (s *partyService) Balance(ctx context.Context, id uuid.UUID) (*PartyBalance, error) {
	party, err := s.parties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	account := party.LedgerAccount()
	balance, err := s.ledger.AccountBalance(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("deriving balance for %s: %w", account, err)
	}
	if party.Kind == domain.PartySupplier {
		balance = balance.Neg()
	}
	return &PartyBalance{Party: party, Account: account, Balance: balance}, nil
}
