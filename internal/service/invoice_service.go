package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/config"
	"tradebooks/internal/domain"
	"tradebooks/internal/port"
	"tradebooks/internal/pricing"
)

// InvoiceLineInput is the request shape for one invoice line. Zero-value
// unit price and tax codes fall back to the item's catalog defaults.
type InvoiceLineInput struct {
	ItemID         uuid.UUID
	Warehouse      string
	BatchNo        string
	Quantity       decimal.Decimal
	UnitPrice      *decimal.Decimal
	Discount1Pct   decimal.Decimal
	Discount1Fixed decimal.Decimal
	Discount2Pct   decimal.Decimal
	Discount2Fixed decimal.Decimal
	TaxCodes       []string
	TaxInclusive   bool
}

// CreateInvoiceInput is the DTO for creating a draft sale or purchase.
type CreateInvoiceInput struct {
	Kind              domain.InvoiceKind
	CustomerID        *uuid.UUID
	SupplierID        *uuid.UUID
	AdjustmentAccount string
	Notes             string
	Lines             []InvoiceLineInput
	CreatedBy         uuid.UUID
}

// UpdateInvoiceInput is the DTO for replacing the lines of a draft.
type UpdateInvoiceInput struct {
	InvoiceID         uuid.UUID
	AdjustmentAccount string
	Notes             string
	Lines             []InvoiceLineInput
	Actor             uuid.UUID
}

// InvoiceService drives the document lifecycle: draft CRUD, the one-shot
// confirmation that applies stock and ledger effects, cancellation with
// exact reversal, and the payment status axis.
type InvoiceService interface {
	Create(ctx context.Context, input *CreateInvoiceInput) (*domain.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, filter port.ListInvoicesFilter, offset, limit int) ([]domain.Invoice, int, error)
	UpdateLines(ctx context.Context, input *UpdateInvoiceInput) (*domain.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Confirm(ctx context.Context, id, actor uuid.UUID) (*domain.Invoice, error)
	Cancel(ctx context.Context, id, actor uuid.UUID, reason string) (*domain.Invoice, error)
	MarkPaid(ctx context.Context, id, actor uuid.UUID) (*domain.Invoice, error)
	MarkPartiallyPaid(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (*domain.Invoice, error)
}

type invoiceService struct {
	uow      port.UnitOfWork
	reads    *port.Stores
	stock    port.StockLedger
	acct     port.AccountingLedger
	taxCodes port.TaxCodeProvider
	accounts config.AccountsConfig
}

// NewInvoiceService creates a new InvoiceService. The stock and accounting
// ledgers are injected so tests can substitute them.
func NewInvoiceService(
	uow port.UnitOfWork,
	reads *port.Stores,
	stock port.StockLedger,
	acct port.AccountingLedger,
	taxCodes port.TaxCodeProvider,
	accounts config.AccountsConfig,
) InvoiceService {
	return &invoiceService{
		uow:      uow,
		reads:    reads,
		stock:    stock,
		acct:     acct,
		taxCodes: taxCodes,
		accounts: accounts,
	}
}

// resolveParty validates that exactly one party reference matches the kind
// and that the party exists, is active, and has the right kind.
func (s *invoiceService) resolveParty(ctx context.Context, stores *port.Stores, input *CreateInvoiceInput) (*domain.Party, error) {
	var partyID uuid.UUID
	var wantKind domain.PartyKind
	switch input.Kind {
	case domain.KindSale:
		if input.CustomerID == nil || input.SupplierID != nil {
			return nil, fmt.Errorf("%w: a sale requires a customer and no supplier", domain.ErrValidation)
		}
		partyID, wantKind = *input.CustomerID, domain.PartyCustomer
	case domain.KindPurchase:
		if input.SupplierID == nil || input.CustomerID != nil {
			return nil, fmt.Errorf("%w: a purchase requires a supplier and no customer", domain.ErrValidation)
		}
		partyID, wantKind = *input.SupplierID, domain.PartySupplier
	default:
		return nil, fmt.Errorf("%w: kind must be sale or purchase; returns are created against an original document", domain.ErrValidation)
	}

	party, err := stores.Parties.GetByID(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("looking up party: %w", err)
	}
	if party.Kind != wantKind {
		return nil, fmt.Errorf("%w: party %s is a %s, expected %s", domain.ErrValidation, partyID, party.Kind, wantKind)
	}
	if !party.IsActive {
		return nil, fmt.Errorf("%w: party %s is inactive", domain.ErrValidation, partyID)
	}
	return party, nil
}

// priceLine resolves item and tax code defaults and runs the pure pricing
// calculator for one requested line.
func (s *invoiceService) priceLine(ctx context.Context, stores *port.Stores, li *InvoiceLineInput) (*domain.InvoiceLine, error) {
	item, err := stores.Items.GetByID(ctx, li.ItemID)
	if err != nil {
		return nil, fmt.Errorf("looking up item %s: %w", li.ItemID, err)
	}
	if !item.IsActive {
		return nil, fmt.Errorf("%w: item %s is inactive", domain.ErrValidation, li.ItemID)
	}

	unitPrice := item.UnitPrice
	if li.UnitPrice != nil {
		unitPrice = *li.UnitPrice
	}

	codeNames := li.TaxCodes
	if codeNames == nil && item.DefaultTaxCode != "" {
		codeNames = []string{item.DefaultTaxCode}
	}
	codes := make([]domain.TaxCode, 0, len(codeNames))
	for _, name := range codeNames {
		tc, err := s.taxCodes.Get(ctx, name)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown tax code %q", domain.ErrValidation, name)
			}
			return nil, fmt.Errorf("resolving tax code %q: %w", name, err)
		}
		codes = append(codes, *tc)
	}

	breakdown, err := pricing.ComputeLine(pricing.LineInput{
		UnitPrice:    unitPrice,
		Quantity:     li.Quantity,
		Discount1:    pricing.DiscountSpec{Percent: li.Discount1Pct, Amount: li.Discount1Fixed},
		Discount2:    pricing.DiscountSpec{Percent: li.Discount2Pct, Amount: li.Discount2Fixed},
		TaxCodes:     codes,
		TaxInclusive: li.TaxInclusive,
	})
	if err != nil {
		return nil, err
	}

	return &domain.InvoiceLine{
		ItemID:          li.ItemID,
		Warehouse:       li.Warehouse,
		BatchNo:         li.BatchNo,
		Quantity:        li.Quantity,
		UnitPrice:       unitPrice,
		Discount1Pct:    li.Discount1Pct,
		Discount1Fixed:  li.Discount1Fixed,
		Discount2Pct:    li.Discount2Pct,
		Discount2Fixed:  li.Discount2Fixed,
		TaxCodes:        domain.TaxCodeList(codeNames),
		TaxInclusive:    li.TaxInclusive,
		Subtotal:        breakdown.Subtotal,
		Discount1Amount: breakdown.Discount1Amount,
		Discount2Amount: breakdown.Discount2Amount,
		TaxableAmount:   breakdown.TaxableAmount,
		TaxAmount:       breakdown.TaxAmount,
		LineTotal:       breakdown.LineTotal,
	}, nil
}

// priceLines prices every requested line and aggregates document totals.
func (s *invoiceService) priceLines(ctx context.Context, stores *port.Stores, inputs []InvoiceLineInput) ([]domain.InvoiceLine, pricing.Totals, error) {
	if len(inputs) == 0 {
		return nil, pricing.Totals{}, fmt.Errorf("%w: a document requires at least one line", domain.ErrValidation)
	}
	lines := make([]domain.InvoiceLine, 0, len(inputs))
	breakdowns := make([]pricing.LineBreakdown, 0, len(inputs))
	for i := range inputs {
		line, err := s.priceLine(ctx, stores, &inputs[i])
		if err != nil {
			return nil, pricing.Totals{}, err
		}
		lines = append(lines, *line)
		breakdowns = append(breakdowns, pricing.LineBreakdown{
			Subtotal:        line.Subtotal,
			Discount1Amount: line.Discount1Amount,
			Discount2Amount: line.Discount2Amount,
			TaxableAmount:   line.TaxableAmount,
			TaxAmount:       line.TaxAmount,
			LineTotal:       line.LineTotal,
		})
	}
	return lines, pricing.ComputeTotals(breakdowns), nil
}

// defaultAdjustmentAccount picks the configured discount account for the kind.
func (s *invoiceService) defaultAdjustmentAccount(kind domain.InvoiceKind) string {
	switch kind {
	case domain.KindSale, domain.KindSaleReturn:
		return s.accounts.DiscountAllowed
	case domain.KindPurchase, domain.KindPurchaseReturn:
		return s.accounts.DiscountReceived
	}
	return ""
}

func (s *invoiceService) Create(ctx context.Context, input *CreateInvoiceInput) (*domain.Invoice, error) {
	var created *domain.Invoice
	err := s.uow.Do(ctx, func(stores *port.Stores) error {
		party, err := s.resolveParty(ctx, stores, input)
		if err != nil {
			return err
		}

		lines, totals, err := s.priceLines(ctx, stores, input.Lines)
		if err != nil {
			return err
		}

		number, err := stores.Numbers.Next(ctx, input.Kind)
		if err != nil {
			return fmt.Errorf("issuing document number: %w", err)
		}

		adjustment := input.AdjustmentAccount
		if adjustment == "" {
			adjustment = s.defaultAdjustmentAccount(input.Kind)
		}

		inv := &domain.Invoice{
			ID:                uuid.New(),
			Number:            number,
			Kind:              input.Kind,
			Status:            domain.StatusDraft,
			PaymentStatus:     domain.PaymentPending,
			AdjustmentAccount: adjustment,
			Subtotal:          totals.Subtotal,
			DiscountTotal:     totals.DiscountTotal,
			TaxTotal:          totals.TaxTotal,
			GrandTotal:        totals.GrandTotal,
			PaidAmount:        decimal.Zero,
			Notes:             input.Notes,
			CreatedBy:         input.CreatedBy,
			Lines:             lines,
		}
		if party.Kind == domain.PartyCustomer {
			inv.CustomerID = &party.ID
		} else {
			inv.SupplierID = &party.ID
		}

		if err := stores.Invoices.Create(ctx, inv); err != nil {
			return err
		}
		log.Printf("invoiceService.Create: created %s %s with %d lines", inv.Kind, inv.Number, len(inv.Lines))
		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *invoiceService) Get(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	return s.reads.Invoices.GetByID(ctx, id)
}

func (s *invoiceService) List(ctx context.Context, filter port.ListInvoicesFilter, offset, limit int) ([]domain.Invoice, int, error) {
	return s.reads.Invoices.List(ctx, filter, offset, limit)
}

func (s *invoiceService) UpdateLines(ctx context.Context, input *UpdateInvoiceInput) (*domain.Invoice, error) {
	var updated *domain.Invoice
	err := s.uow.Do(ctx, func(stores *port.Stores) error {
		inv, err := stores.Invoices.GetForUpdate(ctx, input.InvoiceID)
		if err != nil {
			return err
		}
		if inv.Status != domain.StatusDraft {
			return fmt.Errorf("%w: document %s is %s, only drafts can be edited", domain.ErrInvalidState, inv.Number, inv.Status)
		}

		lines, totals, err := s.priceLines(ctx, stores, input.Lines)
		if err != nil {
			return err
		}

		if input.AdjustmentAccount != "" {
			inv.AdjustmentAccount = input.AdjustmentAccount
		} else if inv.AdjustmentAccount == "" {
			inv.AdjustmentAccount = s.defaultAdjustmentAccount(inv.Kind)
		}
		inv.Notes = input.Notes
		inv.Lines = lines
		inv.Subtotal = totals.Subtotal
		inv.DiscountTotal = totals.DiscountTotal
		inv.TaxTotal = totals.TaxTotal
		inv.GrandTotal = totals.GrandTotal

		if err := stores.Invoices.UpdateDraft(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.uow.Do(ctx, func(stores *port.Stores) error {
		return stores.Invoices.Delete(ctx, id)
	})
}

// checkCreditLimit validates the customer's exposure including this
// document. A zero or unset limit means unlimited.
func (s *invoiceService) checkCreditLimit(ctx context.Context, stores *port.Stores, inv *domain.Invoice, party *domain.Party) error {
	if inv.Kind != domain.KindSale || party.CreditLimit.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	balance, err := stores.Ledger.AccountBalance(ctx, party.LedgerAccount())
	if err != nil {
		return fmt.Errorf("deriving party balance: %w", err)
	}
	// Payments post no ledger entries, so the receivable balance alone
	// overstates exposure once documents settle. Net the settled cash out.
	paid, err := stores.Invoices.PaidTotalByParty(ctx, party.ID)
	if err != nil {
		return fmt.Errorf("summing settled payments: %w", err)
	}
	outstanding := balance.Sub(paid)
	if outstanding.Add(inv.GrandTotal).GreaterThan(party.CreditLimit) {
		return &domain.CreditLimitExceededError{
			PartyID:     party.ID,
			Amount:      inv.GrandTotal,
			Outstanding: outstanding,
			Limit:       party.CreditLimit,
		}
	}
	return nil
}

// confirmDirection is the stock direction a confirmation applies for the kind.
func confirmDirection(kind domain.InvoiceKind) domain.StockDirection {
	switch kind {
	case domain.KindSale, domain.KindPurchaseReturn:
		return domain.StockDecrease
	default:
		return domain.StockIncrease
	}
}

func stockLines(lines []domain.InvoiceLine) []port.StockLine {
	out := make([]port.StockLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, port.StockLine{ItemID: l.ItemID, Warehouse: l.Warehouse, Quantity: l.Quantity})
	}
	return out
}

// confirmPostings builds the balanced posting set a confirmation writes:
// the sale/purchase pair, the discount adjustment pair, and the tax pair,
// all against the same reference. Zero-amount pairs are omitted.
func (s *invoiceService) confirmPostings(inv *domain.Invoice, party *domain.Party) ([]port.Posting, error) {
	if !inv.DiscountTotal.IsZero() && inv.AdjustmentAccount == "" {
		return nil, fmt.Errorf("%w: document %s carries a discount but no adjustment account", domain.ErrValidation, inv.Number)
	}

	partyAccount := party.LedgerAccount()
	var postings []port.Posting
	add := func(debit, credit string, amount decimal.Decimal, memo string) {
		if amount.GreaterThan(decimal.Zero) {
			postings = append(postings, port.Posting{Debit: debit, Credit: credit, Amount: amount, Memo: memo})
		}
	}

	switch inv.Kind {
	case domain.KindSale:
		add(partyAccount, s.accounts.Sales, inv.Subtotal, "sale "+inv.Number)
		add(inv.AdjustmentAccount, partyAccount, inv.DiscountTotal, "discount "+inv.Number)
		add(partyAccount, s.accounts.TaxPayable, inv.TaxTotal, "tax "+inv.Number)
	case domain.KindPurchase:
		add(s.accounts.Purchases, partyAccount, inv.Subtotal, "purchase "+inv.Number)
		add(partyAccount, inv.AdjustmentAccount, inv.DiscountTotal, "discount "+inv.Number)
		add(s.accounts.TaxReceivable, partyAccount, inv.TaxTotal, "tax "+inv.Number)
	default:
		return nil, fmt.Errorf("%w: %s documents are not confirmed through the lifecycle manager", domain.ErrInvalidState, inv.Kind)
	}
	return postings, nil
}

func (s *invoiceService) Confirm(ctx context.Context, id, actor uuid.UUID) (*domain.Invoice, error) {
	var confirmed *domain.Invoice
	err := s.uow.Do(ctx, func(stores *port.Stores) error {
		inv, err := stores.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != domain.StatusDraft {
			return fmt.Errorf("%w: document %s is already %s", domain.ErrInvalidState, inv.Number, inv.Status)
		}

		party, err := stores.Parties.GetByID(ctx, inv.PartyID())
		if err != nil {
			return fmt.Errorf("looking up party: %w", err)
		}
		if !party.IsActive {
			return fmt.Errorf("%w: party %s is inactive", domain.ErrValidation, party.ID)
		}
		if err := s.checkCreditLimit(ctx, stores, inv, party); err != nil {
			return err
		}

		// Validate the posting plan before any stock mutation so a missing
		// adjustment account aborts with zero side effects.
		postings, err := s.confirmPostings(inv, party)
		if err != nil {
			return err
		}

		_, err = s.stock.Apply(ctx, stores, port.StockApplyInput{
			Lines:     stockLines(inv.Lines),
			Direction: confirmDirection(inv.Kind),
			Kind:      domain.MovementConfirmation,
			RefKind:   domain.RefInvoice,
			RefID:     inv.ID,
			Note:      "confirmation of " + inv.Number,
			Actor:     actor,
		})
		if err != nil {
			return err
		}

		if len(postings) > 0 {
			if _, err := s.acct.PostSet(ctx, stores, domain.RefInvoice, inv.ID, actor, postings); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		inv.Status = domain.StatusConfirmed
		inv.ConfirmedBy = &actor
		inv.ConfirmedAt = &now
		if err := stores.Invoices.UpdateStatus(ctx, inv); err != nil {
			return err
		}

		log.Printf("invoiceService.Confirm: confirmed %s %s (total %s) by %s", inv.Kind, inv.Number, inv.GrandTotal, actor)
		confirmed = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

func (s *invoiceService) Cancel(ctx context.Context, id, actor uuid.UUID, reason string) (*domain.Invoice, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: a cancellation reason is required", domain.ErrValidation)
	}
	var cancelled *domain.Invoice
	err := s.uow.Do(ctx, func(stores *port.Stores) error {
		inv, err := stores.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status == domain.StatusCancelled {
			return fmt.Errorf("%w: document %s is already cancelled", domain.ErrInvalidState, inv.Number)
		}
		if inv.PaymentStatus == domain.PaymentPaid {
			return fmt.Errorf("%w: document %s is paid; refund before cancelling", domain.ErrInvalidState, inv.Number)
		}

		if inv.Status == domain.StatusConfirmed {
			// Cancelling an original that still has live returns would
			// double-restock the returned units.
			if !inv.Kind.IsReturn() {
				returns, err := stores.Invoices.ListReturnsByOriginal(ctx, inv.ID)
				if err != nil {
					return err
				}
				for i := range returns {
					if returns[i].Status != domain.StatusCancelled {
						return fmt.Errorf("%w: document %s has return %s; cancel the return first",
							domain.ErrInvalidState, inv.Number, returns[i].Number)
					}
				}
			}

			note := fmt.Sprintf("cancellation of %s: %s", inv.Number, reason)
			_, err = s.stock.Apply(ctx, stores, port.StockApplyInput{
				Lines:     stockLines(inv.Lines),
				Direction: confirmDirection(inv.Kind).Opposite(),
				Kind:      domain.MovementCancellation,
				RefKind:   domain.RefInvoice,
				RefID:     inv.ID,
				Note:      note,
				Actor:     actor,
			})
			if err != nil {
				return err
			}
			if _, err := s.acct.ReverseByReference(ctx, stores, inv.ID, note, actor); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		inv.Status = domain.StatusCancelled
		inv.CancelledBy = &actor
		inv.CancelledAt = &now
		inv.CancelReason = reason
		if err := stores.Invoices.UpdateStatus(ctx, inv); err != nil {
			return err
		}

		log.Printf("invoiceService.Cancel: cancelled %s %s by %s: %s", inv.Kind, inv.Number, actor, reason)
		cancelled = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

func (s *invoiceService) MarkPaid(ctx context.Context, id, actor uuid.UUID) (*domain.Invoice, error) {
	var paid *domain.Invoice
	err := s.uow.Do(ctx, func(stores *port.Stores) error {
		inv, err := stores.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != domain.StatusConfirmed {
			return fmt.Errorf("%w: document %s is %s, only confirmed documents accept payments", domain.ErrInvalidState, inv.Number, inv.Status)
		}
		if inv.PaymentStatus == domain.PaymentPaid {
			return fmt.Errorf("%w: document %s is already paid", domain.ErrInvalidState, inv.Number)
		}

		inv.PaymentStatus = domain.PaymentPaid
		inv.PaidAmount = inv.GrandTotal
		if err := stores.Invoices.UpdatePayment(ctx, inv); err != nil {
			return err
		}
		paid = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

func (s *invoiceService) MarkPartiallyPaid(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor uuid.UUID) (*domain.Invoice, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", domain.ErrValidation)
	}
	var updated *domain.Invoice
	err := s.uow.Do(ctx, func(stores *port.Stores) error {
		inv, err := stores.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != domain.StatusConfirmed {
			return fmt.Errorf("%w: document %s is %s, only confirmed documents accept payments", domain.ErrInvalidState, inv.Number, inv.Status)
		}
		if inv.PaymentStatus == domain.PaymentPaid {
			return fmt.Errorf("%w: document %s is already paid", domain.ErrInvalidState, inv.Number)
		}

		inv.PaidAmount = inv.PaidAmount.Add(amount)
		if inv.PaidAmount.GreaterThanOrEqual(inv.GrandTotal) {
			inv.PaymentStatus = domain.PaymentPaid
		} else {
			inv.PaymentStatus = domain.PaymentPartial
		}
		if err := stores.Invoices.UpdatePayment(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
