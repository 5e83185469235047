package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/config"
	"tradebooks/internal/domain"
	"tradebooks/internal/port"
)

// ReturnLineInput names an item and the quantity being returned.
type ReturnLineInput struct {
	ItemID   uuid.UUID
	Quantity decimal.Decimal
}

// CreateReturnInput is the DTO for issuing a return against a confirmed
// sale or purchase.
type CreateReturnInput struct {
	OriginalID uuid.UUID
	Lines      []ReturnLineInput
	Reason     string
	Actor      uuid.UUID
}

// ReturnService issues return documents. A return is born confirmed: its
// stock and ledger effects are applied in the same transaction that
// creates it, under the original document's row lock so concurrent
// returns against the same original serialize.
type ReturnService interface {
	GetReturnable(ctx context.Context, originalID uuid.UUID) ([]domain.ReturnableLine, error)
	CreateReturn(ctx context.Context, input *CreateReturnInput) (*domain.Invoice, error)
}

type returnService struct {
	uow      port.UnitOfWork
	reads    *port.Stores
	stock    port.StockLedger
	acct     port.AccountingLedger
	accounts config.AccountsConfig
}

// NewReturnService creates a new ReturnService.
func NewReturnService(
	uow port.UnitOfWork,
	reads *port.Stores,
	stock port.StockLedger,
	acct port.AccountingLedger,
	accounts config.AccountsConfig,
) ReturnService {
	return &returnService{uow: uow, reads: reads, stock: stock, acct: acct, accounts: accounts}
}

// returnableByItem aggregates the original's lines per item and subtracts
// quantities already taken by non-cancelled returns.
func returnableByItem(original *domain.Invoice, returns []domain.Invoice) map[uuid.UUID]*domain.ReturnableLine {
	byItem := make(map[uuid.UUID]*domain.ReturnableLine)
	for _, l := range original.Lines {
		if rl, ok := byItem[l.ItemID]; ok {
			rl.Ordered = rl.Ordered.Add(l.Quantity)
			rl.Remaining = rl.Remaining.Add(l.Quantity)
			continue
		}
		byItem[l.ItemID] = &domain.ReturnableLine{
			ItemID:    l.ItemID,
			Ordered:   l.Quantity,
			Remaining: l.Quantity,
		}
	}
	for i := range returns {
		if returns[i].Status == domain.StatusCancelled {
			continue
		}
		for _, l := range returns[i].Lines {
			if rl, ok := byItem[l.ItemID]; ok {
				rl.Returned = rl.Returned.Add(l.Quantity)
				rl.Remaining = rl.Remaining.Sub(l.Quantity)
			}
		}
	}
	return byItem
}

func (s *returnService) GetReturnable(ctx context.Context, originalID uuid.UUID) ([]domain.ReturnableLine, error) {
	original, err := s.reads.Invoices.GetByID(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if original.Kind.IsReturn() {
		return nil, fmt.Errorf("%w: document %s is itself a return", domain.ErrValidation, original.Number)
	}
	if original.Status != domain.StatusConfirmed {
		return nil, fmt.Errorf("%w: document %s is %s, only confirmed documents are returnable", domain.ErrInvalidState, original.Number, original.Status)
	}

	returns, err := s.reads.Invoices.ListReturnsByOriginal(ctx, originalID)
	if err != nil {
		return nil, err
	}

	byItem := returnableByItem(original, returns)
	out := make([]domain.ReturnableLine, 0, len(byItem))
	for _, l := range original.Lines {
		if rl, ok := byItem[l.ItemID]; ok {
			out = append(out, *rl)
			delete(byItem, l.ItemID)
		}
	}
	return out, nil
}

// prorate scales an original amount by returned/original quantity, rounded
// to currency precision.
func prorate(amount, returned, original decimal.Decimal) decimal.Decimal {
	return amount.Mul(returned).Div(original).Round(2)
}

// buildReturnLines allocates the requested quantities across the
// original's lines in order and derives each return line pro-rata from
// the original line's stored amounts, so the return mirrors exactly what
// was charged even if tax or discount configuration changed since.
func buildReturnLines(original *domain.Invoice, requested []ReturnLineInput) ([]domain.InvoiceLine, error) {
	remaining := make(map[uuid.UUID]decimal.Decimal, len(requested))
	for _, r := range requested {
		remaining[r.ItemID] = remaining[r.ItemID].Add(r.Quantity)
	}

	var lines []domain.InvoiceLine
	for _, ol := range original.Lines {
		take := remaining[ol.ItemID]
		if take.IsZero() {
			continue
		}
		if take.GreaterThan(ol.Quantity) {
			take = ol.Quantity
		}
		remaining[ol.ItemID] = remaining[ol.ItemID].Sub(take)

		sub := prorate(ol.Subtotal, take, ol.Quantity)
		d1 := prorate(ol.Discount1Amount, take, ol.Quantity)
		d2 := prorate(ol.Discount2Amount, take, ol.Quantity)
		tax := prorate(ol.TaxAmount, take, ol.Quantity)
		var taxable, total decimal.Decimal
		if ol.TaxInclusive {
			total = sub.Sub(d1).Sub(d2)
			taxable = total.Sub(tax)
		} else {
			taxable = sub.Sub(d1).Sub(d2)
			total = taxable.Add(tax)
		}

		lines = append(lines, domain.InvoiceLine{
			ItemID:          ol.ItemID,
			Warehouse:       ol.Warehouse,
			BatchNo:         ol.BatchNo,
			Quantity:        take,
			UnitPrice:       ol.UnitPrice,
			Discount1Pct:    ol.Discount1Pct,
			Discount1Fixed:  ol.Discount1Fixed,
			Discount2Pct:    ol.Discount2Pct,
			Discount2Fixed:  ol.Discount2Fixed,
			TaxCodes:        ol.TaxCodes,
			TaxInclusive:    ol.TaxInclusive,
			Subtotal:        sub.Neg(),
			Discount1Amount: d1.Neg(),
			Discount2Amount: d2.Neg(),
			TaxableAmount:   taxable.Neg(),
			TaxAmount:       tax.Neg(),
			LineTotal:       total.Neg(),
		})
	}
	return lines, nil
}

// returnPostings mirrors the original's posting plan with debit and
// credit swapped. Amounts are the positive magnitudes of the return's
// negated totals.
func (s *returnService) returnPostings(ret *domain.Invoice, party *domain.Party) []port.Posting {
	partyAccount := party.LedgerAccount()
	sub := ret.Subtotal.Neg()
	disc := ret.DiscountTotal.Neg()
	tax := ret.TaxTotal.Neg()

	var postings []port.Posting
	add := func(debit, credit string, amount decimal.Decimal, memo string) {
		if amount.GreaterThan(decimal.Zero) {
			postings = append(postings, port.Posting{Debit: debit, Credit: credit, Amount: amount, Memo: memo})
		}
	}

	switch ret.Kind {
	case domain.KindSaleReturn:
		add(s.accounts.Sales, partyAccount, sub, "sale return "+ret.Number)
		add(partyAccount, ret.AdjustmentAccount, disc, "discount reversal "+ret.Number)
		add(s.accounts.TaxPayable, partyAccount, tax, "tax reversal "+ret.Number)
	case domain.KindPurchaseReturn:
		add(partyAccount, s.accounts.Purchases, sub, "purchase return "+ret.Number)
		add(ret.AdjustmentAccount, partyAccount, disc, "discount reversal "+ret.Number)
		add(partyAccount, s.accounts.TaxReceivable, tax, "tax reversal "+ret.Number)
	}
	return postings
}

func (s *returnService) CreateReturn(ctx context.Context, input *CreateReturnInput) (*domain.Invoice, error) {
	if input.Reason == "" {
		return nil, fmt.Errorf("%w: a return reason is required", domain.ErrValidation)
	}
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: a return requires at least one line", domain.ErrValidation)
	}
	for _, l := range input.Lines {
		if l.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: return quantity for item %s must be positive", domain.ErrValidation, l.ItemID)
		}
	}

	var created *domain.Invoice
	err := s.uow.Do(ctx, func(stores *port.Stores) error {
		// Locking the original row serializes concurrent returns against
		// the same document, so the over-return check holds.
		original, err := stores.Invoices.GetForUpdate(ctx, input.OriginalID)
		if err != nil {
			return err
		}
		if original.Kind.IsReturn() {
			return fmt.Errorf("%w: document %s is itself a return", domain.ErrValidation, original.Number)
		}
		if original.Status != domain.StatusConfirmed {
			return fmt.Errorf("%w: document %s is %s, only confirmed documents are returnable", domain.ErrInvalidState, original.Number, original.Status)
		}

		returns, err := stores.Invoices.ListReturnsByOriginal(ctx, original.ID)
		if err != nil {
			return err
		}
		byItem := returnableByItem(original, returns)

		var excess []domain.ReturnExcess
		for _, r := range input.Lines {
			rl, ok := byItem[r.ItemID]
			if !ok {
				excess = append(excess, domain.ReturnExcess{ItemID: r.ItemID, Requested: r.Quantity, Available: decimal.Zero})
				continue
			}
			if r.Quantity.GreaterThan(rl.Remaining) {
				excess = append(excess, domain.ReturnExcess{ItemID: r.ItemID, Requested: r.Quantity, Available: rl.Remaining})
			}
		}
		if len(excess) > 0 {
			return &domain.ReturnQuantityExceededError{Excess: excess}
		}

		lines, err := buildReturnLines(original, input.Lines)
		if err != nil {
			return err
		}
		var sub, disc, tax decimal.Decimal
		for _, l := range lines {
			sub = sub.Add(l.Subtotal)
			disc = disc.Add(l.Discount1Amount).Add(l.Discount2Amount)
			tax = tax.Add(l.TaxAmount)
		}
		grand := sub.Sub(disc).Add(tax)

		kind := original.Kind.ReturnKind()
		number, err := stores.Numbers.Next(ctx, kind)
		if err != nil {
			return fmt.Errorf("issuing document number: %w", err)
		}

		party, err := stores.Parties.GetByID(ctx, original.PartyID())
		if err != nil {
			return fmt.Errorf("looking up party: %w", err)
		}

		now := time.Now().UTC()
		ret := &domain.Invoice{
			ID:                uuid.New(),
			Number:            number,
			Kind:              kind,
			Status:            domain.StatusConfirmed,
			PaymentStatus:     domain.PaymentPending,
			CustomerID:        original.CustomerID,
			SupplierID:        original.SupplierID,
			OriginalInvoiceID: &original.ID,
			AdjustmentAccount: original.AdjustmentAccount,
			Subtotal:          sub,
			DiscountTotal:     disc,
			TaxTotal:          tax,
			GrandTotal:        grand,
			PaidAmount:        decimal.Zero,
			Notes:             input.Reason,
			CreatedBy:         input.Actor,
			ConfirmedBy:       &input.Actor,
			ConfirmedAt:       &now,
			Lines:             lines,
		}
		if err := stores.Invoices.Create(ctx, ret); err != nil {
			return err
		}

		// Stock moves opposite to the original confirmation: sale returns
		// restock, purchase returns are availability-checked outflows.
		_, err = s.stock.Apply(ctx, stores, port.StockApplyInput{
			Lines:     stockLines(ret.Lines),
			Direction: confirmDirection(original.Kind).Opposite(),
			Kind:      domain.MovementReturn,
			RefKind:   domain.RefReturn,
			RefID:     ret.ID,
			Note:      fmt.Sprintf("return of %s: %s", original.Number, input.Reason),
			Actor:     input.Actor,
		})
		if err != nil {
			return err
		}

		postings := s.returnPostings(ret, party)
		if len(postings) > 0 {
			if _, err := s.acct.PostSet(ctx, stores, domain.RefReturn, ret.ID, input.Actor, postings); err != nil {
				return err
			}
		}

		log.Printf("returnService.CreateReturn: created %s %s against %s (total %s)", ret.Kind, ret.Number, original.Number, ret.GrandTotal)
		created = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
