package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tradebooks/internal/config"
	"tradebooks/internal/domain"
	"tradebooks/internal/port"
	"tradebooks/internal/service"
	"tradebooks/mocks"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testAccounts() config.AccountsConfig {
	return config.AccountsConfig{
		Sales:            domain.AccountSales,
		Purchases:        domain.AccountPurchases,
		TaxPayable:       domain.AccountTaxPayable,
		TaxReceivable:    domain.AccountTaxReceivable,
		DiscountAllowed:  domain.AccountDiscountAllowed,
		DiscountReceived: domain.AccountDiscountReceived,
	}
}

type lifecycleFixture struct {
	invoices  *mocks.MockInvoiceRepo
	movements *mocks.MockStockMovementRepo
	items     *mocks.MockItemRepo
	parties   *mocks.MockPartyRepo
	ledger    *mocks.MockLedgerRepo
	taxRepo   *mocks.MockTaxCodeRepo
	numbers   *mocks.MockNumberingService
	provider  *mocks.MockTaxCodeProvider
	svc       service.InvoiceService
}

// setupLifecycle wires the service with mocked repositories but the real
// stock and accounting ledgers, so confirmation tests exercise the whole
// effect pipeline.
func setupLifecycle() *lifecycleFixture {
	f := &lifecycleFixture{
		invoices:  new(mocks.MockInvoiceRepo),
		movements: new(mocks.MockStockMovementRepo),
		items:     new(mocks.MockItemRepo),
		parties:   new(mocks.MockPartyRepo),
		ledger:    new(mocks.MockLedgerRepo),
		taxRepo:   new(mocks.MockTaxCodeRepo),
		numbers:   new(mocks.MockNumberingService),
		provider:  new(mocks.MockTaxCodeProvider),
	}
	stores := &port.Stores{
		Invoices:  f.invoices,
		Movements: f.movements,
		Items:     f.items,
		Parties:   f.parties,
		Ledger:    f.ledger,
		TaxCodes:  f.taxRepo,
		Numbers:   f.numbers,
	}
	uow := &mocks.MockUnitOfWork{Bundle: stores}
	f.svc = service.NewInvoiceService(
		uow, stores,
		service.NewStockLedger(), service.NewAccountingLedger(),
		f.provider, testAccounts(),
	)
	return f
}

// draftSale builds a confirmed-ready draft: 2 units at 100, 10% discount,
// 18% tax after discount. Subtotal 200, discount 20, tax 32.40, grand 212.40.
func draftSale(customerID, itemID uuid.UUID) *domain.Invoice {
	return &domain.Invoice{
		ID:                uuid.New(),
		Number:            "INV-2026-000001",
		Kind:              domain.KindSale,
		Status:            domain.StatusDraft,
		PaymentStatus:     domain.PaymentPending,
		CustomerID:        &customerID,
		AdjustmentAccount: domain.AccountDiscountAllowed,
		Subtotal:          dec("200"),
		DiscountTotal:     dec("20"),
		TaxTotal:          dec("32.40"),
		GrandTotal:        dec("212.40"),
		PaidAmount:        decimal.Zero,
		CreatedBy:         uuid.New(),
		Lines: []domain.InvoiceLine{{
			ID:              uuid.New(),
			ItemID:          itemID,
			Quantity:        dec("2"),
			UnitPrice:       dec("100"),
			Discount1Pct:    dec("10"),
			TaxCodes:        domain.TaxCodeList{"GST18"},
			Subtotal:        dec("200"),
			Discount1Amount: dec("20"),
			TaxableAmount:   dec("180"),
			TaxAmount:       dec("32.40"),
			LineTotal:       dec("212.40"),
		}},
	}
}

func activeCustomer(id uuid.UUID) *domain.Party {
	return &domain.Party{ID: id, Kind: domain.PartyCustomer, Name: "Acme Traders", IsActive: true}
}

func TestConfirm_SaleAppliesStockAndPostings(t *testing.T) {
	f := setupLifecycle()
	customerID := uuid.New()
	itemID := uuid.New()
	actor := uuid.New()
	inv := draftSale(customerID, itemID)

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.parties.On("GetByID", mock.Anything, customerID).Return(activeCustomer(customerID), nil)
	f.items.On("GetByID", mock.Anything, itemID).Return(&domain.Item{ID: itemID, CurrentStock: dec("10"), IsActive: true}, nil)
	f.items.On("AdjustStock", mock.Anything, itemID, dec("2").Neg()).Return(nil)

	f.movements.On("CreateBatch", mock.Anything, mock.MatchedBy(func(ms []domain.StockMovement) bool {
		return len(ms) == 1 &&
			ms[0].Quantity.Equal(dec("-2")) &&
			ms[0].Kind == domain.MovementConfirmation &&
			ms[0].RefID == inv.ID
	})).Return(nil)

	var posted []domain.LedgerEntry
	f.ledger.On("CreateBatch", mock.Anything, mock.AnythingOfType("[]domain.LedgerEntry")).
		Run(func(args mock.Arguments) { posted = args.Get(1).([]domain.LedgerEntry) }).
		Return(nil)

	f.invoices.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(i *domain.Invoice) bool {
		return i.Status == domain.StatusConfirmed
	})).Return(nil)

	confirmed, err := f.svc.Confirm(context.Background(), inv.ID, actor)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedBy)
	assert.Equal(t, actor, *confirmed.ConfirmedBy)

	// Three pairs: sale, discount adjustment, tax.
	require.Len(t, posted, 6)
	balance := map[string]decimal.Decimal{}
	for _, e := range posted {
		amt := e.Amount
		if e.Direction == domain.Credit {
			amt = amt.Neg()
		}
		balance[e.Account] = balance[e.Account].Add(amt)
	}
	ar := domain.ReceivableAccount(customerID)
	assert.True(t, balance[ar].Equal(dec("212.40")), "AR net %s", balance[ar])
	assert.True(t, balance[domain.AccountSales].Equal(dec("-200")))
	assert.True(t, balance[domain.AccountDiscountAllowed].Equal(dec("20")))
	assert.True(t, balance[domain.AccountTaxPayable].Equal(dec("-32.40")))

	f.invoices.AssertExpectations(t)
	f.items.AssertExpectations(t)
	f.movements.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
}

func TestConfirm_InsufficientStockRejectsWholeBatch(t *testing.T) {
	f := setupLifecycle()
	customerID := uuid.New()
	itemID := uuid.New()
	inv := draftSale(customerID, itemID)

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.parties.On("GetByID", mock.Anything, customerID).Return(activeCustomer(customerID), nil)
	f.items.On("GetByID", mock.Anything, itemID).Return(&domain.Item{ID: itemID, CurrentStock: dec("1"), IsActive: true}, nil)

	_, err := f.svc.Confirm(context.Background(), inv.ID, uuid.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Shortfalls, 1)
	assert.Equal(t, itemID, stockErr.Shortfalls[0].ItemID)
	assert.True(t, stockErr.Shortfalls[0].Available.Equal(dec("1")))

	f.items.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	f.invoices.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

func TestConfirm_CreditLimitExceeded(t *testing.T) {
	f := setupLifecycle()
	customerID := uuid.New()
	itemID := uuid.New()
	inv := draftSale(customerID, itemID)

	party := activeCustomer(customerID)
	party.CreditLimit = dec("500")

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.parties.On("GetByID", mock.Anything, customerID).Return(party, nil)
	f.ledger.On("AccountBalance", mock.Anything, domain.ReceivableAccount(customerID)).Return(dec("400"), nil)
	f.invoices.On("PaidTotalByParty", mock.Anything, customerID).Return(dec("0"), nil)

	_, err := f.svc.Confirm(context.Background(), inv.ID, uuid.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCreditLimitExceeded)
	var creditErr *domain.CreditLimitExceededError
	require.ErrorAs(t, err, &creditErr)
	assert.True(t, creditErr.Outstanding.Equal(dec("400")))
	assert.True(t, creditErr.Limit.Equal(dec("500")))

	f.items.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	f.invoices.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestConfirm_SettledPaymentsFreeCreditHeadroom(t *testing.T) {
	f := setupLifecycle()
	customerID := uuid.New()
	itemID := uuid.New()
	inv := draftSale(customerID, itemID)

	party := activeCustomer(customerID)
	party.CreditLimit = dec("500")

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.parties.On("GetByID", mock.Anything, customerID).Return(party, nil)
	// The receivable balance still carries 400, but 300 of it is settled:
	// real exposure is 100, so the new 212.40 fits under the 500 limit.
	f.ledger.On("AccountBalance", mock.Anything, domain.ReceivableAccount(customerID)).Return(dec("400"), nil)
	f.invoices.On("PaidTotalByParty", mock.Anything, customerID).Return(dec("300"), nil)
	f.items.On("GetByID", mock.Anything, itemID).Return(&domain.Item{ID: itemID, CurrentStock: dec("5"), IsActive: true}, nil)
	f.items.On("AdjustStock", mock.Anything, itemID, mock.Anything).Return(nil)
	f.movements.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.ledger.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.invoices.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

	confirmed, err := f.svc.Confirm(context.Background(), inv.ID, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, confirmed.Status)
}

func TestConfirm_ZeroCreditLimitIsUnlimited(t *testing.T) {
	f := setupLifecycle()
	customerID := uuid.New()
	itemID := uuid.New()
	inv := draftSale(customerID, itemID)

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.parties.On("GetByID", mock.Anything, customerID).Return(activeCustomer(customerID), nil)
	f.items.On("GetByID", mock.Anything, itemID).Return(&domain.Item{ID: itemID, CurrentStock: dec("5"), IsActive: true}, nil)
	f.items.On("AdjustStock", mock.Anything, itemID, mock.Anything).Return(nil)
	f.movements.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.ledger.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.invoices.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Confirm(context.Background(), inv.ID, uuid.New())

	require.NoError(t, err)
	f.ledger.AssertNotCalled(t, "AccountBalance", mock.Anything, mock.Anything)
}

func TestConfirm_AlreadyConfirmed(t *testing.T) {
	f := setupLifecycle()
	inv := draftSale(uuid.New(), uuid.New())
	inv.Status = domain.StatusConfirmed

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)

	_, err := f.svc.Confirm(context.Background(), inv.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestConfirm_VersionGuardMissSurfacesInvalidState(t *testing.T) {
	f := setupLifecycle()
	customerID := uuid.New()
	itemID := uuid.New()
	inv := draftSale(customerID, itemID)

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.parties.On("GetByID", mock.Anything, customerID).Return(activeCustomer(customerID), nil)
	f.items.On("GetByID", mock.Anything, itemID).Return(&domain.Item{ID: itemID, CurrentStock: dec("5"), IsActive: true}, nil)
	f.items.On("AdjustStock", mock.Anything, itemID, mock.Anything).Return(nil)
	f.movements.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	f.ledger.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)
	// A concurrent writer bumped the version between load and update.
	f.invoices.On("UpdateStatus", mock.Anything, mock.Anything).Return(domain.ErrInvalidState)

	_, err := f.svc.Confirm(context.Background(), inv.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestConfirm_MissingAdjustmentAccountLeavesStockUntouched(t *testing.T) {
	f := setupLifecycle()
	customerID := uuid.New()
	itemID := uuid.New()
	inv := draftSale(customerID, itemID)
	inv.AdjustmentAccount = ""

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.parties.On("GetByID", mock.Anything, customerID).Return(activeCustomer(customerID), nil)

	_, err := f.svc.Confirm(context.Background(), inv.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrValidation)
	f.items.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	f.movements.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
}

// lockedTx serializes whole transactions behind one mutex, the way the
// database serializes them on the document's row lock.
type lockedTx struct {
	mu     sync.Mutex
	bundle *port.Stores
}

func (u *lockedTx) Do(ctx context.Context, fn func(s *port.Stores) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(u.bundle)
}

// memInvoiceStore holds one document in memory. GetForUpdate hands out a
// copy and UpdateStatus applies the version guard, so callers observe the
// same lost-update semantics the SQL implementation has.
type memInvoiceStore struct {
	port.InvoiceRepository
	doc *domain.Invoice
}

func (s *memInvoiceStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	cp := *s.doc
	cp.Lines = append([]domain.InvoiceLine(nil), s.doc.Lines...)
	return &cp, nil
}

func (s *memInvoiceStore) UpdateStatus(ctx context.Context, inv *domain.Invoice) error {
	if s.doc.Version != inv.Version {
		return domain.ErrInvalidState
	}
	*s.doc = *inv
	s.doc.Version++
	return nil
}

func TestConfirm_ConcurrentConfirmationsExactlyOneWins(t *testing.T) {
	customerID := uuid.New()
	itemID := uuid.New()
	doc := draftSale(customerID, itemID)
	doc.Version = 1

	items := new(mocks.MockItemRepo)
	parties := new(mocks.MockPartyRepo)
	movements := new(mocks.MockStockMovementRepo)
	ledger := new(mocks.MockLedgerRepo)

	parties.On("GetByID", mock.Anything, customerID).Return(activeCustomer(customerID), nil)
	items.On("GetByID", mock.Anything, itemID).Return(&domain.Item{ID: itemID, CurrentStock: dec("10"), IsActive: true}, nil)
	// Once: a second application would mean both confirmations went through.
	items.On("AdjustStock", mock.Anything, itemID, mock.Anything).Return(nil).Once()
	movements.On("CreateBatch", mock.Anything, mock.Anything).Return(nil).Once()
	ledger.On("CreateBatch", mock.Anything, mock.Anything).Return(nil).Once()

	stores := &port.Stores{
		Invoices:  &memInvoiceStore{doc: doc},
		Movements: movements,
		Items:     items,
		Parties:   parties,
		Ledger:    ledger,
		TaxCodes:  new(mocks.MockTaxCodeRepo),
		Numbers:   new(mocks.MockNumberingService),
	}
	svc := service.NewInvoiceService(
		&lockedTx{bundle: stores}, stores,
		service.NewStockLedger(), service.NewAccountingLedger(),
		new(mocks.MockTaxCodeProvider), testAccounts(),
	)

	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Confirm(context.Background(), doc.ID, uuid.New())
		}(i)
	}
	close(start)
	wg.Wait()

	var succeeded, invalid int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrInvalidState):
			invalid++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one confirmation wins")
	assert.Equal(t, 1, invalid, "the loser observes the invalid state")
	assert.Equal(t, domain.StatusConfirmed, doc.Status)
	items.AssertExpectations(t)
	movements.AssertExpectations(t)
	ledger.AssertExpectations(t)
}

func TestCancel_PaidDocumentRejected(t *testing.T) {
	f := setupLifecycle()
	inv := draftSale(uuid.New(), uuid.New())
	inv.Status = domain.StatusConfirmed
	inv.PaymentStatus = domain.PaymentPaid
	inv.PaidAmount = inv.GrandTotal

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)

	_, err := f.svc.Cancel(context.Background(), inv.ID, uuid.New(), "wrong customer")

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	f.invoices.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestCancel_ConfirmedReversesStockAndLedger(t *testing.T) {
	f := setupLifecycle()
	customerID := uuid.New()
	itemID := uuid.New()
	actor := uuid.New()
	inv := draftSale(customerID, itemID)
	inv.Status = domain.StatusConfirmed

	ar := domain.ReceivableAccount(customerID)
	originals := []domain.LedgerEntry{
		{Account: ar, Direction: domain.Debit, Amount: dec("200"), RefKind: domain.RefInvoice, RefID: inv.ID},
		{Account: domain.AccountSales, Direction: domain.Credit, Amount: dec("200"), RefKind: domain.RefInvoice, RefID: inv.ID},
	}

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("ListReturnsByOriginal", mock.Anything, inv.ID).Return([]domain.Invoice{}, nil)
	// Sale cancellation restocks; no availability lookup happens on increase.
	f.items.On("AdjustStock", mock.Anything, itemID, dec("2")).Return(nil)
	f.movements.On("CreateBatch", mock.Anything, mock.MatchedBy(func(ms []domain.StockMovement) bool {
		return len(ms) == 1 && ms[0].Quantity.Equal(dec("2")) && ms[0].Kind == domain.MovementCancellation
	})).Return(nil)
	f.ledger.On("ListByRef", mock.Anything, inv.ID).Return(originals, nil)
	f.ledger.On("CreateBatch", mock.Anything, mock.MatchedBy(func(es []domain.LedgerEntry) bool {
		if len(es) != 2 {
			return false
		}
		// Directions swapped against the originals, accounts kept.
		return es[0].Account == ar && es[0].Direction == domain.Credit &&
			es[1].Account == domain.AccountSales && es[1].Direction == domain.Debit
	})).Return(nil)
	f.invoices.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(i *domain.Invoice) bool {
		return i.Status == domain.StatusCancelled && i.CancelReason == "duplicate entry"
	})).Return(nil)

	cancelled, err := f.svc.Cancel(context.Background(), inv.ID, actor, "duplicate entry")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	f.ledger.AssertExpectations(t)
	f.movements.AssertExpectations(t)
}

func TestCancel_WithLiveReturnRejected(t *testing.T) {
	f := setupLifecycle()
	inv := draftSale(uuid.New(), uuid.New())
	inv.Status = domain.StatusConfirmed

	ret := domain.Invoice{ID: uuid.New(), Number: "SRN-2026-000001", Kind: domain.KindSaleReturn, Status: domain.StatusConfirmed}

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("ListReturnsByOriginal", mock.Anything, inv.ID).Return([]domain.Invoice{ret}, nil)

	_, err := f.svc.Cancel(context.Background(), inv.ID, uuid.New(), "mistake")

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	f.items.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancel_DraftSkipsEffects(t *testing.T) {
	f := setupLifecycle()
	inv := draftSale(uuid.New(), uuid.New())

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("UpdateStatus", mock.Anything, mock.Anything).Return(nil)

	cancelled, err := f.svc.Cancel(context.Background(), inv.ID, uuid.New(), "never needed")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	f.items.AssertNotCalled(t, "AdjustStock", mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "ListByRef", mock.Anything, mock.Anything)
}

func TestPayments_PartialThenSettled(t *testing.T) {
	f := setupLifecycle()
	inv := draftSale(uuid.New(), uuid.New())
	inv.Status = domain.StatusConfirmed

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)
	f.invoices.On("UpdatePayment", mock.Anything, mock.Anything).Return(nil)

	first, err := f.svc.MarkPartiallyPaid(context.Background(), inv.ID, dec("100"), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPartial, first.PaymentStatus)
	assert.True(t, first.PaidAmount.Equal(dec("100")))

	second, err := f.svc.MarkPartiallyPaid(context.Background(), inv.ID, dec("112.40"), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, second.PaymentStatus)
	assert.True(t, second.PaidAmount.Equal(dec("212.40")))

	// A settled document takes no further payments.
	_, err = f.svc.MarkPartiallyPaid(context.Background(), inv.ID, dec("1"), uuid.New())
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestMarkPaid_DraftRejected(t *testing.T) {
	f := setupLifecycle()
	inv := draftSale(uuid.New(), uuid.New())

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)

	_, err := f.svc.MarkPaid(context.Background(), inv.ID, uuid.New())

	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestMarkPartiallyPaid_NonPositiveAmount(t *testing.T) {
	f := setupLifecycle()

	_, err := f.svc.MarkPartiallyPaid(context.Background(), uuid.New(), dec("0"), uuid.New())

	assert.ErrorIs(t, err, domain.ErrValidation)
	f.invoices.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}

func TestCreate_DraftWithComputedTotals(t *testing.T) {
	f := setupLifecycle()
	customerID := uuid.New()
	itemID := uuid.New()
	creator := uuid.New()

	f.parties.On("GetByID", mock.Anything, customerID).Return(activeCustomer(customerID), nil)
	f.items.On("GetByID", mock.Anything, itemID).Return(&domain.Item{
		ID: itemID, UnitPrice: dec("100"), IsActive: true,
	}, nil)
	f.provider.On("Get", mock.Anything, "GST18").Return(&domain.TaxCode{Code: "GST18", RatePct: dec("18"), IsActive: true}, nil)
	f.numbers.On("Next", mock.Anything, domain.KindSale).Return("INV-2026-000042", nil)
	f.invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	inv, err := f.svc.Create(context.Background(), &service.CreateInvoiceInput{
		Kind:       domain.KindSale,
		CustomerID: &customerID,
		Lines: []service.InvoiceLineInput{{
			ItemID:       itemID,
			Quantity:     dec("2"),
			Discount1Pct: dec("10"),
			TaxCodes:     []string{"GST18"},
		}},
		CreatedBy: creator,
	})

	require.NoError(t, err)
	assert.Equal(t, "INV-2026-000042", inv.Number)
	assert.Equal(t, domain.StatusDraft, inv.Status)
	assert.Equal(t, domain.PaymentPending, inv.PaymentStatus)
	assert.True(t, inv.Subtotal.Equal(dec("200")))
	assert.True(t, inv.DiscountTotal.Equal(dec("20")))
	assert.True(t, inv.TaxTotal.Equal(dec("32.40")))
	assert.True(t, inv.GrandTotal.Equal(dec("212.40")))
	assert.Equal(t, domain.AccountDiscountAllowed, inv.AdjustmentAccount)
	f.invoices.AssertExpectations(t)
}

func TestCreate_PartyKindMismatch(t *testing.T) {
	f := setupLifecycle()
	supplierID := uuid.New()

	f.parties.On("GetByID", mock.Anything, supplierID).Return(&domain.Party{
		ID: supplierID, Kind: domain.PartySupplier, Name: "Mehta Supplies", IsActive: true,
	}, nil)

	_, err := f.svc.Create(context.Background(), &service.CreateInvoiceInput{
		Kind:       domain.KindSale,
		CustomerID: &supplierID,
		Lines:      []service.InvoiceLineInput{{ItemID: uuid.New(), Quantity: dec("1")}},
		CreatedBy:  uuid.New(),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreate_UnknownTaxCode(t *testing.T) {
	f := setupLifecycle()
	customerID := uuid.New()
	itemID := uuid.New()

	f.parties.On("GetByID", mock.Anything, customerID).Return(activeCustomer(customerID), nil)
	f.items.On("GetByID", mock.Anything, itemID).Return(&domain.Item{ID: itemID, UnitPrice: dec("50"), IsActive: true}, nil)
	f.provider.On("Get", mock.Anything, "NOPE").Return(nil, domain.ErrNotFound)

	_, err := f.svc.Create(context.Background(), &service.CreateInvoiceInput{
		Kind:       domain.KindSale,
		CustomerID: &customerID,
		Lines:      []service.InvoiceLineInput{{ItemID: itemID, Quantity: dec("1"), TaxCodes: []string{"NOPE"}}},
		CreatedBy:  uuid.New(),
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}

func TestUpdateLines_ConfirmedRejected(t *testing.T) {
	f := setupLifecycle()
	inv := draftSale(uuid.New(), uuid.New())
	inv.Status = domain.StatusConfirmed

	f.invoices.On("GetForUpdate", mock.Anything, inv.ID).Return(inv, nil)

	_, err := f.svc.UpdateLines(context.Background(), &service.UpdateInvoiceInput{
		InvoiceID: inv.ID,
		Lines:     []service.InvoiceLineInput{{ItemID: uuid.New(), Quantity: dec("1")}},
		Actor:     uuid.New(),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidState)
	f.invoices.AssertNotCalled(t, "UpdateDraft", mock.Anything, mock.Anything)
}
