package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxCodeList is an ordered list of tax code names applied to a line.
// Order matters for compound codes, so it is stored as a comma-joined text
// column rather than an unordered association table.
type TaxCodeList []string

// Value implements driver.Valuer.
func (l TaxCodeList) Value() (driver.Value, error) {
	return strings.Join(l, ","), nil
}

// Scan implements sql.Scanner.
func (l *TaxCodeList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case string:
		if v == "" {
			*l = nil
			return nil
		}
		*l = strings.Split(v, ",")
		return nil
	case []byte:
		return l.Scan(string(v))
	}
	return fmt.Errorf("TaxCodeList.Scan: unsupported type %T", src)
}

// Invoice is the aggregate root of a transaction: a sale, a purchase, or one
// of their returns. Totals are always derived from Lines, never hand-edited.
type Invoice struct {
	ID                uuid.UUID     `db:"id" json:"id"`
	Number            string        `db:"number" json:"number"`
	Kind              InvoiceKind   `db:"kind" json:"kind"`
	Status            InvoiceStatus `db:"status" json:"status"`
	PaymentStatus     PaymentStatus `db:"payment_status" json:"payment_status"`
	CustomerID        *uuid.UUID    `db:"customer_id" json:"customer_id,omitempty"`
	SupplierID        *uuid.UUID    `db:"supplier_id" json:"supplier_id,omitempty"`
	OriginalInvoiceID *uuid.UUID    `db:"original_invoice_id" json:"original_invoice_id,omitempty"`

	// AdjustmentAccount receives the discount/trade-offer counter-posting.
	// Required whenever DiscountTotal is nonzero.
	AdjustmentAccount string `db:"adjustment_account" json:"adjustment_account,omitempty"`

	Subtotal      decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountTotal decimal.Decimal `db:"discount_total" json:"discount_total"`
	TaxTotal      decimal.Decimal `db:"tax_total" json:"tax_total"`
	GrandTotal    decimal.Decimal `db:"grand_total" json:"grand_total"`
	PaidAmount    decimal.Decimal `db:"paid_amount" json:"paid_amount"`

	Notes        string     `db:"notes" json:"notes,omitempty"`
	CreatedBy    uuid.UUID  `db:"created_by" json:"created_by"`
	ConfirmedBy  *uuid.UUID `db:"confirmed_by" json:"confirmed_by,omitempty"`
	ConfirmedAt  *time.Time `db:"confirmed_at" json:"confirmed_at,omitempty"`
	CancelledBy  *uuid.UUID `db:"cancelled_by" json:"cancelled_by,omitempty"`
	CancelledAt  *time.Time `db:"cancelled_at" json:"cancelled_at,omitempty"`
	CancelReason string     `db:"cancel_reason" json:"cancel_reason,omitempty"`

	// Version guards effect-producing transitions against concurrent writers.
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Lines []InvoiceLine `db:"-" json:"lines"`
}

// PartyID returns the customer or supplier reference, whichever the kind uses.
func (i *Invoice) PartyID() uuid.UUID {
	if i.CustomerID != nil {
		return *i.CustomerID
	}
	if i.SupplierID != nil {
		return *i.SupplierID
	}
	return uuid.Nil
}

// InvoiceLine is one priced line of an invoice. Discount1 applies to
// quantity*unit_price; discount2 applies to the remainder after discount1.
// On return documents the computed amounts are negative, quantities positive.
type InvoiceLine struct {
	ID        uuid.UUID `db:"id" json:"id"`
	InvoiceID uuid.UUID `db:"invoice_id" json:"invoice_id"`
	LineNo    int       `db:"line_no" json:"line_no"`
	ItemID    uuid.UUID `db:"item_id" json:"item_id"`
	Warehouse string    `db:"warehouse" json:"warehouse,omitempty"`
	BatchNo   string    `db:"batch_no" json:"batch_no,omitempty"`

	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unit_price"`

	Discount1Pct   decimal.Decimal `db:"discount1_pct" json:"discount1_pct"`
	Discount1Fixed decimal.Decimal `db:"discount1_fixed" json:"discount1_fixed"`
	Discount2Pct   decimal.Decimal `db:"discount2_pct" json:"discount2_pct"`
	Discount2Fixed decimal.Decimal `db:"discount2_fixed" json:"discount2_fixed"`

	TaxCodes     TaxCodeList `db:"tax_codes" json:"tax_codes"`
	TaxInclusive bool        `db:"tax_inclusive" json:"tax_inclusive"`

	// Computed by the pricing calculator.
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount1Amount decimal.Decimal `db:"discount1_amount" json:"discount1_amount"`
	Discount2Amount decimal.Decimal `db:"discount2_amount" json:"discount2_amount"`
	TaxableAmount   decimal.Decimal `db:"taxable_amount" json:"taxable_amount"`
	TaxAmount       decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	LineTotal       decimal.Decimal `db:"line_total" json:"line_total"`
}

// StockMovement is one immutable, signed quantity change for an item at a
// warehouse. Movements are append-only; a reversal writes a new movement
// with the opposite sign and never deletes the original.
type StockMovement struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	ItemID    uuid.UUID       `db:"item_id" json:"item_id"`
	Warehouse string          `db:"warehouse" json:"warehouse,omitempty"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"` // signed
	Kind      MovementKind    `db:"kind" json:"kind"`
	RefKind   ReferenceKind   `db:"ref_kind" json:"ref_kind"`
	RefID     uuid.UUID       `db:"ref_id" json:"ref_id"`
	Note      string          `db:"note" json:"note,omitempty"`
	Actor     uuid.UUID       `db:"actor" json:"actor"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// LedgerEntry is one side of a double-entry posting. Entries are append-only
// and always written in balanced sets for a given reference document.
type LedgerEntry struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	Account   string          `db:"account" json:"account"`
	Direction EntryDirection  `db:"direction" json:"direction"`
	Amount    decimal.Decimal `db:"amount" json:"amount"` // always > 0
	RefKind   ReferenceKind   `db:"ref_kind" json:"ref_kind"`
	RefID     uuid.UUID       `db:"ref_id" json:"ref_id"`
	Memo      string          `db:"memo" json:"memo,omitempty"`
	Actor     uuid.UUID       `db:"actor" json:"actor"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Party is a customer or supplier account. Its running balance is derived
// from ledger entries, never stored as a counter.
type Party struct {
	ID               uuid.UUID       `db:"id" json:"id"`
	Kind             PartyKind       `db:"kind" json:"kind"`
	Name             string          `db:"name" json:"name"`
	Phone            string          `db:"phone" json:"phone,omitempty"`
	Email            string          `db:"email" json:"email,omitempty"`
	CreditLimit      decimal.Decimal `db:"credit_limit" json:"credit_limit"` // 0 = unlimited
	PaymentTermsDays int             `db:"payment_terms_days" json:"payment_terms_days"`
	IsActive         bool            `db:"is_active" json:"is_active"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// LedgerAccount returns the party's derived ledger account code.
func (p *Party) LedgerAccount() string {
	if p.Kind == PartySupplier {
		return PayableAccount(p.ID)
	}
	return ReceivableAccount(p.ID)
}

// Item is a catalog item with its current on-hand quantity. CurrentStock is
// only ever mutated through the stock ledger.
type Item struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	SKU            string          `db:"sku" json:"sku"`
	Name           string          `db:"name" json:"name"`
	Unit           string          `db:"unit" json:"unit"`
	UnitPrice      decimal.Decimal `db:"unit_price" json:"unit_price"`
	CurrentStock   decimal.Decimal `db:"current_stock" json:"current_stock"`
	DefaultTaxCode string          `db:"default_tax_code" json:"default_tax_code,omitempty"`
	IsActive       bool            `db:"is_active" json:"is_active"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// TaxCode is a configurable tax rate. Compound codes add previously computed
// tax into their base, in the order the caller lists them on a line.
type TaxCode struct {
	Code      string          `db:"code" json:"code"`
	Name      string          `db:"name" json:"name"`
	RatePct   decimal.Decimal `db:"rate_pct" json:"rate_pct"`
	Compound  bool            `db:"compound" json:"compound"`
	IsActive  bool            `db:"is_active" json:"is_active"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ReturnableLine is the remaining returnable quantity for one item of a
// confirmed invoice.
type ReturnableLine struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Ordered   decimal.Decimal `json:"ordered"`
	Returned  decimal.Decimal `json:"returned"`
	Remaining decimal.Decimal `json:"remaining"`
}
