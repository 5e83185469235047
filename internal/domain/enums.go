package domain

// InvoiceKind distinguishes the four document kinds handled by the engine.
type InvoiceKind string

const (
	KindSale           InvoiceKind = "sale"
	KindPurchase       InvoiceKind = "purchase"
	KindSaleReturn     InvoiceKind = "sale_return"
	KindPurchaseReturn InvoiceKind = "purchase_return"
)

// IsReturn reports whether the kind is one of the return kinds.
func (k InvoiceKind) IsReturn() bool {
	return k == KindSaleReturn || k == KindPurchaseReturn
}

// ReturnKind maps a forward kind to its return kind. Returns "" for kinds
// that have no return counterpart.
func (k InvoiceKind) ReturnKind() InvoiceKind {
	switch k {
	case KindSale:
		return KindSaleReturn
	case KindPurchase:
		return KindPurchaseReturn
	}
	return ""
}

// NumberPrefix returns the document-number prefix for the kind.
func (k InvoiceKind) NumberPrefix() string {
	switch k {
	case KindSale:
		return "INV"
	case KindPurchase:
		return "PUR"
	case KindSaleReturn:
		return "SRN"
	case KindPurchaseReturn:
		return "PRN"
	}
	return ""
}

// InvoiceStatus is the primary lifecycle state of a document.
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "draft"
	StatusConfirmed InvoiceStatus = "confirmed"
	StatusCancelled InvoiceStatus = "cancelled"
)

// PaymentStatus is the settlement axis, meaningful once a document is confirmed.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// PartyKind distinguishes customers from suppliers.
type PartyKind string

const (
	PartyCustomer PartyKind = "customer"
	PartySupplier PartyKind = "supplier"
)

// StockDirection is the direction of a stock ledger application.
type StockDirection string

const (
	StockIncrease StockDirection = "increase"
	StockDecrease StockDirection = "decrease"
)

// Opposite returns the reversing direction.
func (d StockDirection) Opposite() StockDirection {
	if d == StockIncrease {
		return StockDecrease
	}
	return StockIncrease
}

// MovementKind records why a stock movement was written.
type MovementKind string

const (
	MovementConfirmation MovementKind = "confirmation"
	MovementCancellation MovementKind = "cancellation"
	MovementReturn       MovementKind = "return"
)

// EntryDirection is one side of a double-entry posting.
type EntryDirection string

const (
	Debit  EntryDirection = "debit"
	Credit EntryDirection = "credit"
)

// ReferenceKind tags ledger entries and stock movements with the type of the
// document that produced them.
type ReferenceKind string

const (
	RefInvoice ReferenceKind = "invoice"
	RefReturn  ReferenceKind = "return"
)
