package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// System account codes used by the accounting ledger. Party-scoped
// receivable/payable accounts are derived per party, never stored as
// mutable balances.
const (
	AccountSales            = "SALES"
	AccountPurchases        = "PURCHASES"
	AccountTaxPayable       = "TAX_PAYABLE"
	AccountTaxReceivable    = "TAX_RECEIVABLE"
	AccountDiscountAllowed  = "DISCOUNT_ALLOWED"
	AccountDiscountReceived = "DISCOUNT_RECEIVED"
)

// ReceivableAccount returns the ledger account code for a customer's
// accounts-receivable subaccount.
func ReceivableAccount(partyID uuid.UUID) string {
	return fmt.Sprintf("AR:%s", partyID)
}

// PayableAccount returns the ledger account code for a supplier's
// accounts-payable subaccount.
func PayableAccount(partyID uuid.UUID) string {
	return fmt.Sprintf("AP:%s", partyID)
}
