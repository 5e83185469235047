package port

import "context"

// Stores bundles the transaction-bound repositories handed to a unit of
// work closure. Everything accessed through one Stores value shares a
// single database transaction.
type Stores struct {
	Invoices  InvoiceRepository
	Movements StockMovementRepository
	Items     ItemRepository
	Parties   PartyRepository
	Ledger    LedgerRepository
	TaxCodes  TaxCodeRepository
	Numbers   NumberingService
}

// UnitOfWork runs a function inside one database transaction. The
// transaction commits when fn returns nil and rolls back otherwise, so a
// multi-step mutation (stock + ledger + status) either lands completely or
// not at all.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(s *Stores) error) error
}
