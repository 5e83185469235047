package main

import (
	"fmt"
	"log"

	"tradebooks/internal/config"
	"tradebooks/internal/handler"
	"tradebooks/internal/repository/postgres"
	"tradebooks/internal/router"
	"tradebooks/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Pool-bound store bundle for reads; the unit of work builds
	// transaction-bound bundles for mutations.
	stores := postgres.Stores(db)
	uow := postgres.NewUnitOfWork(db)

	// Initialize services
	taxCodeCache := service.NewTaxCodeCache(stores.TaxCodes)
	stockLedger := service.NewStockLedger()
	acctLedger := service.NewAccountingLedger()
	invoiceSvc := service.NewInvoiceService(uow, stores, stockLedger, acctLedger, taxCodeCache, cfg.Accounts)
	returnSvc := service.NewReturnService(uow, stores, stockLedger, acctLedger, cfg.Accounts)
	partySvc := service.NewPartyService(stores.Parties, stores.Ledger)
	itemSvc := service.NewItemService(stores.Items, stores.Movements, taxCodeCache)
	taxCodeSvc := service.NewTaxCodeService(stores.TaxCodes, taxCodeCache)

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc, returnSvc, stores)
	partyH := handler.NewPartyHandler(partySvc)
	itemH := handler.NewItemHandler(itemSvc)
	taxCodeH := handler.NewTaxCodeHandler(taxCodeSvc)
	exportH := handler.NewExportHandler(stores)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, invoiceH, partyH, itemH, taxCodeH, exportH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
