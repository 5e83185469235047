package router

import (
	"github.com/gin-gonic/gin"

	"tradebooks/internal/config"
	"tradebooks/internal/handler"
	"tradebooks/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	invoiceH *handler.InvoiceHandler,
	partyH *handler.PartyHandler,
	itemH *handler.ItemHandler,
	taxCodeH *handler.TaxCodeHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Mutations are audited, so they require the X-Actor header.
	actor := middleware.Actor()

	// Invoice lifecycle
	invoices := v1.Group("/invoices")
	invoices.POST("", actor, invoiceH.Create)
	invoices.GET("", invoiceH.List)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.PUT("/:id", actor, invoiceH.UpdateLines)
	invoices.DELETE("/:id", invoiceH.Delete)
	invoices.POST("/:id/confirm", actor, invoiceH.Confirm)
	invoices.POST("/:id/cancel", actor, invoiceH.Cancel)
	invoices.POST("/:id/pay", actor, invoiceH.MarkPaid)
	invoices.GET("/:id/returnable", invoiceH.Returnable)
	invoices.POST("/:id/returns", actor, invoiceH.CreateReturn)
	invoices.GET("/:id/movements", invoiceH.Movements)
	invoices.GET("/:id/ledger", invoiceH.LedgerEntries)

	// Parties
	parties := v1.Group("/parties")
	parties.POST("", partyH.Create)
	parties.GET("", partyH.List)
	parties.GET("/:id", partyH.GetByID)
	parties.PUT("/:id", partyH.Update)
	parties.GET("/:id/balance", partyH.Balance)

	// Items
	items := v1.Group("/items")
	items.POST("", itemH.Create)
	items.GET("", itemH.List)
	items.GET("/:id", itemH.GetByID)
	items.PUT("/:id", itemH.Update)
	items.GET("/:id/movements", itemH.Movements)

	// Tax codes
	taxCodes := v1.Group("/tax-codes")
	taxCodes.POST("", taxCodeH.Create)
	taxCodes.GET("", taxCodeH.List)
	taxCodes.PUT("/:code", taxCodeH.Update)
	taxCodes.DELETE("/:code", taxCodeH.Deactivate)

	// Exports
	exports := v1.Group("/exports")
	exports.GET("/ledger", exportH.Ledger)
	exports.GET("/movements", exportH.Movements)

	return r
}
