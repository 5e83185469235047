package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness handles GET /healthz. Process-alive only, no dependency checks.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "tradebooks"})
}

// Readiness handles GET /readyz. Ready means the ledger database answers
// and the schema is migrated far enough to issue document numbers; without
// document_sequences every confirmation path fails.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{"database": "ok", "schema": "ok"}

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unreachable"
		checks["schema"] = "unknown"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
		return
	}

	var sequences int
	if err := h.db.GetContext(ctx, &sequences, "SELECT COUNT(*) FROM document_sequences"); err != nil {
		checks["schema"] = "not migrated"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "checks": checks})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}
