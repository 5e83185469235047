package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tradebooks/internal/domain"
	"tradebooks/internal/export"
	"tradebooks/internal/port"
)

// exportPageSize caps one workbook at a single repository page.
const exportPageSize = 10000

// ExportHandler streams ledger and stock data as Excel workbooks.
type ExportHandler struct {
	stores *port.Stores
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(stores *port.Stores) *ExportHandler {
	return &ExportHandler{stores: stores}
}

func writeWorkbookHeaders(c *gin.Context, prefix string) {
	filename := fmt.Sprintf("%s-%s.xlsx", prefix, time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}

// Ledger handles GET /api/v1/exports/ledger
func (h *ExportHandler) Ledger(c *gin.Context) {
	var entries []domain.LedgerEntry
	var err error
	if account := c.Query("account"); account != "" {
		entries, _, err = h.stores.Ledger.ListByAccount(c.Request.Context(), account, 0, exportPageSize)
	} else {
		entries, _, err = h.stores.Ledger.List(c.Request.Context(), 0, exportPageSize)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	writeWorkbookHeaders(c, "ledger")
	if err := export.LedgerWorkbook(c.Writer, entries); err != nil {
		HandleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Movements handles GET /api/v1/exports/movements
func (h *ExportHandler) Movements(c *gin.Context) {
	var movements []domain.StockMovement
	var err error
	if raw := c.Query("item_id"); raw != "" {
		itemID, perr := uuid.Parse(raw)
		if perr != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid item ID")
			return
		}
		movements, _, err = h.stores.Movements.ListByItem(c.Request.Context(), itemID, 0, exportPageSize)
	} else {
		movements, _, err = h.stores.Movements.List(c.Request.Context(), 0, exportPageSize)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	writeWorkbookHeaders(c, "stock-movements")
	if err := export.StockMovementWorkbook(c.Writer, movements); err != nil {
		HandleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}
