package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
	"tradebooks/internal/middleware"
	"tradebooks/internal/port"
	"tradebooks/internal/service"
)

// InvoiceHandler handles invoice lifecycle and return endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	returnService  service.ReturnService
	stores         *port.Stores
}

// NewInvoiceHandler creates a new InvoiceHandler. The store bundle serves
// the read-only trail endpoints.
func NewInvoiceHandler(invoiceService service.InvoiceService, returnService service.ReturnService, stores *port.Stores) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, returnService: returnService, stores: stores}
}

type lineRequest struct {
	ItemID         uuid.UUID        `json:"item_id" binding:"required"`
	Warehouse      string           `json:"warehouse"`
	BatchNo        string           `json:"batch_no"`
	Quantity       decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	Discount1Pct   decimal.Decimal  `json:"discount1_pct"`
	Discount1Fixed decimal.Decimal  `json:"discount1_fixed"`
	Discount2Pct   decimal.Decimal  `json:"discount2_pct"`
	Discount2Fixed decimal.Decimal  `json:"discount2_fixed"`
	TaxCodes       []string         `json:"tax_codes"`
	TaxInclusive   bool             `json:"tax_inclusive"`
}

func lineInputs(reqs []lineRequest) []service.InvoiceLineInput {
	lines := make([]service.InvoiceLineInput, 0, len(reqs))
	for _, r := range reqs {
		lines = append(lines, service.InvoiceLineInput{
			ItemID:         r.ItemID,
			Warehouse:      r.Warehouse,
			BatchNo:        r.BatchNo,
			Quantity:       r.Quantity,
			UnitPrice:      r.UnitPrice,
			Discount1Pct:   r.Discount1Pct,
			Discount1Fixed: r.Discount1Fixed,
			Discount2Pct:   r.Discount2Pct,
			Discount2Fixed: r.Discount2Fixed,
			TaxCodes:       r.TaxCodes,
			TaxInclusive:   r.TaxInclusive,
		})
	}
	return lines
}

// Create handles POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	actorID, err := middleware.GetActorID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_ACTOR", "missing actor context")
		return
	}

	var req struct {
		Kind              string        `json:"kind" binding:"required"`
		CustomerID        *uuid.UUID    `json:"customer_id"`
		SupplierID        *uuid.UUID    `json:"supplier_id"`
		AdjustmentAccount string        `json:"adjustment_account"`
		Notes             string        `json:"notes"`
		Lines             []lineRequest `json:"lines" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "kind and at least one line are required")
		return
	}

	inv, err := h.invoiceService.Create(c.Request.Context(), &service.CreateInvoiceInput{
		Kind:              domain.InvoiceKind(req.Kind),
		CustomerID:        req.CustomerID,
		SupplierID:        req.SupplierID,
		AdjustmentAccount: req.AdjustmentAccount,
		Notes:             req.Notes,
		Lines:             lineInputs(req.Lines),
		CreatedBy:         actorID,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	filter := port.ListInvoicesFilter{
		Kind:          domain.InvoiceKind(c.Query("kind")),
		Status:        domain.InvoiceStatus(c.Query("status")),
		PaymentStatus: domain.PaymentStatus(c.Query("payment_status")),
		Number:        c.Query("number"),
	}
	if raw := c.Query("party_id"); raw != "" {
		partyID, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid party ID")
			return
		}
		filter.PartyID = &partyID
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	inv, err := h.invoiceService.Get(c.Request.Context(), invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// UpdateLines handles PUT /api/v1/invoices/:id
func (h *InvoiceHandler) UpdateLines(c *gin.Context) {
	actorID, err := middleware.GetActorID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_ACTOR", "missing actor context")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	var req struct {
		AdjustmentAccount string        `json:"adjustment_account"`
		Notes             string        `json:"notes"`
		Lines             []lineRequest `json:"lines" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "at least one line is required")
		return
	}

	inv, err := h.invoiceService.UpdateLines(c.Request.Context(), &service.UpdateInvoiceInput{
		InvoiceID:         invoiceID,
		AdjustmentAccount: req.AdjustmentAccount,
		Notes:             req.Notes,
		Lines:             lineInputs(req.Lines),
		Actor:             actorID,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Delete handles DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), invoiceID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": true})
}

// Confirm handles POST /api/v1/invoices/:id/confirm
func (h *InvoiceHandler) Confirm(c *gin.Context) {
	actorID, err := middleware.GetActorID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_ACTOR", "missing actor context")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	inv, err := h.invoiceService.Confirm(c.Request.Context(), invoiceID, actorID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Cancel handles POST /api/v1/invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	actorID, err := middleware.GetActorID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_ACTOR", "missing actor context")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "reason is required")
		return
	}

	inv, err := h.invoiceService.Cancel(c.Request.Context(), invoiceID, actorID, req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// MarkPaid handles POST /api/v1/invoices/:id/pay
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	actorID, err := middleware.GetActorID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_ACTOR", "missing actor context")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	// Empty body = settle in full; an amount = partial payment.
	var req struct {
		Amount *decimal.Decimal `json:"amount"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid payment body")
			return
		}
	}

	var inv *domain.Invoice
	if req.Amount != nil {
		inv, err = h.invoiceService.MarkPartiallyPaid(c.Request.Context(), invoiceID, *req.Amount, actorID)
	} else {
		inv, err = h.invoiceService.MarkPaid(c.Request.Context(), invoiceID, actorID)
	}
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Returnable handles GET /api/v1/invoices/:id/returnable
func (h *InvoiceHandler) Returnable(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	lines, err := h.returnService.GetReturnable(c.Request.Context(), invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, lines)
}

// CreateReturn handles POST /api/v1/invoices/:id/returns
func (h *InvoiceHandler) CreateReturn(c *gin.Context) {
	actorID, err := middleware.GetActorID(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_ACTOR", "missing actor context")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
		Lines  []struct {
			ItemID   uuid.UUID       `json:"item_id" binding:"required"`
			Quantity decimal.Decimal `json:"quantity" binding:"required"`
		} `json:"lines" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "reason and at least one line are required")
		return
	}

	lines := make([]service.ReturnLineInput, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, service.ReturnLineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}

	ret, err := h.returnService.CreateReturn(c.Request.Context(), &service.CreateReturnInput{
		OriginalID: invoiceID,
		Lines:      lines,
		Reason:     req.Reason,
		Actor:      actorID,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, ret)
}

// Movements handles GET /api/v1/invoices/:id/movements
func (h *InvoiceHandler) Movements(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	movements, err := h.stores.Movements.ListByRef(c.Request.Context(), invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, movements)
}

// LedgerEntries handles GET /api/v1/invoices/:id/ledger
func (h *InvoiceHandler) LedgerEntries(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid invoice ID")
		return
	}

	entries, err := h.stores.Ledger.ListByRef(c.Request.Context(), invoiceID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, entries)
}
