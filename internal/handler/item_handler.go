package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
	"tradebooks/internal/service"
)

// ItemHandler handles catalog item endpoints.
type ItemHandler struct {
	itemService service.ItemService
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(itemService service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// Create handles POST /api/v1/items
func (h *ItemHandler) Create(c *gin.Context) {
	var req struct {
		SKU            string          `json:"sku" binding:"required"`
		Name           string          `json:"name" binding:"required"`
		Unit           string          `json:"unit"`
		UnitPrice      decimal.Decimal `json:"unit_price"`
		OpeningStock   decimal.Decimal `json:"opening_stock"`
		DefaultTaxCode string          `json:"default_tax_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "sku and name are required")
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), &domain.Item{
		SKU:            req.SKU,
		Name:           req.Name,
		Unit:           req.Unit,
		UnitPrice:      req.UnitPrice,
		CurrentStock:   req.OpeningStock,
		DefaultTaxCode: req.DefaultTaxCode,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, item)
}

// List handles GET /api/v1/items
func (h *ItemHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	items, total, err := h.itemService.List(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, items, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/items/:id
func (h *ItemHandler) GetByID(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid item ID")
		return
	}

	item, err := h.itemService.Get(c.Request.Context(), itemID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, item)
}

// Update handles PUT /api/v1/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid item ID")
		return
	}

	var req struct {
		SKU            string          `json:"sku" binding:"required"`
		Name           string          `json:"name" binding:"required"`
		Unit           string          `json:"unit"`
		UnitPrice      decimal.Decimal `json:"unit_price"`
		DefaultTaxCode string          `json:"default_tax_code"`
		IsActive       *bool           `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "sku and name are required")
		return
	}

	item := &domain.Item{
		ID:             itemID,
		SKU:            req.SKU,
		Name:           req.Name,
		Unit:           req.Unit,
		UnitPrice:      req.UnitPrice,
		DefaultTaxCode: req.DefaultTaxCode,
		IsActive:       true,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	updated, err := h.itemService.Update(c.Request.Context(), item)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, updated)
}

// Movements handles GET /api/v1/items/:id/movements
func (h *ItemHandler) Movements(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid item ID")
		return
	}

	offset, limit := parsePagination(c)

	movements, total, err := h.itemService.Movements(c.Request.Context(), itemID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, movements, PagMeta{Total: total, Offset: offset, Limit: limit})
}
