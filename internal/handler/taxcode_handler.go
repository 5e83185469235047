package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
	"tradebooks/internal/service"
)

// TaxCodeHandler handles tax code configuration endpoints.
type TaxCodeHandler struct {
	taxCodeService service.TaxCodeService
}

// NewTaxCodeHandler creates a new TaxCodeHandler.
func NewTaxCodeHandler(taxCodeService service.TaxCodeService) *TaxCodeHandler {
	return &TaxCodeHandler{taxCodeService: taxCodeService}
}

type taxCodeRequest struct {
	Code     string          `json:"code" binding:"required"`
	Name     string          `json:"name"`
	RatePct  decimal.Decimal `json:"rate_pct"`
	Compound bool            `json:"compound"`
}

// Create handles POST /api/v1/tax-codes
func (h *TaxCodeHandler) Create(c *gin.Context) {
	var req taxCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "code is required")
		return
	}

	tc := &domain.TaxCode{
		Code:     req.Code,
		Name:     req.Name,
		RatePct:  req.RatePct,
		Compound: req.Compound,
		IsActive: true,
	}
	if err := h.taxCodeService.Create(c.Request.Context(), tc); err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, tc)
}

// List handles GET /api/v1/tax-codes
func (h *TaxCodeHandler) List(c *gin.Context) {
	codes, err := h.taxCodeService.List(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, codes)
}

// Update handles PUT /api/v1/tax-codes/:code
func (h *TaxCodeHandler) Update(c *gin.Context) {
	var req struct {
		Name     string          `json:"name"`
		RatePct  decimal.Decimal `json:"rate_pct"`
		Compound bool            `json:"compound"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid tax code body")
		return
	}

	tc := &domain.TaxCode{
		Code:     c.Param("code"),
		Name:     req.Name,
		RatePct:  req.RatePct,
		Compound: req.Compound,
		IsActive: true,
	}
	if err := h.taxCodeService.Update(c.Request.Context(), tc); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, tc)
}

// Deactivate handles DELETE /api/v1/tax-codes/:code
func (h *TaxCodeHandler) Deactivate(c *gin.Context) {
	if err := h.taxCodeService.Deactivate(c.Request.Context(), c.Param("code")); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deactivated": true})
}
