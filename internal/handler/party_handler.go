package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebooks/internal/domain"
	"tradebooks/internal/service"
)

// PartyHandler handles customer and supplier endpoints.
type PartyHandler struct {
	partyService service.PartyService
}

// NewPartyHandler creates a new PartyHandler.
func NewPartyHandler(partyService service.PartyService) *PartyHandler {
	return &PartyHandler{partyService: partyService}
}

type partyRequest struct {
	Kind             string          `json:"kind" binding:"required,oneof=customer supplier"`
	Name             string          `json:"name" binding:"required"`
	Phone            string          `json:"phone"`
	Email            string          `json:"email"`
	CreditLimit      decimal.Decimal `json:"credit_limit"`
	PaymentTermsDays int             `json:"payment_terms_days"`
}

// Create handles POST /api/v1/parties
func (h *PartyHandler) Create(c *gin.Context) {
	var req partyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "kind and name are required")
		return
	}

	party, err := h.partyService.Create(c.Request.Context(), &domain.Party{
		Kind:             domain.PartyKind(req.Kind),
		Name:             req.Name,
		Phone:            req.Phone,
		Email:            req.Email,
		CreditLimit:      req.CreditLimit,
		PaymentTermsDays: req.PaymentTermsDays,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, party)
}

// List handles GET /api/v1/parties
func (h *PartyHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	kind := domain.PartyKind(c.Query("kind"))

	parties, total, err := h.partyService.List(c.Request.Context(), kind, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, parties, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/parties/:id
func (h *PartyHandler) GetByID(c *gin.Context) {
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid party ID")
		return
	}

	party, err := h.partyService.Get(c.Request.Context(), partyID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, party)
}

// Update handles PUT /api/v1/parties/:id
func (h *PartyHandler) Update(c *gin.Context) {
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid party ID")
		return
	}

	var req struct {
		Name             string          `json:"name" binding:"required"`
		Phone            string          `json:"phone"`
		Email            string          `json:"email"`
		CreditLimit      decimal.Decimal `json:"credit_limit"`
		PaymentTermsDays int             `json:"payment_terms_days"`
		IsActive         *bool           `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required")
		return
	}

	party := &domain.Party{
		ID:               partyID,
		Name:             req.Name,
		Phone:            req.Phone,
		Email:            req.Email,
		CreditLimit:      req.CreditLimit,
		PaymentTermsDays: req.PaymentTermsDays,
		IsActive:         true,
	}
	if req.IsActive != nil {
		party.IsActive = *req.IsActive
	}

	updated, err := h.partyService.Update(c.Request.Context(), party)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, updated)
}

// Balance handles GET /api/v1/parties/:id/balance
func (h *PartyHandler) Balance(c *gin.Context) {
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid party ID")
		return
	}

	balance, err := h.partyService.Balance(c.Request.Context(), partyID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, balance)
}
