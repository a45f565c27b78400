package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mzhuravlev/supplyhub-backend/internal/dto"
	"github.com/mzhuravlev/supplyhub-backend/internal/http/handlers/common"
	"github.com/mzhuravlev/supplyhub-backend/internal/models"
	"github.com/mzhuravlev/supplyhub-backend/internal/policy"
	"github.com/mzhuravlev/supplyhub-backend/internal/service"
)

type QuotationHandler struct {
	negotiation *service.NegotiationService
	requests    *service.RequestService
}

// NewQuotationHandler создаёт хэндлер котировок.
func NewQuotationHandler(negotiation *service.NegotiationService, requests *service.RequestService) *QuotationHandler {
	return &QuotationHandler{negotiation: negotiation, requests: requests}
}

// CreateQuotation обрабатывает POST /requests/:id/quotations.
func (h *QuotationHandler) CreateQuotation(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	if !policy.CanQuote(actor) {
		common.RespondForbidden(c, "подавать котировки могут только поставщики")
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.CreateQuotationRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	validUntil, err := parseRFC3339(req.ValidUntil)
	if err != nil {
		common.RespondBadRequest(c, "valid_until должен быть в формате RFC3339")
		return
	}

	q, err := h.negotiation.CreateQuotation(c.Request.Context(), service.QuotationInput{
		RequestID:         requestID,
		SupplierID:        actor.ID,
		Amount:            req.Amount,
		Description:       req.Description,
		EstimatedDuration: req.EstimatedDuration,
		Terms:             req.Terms,
		ValidUntil:        validUntil,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, q)
}

// ListQuotations обрабатывает GET /requests/:id/quotations.
// Владелец заявки, администратор и назначенные видят весь набор,
// поставщик — только собственную котировку.
func (h *QuotationHandler) ListQuotations(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	req, err := h.requests.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if req == nil || !policy.CanViewRequest(req, actor) {
		common.RespondNotFound(c, "заявка не найдена")
		return
	}

	quotations, err := h.negotiation.ListQuotations(c.Request.Context(), requestID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if actor.Role == models.RoleSupplier {
		own := make([]models.Quotation, 0, 1)
		for _, q := range quotations {
			if q.SupplierID == actor.ID {
				own = append(own, q)
			}
		}
		quotations = own
	}

	common.RespondJSON(c, http.StatusOK, dto.QuotationListResponse{Data: quotations})
}

// ResolveQuotation обрабатывает POST /requests/:id/quotations/:quotationId/resolve.
func (h *QuotationHandler) ResolveQuotation(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	if !policy.CanResolveQuotation(actor) {
		common.RespondForbidden(c, "решение по котировке принимает клиент или администратор")
		return
	}

	requestID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	quotationID, err := common.ParseUUIDParam(c, "quotationId")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	req, err := h.requests.GetRequest(c.Request.Context(), requestID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if req == nil {
		common.RespondNotFound(c, "заявка не найдена")
		return
	}
	if actor.Role == models.RoleClient && req.ClientID != actor.ID {
		common.RespondForbidden(c, "нет прав на заявку")
		return
	}

	var body dto.ResolveQuotationRequest
	if err := common.BindAndValidate(c, &body); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	resolved, err := h.negotiation.ResolveQuotation(c.Request.Context(), requestID, quotationID, body.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if resolved == nil {
		common.RespondNotFound(c, "котировка не найдена")
		return
	}

	common.RespondJSON(c, http.StatusOK, resolved)
}
