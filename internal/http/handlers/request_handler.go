package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mzhuravlev/supplyhub-backend/internal/dto"
	"github.com/mzhuravlev/supplyhub-backend/internal/http/handlers/common"
	"github.com/mzhuravlev/supplyhub-backend/internal/models"
	"github.com/mzhuravlev/supplyhub-backend/internal/policy"
	"github.com/mzhuravlev/supplyhub-backend/internal/repository"
	"github.com/mzhuravlev/supplyhub-backend/internal/service"
)

type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler создаёт хэндлер заявок.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// CreateRequest обрабатывает POST /requests.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	if actor.Role != models.RoleClient && actor.Role != models.RoleAdmin {
		common.RespondForbidden(c, "только клиенты могут создавать заявки")
		return
	}

	var req dto.CreateServiceRequestRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deadline, err := parseRFC3339(req.DeadlineAt)
	if err != nil {
		common.RespondBadRequest(c, "deadline_at должен быть в формате RFC3339")
		return
	}

	created, err := h.requests.CreateRequest(c.Request.Context(), service.CreateRequestInput{
		ClientID:     actor.ID,
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Priority:     req.Priority,
		BudgetMin:    req.BudgetMin,
		BudgetMax:    req.BudgetMax,
		DeadlineAt:   deadline,
		Location:     req.Location,
		Requirements: req.Requirements,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, created)
}

// GetRequest обрабатывает GET /requests/:id.
func (h *RequestHandler) GetRequest(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	req, err := h.requests.GetRequest(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if req == nil {
		common.RespondNotFound(c, "заявка не найдена")
		return
	}

	if !policy.CanViewRequest(req, actor) {
		// Заявка вне видимости актора неотличима от несуществующей.
		common.RespondNotFound(c, "заявка не найдена")
		return
	}

	common.RespondJSON(c, http.StatusOK, req)
}

// ListRequests обрабатывает GET /requests. Видимость сужается по роли:
// клиент видит свои заявки, поставщик — витрину published (или свои
// назначенные при ?assigned=true), сотрудник — назначенные ему.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	page, limit := common.GetPagination(c)
	params := repository.ListFilterParams{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Priority: c.Query("priority"),
		Page:     page,
		Limit:    limit,
	}

	switch actor.Role {
	case models.RoleAdmin:
		if v := c.Query("client_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				common.RespondBadRequest(c, "client_id должен быть валидным UUID")
				return
			}
			params.ClientID = &id
		}
		if v := c.Query("supplier_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				common.RespondBadRequest(c, "supplier_id должен быть валидным UUID")
				return
			}
			params.SupplierID = &id
		}
	case models.RoleClient:
		clientID := actor.ID
		params.ClientID = &clientID
	case models.RoleSupplier:
		if c.Query("assigned") == "true" {
			supplierID := actor.ID
			params.SupplierID = &supplierID
		} else {
			params.Status = models.RequestStatusPublished
		}
	case models.RoleStaff:
		staffID := actor.ID
		params.StaffID = &staffID
	}

	result, err := h.requests.ListRequests(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.ServiceRequestListResponse{
		Data:       result.Requests,
		Pagination: result.Pagination,
	})
}

// UpdateRequest обрабатывает PATCH /requests/:id.
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	existing, err := h.requests.GetRequest(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if existing == nil {
		common.RespondNotFound(c, "заявка не найдена")
		return
	}
	if !policy.CanMutateRequest(existing, actor) {
		common.RespondForbidden(c, "нет прав на изменение заявки")
		return
	}

	var req dto.UpdateServiceRequestRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	deadline, err := parseRFC3339(req.DeadlineAt)
	if err != nil {
		common.RespondBadRequest(c, "deadline_at должен быть в формате RFC3339")
		return
	}

	var staffID *uuid.UUID
	if req.AssignedStaffID != nil {
		// Назначение сотрудника доступно только администратору.
		if actor.Role != models.RoleAdmin {
			common.RespondForbidden(c, "назначать сотрудника может только администратор")
			return
		}
		parsed, err := uuid.Parse(*req.AssignedStaffID)
		if err != nil {
			common.RespondBadRequest(c, "assigned_staff_id должен быть валидным UUID")
			return
		}
		staffID = &parsed
	}

	updated, err := h.requests.UpdateRequest(c.Request.Context(), service.UpdateRequestInput{
		RequestID:       id,
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Priority:        req.Priority,
		Status:          req.Status,
		BudgetMin:       req.BudgetMin,
		BudgetMax:       req.BudgetMax,
		DeadlineAt:      deadline,
		Location:        req.Location,
		Requirements:    req.Requirements,
		AssignedStaffID: staffID,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	if updated == nil {
		common.RespondNotFound(c, "заявка не найдена")
		return
	}

	common.RespondJSON(c, http.StatusOK, updated)
}

// DeleteRequest обрабатывает DELETE /requests/:id.
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	existing, err := h.requests.GetRequest(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if existing == nil {
		common.RespondNotFound(c, "заявка не найдена")
		return
	}
	if !policy.CanDeleteRequest(existing, actor) {
		common.RespondForbidden(c, "удалить можно только собственный черновик")
		return
	}

	deleted, err := h.requests.DeleteRequest(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.DeleteResponse{Deleted: deleted})
}

// parseRFC3339 разбирает опциональный таймстемп из тела запроса.
func parseRFC3339(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
