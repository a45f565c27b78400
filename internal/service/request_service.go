package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mzhuravlev/supplyhub-backend/internal/goroutine"
	"github.com/mzhuravlev/supplyhub-backend/internal/logger"
	"github.com/mzhuravlev/supplyhub-backend/internal/models"
	"github.com/mzhuravlev/supplyhub-backend/internal/pkg/apperror"
	"github.com/mzhuravlev/supplyhub-backend/internal/repository"
	"github.com/mzhuravlev/supplyhub-backend/internal/validation"
)

// RequestStore описывает взаимодействие сервиса с хранилищем заявок.
type RequestStore interface {
	Create(ctx context.Context, req *models.ServiceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
	List(ctx context.Context, params repository.ListFilterParams) (*repository.ListResult, error)
	Update(ctx context.Context, id uuid.UUID, fields repository.UpdateFields) (*models.ServiceRequest, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// EventRequestCreated публикуется после сохранения новой заявки.
const EventRequestCreated = "request.created"

// RequestService содержит бизнес-логику жизненного цикла заявок.
type RequestService struct {
	repo     RequestStore
	notifier NotificationSink
}

// NewRequestService создаёт сервис заявок.
func NewRequestService(repo RequestStore) *RequestService {
	return &RequestService{repo: repo}
}

// SetNotifier подключает канал уведомлений.
func (s *RequestService) SetNotifier(notifier NotificationSink) {
	s.notifier = notifier
}

// CreateRequestInput описывает входные данные новой заявки.
type CreateRequestInput struct {
	ClientID     uuid.UUID
	Title        string
	Description  string
	Category     string
	Priority     string
	BudgetMin    *float64
	BudgetMax    *float64
	DeadlineAt   *time.Time
	Location     *string
	Requirements *string
}

// UpdateRequestInput описывает частичное обновление заявки.
// nil-поле означает «не менять».
type UpdateRequestInput struct {
	RequestID       uuid.UUID
	Title           *string
	Description     *string
	Category        *string
	Priority        *string
	Status          *string
	BudgetMin       *float64
	BudgetMax       *float64
	DeadlineAt      *time.Time
	Location        *string
	Requirements    *string
	AssignedStaffID *uuid.UUID
}

// CreateRequest валидирует и сохраняет новую заявку в статусе draft.
func (s *RequestService) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.ServiceRequest, error) {
	if err := validation.ValidateLength("заголовок заявки", in.Title, validation.MinRequestTitleLength, validation.MaxRequestTitleLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание заявки", in.Description, validation.MinRequestDescriptionLength, validation.MaxRequestDescriptionLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	category := in.Category
	if category == "" {
		category = models.CategoryOther
	}
	if _, ok := models.ValidCategories[category]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестная категория %q", category))
	}

	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if _, ok := models.ValidPriorities[priority]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный приоритет %q", priority))
	}

	if err := validateBudgetRange(in.BudgetMin, in.BudgetMax); err != nil {
		return nil, err
	}
	if err := validateDeadline(in.DeadlineAt); err != nil {
		return nil, err
	}

	req := &models.ServiceRequest{
		ClientID:     in.ClientID,
		Title:        in.Title,
		Description:  in.Description,
		Category:     category,
		Priority:     priority,
		Status:       models.RequestStatusDraft,
		BudgetMin:    in.BudgetMin,
		BudgetMax:    in.BudgetMax,
		DeadlineAt:   in.DeadlineAt,
		Location:     in.Location,
		Requirements: in.Requirements,
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		created := *req
		goroutine.SafeGo(func() {
			nctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.notifier.Notify(nctx, created.ClientID, EventRequestCreated, &created); err != nil {
				if logger.Log != nil {
					logger.Log.WithField("request_id", created.ID).
						WithError(err).Warn("request service: уведомление не доставлено")
				}
			}
		})
	}

	return req, nil
}

// GetRequest возвращает заявку или nil, если её нет.
func (s *RequestService) GetRequest(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return req, nil
}

// ListRequests возвращает страницу заявок с фильтрацией.
func (s *RequestService) ListRequests(ctx context.Context, params repository.ListFilterParams) (*repository.ListResult, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Page <= 0 {
		params.Page = 1
	}

	if params.Status != "" {
		if _, ok := models.ValidRequestStatuses[params.Status]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный статус %q", params.Status))
		}
	}
	if params.Category != "" {
		if _, ok := models.ValidCategories[params.Category]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестная категория %q", params.Category))
		}
	}
	if params.Priority != "" {
		if _, ok := models.ValidPriorities[params.Priority]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный приоритет %q", params.Priority))
		}
	}

	return s.repo.List(ctx, params)
}

// UpdateRequest применяет частичное обновление. Возвращает nil, если заявки
// нет. Пустой патч отклоняется с NO_FIELDS_TO_UPDATE, бюджет и дедлайн
// проверяются по итоговым (слитым с текущими) значениям.
func (s *RequestService) UpdateRequest(ctx context.Context, in UpdateRequestInput) (*models.ServiceRequest, error) {
	fields := repository.UpdateFields{
		Title:           in.Title,
		Description:     in.Description,
		Category:        in.Category,
		Priority:        in.Priority,
		Status:          in.Status,
		BudgetMin:       in.BudgetMin,
		BudgetMax:       in.BudgetMax,
		DeadlineAt:      in.DeadlineAt,
		Location:        in.Location,
		Requirements:    in.Requirements,
		AssignedStaffID: in.AssignedStaffID,
	}
	if fields.IsEmpty() {
		return nil, apperror.ErrNoFieldsToUpdate
	}

	existing, err := s.repo.GetByID(ctx, in.RequestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if in.Title != nil {
		if err := validation.ValidateLength("заголовок заявки", *in.Title, validation.MinRequestTitleLength, validation.MaxRequestTitleLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if in.Description != nil {
		if err := validation.ValidateLength("описание заявки", *in.Description, validation.MinRequestDescriptionLength, validation.MaxRequestDescriptionLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if in.Category != nil {
		if _, ok := models.ValidCategories[*in.Category]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестная категория %q", *in.Category))
		}
	}
	if in.Priority != nil {
		if _, ok := models.ValidPriorities[*in.Priority]; !ok {
			return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный приоритет %q", *in.Priority))
		}
	}

	// Диапазон бюджета проверяется после слияния патча с текущими значениями:
	// patch c одним только budget_min обязан согласоваться с текущим budget_max.
	effectiveMin := existing.BudgetMin
	if in.BudgetMin != nil {
		effectiveMin = in.BudgetMin
	}
	effectiveMax := existing.BudgetMax
	if in.BudgetMax != nil {
		effectiveMax = in.BudgetMax
	}
	if err := validateBudgetRange(effectiveMin, effectiveMax); err != nil {
		return nil, err
	}
	if err := validateDeadline(in.DeadlineAt); err != nil {
		return nil, err
	}

	if in.Status != nil && *in.Status != existing.Status {
		if err := s.applyStatusTransition(existing, *in.Status, &fields); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, in.RequestID, fields)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			return nil, nil
		case errors.Is(err, repository.ErrNoFieldsToUpdate):
			return nil, apperror.ErrNoFieldsToUpdate
		}
		return nil, err
	}

	return updated, nil
}

// applyStatusTransition проверяет допустимость перехода и дополняет патч
// служебными полями ветки on_hold.
func (s *RequestService) applyStatusTransition(existing *models.ServiceRequest, next string, fields *repository.UpdateFields) error {
	if _, ok := models.ValidRequestStatuses[next]; !ok {
		return apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("неизвестный статус %q", next))
	}

	if !models.CanTransitionRequest(existing.Status, next) {
		return apperror.New(apperror.ErrCodeConflict,
			fmt.Sprintf("переход статуса %s -> %s запрещён", existing.Status, next))
	}

	switch {
	case next == models.RequestStatusOnHold:
		// Запоминаем прежний активный статус, чтобы вернуться именно в него.
		prior := existing.Status
		fields.StatusBeforeHold = &prior

	case existing.Status == models.RequestStatusOnHold:
		if next != models.RequestStatusCancelled {
			if existing.StatusBeforeHold == nil {
				return apperror.New(apperror.ErrCodeConflict, "заявка на паузе без сохранённого статуса возврата")
			}
			if next != *existing.StatusBeforeHold {
				return apperror.New(apperror.ErrCodeConflict,
					fmt.Sprintf("с паузы можно вернуться только в статус %s", *existing.StatusBeforeHold))
			}
		}
		fields.ClearBeforeHold = true
	}

	return nil
}

// DeleteRequest удаляет заявку. false без ошибки означает «не найдена»;
// заявка с поданными котировками удалению не подлежит.
func (s *RequestService) DeleteRequest(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			return false, nil
		case errors.Is(err, repository.ErrHasQuotations):
			return false, apperror.ErrHasQuotations
		}
		return false, err
	}
	return deleted, nil
}

// validateBudgetRange проверяет согласованность пары бюджетов.
func validateBudgetRange(min, max *float64) error {
	if min != nil {
		if err := validation.ValidateBudget("минимальный бюджет", *min); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if max != nil {
		if err := validation.ValidateBudget("максимальный бюджет", *max); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if min != nil && max != nil && *min > *max {
		return apperror.ErrInvalidBudgetRange
	}
	return nil
}

// validateDeadline требует строго будущего дедлайна.
func validateDeadline(deadline *time.Time) error {
	if deadline != nil && !deadline.After(time.Now()) {
		return apperror.ErrInvalidDeadline
	}
	return nil
}
