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

// QuotationLedger описывает взаимодействие координатора с хранилищем котировок.
type QuotationLedger interface {
	Create(ctx context.Context, q *models.Quotation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error)
	ListForRequest(ctx context.Context, requestID uuid.UUID) ([]models.Quotation, error)
	Accept(ctx context.Context, quotationID uuid.UUID) (*models.Quotation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Quotation, error)
}

// RequestReader читает заявки — координатору не нужны мутации хранилища
// заявок, перевод статуса выполняется внутри транзакции Accept.
type RequestReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error)
}

// NotificationSink доставляет уведомления затронутым сторонам.
// Доставка не участвует в транзакции: её отказ не откатывает сделку.
type NotificationSink interface {
	Notify(ctx context.Context, userID uuid.UUID, event string, data interface{}) error
}

// События, публикуемые координатором.
const (
	EventQuotationReceived = "quotation.received"
	EventQuotationAccepted = "quotation.accepted"
	EventQuotationRejected = "quotation.rejected"
	EventQuotationExpired  = "quotation.expired"
)

// NegotiationService реализует протокол торгов: подачу котировок
// и транзакционное принятие одной из них.
type NegotiationService struct {
	quotations QuotationLedger
	requests   RequestReader
	notifier   NotificationSink
}

// NewNegotiationService создаёт координатор торгов.
func NewNegotiationService(quotations QuotationLedger, requests RequestReader) *NegotiationService {
	return &NegotiationService{
		quotations: quotations,
		requests:   requests,
	}
}

// SetNotifier подключает канал уведомлений. Без него координатор
// работает молча.
func (s *NegotiationService) SetNotifier(notifier NotificationSink) {
	s.notifier = notifier
}

// QuotationInput описывает подаваемую котировку.
type QuotationInput struct {
	RequestID         uuid.UUID
	SupplierID        uuid.UUID
	Amount            float64
	Description       *string
	EstimatedDuration *string
	Terms             *string
	ValidUntil        *time.Time
}

// CreateQuotation подаёт котировку по опубликованной заявке.
// Повторная подача тем же поставщиком отклоняется с DUPLICATE_QUOTATION.
func (s *NegotiationService) CreateQuotation(ctx context.Context, in QuotationInput) (*models.Quotation, error) {
	if err := validation.ValidateBudget("сумма котировки", in.Amount); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.ValidUntil != nil && !in.ValidUntil.After(time.Now()) {
		return nil, apperror.New(apperror.ErrCodeValidation, "срок действия котировки должен быть в будущем")
	}
	if in.Description != nil {
		if err := validation.ValidateLength("описание котировки", *in.Description, 0, validation.MaxQuotationDescriptionLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if in.Terms != nil {
		if err := validation.ValidateLength("условия котировки", *in.Terms, 0, validation.MaxTermsLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	req, err := s.requests.GetByID(ctx, in.RequestID)
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, err
	}
	if req.ClientID == in.SupplierID {
		return nil, apperror.New(apperror.ErrCodeForbidden, "нельзя подать котировку на собственную заявку")
	}

	q := &models.Quotation{
		RequestID:         in.RequestID,
		SupplierID:        in.SupplierID,
		Amount:            in.Amount,
		Description:       in.Description,
		EstimatedDuration: in.EstimatedDuration,
		Terms:             in.Terms,
		Status:            models.QuotationStatusPending,
		ValidUntil:        in.ValidUntil,
	}

	if err := s.quotations.Create(ctx, q); err != nil {
		switch {
		case errors.Is(err, repository.ErrRequestNotFound):
			return nil, apperror.ErrRequestNotFound
		case errors.Is(err, repository.ErrDuplicateQuotation):
			return nil, apperror.ErrDuplicateQuotation
		case errors.Is(err, repository.ErrRequestNotOpen):
			return nil, apperror.New(apperror.ErrCodeConflict,
				fmt.Sprintf("заявка в статусе %s не принимает котировки", req.Status))
		}
		return nil, err
	}

	s.notifyAsync(req.ClientID, EventQuotationReceived, q)

	return q, nil
}

// ListQuotations возвращает все котировки заявки, старые первыми.
func (s *NegotiationService) ListQuotations(ctx context.Context, requestID uuid.UUID) ([]models.Quotation, error) {
	if _, err := s.requests.GetByID(ctx, requestID); err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, apperror.ErrRequestNotFound
		}
		return nil, err
	}
	return s.quotations.ListForRequest(ctx, requestID)
}

// GetQuotation возвращает котировку заявки или nil, если её нет.
// Котировка, числящаяся за другой заявкой, считается не найденной:
// связь проверяется по сохранённому request_id, а не на доверии к вызывающему.
func (s *NegotiationService) GetQuotation(ctx context.Context, requestID, quotationID uuid.UUID) (*models.Quotation, error) {
	q, err := s.quotations.GetByID(ctx, quotationID)
	if err != nil {
		if errors.Is(err, repository.ErrQuotationNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if q.RequestID != requestID {
		return nil, nil
	}
	return q, nil
}

// ResolveQuotation переводит котировку в терминальный статус.
// accepted запускает атомарный протокол принятия: остальные pending
// котировки отклоняются, заявка уходит в in_progress с назначенным
// поставщиком. rejected/expired — одиночное обновление строки.
// Возвращает nil, если котировка не найдена или не принадлежит заявке.
func (s *NegotiationService) ResolveQuotation(ctx context.Context, requestID, quotationID uuid.UUID, targetStatus string) (*models.Quotation, error) {
	if !models.IsTerminalQuotationStatus(targetStatus) {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("недопустимый целевой статус котировки %q", targetStatus))
	}

	existing, err := s.GetQuotation(ctx, requestID, quotationID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	var resolved *models.Quotation
	if targetStatus == models.QuotationStatusAccepted {
		resolved, err = s.quotations.Accept(ctx, quotationID)
	} else {
		resolved, err = s.quotations.UpdateStatus(ctx, quotationID, targetStatus)
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrQuotationNotFound):
			return nil, nil
		case errors.Is(err, repository.ErrAlreadyResolved):
			return nil, apperror.ErrAlreadyResolved
		case errors.Is(err, repository.ErrRequestNotOpen):
			return nil, apperror.New(apperror.ErrCodeConflict,
				"заявка больше не принимает решений по котировкам")
		}
		return nil, err
	}

	s.notifyResolution(ctx, requestID, resolved, targetStatus)

	return resolved, nil
}

// notifyResolution рассылает итог торгов затронутым сторонам.
func (s *NegotiationService) notifyResolution(ctx context.Context, requestID uuid.UUID, resolved *models.Quotation, targetStatus string) {
	if s.notifier == nil {
		return
	}

	event := EventQuotationRejected
	switch targetStatus {
	case models.QuotationStatusAccepted:
		event = EventQuotationAccepted
	case models.QuotationStatusExpired:
		event = EventQuotationExpired
	}

	s.notifyAsync(resolved.SupplierID, event, resolved)

	// При принятии проигравшие поставщики узнают об отклонении своих котировок.
	if targetStatus == models.QuotationStatusAccepted {
		siblings, err := s.quotations.ListForRequest(ctx, requestID)
		if err != nil {
			if logger.Log != nil {
				logger.Log.WithField("request_id", requestID).
					WithError(err).Warn("negotiation service: не удалось получить котировки для рассылки")
			}
			return
		}
		for i := range siblings {
			q := siblings[i]
			if q.ID == resolved.ID || q.Status != models.QuotationStatusRejected {
				continue
			}
			s.notifyAsync(q.SupplierID, EventQuotationRejected, &q)
		}
	}
}

// notifyAsync отправляет уведомление в фоне; отказ доставки только логируется.
func (s *NegotiationService) notifyAsync(userID uuid.UUID, event string, data interface{}) {
	if s.notifier == nil {
		return
	}
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, userID, event, data); err != nil {
			if logger.Log != nil {
				logger.Log.WithField("user_id", userID).
					WithField("event", event).
					WithError(err).Warn("negotiation service: уведомление не доставлено")
			}
		}
	})
}
