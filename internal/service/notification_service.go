package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mzhuravlev/supplyhub-backend/internal/logger"
	"github.com/mzhuravlev/supplyhub-backend/internal/models"
	"github.com/mzhuravlev/supplyhub-backend/internal/pkg/apperror"
	"github.com/mzhuravlev/supplyhub-backend/internal/repository"
)

// NotificationRepo описывает хранилище уведомлений.
type NotificationRepo interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// WSNotifier интерфейс для отправки WebSocket уведомлений.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// NotificationService сохраняет уведомления и дублирует их в WebSocket.
// Реализует NotificationSink координатора торгов.
type NotificationService struct {
	repo NotificationRepo
	hub  WSNotifier
}

// NewNotificationService создаёт сервис уведомлений.
func NewNotificationService(repo NotificationRepo) *NotificationService {
	return &NotificationService{repo: repo}
}

// SetHub подключает WebSocket hub для мгновенной доставки.
func (s *NotificationService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// Notify сохраняет уведомление и, если подключен hub, доставляет его
// в открытые соединения пользователя.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("notification service: marshal payload: %w", err)
	}

	notification := &models.Notification{
		UserID:  userID,
		Event:   event,
		Payload: payload,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.hub != nil {
		if err := s.hub.BroadcastToUser(userID, event, notification); err != nil {
			// Пользователь офлайн или соединение закрыто: строка уже
			// сохранена, прочитает позже.
			if logger.Log != nil {
				logger.Log.WithField("user_id", userID).
					WithField("event", event).
					WithError(err).Debug("notification service: ws доставка не удалась")
			}
		}
	}

	return nil
}

// List возвращает уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, userID, limit, offset, unreadOnly)
}

// MarkAsRead отмечает уведомление прочитанным.
func (s *NotificationService) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, id, userID); err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "уведомление не найдено")
		}
		return err
	}
	return nil
}

// CountUnread возвращает число непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
