package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mzhuravlev/supplyhub-backend/internal/models"
	"github.com/mzhuravlev/supplyhub-backend/internal/pkg/apperror"
	"github.com/mzhuravlev/supplyhub-backend/internal/repository"
)

type mockNotificationRepo struct {
	notifications []*models.Notification
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	n.ID = uuid.New()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotificationRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	var result []models.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, *n)
	}
	return result, nil
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type failingHub struct {
	calls int
}

func (h *failingHub) BroadcastToUser(userID uuid.UUID, event string, data interface{}) error {
	h.calls++
	return errors.New("пользователь офлайн")
}

func TestNotificationService_Notify(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo)
	hub := &failingHub{}
	svc.SetHub(hub)
	ctx := context.Background()

	userID := uuid.New()

	// Отказ ws-доставки не является ошибкой: строка уже сохранена.
	if err := svc.Notify(ctx, userID, EventQuotationReceived, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("отказ доставки не должен всплывать: %v", err)
	}
	if hub.calls != 1 {
		t.Fatalf("hub должен быть вызван один раз, вызвано %d", hub.calls)
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("уведомление должно быть сохранено, сохранено %d", len(repo.notifications))
	}
	if repo.notifications[0].Event != EventQuotationReceived {
		t.Fatalf("событие не совпадает: %s", repo.notifications[0].Event)
	}
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo)
	ctx := context.Background()

	userID := uuid.New()
	if err := svc.Notify(ctx, userID, EventQuotationAccepted, nil); err != nil {
		t.Fatalf("не удалось создать уведомление: %v", err)
	}

	unread, err := svc.CountUnread(ctx, userID)
	if err != nil || unread != 1 {
		t.Fatalf("ожидалось одно непрочитанное, получили %d (%v)", unread, err)
	}

	if err := svc.MarkAsRead(ctx, repo.notifications[0].ID, userID); err != nil {
		t.Fatalf("не удалось отметить прочитанным: %v", err)
	}
	unread, _ = svc.CountUnread(ctx, userID)
	if unread != 0 {
		t.Fatalf("после прочтения непрочитанных быть не должно, получили %d", unread)
	}

	// Чужое или несуществующее уведомление.
	err = svc.MarkAsRead(ctx, uuid.New(), userID)
	if apperror.CodeOf(err) != apperror.ErrCodeNotFound {
		t.Fatalf("ожидался код NOT_FOUND, получили %v", err)
	}
}
