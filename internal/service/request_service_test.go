package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mzhuravlev/supplyhub-backend/internal/models"
	"github.com/mzhuravlev/supplyhub-backend/internal/pkg/apperror"
	"github.com/mzhuravlev/supplyhub-backend/internal/repository"
)

// mockRequestStore хранит заявки в map и применяет патчи так же,
// как это делает реальное хранилище.
type mockRequestStore struct {
	requests       map[uuid.UUID]*models.ServiceRequest
	quotationCount map[uuid.UUID]int
}

func newMockRequestStore() *mockRequestStore {
	return &mockRequestStore{
		requests:       make(map[uuid.UUID]*models.ServiceRequest),
		quotationCount: make(map[uuid.UUID]int),
	}
}

func (m *mockRequestStore) Create(ctx context.Context, req *models.ServiceRequest) error {
	req.ID = uuid.New()
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt
	stored := *req
	m.requests[req.ID] = &stored
	return nil
}

func (m *mockRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	if req, ok := m.requests[id]; ok {
		copied := *req
		return &copied, nil
	}
	return nil, repository.ErrRequestNotFound
}

func (m *mockRequestStore) List(ctx context.Context, params repository.ListFilterParams) (*repository.ListResult, error) {
	var data []models.ServiceRequest
	for _, req := range m.requests {
		if params.Status != "" && req.Status != params.Status {
			continue
		}
		data = append(data, *req)
	}
	return &repository.ListResult{Requests: data}, nil
}

func (m *mockRequestStore) Update(ctx context.Context, id uuid.UUID, fields repository.UpdateFields) (*models.ServiceRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	if fields.IsEmpty() {
		return nil, repository.ErrNoFieldsToUpdate
	}
	if fields.Title != nil {
		req.Title = *fields.Title
	}
	if fields.Status != nil {
		req.Status = *fields.Status
	}
	if fields.BudgetMin != nil {
		req.BudgetMin = fields.BudgetMin
	}
	if fields.BudgetMax != nil {
		req.BudgetMax = fields.BudgetMax
	}
	if fields.StatusBeforeHold != nil {
		req.StatusBeforeHold = fields.StatusBeforeHold
	} else if fields.ClearBeforeHold {
		req.StatusBeforeHold = nil
	}
	req.UpdatedAt = time.Now()
	copied := *req
	return &copied, nil
}

func (m *mockRequestStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if _, ok := m.requests[id]; !ok {
		return false, repository.ErrRequestNotFound
	}
	if m.quotationCount[id] > 0 {
		return false, repository.ErrHasQuotations
	}
	delete(m.requests, id)
	return true, nil
}

func ptrFloat(v float64) *float64 { return &v }
func ptrString(v string) *string  { return &v }

func createDraft(t *testing.T, svc *RequestService) *models.ServiceRequest {
	t.Helper()
	req, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		ClientID:    uuid.New(),
		Title:       "Поставка комплектующих",
		Description: "Нужна регулярная поставка комплектующих на склад.",
	})
	if err != nil {
		t.Fatalf("не удалось создать заявку: %v", err)
	}
	return req
}

func TestRequestService_Create(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store)
	ctx := context.Background()

	req := createDraft(t, svc)
	if req.Status != models.RequestStatusDraft {
		t.Fatalf("новая заявка должна быть черновиком, статус %s", req.Status)
	}
	if req.Category != models.CategoryOther || req.Priority != models.PriorityMedium {
		t.Fatalf("ожидались значения по умолчанию, получили %s/%s", req.Category, req.Priority)
	}

	// Слишком короткий заголовок.
	_, err := svc.CreateRequest(ctx, CreateRequestInput{
		ClientID:    uuid.New(),
		Title:       "ab",
		Description: strings.Repeat("о", 20),
	})
	if apperror.CodeOf(err) != apperror.ErrCodeValidation {
		t.Fatalf("ожидалась ошибка валидации заголовка, получили %v", err)
	}

	// min > max.
	_, err = svc.CreateRequest(ctx, CreateRequestInput{
		ClientID:    uuid.New(),
		Title:       "Поставка",
		Description: strings.Repeat("о", 20),
		BudgetMin:   ptrFloat(500),
		BudgetMax:   ptrFloat(100),
	})
	if apperror.CodeOf(err) != apperror.ErrCodeInvalidBudgetRange {
		t.Fatalf("ожидался код INVALID_BUDGET_RANGE, получили %v", err)
	}

	// Дедлайн в прошлом.
	past := time.Now().Add(-time.Hour)
	_, err = svc.CreateRequest(ctx, CreateRequestInput{
		ClientID:    uuid.New(),
		Title:       "Поставка",
		Description: strings.Repeat("о", 20),
		DeadlineAt:  &past,
	})
	if apperror.CodeOf(err) != apperror.ErrCodeInvalidDeadline {
		t.Fatalf("ожидался код INVALID_DEADLINE, получили %v", err)
	}
}

func TestRequestService_UpdateEmptyPatch(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store)

	req := createDraft(t, svc)

	_, err := svc.UpdateRequest(context.Background(), UpdateRequestInput{RequestID: req.ID})
	if apperror.CodeOf(err) != apperror.ErrCodeNoFieldsToUpdate {
		t.Fatalf("ожидался код NO_FIELDS_TO_UPDATE, получили %v", err)
	}
}

func TestRequestService_UpdateMergedBudget(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store)
	ctx := context.Background()

	req := createDraft(t, svc)
	if _, err := svc.UpdateRequest(ctx, UpdateRequestInput{
		RequestID: req.ID,
		BudgetMin: ptrFloat(100),
		BudgetMax: ptrFloat(200),
	}); err != nil {
		t.Fatalf("не удалось задать бюджет: %v", err)
	}

	// Патч только с budget_min сверяется с сохранённым budget_max.
	_, err := svc.UpdateRequest(ctx, UpdateRequestInput{
		RequestID: req.ID,
		BudgetMin: ptrFloat(300),
	})
	if apperror.CodeOf(err) != apperror.ErrCodeInvalidBudgetRange {
		t.Fatalf("ожидался код INVALID_BUDGET_RANGE, получили %v", err)
	}

	// Согласованный патч проходит.
	updated, err := svc.UpdateRequest(ctx, UpdateRequestInput{
		RequestID: req.ID,
		BudgetMin: ptrFloat(150),
	})
	if err != nil {
		t.Fatalf("согласованный патч не прошёл: %v", err)
	}
	if updated.BudgetMin == nil || *updated.BudgetMin != 150 {
		t.Fatalf("бюджет не применился: %+v", updated.BudgetMin)
	}
}

func TestRequestService_UpdateNotFound(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store)

	updated, err := svc.UpdateRequest(context.Background(), UpdateRequestInput{
		RequestID: uuid.New(),
		Title:     ptrString("Новый заголовок"),
	})
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if updated != nil {
		t.Fatalf("для отсутствующей заявки ожидался nil")
	}
}

func TestRequestService_StatusTransitions(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store)
	ctx := context.Background()

	req := createDraft(t, svc)

	setStatus := func(status string) (*models.ServiceRequest, error) {
		return svc.UpdateRequest(ctx, UpdateRequestInput{
			RequestID: req.ID,
			Status:    ptrString(status),
		})
	}

	// draft -> in_progress запрещён: публикация обязательна.
	if _, err := setStatus(models.RequestStatusInProgress); apperror.CodeOf(err) != apperror.ErrCodeConflict {
		t.Fatalf("ожидался конфликт для draft -> in_progress, получили %v", err)
	}

	if _, err := setStatus(models.RequestStatusPublished); err != nil {
		t.Fatalf("публикация не прошла: %v", err)
	}

	// Пауза запоминает статус возврата.
	updated, err := setStatus(models.RequestStatusOnHold)
	if err != nil {
		t.Fatalf("пауза не прошла: %v", err)
	}
	if updated.StatusBeforeHold == nil || *updated.StatusBeforeHold != models.RequestStatusPublished {
		t.Fatalf("пауза должна запомнить прежний статус, получили %+v", updated.StatusBeforeHold)
	}

	// Вернуться можно только в сохранённый статус.
	if _, err := setStatus(models.RequestStatusInProgress); apperror.CodeOf(err) != apperror.ErrCodeConflict {
		t.Fatalf("ожидался конфликт возврата в чужой статус, получили %v", err)
	}

	updated, err = setStatus(models.RequestStatusPublished)
	if err != nil {
		t.Fatalf("возврат с паузы не прошёл: %v", err)
	}
	if updated.StatusBeforeHold != nil {
		t.Fatalf("после возврата сохранённый статус должен очищаться")
	}

	// Из терминального статуса выхода нет.
	if _, err := setStatus(models.RequestStatusCancelled); err != nil {
		t.Fatalf("отмена не прошла: %v", err)
	}
	if _, err := setStatus(models.RequestStatusPublished); apperror.CodeOf(err) != apperror.ErrCodeConflict {
		t.Fatalf("ожидался конфликт выхода из cancelled, получили %v", err)
	}
}

func TestRequestService_Delete(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store)
	ctx := context.Background()

	req := createDraft(t, svc)

	// Заявка с котировками не удаляется.
	store.quotationCount[req.ID] = 2
	_, err := svc.DeleteRequest(ctx, req.ID)
	if apperror.CodeOf(err) != apperror.ErrCodeHasQuotations {
		t.Fatalf("ожидался код HAS_QUOTATIONS, получили %v", err)
	}

	store.quotationCount[req.ID] = 0
	deleted, err := svc.DeleteRequest(ctx, req.ID)
	if err != nil || !deleted {
		t.Fatalf("удаление не прошло: deleted=%v err=%v", deleted, err)
	}

	// Повторное удаление — «не найдена», без ошибки.
	deleted, err = svc.DeleteRequest(ctx, req.ID)
	if err != nil || deleted {
		t.Fatalf("повторное удаление должно вернуть false без ошибки: deleted=%v err=%v", deleted, err)
	}
}

func TestRequestService_CreateNotifies(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store)
	sink := &chanSink{events: make(chan string, 1)}
	svc.SetNotifier(sink)

	createDraft(t, svc)

	select {
	case got := <-sink.events:
		if got != EventRequestCreated {
			t.Fatalf("ожидалось событие %s, получили %s", EventRequestCreated, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("не дождались события о создании заявки")
	}
}

func TestRequestService_ListValidatesFilters(t *testing.T) {
	store := newMockRequestStore()
	svc := NewRequestService(store)

	_, err := svc.ListRequests(context.Background(), repository.ListFilterParams{Status: "archived"})
	if apperror.CodeOf(err) != apperror.ErrCodeValidation {
		t.Fatalf("ожидалась ошибка валидации фильтра, получили %v", err)
	}
}
