package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mzhuravlev/supplyhub-backend/internal/models"
	"github.com/mzhuravlev/supplyhub-backend/internal/repository/common"
)

// Ошибки уровня репозитория.
var (
	ErrRequestNotFound    = errors.New("service request not found")
	ErrQuotationNotFound  = errors.New("quotation not found")
	ErrDuplicateQuotation = errors.New("quotation already exists for this supplier")
	ErrHasQuotations      = errors.New("request has quotations")
	ErrAlreadyResolved    = errors.New("request already has an accepted quotation")
	ErrNoFieldsToUpdate   = errors.New("no fields to update")
)

// RequestRepository отвечает за хранение заявок на услуги.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository создаёт новый экземпляр.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create сохраняет новую заявку и заполняет сгенерированные поля.
func (r *RequestRepository) Create(ctx context.Context, req *models.ServiceRequest) error {
	query := `
		INSERT INTO service_requests (client_id, title, description, category, priority, status,
		                              budget_min, budget_max, deadline_at, location, requirements)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx,
		query,
		req.ClientID,
		req.Title,
		req.Description,
		req.Category,
		req.Priority,
		req.Status,
		req.BudgetMin,
		req.BudgetMax,
		req.DeadlineAt,
		req.Location,
		req.Requirements,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return fmt.Errorf("request repository: insert %w", err)
	}

	return nil
}

// GetByID возвращает заявку вместе с отображаемыми именами клиента,
// назначенного поставщика и сотрудника, а также числом котировок.
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	query := `
		SELECT r.id, r.client_id, r.title, r.description, r.category, r.priority, r.status,
		       r.budget_min, r.budget_max, r.deadline_at, r.location, r.requirements,
		       r.assigned_supplier_id, r.assigned_staff_id, r.status_before_hold,
		       r.created_at, r.updated_at,
		       c.display_name  AS client_name,
		       s.display_name  AS supplier_name,
		       st.display_name AS staff_name,
		       (SELECT COUNT(*) FROM quotations q WHERE q.request_id = r.id) AS quotations_count
		FROM service_requests r
		JOIN users c ON c.id = r.client_id
		LEFT JOIN users s ON s.id = r.assigned_supplier_id
		LEFT JOIN users st ON st.id = r.assigned_staff_id
		WHERE r.id = $1
	`
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request repository: get by id %w", err)
	}
	return &req, nil
}

// ListFilterParams содержит параметры фильтрации и пагинации заявок.
// Все фильтры опциональны и объединяются по AND.
type ListFilterParams struct {
	Status     string
	Category   string
	Priority   string
	ClientID   *uuid.UUID
	SupplierID *uuid.UUID
	StaffID    *uuid.UUID
	Page       int
	Limit      int
}

// Pagination описывает метаданные страницы.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ListResult содержит страницу заявок и метаданные пагинации.
type ListResult struct {
	Requests   []models.ServiceRequest `json:"data"`
	Pagination Pagination              `json:"pagination"`
}

// List возвращает страницу заявок. Условия WHERE собираются один раз и
// применяются и к COUNT, и к выборке данных, чтобы total всегда
// соответствовал тем же предикатам, что и страница.
func (r *RequestRepository) List(ctx context.Context, params ListFilterParams) (*ListResult, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if params.Status != "" {
		where += fmt.Sprintf(" AND r.status = $%d", argIndex)
		args = append(args, params.Status)
		argIndex++
	}
	if params.Category != "" {
		where += fmt.Sprintf(" AND r.category = $%d", argIndex)
		args = append(args, params.Category)
		argIndex++
	}
	if params.Priority != "" {
		where += fmt.Sprintf(" AND r.priority = $%d", argIndex)
		args = append(args, params.Priority)
		argIndex++
	}
	if params.ClientID != nil {
		where += fmt.Sprintf(" AND r.client_id = $%d", argIndex)
		args = append(args, *params.ClientID)
		argIndex++
	}
	if params.SupplierID != nil {
		where += fmt.Sprintf(" AND r.assigned_supplier_id = $%d", argIndex)
		args = append(args, *params.SupplierID)
		argIndex++
	}
	if params.StaffID != nil {
		where += fmt.Sprintf(" AND r.assigned_staff_id = $%d", argIndex)
		args = append(args, *params.StaffID)
		argIndex++
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM service_requests r` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, fmt.Errorf("request repository: count %w", err)
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	// Новые заявки первыми; при равном created_at порядок стабилизируется по id.
	query := `
		SELECT r.id, r.client_id, r.title, r.description, r.category, r.priority, r.status,
		       r.budget_min, r.budget_max, r.deadline_at, r.location, r.requirements,
		       r.assigned_supplier_id, r.assigned_staff_id, r.status_before_hold,
		       r.created_at, r.updated_at
		FROM service_requests r` + where +
		fmt.Sprintf(" ORDER BY r.created_at DESC, r.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	var requests []models.ServiceRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("request repository: list %w", err)
	}

	totalPages := (total + limit - 1) / limit

	return &ListResult{
		Requests: requests,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateFields описывает частичное обновление заявки: nil-поле не трогается.
type UpdateFields struct {
	Title            *string
	Description      *string
	Category         *string
	Priority         *string
	Status           *string
	BudgetMin        *float64
	BudgetMax        *float64
	DeadlineAt       *time.Time
	Location         *string
	Requirements     *string
	AssignedStaffID  *uuid.UUID
	StatusBeforeHold *string
	ClearBeforeHold  bool
}

// IsEmpty сообщает, что вызывающий не передал ни одного поля.
func (f UpdateFields) IsEmpty() bool {
	return f.Title == nil && f.Description == nil && f.Category == nil &&
		f.Priority == nil && f.Status == nil && f.BudgetMin == nil &&
		f.BudgetMax == nil && f.DeadlineAt == nil && f.Location == nil &&
		f.Requirements == nil && f.AssignedStaffID == nil &&
		f.StatusBeforeHold == nil && !f.ClearBeforeHold
}

// Update применяет частичное обновление. SET собирается динамически из
// переданных полей; updated_at проставляется всегда.
func (r *RequestRepository) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (*models.ServiceRequest, error) {
	if fields.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	set := ""
	args := []interface{}{}
	argIndex := 1

	add := func(column string, value interface{}) {
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", column, argIndex)
		args = append(args, value)
		argIndex++
	}

	if fields.Title != nil {
		add("title", *fields.Title)
	}
	if fields.Description != nil {
		add("description", *fields.Description)
	}
	if fields.Category != nil {
		add("category", *fields.Category)
	}
	if fields.Priority != nil {
		add("priority", *fields.Priority)
	}
	if fields.Status != nil {
		add("status", *fields.Status)
	}
	if fields.BudgetMin != nil {
		add("budget_min", *fields.BudgetMin)
	}
	if fields.BudgetMax != nil {
		add("budget_max", *fields.BudgetMax)
	}
	if fields.DeadlineAt != nil {
		add("deadline_at", *fields.DeadlineAt)
	}
	if fields.Location != nil {
		add("location", *fields.Location)
	}
	if fields.Requirements != nil {
		add("requirements", *fields.Requirements)
	}
	if fields.AssignedStaffID != nil {
		add("assigned_staff_id", *fields.AssignedStaffID)
	}
	if fields.StatusBeforeHold != nil {
		add("status_before_hold", *fields.StatusBeforeHold)
	} else if fields.ClearBeforeHold {
		if set != "" {
			set += ", "
		}
		set += "status_before_hold = NULL"
	}

	set += ", updated_at = NOW()"

	query := fmt.Sprintf(`
		UPDATE service_requests
		SET %s
		WHERE id = $%d
		RETURNING id, client_id, title, description, category, priority, status,
		          budget_min, budget_max, deadline_at, location, requirements,
		          assigned_supplier_id, assigned_staff_id, status_before_hold,
		          created_at, updated_at
	`, set, argIndex)
	args = append(args, id)

	var req models.ServiceRequest
	if err := r.db.QueryRowxContext(ctx, query, args...).StructScan(&req); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request repository: update %w", err)
	}

	return &req, nil
}

// Delete удаляет заявку, у которой нет ни одной котировки. Проверка и
// удаление выполняются в одной транзакции: строка заявки блокируется,
// поэтому котировка не может появиться между проверкой и удалением
// (создание котировки блокирует ту же строку, см. QuotationRepository).
func (r *RequestRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted := false

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var status string
		if err := tx.GetContext(ctx, &status,
			`SELECT status FROM service_requests WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("request repository: lock for delete %w", err)
		}

		var count int
		if err := tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM quotations WHERE request_id = $1`, id); err != nil {
			return fmt.Errorf("request repository: count quotations %w", err)
		}
		if count > 0 {
			return ErrHasQuotations
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM service_requests WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("request repository: delete %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("request repository: delete rows affected %w", err)
		}
		deleted = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}
