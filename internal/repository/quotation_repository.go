package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/mzhuravlev/supplyhub-backend/internal/models"
	"github.com/mzhuravlev/supplyhub-backend/internal/repository/common"
)

// ErrRequestNotOpen возвращается при попытке подать или принять котировку
// для заявки вне статуса published.
var ErrRequestNotOpen = errors.New("request is not open for bidding")

// pqUniqueViolation — код ошибки PostgreSQL для нарушения уникальности.
const pqUniqueViolation = "23505"

// QuotationRepository отвечает за хранение котировок и выполняет
// транзакционный протокол их принятия.
type QuotationRepository struct {
	db *sqlx.DB
}

// NewQuotationRepository создаёт новый экземпляр.
func NewQuotationRepository(db *sqlx.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

// Create сохраняет котировку. Вся проверка выполняется в одной транзакции
// с блокировкой строки заявки: это сериализует создание относительно
// принятия котировок и удаления заявки. Уникальность пары
// (request_id, supplier_id) дополнительно закреплена индексом в схеме.
func (r *QuotationRepository) Create(ctx context.Context, q *models.Quotation) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var status string
		if err := tx.GetContext(ctx, &status,
			`SELECT status FROM service_requests WHERE id = $1 FOR UPDATE`, q.RequestID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("quotation repository: lock request %w", err)
		}
		if status != models.RequestStatusPublished {
			return ErrRequestNotOpen
		}

		var count int
		if err := tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM quotations WHERE request_id = $1 AND supplier_id = $2`,
			q.RequestID, q.SupplierID); err != nil {
			return fmt.Errorf("quotation repository: duplicate check %w", err)
		}
		if count > 0 {
			return ErrDuplicateQuotation
		}

		query := `
			INSERT INTO quotations (request_id, supplier_id, amount, description,
			                        estimated_duration, terms, status, valid_until)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowxContext(
			ctx,
			query,
			q.RequestID,
			q.SupplierID,
			q.Amount,
			q.Description,
			q.EstimatedDuration,
			q.Terms,
			q.Status,
			q.ValidUntil,
		).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
				return ErrDuplicateQuotation
			}
			return fmt.Errorf("quotation repository: insert %w", err)
		}
		return nil
	})
}

// GetByID возвращает котировку по идентификатору.
func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quotation, error) {
	var q models.Quotation
	query := `
		SELECT id, request_id, supplier_id, amount, description, estimated_duration,
		       terms, status, valid_until, created_at, updated_at
		FROM quotations
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &q, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuotationNotFound
		}
		return nil, fmt.Errorf("quotation repository: get by id %w", err)
	}
	return &q, nil
}

// ListForRequest возвращает все котировки заявки, старые первыми,
// с именем, компанией и рейтингом поставщика.
func (r *QuotationRepository) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]models.Quotation, error) {
	query := `
		SELECT q.id, q.request_id, q.supplier_id, q.amount, q.description,
		       q.estimated_duration, q.terms, q.status, q.valid_until,
		       q.created_at, q.updated_at,
		       u.display_name AS supplier_name,
		       u.company_name AS supplier_company,
		       u.rating       AS supplier_rating
		FROM quotations q
		JOIN users u ON u.id = q.supplier_id
		WHERE q.request_id = $1
		ORDER BY q.created_at ASC, q.id ASC
	`

	var quotations []models.Quotation
	if err := r.db.SelectContext(ctx, &quotations, query, requestID); err != nil {
		return nil, fmt.Errorf("quotation repository: list for request %w", err)
	}

	return quotations, nil
}

// Accept выполняет протокол принятия котировки одной транзакцией:
// блокирует строку родительской заявки, убеждается, что заявка всё ещё
// опубликована и принятой котировки нет, переводит всех pending-соперников в rejected,
// целевую котировку в accepted, а заявку в in_progress с назначенным
// поставщиком. Любая ошибка откатывает всё целиком.
//
// Порядок блокировок фиксирован: сначала строка заявки, затем строки
// котировок. Все мутаторы набора котировок берут ту же блокировку
// заявки, поэтому из двух конкурирующих принятий фиксируется первое,
// а второе видит accepted-строку и завершается ErrAlreadyResolved.
func (r *QuotationRepository) Accept(ctx context.Context, quotationID uuid.UUID) (*models.Quotation, error) {
	var accepted models.Quotation

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		var target struct {
			RequestID  uuid.UUID `db:"request_id"`
			SupplierID uuid.UUID `db:"supplier_id"`
		}
		if err := tx.GetContext(ctx, &target,
			`SELECT request_id, supplier_id FROM quotations WHERE id = $1`, quotationID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrQuotationNotFound
			}
			return fmt.Errorf("quotation repository: find target %w", err)
		}

		var requestStatus string
		if err := tx.GetContext(ctx, &requestStatus,
			`SELECT status FROM service_requests WHERE id = $1 FOR UPDATE`, target.RequestID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("quotation repository: lock request %w", err)
		}

		var acceptedCount int
		if err := tx.GetContext(ctx, &acceptedCount,
			`SELECT COUNT(*) FROM quotations WHERE request_id = $1 AND status = $2`,
			target.RequestID, models.QuotationStatusAccepted); err != nil {
			return fmt.Errorf("quotation repository: accepted check %w", err)
		}
		if acceptedCount > 0 {
			return ErrAlreadyResolved
		}
		if requestStatus != models.RequestStatusPublished {
			// Терминальная или приостановленная заявка не принимает
			// новых решений: completed и cancelled переходов не имеют,
			// on_hold сначала нужно возобновить.
			return ErrRequestNotOpen
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE quotations SET status = $1, updated_at = NOW()
			 WHERE request_id = $2 AND id <> $3 AND status = $4`,
			models.QuotationStatusRejected, target.RequestID, quotationID,
			models.QuotationStatusPending); err != nil {
			return fmt.Errorf("quotation repository: reject siblings %w", err)
		}

		query := `
			UPDATE quotations SET status = $1, updated_at = NOW()
			WHERE id = $2 AND status = $3
			RETURNING id, request_id, supplier_id, amount, description, estimated_duration,
			          terms, status, valid_until, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query,
			models.QuotationStatusAccepted, quotationID,
			models.QuotationStatusPending).StructScan(&accepted); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Целевая котировка уже rejected или expired.
				return ErrAlreadyResolved
			}
			return fmt.Errorf("quotation repository: accept target %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE service_requests
			 SET status = $1, assigned_supplier_id = $2, status_before_hold = NULL, updated_at = NOW()
			 WHERE id = $3`,
			models.RequestStatusInProgress, target.SupplierID, target.RequestID); err != nil {
			return fmt.Errorf("quotation repository: advance request %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &accepted, nil
}

// UpdateStatus переводит одну котировку в rejected или expired без
// побочных эффектов для заявки и соперников.
func (r *QuotationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Quotation, error) {
	query := `
		UPDATE quotations SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
		RETURNING id, request_id, supplier_id, amount, description, estimated_duration,
		          terms, status, valid_until, created_at, updated_at
	`

	var q models.Quotation
	err := r.db.QueryRowxContext(ctx, query, id, status, models.QuotationStatusPending).StructScan(&q)
	if err == nil {
		return &q, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quotation repository: update status %w", err)
	}

	// Строка не изменилась: различаем отсутствие и терминальный статус.
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM quotations WHERE id = $1)`, id); err != nil {
		return nil, fmt.Errorf("quotation repository: existence check %w", err)
	}
	if !exists {
		return nil, ErrQuotationNotFound
	}
	return nil, ErrAlreadyResolved
}

// CountForRequest возвращает число котировок по заявке.
func (r *QuotationRepository) CountForRequest(ctx context.Context, requestID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM quotations WHERE request_id = $1`, requestID); err != nil {
		return 0, fmt.Errorf("quotation repository: count for request %w", err)
	}
	return count, nil
}
