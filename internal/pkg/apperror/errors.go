package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabase     ErrorCode = "DATABASE_ERROR"

	// Коды переговорного ядра. Validation-коды — ошибки входных данных,
	// conflict-коды — легитимные состояния конкурентного доступа:
	// вызывающий перечитывает состояние и сам решает, повторять ли запрос.
	ErrCodeInvalidBudgetRange ErrorCode = "INVALID_BUDGET_RANGE"
	ErrCodeInvalidDeadline    ErrorCode = "INVALID_DEADLINE"
	ErrCodeNoFieldsToUpdate   ErrorCode = "NO_FIELDS_TO_UPDATE"
	ErrCodeDuplicateQuotation ErrorCode = "DUPLICATE_QUOTATION"
	ErrCodeAlreadyResolved    ErrorCode = "ALREADY_RESOLVED"
	ErrCodeHasQuotations      ErrorCode = "HAS_QUOTATIONS"
	ErrCodeQuotationNotFound  ErrorCode = "QUOTATION_NOT_FOUND"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound, ErrCodeQuotationNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation,
		ErrCodeInvalidBudgetRange, ErrCodeInvalidDeadline, ErrCodeNoFieldsToUpdate:
		return http.StatusBadRequest
	case ErrCodeConflict, ErrCodeDuplicateQuotation, ErrCodeAlreadyResolved, ErrCodeHasQuotations:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки, либо ErrCodeInternal для неклассифицированных.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

func IsNotFound(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeNotFound || code == ErrCodeQuotationNotFound
}

func IsConflict(err error) bool {
	switch CodeOf(err) {
	case ErrCodeConflict, ErrCodeDuplicateQuotation, ErrCodeAlreadyResolved, ErrCodeHasQuotations:
		return true
	default:
		return false
	}
}

func IsValidation(err error) bool {
	switch CodeOf(err) {
	case ErrCodeValidation, ErrCodeInvalidBudgetRange, ErrCodeInvalidDeadline, ErrCodeNoFieldsToUpdate:
		return true
	default:
		return false
	}
}

var (
	ErrRequestNotFound    = New(ErrCodeNotFound, "заявка не найдена")
	ErrQuotationNotFound  = New(ErrCodeQuotationNotFound, "котировка не найдена")
	ErrUserNotFound       = New(ErrCodeNotFound, "пользователь не найден")
	ErrUnauthorized       = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden          = New(ErrCodeForbidden, "недостаточно прав")
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "неверные учетные данные")

	ErrInvalidBudgetRange = New(ErrCodeInvalidBudgetRange, "минимальный бюджет не может превышать максимальный")
	ErrInvalidDeadline    = New(ErrCodeInvalidDeadline, "дедлайн должен быть строго в будущем")
	ErrNoFieldsToUpdate   = New(ErrCodeNoFieldsToUpdate, "не передано ни одного поля для обновления")
	ErrDuplicateQuotation = New(ErrCodeDuplicateQuotation, "поставщик уже подал котировку по этой заявке")
	ErrAlreadyResolved    = New(ErrCodeAlreadyResolved, "по заявке уже принята другая котировка")
	ErrHasQuotations      = New(ErrCodeHasQuotations, "нельзя удалить заявку с поданными котировками")
)
