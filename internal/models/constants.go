package models

// RequestStatus константы статусов заявок
const (
	RequestStatusDraft      = "draft"
	RequestStatusPublished  = "published"
	RequestStatusInProgress = "in_progress"
	RequestStatusOnHold     = "on_hold"
	RequestStatusCompleted  = "completed"
	RequestStatusCancelled  = "cancelled"
)

// QuotationStatus константы статусов котировок
const (
	QuotationStatusPending  = "pending"
	QuotationStatusAccepted = "accepted"
	QuotationStatusRejected = "rejected"
	QuotationStatusExpired  = "expired"
)

// RequestCategory константы категорий заявок
const (
	CategoryConstruction = "construction"
	CategoryMaintenance  = "maintenance"
	CategoryConsulting   = "consulting"
	CategoryTechnology   = "technology"
	CategoryLegal        = "legal"
	CategoryOther        = "other"
)

// RequestPriority константы приоритетов
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidRequestStatuses список валидных статусов заявок
var ValidRequestStatuses = map[string]struct{}{
	RequestStatusDraft:      {},
	RequestStatusPublished:  {},
	RequestStatusInProgress: {},
	RequestStatusOnHold:     {},
	RequestStatusCompleted:  {},
	RequestStatusCancelled:  {},
}

// ValidQuotationStatuses список валидных статусов котировок
var ValidQuotationStatuses = map[string]struct{}{
	QuotationStatusPending:  {},
	QuotationStatusAccepted: {},
	QuotationStatusRejected: {},
	QuotationStatusExpired:  {},
}

// ValidCategories список валидных категорий
var ValidCategories = map[string]struct{}{
	CategoryConstruction: {},
	CategoryMaintenance:  {},
	CategoryConsulting:   {},
	CategoryTechnology:   {},
	CategoryLegal:        {},
	CategoryOther:        {},
}

// ValidPriorities список валидных приоритетов
var ValidPriorities = map[string]struct{}{
	PriorityLow:    {},
	PriorityMedium: {},
	PriorityHigh:   {},
	PriorityUrgent: {},
}

// RequestTransitions описывает разрешённые переходы статусов заявки.
// draft — начальный статус, completed и cancelled — терминальные.
// Переход on_hold -> (published | in_progress) дополнительно ограничен
// сохранённым StatusBeforeHold: возобновить можно только прежний статус.
var RequestTransitions = map[string][]string{
	RequestStatusDraft:      {RequestStatusPublished},
	RequestStatusPublished:  {RequestStatusInProgress, RequestStatusOnHold, RequestStatusCancelled},
	RequestStatusInProgress: {RequestStatusCompleted, RequestStatusOnHold, RequestStatusCancelled},
	RequestStatusOnHold:     {RequestStatusPublished, RequestStatusInProgress, RequestStatusCancelled},
	RequestStatusCompleted:  {},
	RequestStatusCancelled:  {},
}

// CanTransitionRequest проверяет допустимость перехода статуса заявки.
func CanTransitionRequest(from, to string) bool {
	for _, next := range RequestTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalQuotationStatus сообщает, является ли статус котировки терминальным.
// Из pending котировка уходит ровно один раз; accepted, rejected и expired
// дальнейших переходов не имеют.
func IsTerminalQuotationStatus(status string) bool {
	return status == QuotationStatusAccepted ||
		status == QuotationStatusRejected ||
		status == QuotationStatusExpired
}
