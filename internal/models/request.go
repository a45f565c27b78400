package models

import (
	"time"

	"github.com/google/uuid"
)

// ServiceRequest описывает заявку клиента на выполнение работы.
// AssignedSupplierID заполняется только координатором при принятии
// котировки и больше нигде.
type ServiceRequest struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	ClientID           uuid.UUID  `db:"client_id" json:"client_id"`
	Title              string     `db:"title" json:"title"`
	Description        string     `db:"description" json:"description"`
	Category           string     `db:"category" json:"category"`
	Priority           string     `db:"priority" json:"priority"`
	Status             string     `db:"status" json:"status"`
	BudgetMin          *float64   `db:"budget_min" json:"budget_min,omitempty"`
	BudgetMax          *float64   `db:"budget_max" json:"budget_max,omitempty"`
	DeadlineAt         *time.Time `db:"deadline_at" json:"deadline_at,omitempty"`
	Location           *string    `db:"location" json:"location,omitempty"`
	Requirements       *string    `db:"requirements" json:"requirements,omitempty"`
	AssignedSupplierID *uuid.UUID `db:"assigned_supplier_id" json:"assigned_supplier_id,omitempty"`
	AssignedStaffID    *uuid.UUID `db:"assigned_staff_id" json:"assigned_staff_id,omitempty"`
	StatusBeforeHold   *string    `db:"status_before_hold" json:"-"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`

	// Денормализованные поля, заполняются только при чтении с JOIN.
	ClientName      *string `db:"client_name" json:"client_name,omitempty"`
	SupplierName    *string `db:"supplier_name" json:"supplier_name,omitempty"`
	StaffName       *string `db:"staff_name" json:"staff_name,omitempty"`
	QuotationsCount *int    `db:"quotations_count" json:"quotations_count,omitempty"`
}

// Quotation представляет ценовое предложение поставщика по заявке.
// Пара (request_id, supplier_id) уникальна: один поставщик — одна ставка.
type Quotation struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	RequestID         uuid.UUID  `db:"request_id" json:"request_id"`
	SupplierID        uuid.UUID  `db:"supplier_id" json:"supplier_id"`
	Amount            float64    `db:"amount" json:"amount"`
	Description       *string    `db:"description" json:"description,omitempty"`
	EstimatedDuration *string    `db:"estimated_duration" json:"estimated_duration,omitempty"`
	Terms             *string    `db:"terms" json:"terms,omitempty"`
	Status            string     `db:"status" json:"status"`
	ValidUntil        *time.Time `db:"valid_until" json:"valid_until,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`

	// Данные поставщика, заполняются при чтении списка с JOIN.
	SupplierName    *string  `db:"supplier_name" json:"supplier_name,omitempty"`
	SupplierCompany *string  `db:"supplier_company" json:"supplier_company,omitempty"`
	SupplierRating  *float64 `db:"supplier_rating" json:"supplier_rating,omitempty"`
}
