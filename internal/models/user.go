package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role — закрытое перечисление ролей платформы.
// Любое значение вне этого набора отклоняется на границе (ParseRole),
// поэтому проверки доступа могут использовать исчерпывающий switch.
type Role string

const (
	RoleClient   Role = "client"
	RoleSupplier Role = "supplier"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// ParseRole проверяет строку и возвращает роль из закрытого набора.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleSupplier, RoleStaff, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("models: неизвестная роль %q", s)
	}
}

// User описывает пользователя маркетплейса.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         Role       `db:"role" json:"role"`
	DisplayName  string     `db:"display_name" json:"display_name"`
	CompanyName  *string    `db:"company_name" json:"company_name,omitempty"`
	Rating       *float64   `db:"rating" json:"rating,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
