package dto

import (
	"github.com/mzhuravlev/supplyhub-backend/internal/models"
	"github.com/mzhuravlev/supplyhub-backend/internal/repository"
)

// AuthResponse returns the authenticated user with a token pair
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
}

// ServiceRequestListResponse is a page of service requests
type ServiceRequestListResponse struct {
	Data       []models.ServiceRequest `json:"data"`
	Pagination repository.Pagination   `json:"pagination"`
}

// QuotationListResponse wraps the quotations of a request
type QuotationListResponse struct {
	Data []models.Quotation `json:"data"`
}

// NotificationListResponse wraps a user's notifications
type NotificationListResponse struct {
	Data        []models.Notification `json:"data"`
	UnreadCount int                   `json:"unread_count"`
}

// DeleteResponse reports whether a row was removed
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse represents a standard success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
