package dto

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	Email       string  `json:"email" binding:"required"`
	Password    string  `json:"password" binding:"required"`
	Username    string  `json:"username"`
	Role        string  `json:"role" binding:"required"`
	DisplayName string  `json:"display_name"`
	CompanyName *string `json:"company_name"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateServiceRequestRequest represents the request to create a service request
type CreateServiceRequestRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Category     string   `json:"category"`
	Priority     string   `json:"priority"`
	BudgetMin    *float64 `json:"budget_min"`
	BudgetMax    *float64 `json:"budget_max"`
	DeadlineAt   *string  `json:"deadline_at"`
	Location     *string  `json:"location"`
	Requirements *string  `json:"requirements"`
}

// UpdateServiceRequestRequest represents a partial update; absent fields stay untouched
type UpdateServiceRequestRequest struct {
	Title           *string  `json:"title"`
	Description     *string  `json:"description"`
	Category        *string  `json:"category"`
	Priority        *string  `json:"priority"`
	Status          *string  `json:"status"`
	BudgetMin       *float64 `json:"budget_min"`
	BudgetMax       *float64 `json:"budget_max"`
	DeadlineAt      *string  `json:"deadline_at"`
	Location        *string  `json:"location"`
	Requirements    *string  `json:"requirements"`
	AssignedStaffID *string  `json:"assigned_staff_id"`
}

// CreateQuotationRequest represents a supplier's bid
type CreateQuotationRequest struct {
	Amount            float64 `json:"amount" binding:"required"`
	Description       *string `json:"description"`
	EstimatedDuration *string `json:"estimated_duration"`
	Terms             *string `json:"terms"`
	ValidUntil        *string `json:"valid_until"`
}

// ResolveQuotationRequest moves a quotation to a terminal status
type ResolveQuotationRequest struct {
	Status string `json:"status" binding:"required"`
}
