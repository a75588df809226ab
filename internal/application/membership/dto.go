package membership

import (
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/membership"
)

// RegisterBorrowerRequest represents a request to register a borrower.
// Either first_name or a combined name must be provided; when name is
// set it is split into first and last name.
type RegisterBorrowerRequest struct {
	FirstName string `json:"first_name" binding:"omitempty,max=50"`
	LastName  string `json:"last_name" binding:"omitempty,max=50"`
	Name      string `json:"name" binding:"omitempty,max=120"`
	Email     string `json:"email" binding:"required,max=255"`
	Phone     string `json:"phone" binding:"omitempty,max=20"`
}

// UpdateBorrowerRequest represents a request to update contact details
type UpdateBorrowerRequest struct {
	FirstName string `json:"first_name" binding:"omitempty,max=50"`
	LastName  string `json:"last_name" binding:"omitempty,max=50"`
	Name      string `json:"name" binding:"omitempty,max=120"`
	Phone     string `json:"phone" binding:"omitempty,max=20"`
}

// UpdateBorrowerEmailRequest represents a request to change the email
type UpdateBorrowerEmailRequest struct {
	Email string `json:"email" binding:"required,max=255"`
}

// ChangeBorrowerStatusRequest represents a request to change membership status
type ChangeBorrowerStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive suspended"`
}

// BorrowerResponse represents a borrower in API responses
type BorrowerResponse struct {
	ID               uuid.UUID `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone,omitempty"`
	RegistrationDate time.Time `json:"registration_date"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	Version          int       `json:"version"`
}

// BorrowerListFilter represents filter options for the borrower list
type BorrowerListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive suspended"`
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToBorrowerResponse converts a domain Borrower to BorrowerResponse
func ToBorrowerResponse(b *membership.Borrower) BorrowerResponse {
	return BorrowerResponse{
		ID:               b.ID,
		FirstName:        b.FirstName,
		LastName:         b.LastName,
		FullName:         b.FullName(),
		Email:            b.Email,
		Phone:            b.Phone,
		RegistrationDate: b.RegistrationDate,
		Status:           string(b.Status),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
		Version:          b.Version,
	}
}
