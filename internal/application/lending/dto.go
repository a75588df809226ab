package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/lending"
	"github.com/shopspring/decimal"
)

// BorrowBookRequest represents a request to borrow a book
type BorrowBookRequest struct {
	BookID         uuid.UUID `json:"book_id" binding:"required"`
	BorrowerID     uuid.UUID `json:"borrower_id" binding:"required"`
	LoanPeriodDays int       `json:"loan_period_days"`
}

// ReturnBookRequest represents a request to return a borrowed book.
// The borrower must be the one holding the loan. An omitted return
// date means the book is returned now.
type ReturnBookRequest struct {
	BorrowerID uuid.UUID  `json:"borrower_id" binding:"required"`
	ReturnDate *time.Time `json:"return_date"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID          uuid.UUID       `json:"id"`
	BookID      uuid.UUID       `json:"book_id"`
	BorrowerID  uuid.UUID       `json:"borrower_id"`
	BorrowDate  time.Time       `json:"borrow_date"`
	DueDate     time.Time       `json:"due_date"`
	ReturnDate  *time.Time      `json:"return_date,omitempty"`
	Status      string          `json:"status"`
	DaysOverdue int             `json:"days_overdue"`
	OverdueFee  decimal.Decimal `json:"overdue_fee"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// LoanListFilter represents filter options for the loan list.
// The UUID fields are populated by the HTTP layer, not by form binding.
type LoanListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=active returned overdue"`
	BookID     *uuid.UUID `form:"-"`
	BorrowerID *uuid.UUID `form:"-"`
	Page       int        `form:"page" binding:"min=1"`
	PageSize   int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SweepResult reports the outcome of an overdue sweep
type SweepResult struct {
	Scanned int `json:"scanned"`
	Flagged int `json:"flagged"`
	Skipped int `json:"skipped"`
}

// ToLoanResponse converts a domain Loan to LoanResponse
func ToLoanResponse(l *lending.Loan) LoanResponse {
	return LoanResponse{
		ID:          l.ID,
		BookID:      l.BookID,
		BorrowerID:  l.BorrowerID,
		BorrowDate:  l.BorrowDate,
		DueDate:     l.DueDate,
		ReturnDate:  l.ReturnDate,
		Status:      string(l.Status),
		DaysOverdue: l.DaysOverdue(),
		OverdueFee:  l.OverdueFee(lending.DefaultDailyOverdueFee),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		Version:     l.Version,
	}
}
