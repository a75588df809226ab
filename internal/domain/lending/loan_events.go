package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeLoan = "Loan"

// Event type constants
const (
	EventTypeBookBorrowed      = "BookBorrowed"
	EventTypeBookReturned      = "BookReturned"
	EventTypeLoanMarkedOverdue = "LoanMarkedOverdue"
)

// BookBorrowedEvent is published when a loan is opened
type BookBorrowedEvent struct {
	shared.BaseDomainEvent
	LoanID     uuid.UUID `json:"loan_id"`
	BookID     uuid.UUID `json:"book_id"`
	BorrowerID uuid.UUID `json:"borrower_id"`
	DueDate    time.Time `json:"due_date"`
}

// NewBookBorrowedEvent creates a new BookBorrowedEvent
func NewBookBorrowedEvent(loan *Loan) *BookBorrowedEvent {
	return &BookBorrowedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookBorrowed, AggregateTypeLoan, loan.ID),
		LoanID:          loan.ID,
		BookID:          loan.BookID,
		BorrowerID:      loan.BorrowerID,
		DueDate:         loan.DueDate,
	}
}

// BookReturnedEvent is published when a loan closes
type BookReturnedEvent struct {
	shared.BaseDomainEvent
	LoanID     uuid.UUID  `json:"loan_id"`
	BookID     uuid.UUID  `json:"book_id"`
	BorrowerID uuid.UUID  `json:"borrower_id"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Late       bool       `json:"late"`
}

// NewBookReturnedEvent creates a new BookReturnedEvent
func NewBookReturnedEvent(loan *Loan) *BookReturnedEvent {
	return &BookReturnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookReturned, AggregateTypeLoan, loan.ID),
		LoanID:          loan.ID,
		BookID:          loan.BookID,
		BorrowerID:      loan.BorrowerID,
		ReturnDate:      loan.ReturnDate,
		Late:            loan.Status == LoanStatusOverdue,
	}
}

// LoanMarkedOverdueEvent is published when the overdue sweep flags a loan
type LoanMarkedOverdueEvent struct {
	shared.BaseDomainEvent
	LoanID     uuid.UUID `json:"loan_id"`
	BookID     uuid.UUID `json:"book_id"`
	BorrowerID uuid.UUID `json:"borrower_id"`
	DueDate    time.Time `json:"due_date"`
}

// NewLoanMarkedOverdueEvent creates a new LoanMarkedOverdueEvent
func NewLoanMarkedOverdueEvent(loan *Loan) *LoanMarkedOverdueEvent {
	return &LoanMarkedOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanMarkedOverdue, AggregateTypeLoan, loan.ID),
		LoanID:          loan.ID,
		BookID:          loan.BookID,
		BorrowerID:      loan.BorrowerID,
		DueDate:         loan.DueDate,
	}
}
