package lending

import (
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusActive   LoanStatus = "active"
	LoanStatusReturned LoanStatus = "returned"
	LoanStatusOverdue  LoanStatus = "overdue"
)

const (
	// StandardLoanPeriodDays is the default loan period
	StandardLoanPeriodDays = 14
	// MaxLoanPeriodVariationDays bounds how far a period may deviate
	// from the standard period
	MaxLoanPeriodVariationDays = 28
	// MaxLoanPeriodDays is the absolute upper bound on a loan period
	MaxLoanPeriodDays = 365
)

// DefaultDailyOverdueFee is the fee charged per day a loan runs overdue
var DefaultDailyOverdueFee = decimal.NewFromFloat(0.50)

// Loan represents a single lending of a book to a borrower.
// BookID, BorrowerID, BorrowDate and DueDate are fixed at creation;
// only the status and return date change over the loan's life.
type Loan struct {
	shared.BaseAggregateRoot
	BookID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	BorrowerID uuid.UUID  `gorm:"type:uuid;not null;index"`
	BorrowDate time.Time  `gorm:"not null"`
	DueDate    time.Time  `gorm:"not null;index"`
	ReturnDate *time.Time `gorm:""`
	Status     LoanStatus `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (Loan) TableName() string {
	return "loans"
}

// NewLoan creates an active loan starting now
func NewLoan(bookID, borrowerID uuid.UUID, loanPeriodDays int) (*Loan, error) {
	if err := ValidateLoanPeriod(loanPeriodDays); err != nil {
		return nil, err
	}

	borrowDate := time.Now().UTC()
	loan := &Loan{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BookID:            bookID,
		BorrowerID:        borrowerID,
		BorrowDate:        borrowDate,
		DueDate:           borrowDate.AddDate(0, 0, loanPeriodDays),
		Status:            LoanStatusActive,
	}

	loan.AddDomainEvent(NewBookBorrowedEvent(loan))

	return loan, nil
}

// Return closes the loan with the current time as return date
func (l *Loan) Return() error {
	return l.ReturnAt(time.Now().UTC())
}

// ReturnAt closes the loan at the given return date. A return after the
// due date lands the loan in the overdue state rather than returned.
func (l *Loan) ReturnAt(returnDate time.Time) error {
	if l.Status != LoanStatusActive {
		return shared.NewDomainError("LOAN_OPERATION_ERROR", "Only active loans can be returned")
	}
	if returnDate.Before(l.BorrowDate) {
		return shared.NewDomainError("LOAN_OPERATION_ERROR", "Return date cannot be before borrow date")
	}

	l.ReturnDate = &returnDate
	if returnDate.After(l.DueDate) {
		l.Status = LoanStatusOverdue
	} else {
		l.Status = LoanStatusReturned
	}

	l.UpdatedAt = time.Now().UTC()
	l.IncrementVersion()
	l.AddDomainEvent(NewBookReturnedEvent(l))

	return nil
}

// MarkAsOverdue flags an active loan that has passed its due date
func (l *Loan) MarkAsOverdue() error {
	if l.Status != LoanStatusActive {
		return shared.NewDomainError("LOAN_OPERATION_ERROR", "Only active loans can be marked as overdue")
	}
	if !time.Now().UTC().After(l.DueDate) {
		return shared.NewDomainError("LOAN_OPERATION_ERROR", "Loan is not yet overdue")
	}

	l.Status = LoanStatusOverdue
	l.UpdatedAt = time.Now().UTC()
	l.IncrementVersion()
	l.AddDomainEvent(NewLoanMarkedOverdueEvent(l))

	return nil
}

// IsOverdue returns true for an active loan past its due date
func (l *Loan) IsOverdue() bool {
	return l.Status == LoanStatusActive && time.Now().UTC().After(l.DueDate)
}

// IsReturned returns true once the book has come back, on time or late
func (l *Loan) IsReturned() bool {
	return l.Status == LoanStatusReturned || l.Status == LoanStatusOverdue
}

// IsActive returns true while the book is still out
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// DaysOverdue returns the whole days the loan has run past its due date,
// or 0 when the loan is neither overdue nor flagged overdue
func (l *Loan) DaysOverdue() int {
	if !l.IsOverdue() && l.Status != LoanStatusOverdue {
		return 0
	}

	now := time.Now().UTC()
	overdueDate := l.DueDate
	if now.After(l.DueDate) {
		overdueDate = now
	}
	return int(overdueDate.Sub(l.DueDate).Hours() / 24)
}

// OverdueFee returns the accrued fee for an overdue loan at the given
// daily rate. Loans not in the overdue state owe nothing. The fee counts
// calendar days between the due date and the return date (or today for
// a still-open overdue loan).
func (l *Loan) OverdueFee(dailyFee decimal.Decimal) decimal.Decimal {
	if l.Status != LoanStatusOverdue {
		return decimal.Zero
	}

	end := time.Now().UTC()
	if l.ReturnDate != nil {
		end = *l.ReturnDate
	}

	days := int(truncateToDate(end).Sub(truncateToDate(l.DueDate)).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return decimal.NewFromInt(int64(days)).Mul(dailyFee)
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateLoanPeriod validates a requested loan period in days.
// Periods must be positive and stay within the allowed variation around
// the standard period.
func ValidateLoanPeriod(loanPeriodDays int) error {
	if loanPeriodDays <= 0 {
		return shared.NewDomainError("LOAN_VALIDATION_ERROR", "Loan period must be greater than 0 days")
	}
	if loanPeriodDays > MaxLoanPeriodDays {
		return shared.NewDomainError("LOAN_VALIDATION_ERROR", "Loan period cannot exceed 365 days")
	}

	variation := loanPeriodDays - StandardLoanPeriodDays
	if variation < 0 {
		variation = -variation
	}
	if variation > MaxLoanPeriodVariationDays {
		return shared.NewDomainError("LOAN_VALIDATION_ERROR", "Loan period must be between 1 and 42 days")
	}
	return nil
}
