package lending

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/shared"
)

// BookBorrowCount is an analytics projection of how often a book was
// borrowed, joined with its catalog fields
type BookBorrowCount struct {
	BookID      uuid.UUID
	Title       string
	Author      string
	ISBN        string
	Category    string
	PageCount   int
	BorrowCount int64
}

// CompletedLoanWithBook is an analytics projection of a finished loan
// joined with the borrowed book
type CompletedLoanWithBook struct {
	LoanID        uuid.UUID
	BookID        uuid.UUID
	BookTitle     string
	BookAuthor    string
	BookISBN      string
	BookPageCount int
	BorrowDate    time.Time
	ReturnDate    *time.Time
}

// LoanRepository defines the interface for loan persistence and the
// read queries the analytics services run over completed loans
type LoanRepository interface {
	// FindByID finds a loan by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Loan, error)

	// FindActiveLoanForBook finds the single active loan for a book, if any
	FindActiveLoanForBook(ctx context.Context, bookID uuid.UUID) (*Loan, error)

	// FindActiveLoansForBorrower finds all active loans held by a borrower
	FindActiveLoansForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]Loan, error)

	// FindOverdueLoans finds active loans past their due date
	FindOverdueLoans(ctx context.Context) ([]Loan, error)

	// FindLoanHistoryForBorrower finds all loans of a borrower, newest first
	FindLoanHistoryForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]Loan, error)

	// FindByStatus finds loans in the given status ordered by due date
	FindByStatus(ctx context.Context, status LoanStatus, filter shared.Filter) ([]Loan, error)

	// FindAll finds all loans matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Loan, error)

	// Save creates or updates a loan
	Save(ctx context.Context, loan *Loan) error

	// SaveWithLock updates a loan using optimistic locking on its version
	SaveWithLock(ctx context.Context, loan *Loan) error

	// Delete removes a loan
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts loans matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountActiveForBorrower counts the active loans held by a borrower
	CountActiveForBorrower(ctx context.Context, borrowerID uuid.UUID) (int64, error)

	// FindCompletedLoansForBorrower finds returned loans of a borrower,
	// newest first
	FindCompletedLoansForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]Loan, error)

	// FindBorrowersWhoBorrowedBook returns the distinct borrowers who
	// completed a loan of the given book
	FindBorrowersWhoBorrowedBook(ctx context.Context, bookID uuid.UUID) ([]uuid.UUID, error)

	// MostBorrowedBooks aggregates completed loans borrowed within the
	// window, most borrowed first with ties broken by title
	MostBorrowedBooks(ctx context.Context, startDate, endDate time.Time) ([]BookBorrowCount, error)

	// BooksReturnedByBorrowers aggregates the completed loans of the
	// given borrowers per book, most borrowed first with ties broken
	// by title
	BooksReturnedByBorrowers(ctx context.Context, borrowerIDs []uuid.UUID) ([]BookBorrowCount, error)

	// CompletedLoansWithBookForBorrower joins a borrower's completed
	// loans with the borrowed books, newest first
	CompletedLoansWithBookForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]CompletedLoanWithBook, error)

	// FindCompletedLoansByDateRange finds returned loans borrowed within
	// the window, newest first
	FindCompletedLoansByDateRange(ctx context.Context, startDate, endDate time.Time) ([]Loan, error)
}
