package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormLoanRepository implements LoanRepository using GORM. The loans
// table carries a partial unique index on (book_id) WHERE status =
// 'active', so inserting a second active loan for the same book fails
// at the store no matter how the race between requests goes.
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// conn joins an open transaction when the context carries one
func (r *GormLoanRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a loan by ID
func (r *GormLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	var loan lending.Loan
	if err := r.conn(ctx).First(&loan, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// FindActiveLoanForBook finds the single active loan for a book, if any
func (r *GormLoanRepository) FindActiveLoanForBook(ctx context.Context, bookID uuid.UUID) (*lending.Loan, error) {
	var loan lending.Loan
	err := r.conn(ctx).
		Where("book_id = ? AND status = ?", bookID, lending.LoanStatusActive).
		First(&loan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &loan, nil
}

// FindActiveLoansForBorrower finds all active loans held by a borrower
func (r *GormLoanRepository) FindActiveLoansForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]lending.Loan, error) {
	var loans []lending.Loan
	err := r.conn(ctx).
		Where("borrower_id = ? AND status = ?", borrowerID, lending.LoanStatusActive).
		Order("due_date ASC").
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}

// FindOverdueLoans finds active loans past their due date
func (r *GormLoanRepository) FindOverdueLoans(ctx context.Context) ([]lending.Loan, error) {
	var loans []lending.Loan
	err := r.conn(ctx).
		Where("status = ? AND due_date < ?", lending.LoanStatusActive, time.Now().UTC()).
		Order("due_date ASC").
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}

// FindLoanHistoryForBorrower finds all loans of a borrower, newest first
func (r *GormLoanRepository) FindLoanHistoryForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]lending.Loan, error) {
	var loans []lending.Loan
	err := r.conn(ctx).
		Where("borrower_id = ?", borrowerID).
		Order("borrow_date DESC").
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}

// FindByStatus finds loans in the given status ordered by due date
func (r *GormLoanRepository) FindByStatus(ctx context.Context, status lending.LoanStatus, filter shared.Filter) ([]lending.Loan, error) {
	var loans []lending.Loan
	query := r.conn(ctx).
		Where("status = ?", status).
		Order("due_date ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	if err := query.Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// FindAll finds all loans matching the filter
func (r *GormLoanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]lending.Loan, error) {
	var loans []lending.Loan
	query := r.applyFilter(r.conn(ctx).Model(&lending.Loan{}), filter)
	if err := query.Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

// Save creates or updates a loan. An insert that collides with an
// existing active loan for the same book maps to shared.ErrAlreadyExists.
func (r *GormLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	if err := r.conn(ctx).Save(loan).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock saves a loan with optimistic locking on its version.
// Returns shared.ErrConcurrencyConflict when another transaction got there first.
func (r *GormLoanRepository) SaveWithLock(ctx context.Context, loan *lending.Loan) error {
	result := r.conn(ctx).
		Model(&lending.Loan{}).
		Where("id = ? AND version = ?", loan.ID, loan.Version-1).
		Select("status", "return_date", "version", "updated_at").
		Updates(loan)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete removes a loan
func (r *GormLoanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&lending.Loan{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts loans matching the filter
func (r *GormLoanRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.conn(ctx).Model(&lending.Loan{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountActiveForBorrower counts the active loans held by a borrower
func (r *GormLoanRepository) CountActiveForBorrower(ctx context.Context, borrowerID uuid.UUID) (int64, error) {
	var count int64
	err := r.conn(ctx).
		Model(&lending.Loan{}).
		Where("borrower_id = ? AND status = ?", borrowerID, lending.LoanStatusActive).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// FindCompletedLoansForBorrower finds returned loans of a borrower, newest first
func (r *GormLoanRepository) FindCompletedLoansForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]lending.Loan, error) {
	var loans []lending.Loan
	err := r.conn(ctx).
		Where("borrower_id = ? AND status = ? AND return_date IS NOT NULL",
			borrowerID, lending.LoanStatusReturned).
		Order("borrow_date DESC").
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}

// FindBorrowersWhoBorrowedBook returns the distinct borrowers who
// completed a loan of the given book
func (r *GormLoanRepository) FindBorrowersWhoBorrowedBook(ctx context.Context, bookID uuid.UUID) ([]uuid.UUID, error) {
	var borrowerIDs []uuid.UUID
	err := r.conn(ctx).
		Model(&lending.Loan{}).
		Distinct("borrower_id").
		Where("book_id = ? AND status = ?", bookID, lending.LoanStatusReturned).
		Pluck("borrower_id", &borrowerIDs).Error
	if err != nil {
		return nil, err
	}
	return borrowerIDs, nil
}

// MostBorrowedBooks aggregates completed loans borrowed within the
// window, most borrowed first with ties broken by title
func (r *GormLoanRepository) MostBorrowedBooks(ctx context.Context, startDate, endDate time.Time) ([]lending.BookBorrowCount, error) {
	var rows []lending.BookBorrowCount
	err := r.conn(ctx).
		Table("loans").
		Select("loans.book_id AS book_id, books.title AS title, books.author AS author, "+
			"books.isbn AS isbn, books.category AS category, books.page_count AS page_count, "+
			"COUNT(*) AS borrow_count").
		Joins("JOIN books ON books.id = loans.book_id").
		Where("loans.status = ? AND loans.borrow_date >= ? AND loans.borrow_date <= ?",
			lending.LoanStatusReturned, startDate, endDate).
		Group("loans.book_id, books.title, books.author, books.isbn, books.category, books.page_count").
		Order("borrow_count DESC, books.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BooksReturnedByBorrowers aggregates the completed loans of the given
// borrowers per book, most borrowed first with ties broken by title
func (r *GormLoanRepository) BooksReturnedByBorrowers(ctx context.Context, borrowerIDs []uuid.UUID) ([]lending.BookBorrowCount, error) {
	if len(borrowerIDs) == 0 {
		return []lending.BookBorrowCount{}, nil
	}
	var rows []lending.BookBorrowCount
	err := r.conn(ctx).
		Table("loans").
		Select("loans.book_id AS book_id, books.title AS title, books.author AS author, "+
			"books.isbn AS isbn, books.category AS category, books.page_count AS page_count, "+
			"COUNT(*) AS borrow_count").
		Joins("JOIN books ON books.id = loans.book_id").
		Where("loans.borrower_id IN ? AND loans.status = ?", borrowerIDs, lending.LoanStatusReturned).
		Group("loans.book_id, books.title, books.author, books.isbn, books.category, books.page_count").
		Order("borrow_count DESC, books.title ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CompletedLoansWithBookForBorrower joins a borrower's completed loans
// with the borrowed books, newest first
func (r *GormLoanRepository) CompletedLoansWithBookForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]lending.CompletedLoanWithBook, error) {
	var rows []lending.CompletedLoanWithBook
	err := r.conn(ctx).
		Table("loans").
		Select("loans.id AS loan_id, loans.book_id AS book_id, books.title AS book_title, "+
			"books.author AS book_author, books.isbn AS book_isbn, "+
			"books.page_count AS book_page_count, loans.borrow_date AS borrow_date, "+
			"loans.return_date AS return_date").
		Joins("JOIN books ON books.id = loans.book_id").
		Where("loans.borrower_id = ? AND loans.status = ? AND loans.return_date IS NOT NULL",
			borrowerID, lending.LoanStatusReturned).
		Order("loans.borrow_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCompletedLoansByDateRange finds returned loans borrowed within
// the window, newest first
func (r *GormLoanRepository) FindCompletedLoansByDateRange(ctx context.Context, startDate, endDate time.Time) ([]lending.Loan, error) {
	var loans []lending.Loan
	err := r.conn(ctx).
		Where("status = ? AND return_date IS NOT NULL AND borrow_date >= ? AND borrow_date <= ?",
			lending.LoanStatusReturned, startDate, endDate).
		Order("borrow_date DESC").
		Find(&loans).Error
	if err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *GormLoanRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, LoanSortFields, "borrow_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormLoanRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "book_id":
			query = query.Where("book_id = ?", value)
		case "borrower_id":
			query = query.Where("borrower_id = ?", value)
		}
	}
	return query
}

// Ensure GormLoanRepository implements LoanRepository
var _ lending.LoanRepository = (*GormLoanRepository)(nil)
