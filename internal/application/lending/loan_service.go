package lending

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/catalog"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/membership"
	"github.com/library/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LoanService orchestrates the borrow and return workflows
type LoanService struct {
	loanRepo     lending.LoanRepository
	bookRepo     catalog.BookRepository
	borrowerRepo membership.BorrowerRepository
	tx           shared.TransactionManager
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewLoanService creates a new LoanService
func NewLoanService(
	loanRepo lending.LoanRepository,
	bookRepo catalog.BookRepository,
	borrowerRepo membership.BorrowerRepository,
	tx shared.TransactionManager,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *LoanService {
	return &LoanService{
		loanRepo:     loanRepo,
		bookRepo:     bookRepo,
		borrowerRepo: borrowerRepo,
		tx:           tx,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// Borrow opens a loan for a borrower on an available book.
// The partial unique index on active loans is the final arbiter under
// concurrency: the loan insert decides the race, so at most one of two
// simultaneous borrowers wins.
func (s *LoanService) Borrow(ctx context.Context, req BorrowBookRequest) (*LoanResponse, error) {
	periodDays := req.LoanPeriodDays
	if periodDays == 0 {
		periodDays = lending.StandardLoanPeriodDays
	}
	if err := lending.ValidateLoanPeriod(periodDays); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.FindByID(ctx, req.BookID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Book not found")
		}
		return nil, err
	}
	if !book.IsAvailable() {
		return nil, shared.ErrBookNotAvailable
	}

	borrower, err := s.borrowerRepo.FindByID(ctx, req.BorrowerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Borrower not found")
		}
		return nil, err
	}
	if !borrower.CanBorrowBooks() {
		return nil, shared.ErrBorrowerNotActive
	}

	_, err = s.loanRepo.FindActiveLoanForBook(ctx, req.BookID)
	if err == nil {
		return nil, shared.ErrActiveLoanExists
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	loan, err := lending.NewLoan(req.BookID, req.BorrowerID, periodDays)
	if err != nil {
		return nil, err
	}
	if err := book.MarkAsBorrowed(); err != nil {
		return nil, err
	}

	// Both writes commit together or not at all. The loan insert is the
	// arbiter under concurrency: the partial unique index rejects a
	// second active loan and the whole transaction rolls back.
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.loanRepo.Save(ctx, loan); err != nil {
			return err
		}
		return s.bookRepo.SaveWithLock(ctx, book)
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.ErrActiveLoanExists
		}
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, shared.ErrBookNotAvailable
		}
		return nil, err
	}

	s.publishLoanEvents(ctx, loan)
	s.publishBookEvents(ctx, book)

	s.logger.Info("book borrowed",
		zap.String("loan_id", loan.ID.String()),
		zap.String("book_id", loan.BookID.String()),
		zap.String("borrower_id", loan.BorrowerID.String()),
		zap.Time("due_date", loan.DueDate))

	response := ToLoanResponse(loan)
	return &response, nil
}

// Return closes a loan by its ID and puts the book back in circulation
func (s *LoanService) Return(ctx context.Context, loanID uuid.UUID, req ReturnBookRequest) (*LoanResponse, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Loan not found")
		}
		return nil, err
	}
	return s.closeLoan(ctx, loan, req)
}

// ReturnByBook closes the active loan on a book
func (s *LoanService) ReturnByBook(ctx context.Context, bookID uuid.UUID, req ReturnBookRequest) (*LoanResponse, error) {
	loan, err := s.loanRepo.FindActiveLoanForBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "No active loan found for this book")
		}
		return nil, err
	}
	return s.closeLoan(ctx, loan, req)
}

func (s *LoanService) closeLoan(ctx context.Context, loan *lending.Loan, req ReturnBookRequest) (*LoanResponse, error) {
	// A mismatched borrower gets the same answer as a missing loan, so
	// the response never reveals who holds the book
	if loan.BorrowerID != req.BorrowerID {
		return nil, shared.NewDomainError("NOT_FOUND", "No loan found for this borrower")
	}

	book, err := s.bookRepo.FindByID(ctx, loan.BookID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Book not found")
		}
		return nil, err
	}

	if req.ReturnDate != nil {
		if err := loan.ReturnAt(*req.ReturnDate); err != nil {
			return nil, err
		}
	} else {
		if err := loan.Return(); err != nil {
			return nil, err
		}
	}
	book.MarkAsAvailable()

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.loanRepo.SaveWithLock(ctx, loan); err != nil {
			return err
		}
		return s.bookRepo.SaveWithLock(ctx, book)
	})
	if err != nil {
		return nil, err
	}

	s.publishLoanEvents(ctx, loan)
	s.publishBookEvents(ctx, book)

	s.logger.Info("book returned",
		zap.String("loan_id", loan.ID.String()),
		zap.String("book_id", loan.BookID.String()),
		zap.String("status", string(loan.Status)))

	response := ToLoanResponse(loan)
	return &response, nil
}

// GetByID retrieves a loan by ID
func (s *LoanService) GetByID(ctx context.Context, loanID uuid.UUID) (*LoanResponse, error) {
	loan, err := s.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return nil, err
	}

	response := ToLoanResponse(loan)
	return &response, nil
}

// List retrieves loans with filtering and pagination
func (s *LoanService) List(ctx context.Context, filter LoanListFilter) ([]LoanResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "borrow_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.BookID != nil {
		domainFilter.Filters["book_id"] = *filter.BookID
	}
	if filter.BorrowerID != nil {
		domainFilter.Filters["borrower_id"] = *filter.BorrowerID
	}

	loans, err := s.loanRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.loanRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LoanResponse, len(loans))
	for i := range loans {
		responses[i] = ToLoanResponse(&loans[i])
	}
	return responses, total, nil
}

// ListOverdue retrieves active loans past their due date
func (s *LoanService) ListOverdue(ctx context.Context) ([]LoanResponse, error) {
	loans, err := s.loanRepo.FindOverdueLoans(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]LoanResponse, len(loans))
	for i := range loans {
		responses[i] = ToLoanResponse(&loans[i])
	}
	return responses, nil
}

// SweepOverdue flags every active loan past its due date as overdue.
// Loans that raced with a concurrent return are skipped, not failed.
func (s *LoanService) SweepOverdue(ctx context.Context) (*SweepResult, error) {
	loans, err := s.loanRepo.FindOverdueLoans(ctx)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Scanned: len(loans)}
	for i := range loans {
		loan := &loans[i]
		if err := loan.MarkAsOverdue(); err != nil {
			result.Skipped++
			continue
		}
		if err := s.loanRepo.SaveWithLock(ctx, loan); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				result.Skipped++
				continue
			}
			return result, err
		}
		s.publishLoanEvents(ctx, loan)
		result.Flagged++
	}

	s.logger.Info("overdue sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("flagged", result.Flagged),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

func (s *LoanService) publishLoanEvents(ctx context.Context, loan *lending.Loan) {
	events := loan.DrainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish loan events",
			zap.String("loan_id", loan.ID.String()),
			zap.Error(err))
	}
}

func (s *LoanService) publishBookEvents(ctx context.Context, book *catalog.Book) {
	events := book.DrainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish book events",
			zap.String("book_id", book.ID.String()),
			zap.Error(err))
	}
}
