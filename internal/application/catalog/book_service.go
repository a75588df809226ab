package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/catalog"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BookService handles catalog business operations
type BookService struct {
	bookRepo catalog.BookRepository
	loanRepo lending.LoanRepository
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewBookService creates a new BookService
func NewBookService(
	bookRepo catalog.BookRepository,
	loanRepo lending.LoanRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *BookService {
	return &BookService{
		bookRepo: bookRepo,
		loanRepo: loanRepo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Create adds a new book to the catalog
func (s *BookService) Create(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	normalizedISBN, err := catalog.NormalizeISBN(req.ISBN)
	if err != nil {
		return nil, err
	}

	exists, err := s.bookRepo.ExistsByISBN(ctx, normalizedISBN)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Book with this ISBN already exists")
	}

	book, err := catalog.NewBook(req.Title, req.Author, req.ISBN, req.Category, req.PageCount)
	if err != nil {
		return nil, err
	}

	if err := s.bookRepo.Save(ctx, book); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, book)

	s.logger.Info("book created",
		zap.String("book_id", book.ID.String()),
		zap.String("isbn", book.ISBN))

	response := ToBookResponse(book)
	return &response, nil
}

// GetByID retrieves a book by ID
func (s *BookService) GetByID(ctx context.Context, bookID uuid.UUID) (*BookResponse, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	response := ToBookResponse(book)
	return &response, nil
}

// GetByISBN retrieves a book by ISBN
func (s *BookService) GetByISBN(ctx context.Context, isbn string) (*BookResponse, error) {
	normalizedISBN, err := catalog.NormalizeISBN(isbn)
	if err != nil {
		return nil, err
	}

	book, err := s.bookRepo.FindByISBN(ctx, normalizedISBN)
	if err != nil {
		return nil, err
	}

	response := ToBookResponse(book)
	return &response, nil
}

// List retrieves books with filtering and pagination
func (s *BookService) List(ctx context.Context, filter BookListFilter) ([]BookResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	books, err := s.bookRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.bookRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BookResponse, len(books))
	for i := range books {
		responses[i] = ToBookResponse(&books[i])
	}
	return responses, total, nil
}

// Update updates a book's descriptive fields
func (s *BookService) Update(ctx context.Context, bookID uuid.UUID, req UpdateBookRequest) (*BookResponse, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	if err := book.Update(req.Title, req.Author, req.Category, req.PageCount); err != nil {
		return nil, err
	}

	if err := s.bookRepo.SaveWithLock(ctx, book); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, book)

	response := ToBookResponse(book)
	return &response, nil
}

// ChangeStatus moves a book between the available, reserved, and
// under-maintenance states. Borrowed is driven by the lending workflow
// and cannot be set directly.
func (s *BookService) ChangeStatus(ctx context.Context, bookID uuid.UUID, req ChangeBookStatusRequest) (*BookResponse, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	switch catalog.BookStatus(req.Status) {
	case catalog.BookStatusAvailable:
		book.MarkAsAvailable()
	case catalog.BookStatusReserved:
		if err := book.MarkAsReserved(); err != nil {
			return nil, err
		}
	case catalog.BookStatusUnderMaintenance:
		book.MarkUnderMaintenance()
	default:
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown book status")
	}

	if err := s.bookRepo.SaveWithLock(ctx, book); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, book)

	response := ToBookResponse(book)
	return &response, nil
}

// Delete removes a book from the catalog. A book with an active loan
// cannot be deleted.
func (s *BookService) Delete(ctx context.Context, bookID uuid.UUID) error {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		return err
	}

	_, err = s.loanRepo.FindActiveLoanForBook(ctx, bookID)
	if err == nil {
		return shared.NewDomainError("ACTIVE_LOAN_EXISTS", "Book with an active loan cannot be deleted")
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	if err := s.bookRepo.Delete(ctx, bookID); err != nil {
		return err
	}

	event := catalog.NewBookDeletedEvent(book)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish book deleted event",
			zap.String("book_id", bookID.String()),
			zap.Error(err))
	}

	s.logger.Info("book deleted", zap.String("book_id", bookID.String()))
	return nil
}

// Categories returns the accepted book categories
func (s *BookService) Categories() []string {
	return catalog.Categories()
}

func (s *BookService) publishEvents(ctx context.Context, book *catalog.Book) {
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
