// Package testutil provides in-memory test doubles for the domain
// repository ports. The loan repository mirrors the store-level
// guarantee of the real database: at most one active loan per book.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/catalog"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/membership"
	"github.com/library/backend/internal/domain/shared"
)

// InMemoryBookRepository is a map-backed catalog.BookRepository
type InMemoryBookRepository struct {
	mu    sync.RWMutex
	books map[uuid.UUID]catalog.Book
}

// NewInMemoryBookRepository creates an empty book repository
func NewInMemoryBookRepository() *InMemoryBookRepository {
	return &InMemoryBookRepository{books: make(map[uuid.UUID]catalog.Book)}
}

func (r *InMemoryBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book, ok := r.books[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &book, nil
}

func (r *InMemoryBookRepository) FindByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, book := range r.books {
		if book.ISBN == isbn {
			b := book
			return &b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *InMemoryBookRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []catalog.Book
	for _, book := range r.books {
		if status, ok := filter.Filters["status"]; ok && string(book.Status) != status {
			continue
		}
		if category, ok := filter.Filters["category"]; ok && book.Category != category {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(book.Title), strings.ToLower(filter.Search)) &&
			!strings.Contains(strings.ToLower(book.Author), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, book)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *InMemoryBookRepository) FindByCategory(ctx context.Context, category string, filter shared.Filter) ([]catalog.Book, error) {
	filter.Filters = map[string]interface{}{"category": category}
	return r.FindAll(ctx, filter)
}

func (r *InMemoryBookRepository) FindByStatus(ctx context.Context, status catalog.BookStatus, filter shared.Filter) ([]catalog.Book, error) {
	filter.Filters = map[string]interface{}{"status": string(status)}
	return r.FindAll(ctx, filter)
}

func (r *InMemoryBookRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []catalog.Book
	for _, id := range ids {
		if book, ok := r.books[id]; ok {
			result = append(result, book)
		}
	}
	return result, nil
}

func (r *InMemoryBookRepository) Save(ctx context.Context, book *catalog.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.books {
		if existing.ISBN == book.ISBN && existing.ID != book.ID {
			return shared.ErrAlreadyExists
		}
	}
	r.books[book.ID] = *book
	return nil
}

func (r *InMemoryBookRepository) SaveWithLock(ctx context.Context, book *catalog.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.books[book.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.Version != book.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.books[book.ID] = *book
	return nil
}

func (r *InMemoryBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.books, id)
	return nil
}

func (r *InMemoryBookRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	books, err := r.FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(books)), nil
}

func (r *InMemoryBookRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	_, err := r.FindByISBN(ctx, isbn)
	if err == nil {
		return true, nil
	}
	if err == shared.ErrNotFound {
		return false, nil
	}
	return false, err
}

// InMemoryBorrowerRepository is a map-backed membership.BorrowerRepository
type InMemoryBorrowerRepository struct {
	mu        sync.RWMutex
	borrowers map[uuid.UUID]membership.Borrower
}

// NewInMemoryBorrowerRepository creates an empty borrower repository
func NewInMemoryBorrowerRepository() *InMemoryBorrowerRepository {
	return &InMemoryBorrowerRepository{borrowers: make(map[uuid.UUID]membership.Borrower)}
}

func (r *InMemoryBorrowerRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Borrower, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	borrower, ok := r.borrowers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &borrower, nil
}

func (r *InMemoryBorrowerRepository) FindByEmail(ctx context.Context, email string) (*membership.Borrower, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, borrower := range r.borrowers {
		if borrower.Email == email {
			b := borrower
			return &b, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *InMemoryBorrowerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]membership.Borrower, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []membership.Borrower
	for _, borrower := range r.borrowers {
		if status, ok := filter.Filters["status"]; ok && string(borrower.Status) != status {
			continue
		}
		if filter.Search != "" &&
			!strings.Contains(strings.ToLower(borrower.FullName()), strings.ToLower(filter.Search)) &&
			!strings.Contains(borrower.Email, strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, borrower)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *InMemoryBorrowerRepository) FindByStatus(ctx context.Context, status membership.MemberStatus, filter shared.Filter) ([]membership.Borrower, error) {
	filter.Filters = map[string]interface{}{"status": string(status)}
	return r.FindAll(ctx, filter)
}

func (r *InMemoryBorrowerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]membership.Borrower, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []membership.Borrower
	for _, id := range ids {
		if borrower, ok := r.borrowers[id]; ok {
			result = append(result, borrower)
		}
	}
	return result, nil
}

func (r *InMemoryBorrowerRepository) Save(ctx context.Context, borrower *membership.Borrower) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.borrowers {
		if existing.Email == borrower.Email && existing.ID != borrower.ID {
			return shared.ErrAlreadyExists
		}
	}
	r.borrowers[borrower.ID] = *borrower
	return nil
}

func (r *InMemoryBorrowerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.borrowers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.borrowers, id)
	return nil
}

func (r *InMemoryBorrowerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	borrowers, err := r.FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(borrowers)), nil
}

func (r *InMemoryBorrowerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if err == shared.ErrNotFound {
		return false, nil
	}
	return false, err
}

// InMemoryLoanRepository is a map-backed lending.LoanRepository.
// Save enforces the one-active-loan-per-book rule the way the partial
// unique index does in the real store.
type InMemoryLoanRepository struct {
	mu    sync.RWMutex
	loans map[uuid.UUID]lending.Loan
	books *InMemoryBookRepository
}

// NewInMemoryLoanRepository creates an empty loan repository
func NewInMemoryLoanRepository() *InMemoryLoanRepository {
	return &InMemoryLoanRepository{loans: make(map[uuid.UUID]lending.Loan)}
}

// LinkBooks wires a book repository for the analytics join queries
func (r *InMemoryLoanRepository) LinkBooks(books *InMemoryBookRepository) {
	r.books = books
}

func (r *InMemoryLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*lending.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	loan, ok := r.loans[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &loan, nil
}

func (r *InMemoryLoanRepository) FindActiveLoanForBook(ctx context.Context, bookID uuid.UUID) (*lending.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, loan := range r.loans {
		if loan.BookID == bookID && loan.Status == lending.LoanStatusActive {
			l := loan
			return &l, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *InMemoryLoanRepository) FindActiveLoansForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]lending.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []lending.Loan
	for _, loan := range r.loans {
		if loan.BorrowerID == borrowerID && loan.Status == lending.LoanStatusActive {
			result = append(result, loan)
		}
	}
	return result, nil
}

func (r *InMemoryLoanRepository) FindOverdueLoans(ctx context.Context) ([]lending.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := time.Now().UTC()
	var result []lending.Loan
	for _, loan := range r.loans {
		if loan.Status == lending.LoanStatusActive && now.After(loan.DueDate) {
			result = append(result, loan)
		}
	}
	return result, nil
}

func (r *InMemoryLoanRepository) FindLoanHistoryForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]lending.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []lending.Loan
	for _, loan := range r.loans {
		if loan.BorrowerID == borrowerID {
			result = append(result, loan)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BorrowDate.After(result[j].BorrowDate) })
	return result, nil
}

func (r *InMemoryLoanRepository) FindByStatus(ctx context.Context, status lending.LoanStatus, filter shared.Filter) ([]lending.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []lending.Loan
	for _, loan := range r.loans {
		if loan.Status == status {
			result = append(result, loan)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

func (r *InMemoryLoanRepository) FindAll(ctx context.Context, filter shared.Filter) ([]lending.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []lending.Loan
	for _, loan := range r.loans {
		if status, ok := filter.Filters["status"]; ok && string(loan.Status) != status {
			continue
		}
		if bookID, ok := filter.Filters["book_id"]; ok && loan.BookID != bookID {
			continue
		}
		if borrowerID, ok := filter.Filters["borrower_id"]; ok && loan.BorrowerID != borrowerID {
			continue
		}
		result = append(result, loan)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BorrowDate.After(result[j].BorrowDate) })
	return result, nil
}

func (r *InMemoryLoanRepository) Save(ctx context.Context, loan *lending.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if loan.Status == lending.LoanStatusActive {
		for _, existing := range r.loans {
			if existing.BookID == loan.BookID &&
				existing.Status == lending.LoanStatusActive &&
				existing.ID != loan.ID {
				return shared.ErrAlreadyExists
			}
		}
	}
	r.loans[loan.ID] = *loan
	return nil
}

func (r *InMemoryLoanRepository) SaveWithLock(ctx context.Context, loan *lending.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.loans[loan.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if existing.Version != loan.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.loans[loan.ID] = *loan
	return nil
}

func (r *InMemoryLoanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loans[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.loans, id)
	return nil
}

func (r *InMemoryLoanRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	loans, err := r.FindAll(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(loans)), nil
}

func (r *InMemoryLoanRepository) CountActiveForBorrower(ctx context.Context, borrowerID uuid.UUID) (int64, error) {
	loans, err := r.FindActiveLoansForBorrower(ctx, borrowerID)
	if err != nil {
		return 0, err
	}
	return int64(len(loans)), nil
}

func (r *InMemoryLoanRepository) FindCompletedLoansForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]lending.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []lending.Loan
	for _, loan := range r.loans {
		if loan.BorrowerID == borrowerID && loan.Status == lending.LoanStatusReturned && loan.ReturnDate != nil {
			result = append(result, loan)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BorrowDate.After(result[j].BorrowDate) })
	return result, nil
}

func (r *InMemoryLoanRepository) FindBorrowersWhoBorrowedBook(ctx context.Context, bookID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[uuid.UUID]struct{})
	var result []uuid.UUID
	for _, loan := range r.loans {
		if loan.BookID == bookID && loan.Status == lending.LoanStatusReturned {
			if _, ok := seen[loan.BorrowerID]; !ok {
				seen[loan.BorrowerID] = struct{}{}
				result = append(result, loan.BorrowerID)
			}
		}
	}
	return result, nil
}

func (r *InMemoryLoanRepository) MostBorrowedBooks(ctx context.Context, startDate, endDate time.Time) ([]lending.BookBorrowCount, error) {
	r.mu.RLock()
	counts := make(map[uuid.UUID]int64)
	for _, loan := range r.loans {
		if loan.Status == lending.LoanStatusReturned &&
			!loan.BorrowDate.Before(startDate) && !loan.BorrowDate.After(endDate) {
			counts[loan.BookID]++
		}
	}
	r.mu.RUnlock()

	var result []lending.BookBorrowCount
	for bookID, count := range counts {
		row := lending.BookBorrowCount{BookID: bookID, BorrowCount: count}
		if r.books != nil {
			if book, err := r.books.FindByID(ctx, bookID); err == nil {
				row.Title = book.Title
				row.Author = book.Author
				row.ISBN = book.ISBN
				row.Category = book.Category
				row.PageCount = book.PageCount
			}
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].BorrowCount != result[j].BorrowCount {
			return result[i].BorrowCount > result[j].BorrowCount
		}
		return result[i].Title < result[j].Title
	})
	return result, nil
}

func (r *InMemoryLoanRepository) BooksReturnedByBorrowers(ctx context.Context, borrowerIDs []uuid.UUID) ([]lending.BookBorrowCount, error) {
	wanted := make(map[uuid.UUID]struct{}, len(borrowerIDs))
	for _, id := range borrowerIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	counts := make(map[uuid.UUID]int64)
	for _, loan := range r.loans {
		if _, ok := wanted[loan.BorrowerID]; ok && loan.Status == lending.LoanStatusReturned {
			counts[loan.BookID]++
		}
	}
	r.mu.RUnlock()

	var result []lending.BookBorrowCount
	for bookID, count := range counts {
		row := lending.BookBorrowCount{BookID: bookID, BorrowCount: count}
		if r.books != nil {
			if book, err := r.books.FindByID(ctx, bookID); err == nil {
				row.Title = book.Title
				row.Author = book.Author
				row.ISBN = book.ISBN
				row.Category = book.Category
				row.PageCount = book.PageCount
			}
		}
		result = append(result, row)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].BorrowCount != result[j].BorrowCount {
			return result[i].BorrowCount > result[j].BorrowCount
		}
		return result[i].Title < result[j].Title
	})
	return result, nil
}

func (r *InMemoryLoanRepository) CompletedLoansWithBookForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]lending.CompletedLoanWithBook, error) {
	loans, err := r.FindCompletedLoansForBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	result := make([]lending.CompletedLoanWithBook, 0, len(loans))
	for _, loan := range loans {
		row := lending.CompletedLoanWithBook{
			LoanID:     loan.ID,
			BookID:     loan.BookID,
			BorrowDate: loan.BorrowDate,
			ReturnDate: loan.ReturnDate,
		}
		if r.books != nil {
			if book, err := r.books.FindByID(ctx, loan.BookID); err == nil {
				row.BookTitle = book.Title
				row.BookAuthor = book.Author
				row.BookISBN = book.ISBN
				row.BookPageCount = book.PageCount
			}
		}
		result = append(result, row)
	}
	return result, nil
}

func (r *InMemoryLoanRepository) FindCompletedLoansByDateRange(ctx context.Context, startDate, endDate time.Time) ([]lending.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []lending.Loan
	for _, loan := range r.loans {
		if loan.Status == lending.LoanStatusReturned &&
			loan.ReturnDate != nil &&
			!loan.BorrowDate.Before(startDate) && !loan.BorrowDate.After(endDate) {
			result = append(result, loan)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].BorrowDate.After(result[j].BorrowDate) })
	return result, nil
}
