package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/shared"
)

// BookRepository defines the interface for book persistence
type BookRepository interface {
	// FindByID finds a book by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Book, error)

	// FindByISBN finds a book by its normalized ISBN
	FindByISBN(ctx context.Context, isbn string) (*Book, error)

	// FindAll finds all books matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Book, error)

	// FindByCategory finds all books in a category
	FindByCategory(ctx context.Context, category string, filter shared.Filter) ([]Book, error)

	// FindByStatus finds books by circulation status
	FindByStatus(ctx context.Context, status BookStatus, filter shared.Filter) ([]Book, error)

	// FindByIDs finds multiple books by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Book, error)

	// Save creates or updates a book
	Save(ctx context.Context, book *Book) error

	// SaveWithLock updates a book using optimistic locking on its version
	SaveWithLock(ctx context.Context, book *Book) error

	// Delete deletes a book
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts books matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByISBN checks if a book with the given normalized ISBN exists
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
}
