package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/catalog"
	"github.com/library/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBookRepository implements BookRepository using GORM
type GormBookRepository struct {
	db *gorm.DB
}

// NewGormBookRepository creates a new GormBookRepository
func NewGormBookRepository(db *gorm.DB) *GormBookRepository {
	return &GormBookRepository{db: db}
}

// conn joins an open transaction when the context carries one
func (r *GormBookRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a book by its ID
func (r *GormBookRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Book, error) {
	var book catalog.Book
	if err := r.conn(ctx).First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// FindByISBN finds a book by its normalized ISBN
func (r *GormBookRepository) FindByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	var book catalog.Book
	if err := r.conn(ctx).First(&book, "isbn = ?", isbn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

// FindAll finds all books matching the filter
func (r *GormBookRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Book, error) {
	var books []catalog.Book
	query := r.applyFilter(r.conn(ctx).Model(&catalog.Book{}), filter)
	if err := query.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// FindByCategory finds all books in a category
func (r *GormBookRepository) FindByCategory(ctx context.Context, category string, filter shared.Filter) ([]catalog.Book, error) {
	if filter.Filters == nil {
		filter.Filters = make(map[string]interface{})
	}
	filter.Filters["category"] = category
	return r.FindAll(ctx, filter)
}

// FindByStatus finds books by circulation status
func (r *GormBookRepository) FindByStatus(ctx context.Context, status catalog.BookStatus, filter shared.Filter) ([]catalog.Book, error) {
	if filter.Filters == nil {
		filter.Filters = make(map[string]interface{})
	}
	filter.Filters["status"] = string(status)
	return r.FindAll(ctx, filter)
}

// FindByIDs finds multiple books by their IDs
func (r *GormBookRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Book, error) {
	if len(ids) == 0 {
		return []catalog.Book{}, nil
	}
	var books []catalog.Book
	if err := r.conn(ctx).Where("id IN ?", ids).Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

// Save creates or updates a book. A duplicate ISBN maps to
// shared.ErrAlreadyExists.
func (r *GormBookRepository) Save(ctx context.Context, book *catalog.Book) error {
	if err := r.conn(ctx).Save(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// SaveWithLock saves a book with optimistic locking on its version.
// Returns shared.ErrConcurrencyConflict when another transaction got there first.
func (r *GormBookRepository) SaveWithLock(ctx context.Context, book *catalog.Book) error {
	result := r.conn(ctx).
		Model(&catalog.Book{}).
		Where("id = ? AND version = ?", book.ID, book.Version-1).
		Select("title", "author", "isbn", "category", "page_count", "status", "version", "updated_at").
		Updates(book)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a book
func (r *GormBookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&catalog.Book{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts books matching the filter
func (r *GormBookRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.conn(ctx).Model(&catalog.Book{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByISBN checks if a book with the given normalized ISBN exists
func (r *GormBookRepository) ExistsByISBN(ctx context.Context, isbn string) (bool, error) {
	var count int64
	if err := r.conn(ctx).
		Model(&catalog.Book{}).
		Where("isbn = ?", isbn).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormBookRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, BookSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormBookRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR author ILIKE ? OR isbn ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "category":
			query = query.Where("category = ?", value)
		case "author":
			query = query.Where("author = ?", value)
		}
	}

	return query
}

// Ensure GormBookRepository implements BookRepository
var _ catalog.BookRepository = (*GormBookRepository)(nil)
