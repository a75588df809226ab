package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/membership"
	"github.com/library/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormBorrowerRepository implements BorrowerRepository using GORM
type GormBorrowerRepository struct {
	db *gorm.DB
}

// NewGormBorrowerRepository creates a new GormBorrowerRepository
func NewGormBorrowerRepository(db *gorm.DB) *GormBorrowerRepository {
	return &GormBorrowerRepository{db: db}
}

// conn joins an open transaction when the context carries one
func (r *GormBorrowerRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a borrower by ID
func (r *GormBorrowerRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Borrower, error) {
	var borrower membership.Borrower
	if err := r.conn(ctx).First(&borrower, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &borrower, nil
}

// FindByEmail finds a borrower by normalized email
func (r *GormBorrowerRepository) FindByEmail(ctx context.Context, email string) (*membership.Borrower, error) {
	var borrower membership.Borrower
	if err := r.conn(ctx).First(&borrower, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &borrower, nil
}

// FindAll finds all borrowers matching the filter
func (r *GormBorrowerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]membership.Borrower, error) {
	var borrowers []membership.Borrower
	query := r.applyFilter(r.conn(ctx).Model(&membership.Borrower{}), filter)
	if err := query.Find(&borrowers).Error; err != nil {
		return nil, err
	}
	return borrowers, nil
}

// FindByStatus finds borrowers by membership status
func (r *GormBorrowerRepository) FindByStatus(ctx context.Context, status membership.MemberStatus, filter shared.Filter) ([]membership.Borrower, error) {
	if filter.Filters == nil {
		filter.Filters = make(map[string]interface{})
	}
	filter.Filters["status"] = string(status)
	return r.FindAll(ctx, filter)
}

// FindByIDs finds multiple borrowers by their IDs
func (r *GormBorrowerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]membership.Borrower, error) {
	if len(ids) == 0 {
		return []membership.Borrower{}, nil
	}
	var borrowers []membership.Borrower
	if err := r.conn(ctx).Where("id IN ?", ids).Find(&borrowers).Error; err != nil {
		return nil, err
	}
	return borrowers, nil
}

// Save creates or updates a borrower. A duplicate email maps to
// shared.ErrAlreadyExists.
func (r *GormBorrowerRepository) Save(ctx context.Context, borrower *membership.Borrower) error {
	if err := r.conn(ctx).Save(borrower).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Delete deletes a borrower
func (r *GormBorrowerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&membership.Borrower{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts borrowers matching the filter
func (r *GormBorrowerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.conn(ctx).Model(&membership.Borrower{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByEmail checks if a borrower with the given email exists
func (r *GormBorrowerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if email == "" {
		return false, nil
	}
	var count int64
	if err := r.conn(ctx).
		Model(&membership.Borrower{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormBorrowerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, BorrowerSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

func (r *GormBorrowerRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	return query
}

// Ensure GormBorrowerRepository implements BorrowerRepository
var _ membership.BorrowerRepository = (*GormBorrowerRepository)(nil)
