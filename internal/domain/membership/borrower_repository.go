package membership

import (
	"context"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/shared"
)

// BorrowerRepository defines the interface for borrower persistence
type BorrowerRepository interface {
	// FindByID finds a borrower by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Borrower, error)

	// FindByEmail finds a borrower by normalized email
	FindByEmail(ctx context.Context, email string) (*Borrower, error)

	// FindAll finds all borrowers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Borrower, error)

	// FindByStatus finds borrowers by membership status
	FindByStatus(ctx context.Context, status MemberStatus, filter shared.Filter) ([]Borrower, error)

	// FindByIDs finds multiple borrowers by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Borrower, error)

	// Save creates or updates a borrower
	Save(ctx context.Context, borrower *Borrower) error

	// Delete deletes a borrower
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts borrowers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// ExistsByEmail checks if a borrower with the given email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
