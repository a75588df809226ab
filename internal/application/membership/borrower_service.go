package membership

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/membership"
	"github.com/library/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// BorrowerService handles membership business operations
type BorrowerService struct {
	borrowerRepo membership.BorrowerRepository
	loanRepo     lending.LoanRepository
	eventBus     shared.EventPublisher
	logger       *zap.Logger
}

// NewBorrowerService creates a new BorrowerService
func NewBorrowerService(
	borrowerRepo membership.BorrowerRepository,
	loanRepo lending.LoanRepository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *BorrowerService {
	return &BorrowerService{
		borrowerRepo: borrowerRepo,
		loanRepo:     loanRepo,
		eventBus:     eventBus,
		logger:       logger,
	}
}

// Register registers a new borrower
func (s *BorrowerService) Register(ctx context.Context, req RegisterBorrowerRequest) (*BorrowerResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	exists, err := s.borrowerRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Borrower with this email already exists")
	}

	var borrower *membership.Borrower
	if req.Name != "" && req.FirstName == "" {
		borrower, err = membership.NewBorrowerFromFullName(req.Name, req.Email, req.Phone)
	} else {
		borrower, err = membership.NewBorrower(req.FirstName, req.LastName, req.Email, req.Phone)
	}
	if err != nil {
		return nil, err
	}

	if err := s.borrowerRepo.Save(ctx, borrower); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, borrower)

	s.logger.Info("borrower registered",
		zap.String("borrower_id", borrower.ID.String()))

	response := ToBorrowerResponse(borrower)
	return &response, nil
}

// GetByID retrieves a borrower by ID
func (s *BorrowerService) GetByID(ctx context.Context, borrowerID uuid.UUID) (*BorrowerResponse, error) {
	borrower, err := s.borrowerRepo.FindByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	response := ToBorrowerResponse(borrower)
	return &response, nil
}

// GetByEmail retrieves a borrower by email
func (s *BorrowerService) GetByEmail(ctx context.Context, email string) (*BorrowerResponse, error) {
	borrower, err := s.borrowerRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}

	response := ToBorrowerResponse(borrower)
	return &response, nil
}

// List retrieves borrowers with filtering and pagination
func (s *BorrowerService) List(ctx context.Context, filter BorrowerListFilter) ([]BorrowerResponse, int64, error) {
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

	borrowers, err := s.borrowerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.borrowerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]BorrowerResponse, len(borrowers))
	for i := range borrowers {
		responses[i] = ToBorrowerResponse(&borrowers[i])
	}
	return responses, total, nil
}

// Update updates a borrower's contact details
func (s *BorrowerService) Update(ctx context.Context, borrowerID uuid.UUID, req UpdateBorrowerRequest) (*BorrowerResponse, error) {
	borrower, err := s.borrowerRepo.FindByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" && req.FirstName == "" {
		err = borrower.UpdateContactInfoFromFullName(req.Name, req.Phone)
	} else {
		err = borrower.UpdateContactInfo(req.FirstName, req.LastName, req.Phone)
	}
	if err != nil {
		return nil, err
	}

	if err := s.borrowerRepo.Save(ctx, borrower); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, borrower)

	response := ToBorrowerResponse(borrower)
	return &response, nil
}

// UpdateEmail changes a borrower's email address
func (s *BorrowerService) UpdateEmail(ctx context.Context, borrowerID uuid.UUID, req UpdateBorrowerEmailRequest) (*BorrowerResponse, error) {
	borrower, err := s.borrowerRepo.FindByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	newEmail := strings.ToLower(strings.TrimSpace(req.Email))
	if newEmail != borrower.Email {
		exists, err := s.borrowerRepo.ExistsByEmail(ctx, newEmail)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Borrower with this email already exists")
		}
	}

	if err := borrower.UpdateEmail(req.Email); err != nil {
		return nil, err
	}

	if err := s.borrowerRepo.Save(ctx, borrower); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, borrower)

	response := ToBorrowerResponse(borrower)
	return &response, nil
}

// ChangeStatus moves a borrower between membership states
func (s *BorrowerService) ChangeStatus(ctx context.Context, borrowerID uuid.UUID, req ChangeBorrowerStatusRequest) (*BorrowerResponse, error) {
	borrower, err := s.borrowerRepo.FindByID(ctx, borrowerID)
	if err != nil {
		return nil, err
	}

	switch membership.MemberStatus(req.Status) {
	case membership.MemberStatusActive:
		borrower.Activate()
	case membership.MemberStatusInactive:
		borrower.Deactivate()
	case membership.MemberStatusSuspended:
		borrower.Suspend()
	default:
		return nil, shared.NewDomainError("INVALID_STATUS", "Unknown member status")
	}

	if err := s.borrowerRepo.Save(ctx, borrower); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, borrower)

	response := ToBorrowerResponse(borrower)
	return &response, nil
}

// Delete removes a borrower. A borrower holding active loans cannot be
// deleted.
func (s *BorrowerService) Delete(ctx context.Context, borrowerID uuid.UUID) error {
	borrower, err := s.borrowerRepo.FindByID(ctx, borrowerID)
	if err != nil {
		return err
	}

	activeCount, err := s.loanRepo.CountActiveForBorrower(ctx, borrowerID)
	if err != nil {
		return err
	}
	if activeCount > 0 {
		return shared.NewDomainError("ACTIVE_LOAN_EXISTS", "Borrower with active loans cannot be deleted")
	}

	if err := s.borrowerRepo.Delete(ctx, borrowerID); err != nil {
		return err
	}

	event := membership.NewBorrowerDeletedEvent(borrower)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish borrower deleted event",
			zap.String("borrower_id", borrowerID.String()),
			zap.Error(err))
	}

	s.logger.Info("borrower deleted", zap.String("borrower_id", borrowerID.String()))
	return nil
}

// LoanHistory returns all loans of a borrower, newest first
func (s *BorrowerService) LoanHistory(ctx context.Context, borrowerID uuid.UUID) ([]lending.Loan, error) {
	if _, err := s.borrowerRepo.FindByID(ctx, borrowerID); err != nil {
		return nil, err
	}
	return s.loanRepo.FindLoanHistoryForBorrower(ctx, borrowerID)
}

func (s *BorrowerService) publishEvents(ctx context.Context, borrower *membership.Borrower) {
	events := borrower.DrainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish borrower events",
			zap.String("borrower_id", borrower.ID.String()),
			zap.Error(err))
	}
}
