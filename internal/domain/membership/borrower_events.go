package membership

import (
	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeBorrower = "Borrower"

// Event type constants
const (
	EventTypeBorrowerRegistered    = "BorrowerRegistered"
	EventTypeBorrowerUpdated       = "BorrowerUpdated"
	EventTypeBorrowerStatusChanged = "BorrowerStatusChanged"
	EventTypeBorrowerDeleted       = "BorrowerDeleted"
)

// BorrowerRegisteredEvent is published when a new borrower registers
type BorrowerRegisteredEvent struct {
	shared.BaseDomainEvent
	BorrowerID uuid.UUID `json:"borrower_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
}

// NewBorrowerRegisteredEvent creates a new BorrowerRegisteredEvent
func NewBorrowerRegisteredEvent(borrower *Borrower) *BorrowerRegisteredEvent {
	return &BorrowerRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBorrowerRegistered, AggregateTypeBorrower, borrower.ID),
		BorrowerID:      borrower.ID,
		FullName:        borrower.FullName(),
		Email:           borrower.Email,
	}
}

// BorrowerUpdatedEvent is published when contact details change
type BorrowerUpdatedEvent struct {
	shared.BaseDomainEvent
	BorrowerID uuid.UUID `json:"borrower_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
}

// NewBorrowerUpdatedEvent creates a new BorrowerUpdatedEvent
func NewBorrowerUpdatedEvent(borrower *Borrower) *BorrowerUpdatedEvent {
	return &BorrowerUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBorrowerUpdated, AggregateTypeBorrower, borrower.ID),
		BorrowerID:      borrower.ID,
		FullName:        borrower.FullName(),
		Email:           borrower.Email,
	}
}

// BorrowerStatusChangedEvent is published when the membership status changes
type BorrowerStatusChangedEvent struct {
	shared.BaseDomainEvent
	BorrowerID uuid.UUID    `json:"borrower_id"`
	OldStatus  MemberStatus `json:"old_status"`
	NewStatus  MemberStatus `json:"new_status"`
}

// NewBorrowerStatusChangedEvent creates a new BorrowerStatusChangedEvent
func NewBorrowerStatusChangedEvent(borrower *Borrower, oldStatus, newStatus MemberStatus) *BorrowerStatusChangedEvent {
	return &BorrowerStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBorrowerStatusChanged, AggregateTypeBorrower, borrower.ID),
		BorrowerID:      borrower.ID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// BorrowerDeletedEvent is published when a borrower is removed
type BorrowerDeletedEvent struct {
	shared.BaseDomainEvent
	BorrowerID uuid.UUID `json:"borrower_id"`
	Email      string    `json:"email"`
}

// NewBorrowerDeletedEvent creates a new BorrowerDeletedEvent
func NewBorrowerDeletedEvent(borrower *Borrower) *BorrowerDeletedEvent {
	return &BorrowerDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBorrowerDeleted, AggregateTypeBorrower, borrower.ID),
		BorrowerID:      borrower.ID,
		Email:           borrower.Email,
	}
}
