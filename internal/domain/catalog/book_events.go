package catalog

import (
	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeBook = "Book"

// Event type constants
const (
	EventTypeBookCreated       = "BookCreated"
	EventTypeBookUpdated       = "BookUpdated"
	EventTypeBookStatusChanged = "BookStatusChanged"
	EventTypeBookDeleted       = "BookDeleted"
)

// BookCreatedEvent is published when a new book is added to the catalog
type BookCreatedEvent struct {
	shared.BaseDomainEvent
	BookID    uuid.UUID `json:"book_id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	Category  string    `json:"category"`
	PageCount int       `json:"page_count"`
}

// NewBookCreatedEvent creates a new BookCreatedEvent
func NewBookCreatedEvent(book *Book) *BookCreatedEvent {
	return &BookCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookCreated, AggregateTypeBook, book.ID),
		BookID:          book.ID,
		Title:           book.Title,
		Author:          book.Author,
		ISBN:            book.ISBN,
		Category:        book.Category,
		PageCount:       book.PageCount,
	}
}

// BookUpdatedEvent is published when a book's descriptive fields change
type BookUpdatedEvent struct {
	shared.BaseDomainEvent
	BookID   uuid.UUID `json:"book_id"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Category string    `json:"category"`
}

// NewBookUpdatedEvent creates a new BookUpdatedEvent
func NewBookUpdatedEvent(book *Book) *BookUpdatedEvent {
	return &BookUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookUpdated, AggregateTypeBook, book.ID),
		BookID:          book.ID,
		Title:           book.Title,
		Author:          book.Author,
		Category:        book.Category,
	}
}

// BookStatusChangedEvent is published when a book's circulation status changes
type BookStatusChangedEvent struct {
	shared.BaseDomainEvent
	BookID    uuid.UUID  `json:"book_id"`
	ISBN      string     `json:"isbn"`
	OldStatus BookStatus `json:"old_status"`
	NewStatus BookStatus `json:"new_status"`
}

// NewBookStatusChangedEvent creates a new BookStatusChangedEvent
func NewBookStatusChangedEvent(book *Book, oldStatus, newStatus BookStatus) *BookStatusChangedEvent {
	return &BookStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookStatusChanged, AggregateTypeBook, book.ID),
		BookID:          book.ID,
		ISBN:            book.ISBN,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// BookDeletedEvent is published when a book is removed from the catalog
type BookDeletedEvent struct {
	shared.BaseDomainEvent
	BookID uuid.UUID `json:"book_id"`
	ISBN   string    `json:"isbn"`
}

// NewBookDeletedEvent creates a new BookDeletedEvent
func NewBookDeletedEvent(book *Book) *BookDeletedEvent {
	return &BookDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookDeleted, AggregateTypeBook, book.ID),
		BookID:          book.ID,
		ISBN:            book.ISBN,
	}
}
