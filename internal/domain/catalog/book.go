package catalog

import (
	"strings"
	"time"

	"github.com/library/backend/internal/domain/shared"
)

// BookStatus represents the circulation status of a book
type BookStatus string

const (
	BookStatusAvailable        BookStatus = "available"
	BookStatusBorrowed         BookStatus = "borrowed"
	BookStatusReserved         BookStatus = "reserved"
	BookStatusUnderMaintenance BookStatus = "under_maintenance"
)

// bookCategories is the closed set of accepted categories
var bookCategories = map[string]struct{}{
	"Fiction":         {},
	"Non-Fiction":     {},
	"Science":         {},
	"Technology":      {},
	"Biography":       {},
	"History":         {},
	"Mystery":         {},
	"Romance":         {},
	"Children":        {},
	"Reference":       {},
	"Textbook":        {},
	"Poetry":          {},
	"Drama":           {},
	"Fantasy":         {},
	"Science Fiction": {},
}

// Book represents a physical book in the catalog
// It is the aggregate root for catalog operations
type Book struct {
	shared.BaseAggregateRoot
	Title     string     `gorm:"type:varchar(200);not null"`
	Author    string     `gorm:"type:varchar(100);not null"`
	ISBN      string     `gorm:"type:varchar(13);not null;uniqueIndex"`
	Category  string     `gorm:"type:varchar(50);not null;index"`
	PageCount int        `gorm:"not null"`
	Status    BookStatus `gorm:"type:varchar(20);not null;default:'available';index"`
}

// TableName returns the table name for GORM
func (Book) TableName() string {
	return "books"
}

// NewBook creates a new book in the available state
func NewBook(title, author, isbn, category string, pageCount int) (*Book, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateAuthor(author); err != nil {
		return nil, err
	}
	normalizedISBN, err := NormalizeISBN(isbn)
	if err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	if err := validatePageCount(pageCount); err != nil {
		return nil, err
	}

	book := &Book{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             title,
		Author:            author,
		ISBN:              normalizedISBN,
		Category:          category,
		PageCount:         pageCount,
		Status:            BookStatusAvailable,
	}

	book.AddDomainEvent(NewBookCreatedEvent(book))

	return book, nil
}

// Update updates the book's descriptive fields
func (b *Book) Update(title, author, category string, pageCount int) error {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	if err := validateTitle(title); err != nil {
		return err
	}
	if err := validateAuthor(author); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}
	if err := validatePageCount(pageCount); err != nil {
		return err
	}

	b.Title = title
	b.Author = author
	b.Category = category
	b.PageCount = pageCount
	b.UpdatedAt = time.Now().UTC()
	b.IncrementVersion()

	b.AddDomainEvent(NewBookUpdatedEvent(b))

	return nil
}

// MarkAsBorrowed transitions the book to borrowed.
// Only an available book can be borrowed; borrowing from any other
// state, including borrowed itself, fails.
func (b *Book) MarkAsBorrowed() error {
	if b.Status != BookStatusAvailable {
		return shared.ErrBookNotAvailable
	}

	b.setStatus(BookStatusBorrowed)
	return nil
}

// MarkAsReserved transitions the book to reserved.
// Only an available book can be reserved.
func (b *Book) MarkAsReserved() error {
	if b.Status != BookStatusAvailable {
		return shared.ErrBookNotAvailable
	}

	b.setStatus(BookStatusReserved)
	return nil
}

// MarkAsAvailable returns the book to circulation from any state
func (b *Book) MarkAsAvailable() {
	if b.Status == BookStatusAvailable {
		return
	}
	b.setStatus(BookStatusAvailable)
}

// MarkUnderMaintenance pulls the book out of circulation from any state
func (b *Book) MarkUnderMaintenance() {
	if b.Status == BookStatusUnderMaintenance {
		return
	}
	b.setStatus(BookStatusUnderMaintenance)
}

func (b *Book) setStatus(status BookStatus) {
	oldStatus := b.Status
	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	b.IncrementVersion()

	b.AddDomainEvent(NewBookStatusChangedEvent(b, oldStatus, status))
}

// IsAvailable returns true if the book can be borrowed or reserved
func (b *Book) IsAvailable() bool {
	return b.Status == BookStatusAvailable
}

// IsBorrowed returns true if the book is currently on loan
func (b *Book) IsBorrowed() bool {
	return b.Status == BookStatusBorrowed
}

// NormalizeISBN strips separators from an ISBN and validates the result.
// Accepts ISBN-10 (nine digits plus a digit or X check character) and
// ISBN-13 (thirteen digits).
func NormalizeISBN(isbn string) (string, error) {
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	if cleaned == "" {
		return "", shared.NewDomainError("INVALID_ISBN", "ISBN cannot be empty")
	}

	switch len(cleaned) {
	case 10:
		for i, r := range cleaned {
			if i < 9 && !isDigit(r) {
				return "", shared.NewDomainError("INVALID_ISBN", "ISBN-10 must be nine digits followed by a digit or X")
			}
			if i == 9 && !isDigit(r) && r != 'X' && r != 'x' {
				return "", shared.NewDomainError("INVALID_ISBN", "ISBN-10 must be nine digits followed by a digit or X")
			}
		}
	case 13:
		for _, r := range cleaned {
			if !isDigit(r) {
				return "", shared.NewDomainError("INVALID_ISBN", "ISBN-13 must be thirteen digits")
			}
		}
	default:
		return "", shared.NewDomainError("INVALID_ISBN", "ISBN must be 10 or 13 characters after removing separators")
	}

	return cleaned, nil
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Categories returns the accepted book categories
func Categories() []string {
	categories := make([]string, 0, len(bookCategories))
	for c := range bookCategories {
		categories = append(categories, c)
	}
	return categories
}

// validateTitle validates the book title
func validateTitle(title string) error {
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot be empty")
	}
	if len(title) > 200 {
		return shared.NewDomainError("INVALID_TITLE", "Title cannot exceed 200 characters")
	}
	return nil
}

// validateAuthor validates the author name
func validateAuthor(author string) error {
	if author == "" {
		return shared.NewDomainError("INVALID_AUTHOR", "Author cannot be empty")
	}
	if len(author) > 100 {
		return shared.NewDomainError("INVALID_AUTHOR", "Author cannot exceed 100 characters")
	}
	return nil
}

// validateCategory validates the category against the accepted set
func validateCategory(category string) error {
	if category == "" {
		return shared.NewDomainError("INVALID_CATEGORY", "Category cannot be empty")
	}
	if _, ok := bookCategories[category]; !ok {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is not one of the accepted categories")
	}
	return nil
}

// validatePageCount validates the page count
func validatePageCount(pageCount int) error {
	if pageCount < 1 {
		return shared.NewDomainError("INVALID_PAGE_COUNT", "Page count must be at least 1")
	}
	if pageCount > 10000 {
		return shared.NewDomainError("INVALID_PAGE_COUNT", "Page count cannot exceed 10000")
	}
	return nil
}
