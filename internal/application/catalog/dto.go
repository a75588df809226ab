package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/catalog"
)

// CreateBookRequest represents a request to add a book to the catalog
type CreateBookRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=200"`
	Author    string `json:"author" binding:"required,min=1,max=100"`
	ISBN      string `json:"isbn" binding:"required,min=10,max=17"`
	Category  string `json:"category" binding:"required"`
	PageCount int    `json:"page_count" binding:"required,min=1,max=10000"`
}

// UpdateBookRequest represents a request to update a book's details
type UpdateBookRequest struct {
	Title     string `json:"title" binding:"required,min=1,max=200"`
	Author    string `json:"author" binding:"required,min=1,max=100"`
	Category  string `json:"category" binding:"required"`
	PageCount int    `json:"page_count" binding:"required,min=1,max=10000"`
}

// ChangeBookStatusRequest represents a request to change a book's status
type ChangeBookStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available reserved under_maintenance"`
}

// BookResponse represents a book in API responses
type BookResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	Category  string    `json:"category"`
	PageCount int       `json:"page_count"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// BookListFilter represents filter options for the book list
type BookListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=available borrowed reserved under_maintenance"`
	Category string `form:"category"`
	Page     int    `form:"page" binding:"min=1"`
	PageSize int    `form:"page_size" binding:"min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToBookResponse converts a domain Book to BookResponse
func ToBookResponse(b *catalog.Book) BookResponse {
	return BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		ISBN:      b.ISBN,
		Category:  b.Category,
		PageCount: b.PageCount,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		Version:   b.Version,
	}
}
