package analytics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MostBorrowedBooksQuery asks for the most borrowed books in a window
type MostBorrowedBooksQuery struct {
	StartDate time.Time `form:"start_date" time_format:"2006-01-02" binding:"required"`
	EndDate   time.Time `form:"end_date" time_format:"2006-01-02" binding:"required"`
	Page      int       `form:"page"`
	PageSize  int       `form:"page_size"`
}

// MostActiveBorrowersQuery asks for the busiest borrowers in a window
type MostActiveBorrowersQuery struct {
	StartDate time.Time `form:"start_date" time_format:"2006-01-02" binding:"required"`
	EndDate   time.Time `form:"end_date" time_format:"2006-01-02" binding:"required"`
	Page      int       `form:"page"`
	PageSize  int       `form:"page_size"`
}

// RecommendationsQuery asks for books borrowed by readers of a book
type RecommendationsQuery struct {
	BookID uuid.UUID
	Limit  int `form:"limit"`
}

// BookAnalytics is one book row in an analytics response
type BookAnalytics struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	ISBN        string    `json:"isbn"`
	Category    string    `json:"category"`
	PageCount   int       `json:"page_count"`
	BorrowCount int64     `json:"borrow_count"`
}

// BooksAnalyticsResponse is a paginated book analytics result
type BooksAnalyticsResponse struct {
	Books       []BookAnalytics `json:"books"`
	TotalCount  int             `json:"total_count"`
	Page        int             `json:"page"`
	PageSize    int             `json:"page_size"`
	HasNextPage bool            `json:"has_next_page"`
}

// BorrowerAnalytics is one borrower row in an analytics response.
// Only the ID and count are exposed.
type BorrowerAnalytics struct {
	ID          uuid.UUID `json:"id"`
	BorrowCount int       `json:"borrow_count"`
}

// BorrowersAnalyticsResponse is a paginated borrower analytics result
type BorrowersAnalyticsResponse struct {
	Borrowers   []BorrowerAnalytics `json:"borrowers"`
	TotalCount  int                 `json:"total_count"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	HasNextPage bool                `json:"has_next_page"`
}

// ReadingPaceResponse estimates how fast a borrower reads
type ReadingPaceResponse struct {
	BorrowerID         uuid.UUID       `json:"borrower_id"`
	AveragePagesPerDay decimal.Decimal `json:"average_pages_per_day"`
	LoanCountUsed      int             `json:"loan_count_used"`
	HasSufficientData  bool            `json:"has_sufficient_data"`
	Message            string          `json:"message"`
}
