package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const cacheTTL = 5 * time.Minute

// AnalyticsService answers read-only questions over completed loans
type AnalyticsService struct {
	loanRepo lending.LoanRepository
	cache    Cache
	logger   *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	loanRepo lending.LoanRepository,
	cache Cache,
	logger *zap.Logger,
) *AnalyticsService {
	if cache == nil {
		cache = NopCache{}
	}
	return &AnalyticsService{
		loanRepo: loanRepo,
		cache:    cache,
		logger:   logger,
	}
}

// MostBorrowedBooks returns the books with the most completed loans in
// the window, most borrowed first with ties broken by title
func (s *AnalyticsService) MostBorrowedBooks(ctx context.Context, query MostBorrowedBooksQuery) (*BooksAnalyticsResponse, error) {
	applyPageDefaults(&query.Page, &query.PageSize)
	if err := validateWindow(query.StartDate, query.EndDate, query.Page, query.PageSize); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("analytics:most-borrowed:%s:%s:%d:%d",
		query.StartDate.Format("2006-01-02"), query.EndDate.Format("2006-01-02"),
		query.Page, query.PageSize)
	var cached BooksAnalyticsResponse
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		s.logger.Warn("analytics cache read failed", zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	counts, err := s.loanRepo.MostBorrowedBooks(ctx, query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}

	books := make([]BookAnalytics, len(counts))
	for i, c := range counts {
		books[i] = BookAnalytics{
			ID:          c.BookID,
			Title:       c.Title,
			Author:      c.Author,
			ISBN:        c.ISBN,
			Category:    c.Category,
			PageCount:   c.PageCount,
			BorrowCount: c.BorrowCount,
		}
	}

	response := paginateBooks(books, query.Page, query.PageSize)

	if err := s.cache.Set(ctx, cacheKey, response, cacheTTL); err != nil {
		s.logger.Warn("analytics cache write failed", zap.Error(err))
	}

	return response, nil
}

// MostActiveBorrowers returns the borrowers with the most completed
// loans in the window. Only borrower IDs and counts are exposed.
func (s *AnalyticsService) MostActiveBorrowers(ctx context.Context, query MostActiveBorrowersQuery) (*BorrowersAnalyticsResponse, error) {
	applyPageDefaults(&query.Page, &query.PageSize)
	if err := validateWindow(query.StartDate, query.EndDate, query.Page, query.PageSize); err != nil {
		return nil, err
	}

	loans, err := s.loanRepo.FindCompletedLoansByDateRange(ctx, query.StartDate, query.EndDate)
	if err != nil {
		return nil, err
	}

	countsByBorrower := make(map[uuid.UUID]int)
	for i := range loans {
		countsByBorrower[loans[i].BorrowerID]++
	}

	borrowers := make([]BorrowerAnalytics, 0, len(countsByBorrower))
	for id, count := range countsByBorrower {
		borrowers = append(borrowers, BorrowerAnalytics{ID: id, BorrowCount: count})
	}
	sort.Slice(borrowers, func(i, j int) bool {
		if borrowers[i].BorrowCount != borrowers[j].BorrowCount {
			return borrowers[i].BorrowCount > borrowers[j].BorrowCount
		}
		return borrowers[i].ID.String() < borrowers[j].ID.String()
	})

	totalCount := len(borrowers)
	start := (query.Page - 1) * query.PageSize
	if start > totalCount {
		start = totalCount
	}
	end := start + query.PageSize
	if end > totalCount {
		end = totalCount
	}

	return &BorrowersAnalyticsResponse{
		Borrowers:   borrowers[start:end],
		TotalCount:  totalCount,
		Page:        query.Page,
		PageSize:    query.PageSize,
		HasNextPage: query.Page*query.PageSize < totalCount,
	}, nil
}

// ReadingPace estimates a borrower's average pages per day over their
// completed loans. Loans with unusable page counts are skipped; when
// nothing usable remains the response flags insufficient data instead
// of failing.
func (s *AnalyticsService) ReadingPace(ctx context.Context, borrowerID uuid.UUID) (*ReadingPaceResponse, error) {
	if borrowerID == uuid.Nil {
		return nil, shared.NewValidationError("Borrower ID cannot be empty")
	}

	completedLoans, err := s.loanRepo.CompletedLoansWithBookForBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	if len(completedLoans) == 0 {
		return insufficientPaceData(borrowerID, "No completed loans found for this borrower"), nil
	}

	var paces []decimal.Decimal
	for _, loan := range completedLoans {
		if loan.BookPageCount <= 0 {
			continue
		}
		daysSpent := daysSpentReading(loan)
		if daysSpent <= 0 {
			continue
		}
		pace := decimal.NewFromInt(int64(loan.BookPageCount)).
			Div(decimal.NewFromInt(int64(daysSpent)))
		paces = append(paces, pace)
	}

	if len(paces) == 0 {
		return insufficientPaceData(borrowerID, "Unable to calculate reading pace from completed loans"), nil
	}

	sum := decimal.Zero
	for _, p := range paces {
		sum = sum.Add(p)
	}
	average := sum.Div(decimal.NewFromInt(int64(len(paces)))).Round(2)

	return &ReadingPaceResponse{
		BorrowerID:         borrowerID,
		AveragePagesPerDay: average,
		LoanCountUsed:      len(paces),
		HasSufficientData:  true,
		Message:            fmt.Sprintf("Reading pace calculated from %d completed loans", len(paces)),
	}, nil
}

// Recommendations suggests books that readers of the given book also
// borrowed, most borrowed first
func (s *AnalyticsService) Recommendations(ctx context.Context, query RecommendationsQuery) (*BooksAnalyticsResponse, error) {
	if query.BookID == uuid.Nil {
		return nil, shared.NewValidationError("Book ID cannot be empty")
	}
	if query.Limit == 0 {
		query.Limit = 10
	}
	if query.Limit < 0 || query.Limit > 50 {
		return nil, shared.NewValidationError("Limit must be between 1 and 50")
	}

	readerIDs, err := s.loanRepo.FindBorrowersWhoBorrowedBook(ctx, query.BookID)
	if err != nil {
		return nil, err
	}
	if len(readerIDs) == 0 {
		return emptyBooksResponse(), nil
	}

	// Co-occurrence ranking: each completed loan of a fellow reader
	// counts toward the book it borrowed
	counts, err := s.loanRepo.BooksReturnedByBorrowers(ctx, readerIDs)
	if err != nil {
		return nil, err
	}

	recommendations := make([]BookAnalytics, 0, len(counts))
	for i := range counts {
		if counts[i].BookID == query.BookID {
			continue
		}
		recommendations = append(recommendations, BookAnalytics{
			ID:          counts[i].BookID,
			Title:       counts[i].Title,
			Author:      counts[i].Author,
			ISBN:        counts[i].ISBN,
			Category:    counts[i].Category,
			PageCount:   counts[i].PageCount,
			BorrowCount: counts[i].BorrowCount,
		})
	}
	if len(recommendations) == 0 {
		return emptyBooksResponse(), nil
	}

	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].BorrowCount != recommendations[j].BorrowCount {
			return recommendations[i].BorrowCount > recommendations[j].BorrowCount
		}
		return recommendations[i].Title < recommendations[j].Title
	})
	if len(recommendations) > query.Limit {
		recommendations = recommendations[:query.Limit]
	}

	return &BooksAnalyticsResponse{
		Books:       recommendations,
		TotalCount:  len(recommendations),
		Page:        1,
		PageSize:    len(recommendations),
		HasNextPage: false,
	}, nil
}

func daysSpentReading(loan lending.CompletedLoanWithBook) int {
	if loan.ReturnDate == nil {
		return 0
	}

	returned := dateOnly(*loan.ReturnDate)
	borrowed := dateOnly(loan.BorrowDate)
	if returned.Equal(borrowed) {
		return 1
	}

	days := int(returned.Sub(borrowed).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validateWindow(startDate, endDate time.Time, page, pageSize int) error {
	now := time.Now().UTC()
	if startDate.After(endDate) {
		return shared.NewValidationError("Start date cannot be greater than end date")
	}
	if startDate.After(now) {
		return shared.NewValidationError("Start date cannot be in the future")
	}
	if endDate.After(now) {
		return shared.NewValidationError("End date cannot be in the future")
	}
	if page <= 0 {
		return shared.NewValidationError("Page number must be greater than 0")
	}
	if pageSize <= 0 || pageSize > 100 {
		return shared.NewValidationError("Page size must be between 1 and 100")
	}
	return nil
}

func applyPageDefaults(page, pageSize *int) {
	if *page == 0 {
		*page = 1
	}
	if *pageSize == 0 {
		*pageSize = 20
	}
}

func paginateBooks(books []BookAnalytics, page, pageSize int) *BooksAnalyticsResponse {
	totalCount := len(books)
	start := (page - 1) * pageSize
	if start > totalCount {
		start = totalCount
	}
	end := start + pageSize
	if end > totalCount {
		end = totalCount
	}

	return &BooksAnalyticsResponse{
		Books:       books[start:end],
		TotalCount:  totalCount,
		Page:        page,
		PageSize:    pageSize,
		HasNextPage: page*pageSize < totalCount,
	}
}

func insufficientPaceData(borrowerID uuid.UUID, message string) *ReadingPaceResponse {
	return &ReadingPaceResponse{
		BorrowerID:         borrowerID,
		AveragePagesPerDay: decimal.Zero,
		HasSufficientData:  false,
		Message:            message,
	}
}

func emptyBooksResponse() *BooksAnalyticsResponse {
	return &BooksAnalyticsResponse{
		Books:       []BookAnalytics{},
		TotalCount:  0,
		Page:        1,
		PageSize:    0,
		HasNextPage: false,
	}
}
