package analytics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/library/backend/internal/domain/catalog"
	"github.com/library/backend/internal/domain/lending"
	"github.com/library/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type analyticsFixture struct {
	service   *AnalyticsService
	books     *testutil.InMemoryBookRepository
	loans     *testutil.InMemoryLoanRepository
	dune      *catalog.Book
	found     *catalog.Book
	sicp      *catalog.Book
	borrowerA uuid.UUID
	borrowerB uuid.UUID
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()
	ctx := context.Background()

	books := testutil.NewInMemoryBookRepository()
	loans := testutil.NewInMemoryLoanRepository()
	loans.LinkBooks(books)

	f := &analyticsFixture{
		service:   NewAnalyticsService(loans, nil, zap.NewNop()),
		books:     books,
		loans:     loans,
		borrowerA: uuid.New(),
		borrowerB: uuid.New(),
	}

	var err error
	f.dune, err = catalog.NewBook("Dune", "Frank Herbert", "9780441172719", "Science Fiction", 412)
	require.NoError(t, err)
	f.found, err = catalog.NewBook("Foundation", "Isaac Asimov", "9780553293357", "Science Fiction", 255)
	require.NoError(t, err)
	f.sicp, err = catalog.NewBook("SICP", "Harold Abelson", "9780262510875", "Textbook", 657)
	require.NoError(t, err)
	for _, book := range []*catalog.Book{f.dune, f.found, f.sicp} {
		require.NoError(t, books.Save(ctx, book))
	}
	return f
}

// completeLoan records a finished borrow of the book by the borrower
func (f *analyticsFixture) completeLoan(t *testing.T, bookID, borrowerID uuid.UUID) {
	t.Helper()
	loan, err := lending.NewLoan(bookID, borrowerID, 14)
	require.NoError(t, err)
	require.NoError(t, loan.Return())
	require.NoError(t, f.loans.Save(context.Background(), loan))
}

func (f *analyticsFixture) seedHistory(t *testing.T) {
	t.Helper()
	f.completeLoan(t, f.dune.ID, f.borrowerA)
	f.completeLoan(t, f.found.ID, f.borrowerA)
	f.completeLoan(t, f.dune.ID, f.borrowerB)
}

func window() (time.Time, time.Time) {
	now := time.Now().UTC()
	return now.AddDate(0, 0, -7), now
}

func TestMostBorrowedBooks(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by completed borrows", func(t *testing.T) {
		f := newAnalyticsFixture(t)
		f.seedHistory(t)
		start, end := window()

		result, err := f.service.MostBorrowedBooks(ctx, MostBorrowedBooksQuery{
			StartDate: start, EndDate: end,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalCount)
		require.Len(t, result.Books, 2)
		assert.Equal(t, "Dune", result.Books[0].Title)
		assert.EqualValues(t, 2, result.Books[0].BorrowCount)
		assert.Equal(t, "Foundation", result.Books[1].Title)
		assert.EqualValues(t, 1, result.Books[1].BorrowCount)
	})

	t.Run("paginates", func(t *testing.T) {
		f := newAnalyticsFixture(t)
		f.seedHistory(t)
		start, end := window()

		result, err := f.service.MostBorrowedBooks(ctx, MostBorrowedBooksQuery{
			StartDate: start, EndDate: end, Page: 1, PageSize: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalCount)
		require.Len(t, result.Books, 1)
		assert.Equal(t, "Dune", result.Books[0].Title)
		assert.True(t, result.HasNextPage)
	})

	t.Run("active loans do not count", func(t *testing.T) {
		f := newAnalyticsFixture(t)
		loan, err := lending.NewLoan(f.sicp.ID, f.borrowerA, 14)
		require.NoError(t, err)
		require.NoError(t, f.loans.Save(ctx, loan))
		start, end := window()

		result, err := f.service.MostBorrowedBooks(ctx, MostBorrowedBooksQuery{
			StartDate: start, EndDate: end,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, result.TotalCount)
	})

	t.Run("rejects bad windows", func(t *testing.T) {
		f := newAnalyticsFixture(t)
		start, end := window()

		_, err := f.service.MostBorrowedBooks(ctx, MostBorrowedBooksQuery{
			StartDate: end, EndDate: start,
		})
		assert.Error(t, err)

		future := time.Now().UTC().AddDate(0, 0, 2)
		_, err = f.service.MostBorrowedBooks(ctx, MostBorrowedBooksQuery{
			StartDate: start, EndDate: future,
		})
		assert.Error(t, err)

		_, err = f.service.MostBorrowedBooks(ctx, MostBorrowedBooksQuery{
			StartDate: start, EndDate: end, PageSize: 200,
		})
		assert.Error(t, err)
	})
}

func TestMostActiveBorrowers(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks borrowers by completed loans", func(t *testing.T) {
		f := newAnalyticsFixture(t)
		f.seedHistory(t)
		start, end := window()

		result, err := f.service.MostActiveBorrowers(ctx, MostActiveBorrowersQuery{
			StartDate: start, EndDate: end,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalCount)
		require.Len(t, result.Borrowers, 2)
		assert.Equal(t, f.borrowerA, result.Borrowers[0].ID)
		assert.Equal(t, 2, result.Borrowers[0].BorrowCount)
		assert.Equal(t, 1, result.Borrowers[1].BorrowCount)
	})

	t.Run("empty window yields empty result", func(t *testing.T) {
		f := newAnalyticsFixture(t)
		start, end := window()

		result, err := f.service.MostActiveBorrowers(ctx, MostActiveBorrowersQuery{
			StartDate: start, EndDate: end,
		})
		require.NoError(t, err)
		assert.Zero(t, result.TotalCount)
		assert.Empty(t, result.Borrowers)
	})
}

func TestReadingPace(t *testing.T) {
	ctx := context.Background()

	t.Run("averages pages per day across completed loans", func(t *testing.T) {
		f := newAnalyticsFixture(t)
		f.completeLoan(t, f.dune.ID, f.borrowerA)
		f.completeLoan(t, f.found.ID, f.borrowerA)

		result, err := f.service.ReadingPace(ctx, f.borrowerA)
		require.NoError(t, err)
		assert.True(t, result.HasSufficientData)
		assert.Equal(t, 2, result.LoanCountUsed)
		// Same-day returns count as one day each: (412 + 255) / 2
		assert.True(t, result.AveragePagesPerDay.Equal(decimal.NewFromFloat(333.5)),
			"got %s", result.AveragePagesPerDay)
	})

	t.Run("no completed loans means insufficient data, not an error", func(t *testing.T) {
		f := newAnalyticsFixture(t)

		result, err := f.service.ReadingPace(ctx, f.borrowerA)
		require.NoError(t, err)
		assert.False(t, result.HasSufficientData)
		assert.True(t, result.AveragePagesPerDay.IsZero())
	})

	t.Run("loans without a usable page count are skipped", func(t *testing.T) {
		f := newAnalyticsFixture(t)
		f.completeLoan(t, uuid.New(), f.borrowerA) // book no longer in the catalog

		result, err := f.service.ReadingPace(ctx, f.borrowerA)
		require.NoError(t, err)
		assert.False(t, result.HasSufficientData)
	})

	t.Run("rejects an empty borrower id", func(t *testing.T) {
		f := newAnalyticsFixture(t)

		_, err := f.service.ReadingPace(ctx, uuid.Nil)
		assert.Error(t, err)
	})
}

func TestRecommendations(t *testing.T) {
	ctx := context.Background()

	t.Run("suggests books that fellow readers borrowed", func(t *testing.T) {
		f := newAnalyticsFixture(t)
		f.seedHistory(t)

		result, err := f.service.Recommendations(ctx, RecommendationsQuery{BookID: f.dune.ID})
		require.NoError(t, err)
		require.Len(t, result.Books, 1)
		assert.Equal(t, "Foundation", result.Books[0].Title)
	})

	t.Run("ranks suggestions by how often fellow readers borrowed them", func(t *testing.T) {
		f := newAnalyticsFixture(t)
		f.completeLoan(t, f.dune.ID, f.borrowerA)
		f.completeLoan(t, f.dune.ID, f.borrowerB)
		f.completeLoan(t, f.found.ID, f.borrowerA)
		f.completeLoan(t, f.found.ID, f.borrowerB)
		f.completeLoan(t, f.sicp.ID, f.borrowerA)

		result, err := f.service.Recommendations(ctx, RecommendationsQuery{BookID: f.dune.ID})
		require.NoError(t, err)
		require.Len(t, result.Books, 2)
		assert.Equal(t, "Foundation", result.Books[0].Title)
		assert.EqualValues(t, 2, result.Books[0].BorrowCount)
		assert.Equal(t, "SICP", result.Books[1].Title)
		assert.EqualValues(t, 1, result.Books[1].BorrowCount)
	})

	t.Run("no readers means an empty response", func(t *testing.T) {
		f := newAnalyticsFixture(t)

		result, err := f.service.Recommendations(ctx, RecommendationsQuery{BookID: f.dune.ID})
		require.NoError(t, err)
		assert.Empty(t, result.Books)
		assert.Zero(t, result.TotalCount)
	})

	t.Run("validates input", func(t *testing.T) {
		f := newAnalyticsFixture(t)

		_, err := f.service.Recommendations(ctx, RecommendationsQuery{BookID: uuid.Nil})
		assert.Error(t, err)

		_, err = f.service.Recommendations(ctx, RecommendationsQuery{BookID: f.dune.ID, Limit: 51})
		assert.Error(t, err)
	})
}

// memoryCache is a minimal Cache for asserting cache behavior
type memoryCache struct {
	mu    sync.Mutex
	items map[string]BooksAnalyticsResponse
	sets  int
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, ok := c.items[key]
	if !ok {
		return false, nil
	}
	*dest.(*BooksAnalyticsResponse) = cached
	return true, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]BooksAnalyticsResponse)
	}
	c.items[key] = *value.(*BooksAnalyticsResponse)
	c.sets++
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	return nil
}

func TestMostBorrowedBooksCaching(t *testing.T) {
	ctx := context.Background()

	f := newAnalyticsFixture(t)
	cache := &memoryCache{}
	f.service = NewAnalyticsService(f.loans, cache, zap.NewNop())
	f.seedHistory(t)
	start, end := window()
	query := MostBorrowedBooksQuery{StartDate: start, EndDate: end}

	first, err := f.service.MostBorrowedBooks(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// New activity within the TTL is not reflected
	f.completeLoan(t, f.sicp.ID, f.borrowerB)

	second, err := f.service.MostBorrowedBooks(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, first.TotalCount, second.TotalCount)
	assert.Equal(t, 1, cache.sets)
}
