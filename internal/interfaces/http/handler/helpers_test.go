package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	analyticsapp "github.com/library/backend/internal/application/analytics"
	catalogapp "github.com/library/backend/internal/application/catalog"
	lendingapp "github.com/library/backend/internal/application/lending"
	membershipapp "github.com/library/backend/internal/application/membership"
	"github.com/library/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv wires the application services over in-memory repositories
// and exposes them through a gin engine with the real route layout.
type testEnv struct {
	engine    *gin.Engine
	books     *catalogapp.BookService
	borrowers *membershipapp.BorrowerService
	loans     *lendingapp.LoanService
	analytics *analyticsapp.AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	bookRepo := testutil.NewInMemoryBookRepository()
	borrowerRepo := testutil.NewInMemoryBorrowerRepository()
	loanRepo := testutil.NewInMemoryLoanRepository()
	loanRepo.LinkBooks(bookRepo)
	bus := testutil.NewRecordingEventBus()
	logger := zap.NewNop()

	env := &testEnv{
		books:     catalogapp.NewBookService(bookRepo, loanRepo, bus, logger),
		borrowers: membershipapp.NewBorrowerService(borrowerRepo, loanRepo, bus, logger),
		loans:     lendingapp.NewLoanService(loanRepo, bookRepo, borrowerRepo, testutil.NewNoopTransactionManager(), bus, logger),
		analytics: analyticsapp.NewAnalyticsService(loanRepo, nil, logger),
	}

	engine := gin.New()
	v1 := engine.Group("/api/v1")

	bookHandler := NewBookHandler(env.books)
	books := v1.Group("/books")
	books.POST("", bookHandler.Create)
	books.GET("", bookHandler.List)
	books.GET("/categories", bookHandler.Categories)
	books.GET("/isbn/:isbn", bookHandler.GetByISBN)
	books.GET("/:id", bookHandler.Get)
	books.PUT("/:id", bookHandler.Update)
	books.PATCH("/:id/status", bookHandler.ChangeStatus)
	books.DELETE("/:id", bookHandler.Delete)

	borrowerHandler := NewBorrowerHandler(env.borrowers)
	borrowers := v1.Group("/borrowers")
	borrowers.POST("", borrowerHandler.Register)
	borrowers.GET("", borrowerHandler.List)
	borrowers.GET("/:id", borrowerHandler.Get)
	borrowers.PUT("/:id", borrowerHandler.Update)
	borrowers.PATCH("/:id/email", borrowerHandler.UpdateEmail)
	borrowers.PATCH("/:id/status", borrowerHandler.ChangeStatus)
	borrowers.DELETE("/:id", borrowerHandler.Delete)
	borrowers.GET("/:id/loans", borrowerHandler.LoanHistory)

	loanHandler := NewLoanHandler(env.loans)
	loans := v1.Group("/loans")
	loans.POST("", loanHandler.Borrow)
	loans.GET("", loanHandler.List)
	loans.GET("/overdue", loanHandler.ListOverdue)
	loans.POST("/overdue/sweep", loanHandler.SweepOverdue)
	loans.GET("/:id", loanHandler.Get)
	loans.POST("/:id/return", loanHandler.Return)
	loans.POST("/book/:book_id/return", loanHandler.ReturnByBook)

	analyticsHandler := NewAnalyticsHandler(env.analytics)
	analyticsGroup := v1.Group("/analytics")
	analyticsGroup.GET("/books/most-borrowed", analyticsHandler.MostBorrowedBooks)
	analyticsGroup.GET("/books/:id/recommendations", analyticsHandler.Recommendations)
	analyticsGroup.GET("/borrowers/most-active", analyticsHandler.MostActiveBorrowers)
	analyticsGroup.GET("/borrowers/:id/reading-pace", analyticsHandler.ReadingPace)

	env.engine = engine
	return env
}

// do issues a request against the test engine and returns the recorder
func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body into a dto.Response-shaped map
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
