package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/library/backend/internal/application/analytics"
	"github.com/library/backend/internal/application/catalog"
	"github.com/library/backend/internal/application/lending"
	"github.com/library/backend/internal/application/membership"
	"github.com/library/backend/internal/infrastructure/config"
	"github.com/library/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestEngine(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()

	bookRepo := testutil.NewInMemoryBookRepository()
	borrowerRepo := testutil.NewInMemoryBorrowerRepository()
	loanRepo := testutil.NewInMemoryLoanRepository()
	loanRepo.LinkBooks(bookRepo)
	bus := testutil.NewRecordingEventBus()
	logger := zap.NewNop()

	return Setup(Dependencies{
		Config:           cfg,
		Logger:           logger,
		BookService:      catalog.NewBookService(bookRepo, loanRepo, bus, logger),
		BorrowerService:  membership.NewBorrowerService(borrowerRepo, loanRepo, bus, logger),
		LoanService:      lending.NewLoanService(loanRepo, bookRepo, borrowerRepo, testutil.NewNoopTransactionManager(), bus, logger),
		AnalyticsService: analytics.NewAnalyticsService(loanRepo, nil, logger),
	})
}

func TestSetupRegistersRoutes(t *testing.T) {
	engine := setupTestEngine(t, &config.Config{})

	tests := []struct {
		method string
		path   string
		status int
	}{
		{"GET", "/api/v1/system/ping", http.StatusOK},
		{"GET", "/api/v1/system/info", http.StatusOK},
		{"GET", "/api/v1/system/health", http.StatusOK},
		{"GET", "/api/v1/books", http.StatusOK},
		{"GET", "/api/v1/books/categories", http.StatusOK},
		{"GET", "/api/v1/borrowers", http.StatusOK},
		{"GET", "/api/v1/loans", http.StatusOK},
		{"GET", "/api/v1/loans/overdue", http.StatusOK},
		{"POST", "/api/v1/loans/overdue/sweep", http.StatusOK},
		{"GET", "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSetupRequestIDPropagation(t *testing.T) {
	engine := setupTestEngine(t, &config.Config{})

	t.Run("generates request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/system/ping", nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("echoes incoming request id into error body", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/books/not-a-uuid", nil)
		req.Header.Set("X-Request-ID", "req-router-test")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusBadRequest, w.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		errInfo := body["error"].(map[string]interface{})
		assert.Equal(t, "req-router-test", errInfo["request_id"])
	})
}

func TestSetupSecurityHeaders(t *testing.T) {
	engine := setupTestEngine(t, &config.Config{})

	req := httptest.NewRequest("GET", "/api/v1/system/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestSetupBodyLimit(t *testing.T) {
	cfg := &config.Config{}
	cfg.HTTP.MaxBodySize = 64

	engine := setupTestEngine(t, cfg)

	payload := strings.NewReader(`{"title":"` + strings.Repeat("x", 200) + `"}`)
	req := httptest.NewRequest("POST", "/api/v1/books", payload)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
