package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func borrowTestBook(t *testing.T, env *testEnv, bookID, borrowerID string) string {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/v1/loans", map[string]any{
		"book_id":     bookID,
		"borrower_id": borrowerID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	data := body["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestLoanHandlerBorrow(t *testing.T) {
	t.Run("borrows available book", func(t *testing.T) {
		env := newTestEnv(t)
		bookID := createTestBook(t, env, "9780441172719")
		borrowerID := registerTestBorrower(t, env, "ada@example.com")

		w := env.do(t, http.MethodPost, "/api/v1/loans", map[string]any{
			"book_id":     bookID,
			"borrower_id": borrowerID,
		})

		require.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "active", data["status"])
		assert.Equal(t, bookID, data["book_id"])

		// Book leaves circulation
		w = env.do(t, http.MethodGet, "/api/v1/books/"+bookID, nil)
		book := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "borrowed", book["status"])
	})

	t.Run("rejects second loan for same book", func(t *testing.T) {
		env := newTestEnv(t)
		bookID := createTestBook(t, env, "9780441172719")
		firstBorrower := registerTestBorrower(t, env, "ada@example.com")
		secondBorrower := registerTestBorrower(t, env, "grace@example.com")
		borrowTestBook(t, env, bookID, firstBorrower)

		w := env.do(t, http.MethodPost, "/api/v1/loans", map[string]any{
			"book_id":     bookID,
			"borrower_id": secondBorrower,
		})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects suspended borrower", func(t *testing.T) {
		env := newTestEnv(t)
		bookID := createTestBook(t, env, "9780441172719")
		borrowerID := registerTestBorrower(t, env, "ada@example.com")

		w := env.do(t, http.MethodPatch, "/api/v1/borrowers/"+borrowerID+"/status", map[string]any{
			"status": "suspended",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPost, "/api/v1/loans", map[string]any{
			"book_id":     bookID,
			"borrower_id": borrowerID,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("404 for unknown book", func(t *testing.T) {
		env := newTestEnv(t)
		borrowerID := registerTestBorrower(t, env, "ada@example.com")

		w := env.do(t, http.MethodPost, "/api/v1/loans", map[string]any{
			"book_id":     "b2a3d9a4-6a72-4b13-9d2b-0f3a5f6e7c8d",
			"borrower_id": borrowerID,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rejects loan period beyond the maximum", func(t *testing.T) {
		env := newTestEnv(t)
		bookID := createTestBook(t, env, "9780441172719")
		borrowerID := registerTestBorrower(t, env, "ada@example.com")

		w := env.do(t, http.MethodPost, "/api/v1/loans", map[string]any{
			"book_id":          bookID,
			"borrower_id":      borrowerID,
			"loan_period_days": 90,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects missing body", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, http.MethodPost, "/api/v1/loans", map[string]any{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoanHandlerReturn(t *testing.T) {
	t.Run("returns by loan id", func(t *testing.T) {
		env := newTestEnv(t)
		bookID := createTestBook(t, env, "9780441172719")
		borrowerID := registerTestBorrower(t, env, "ada@example.com")
		loanID := borrowTestBook(t, env, bookID, borrowerID)

		w := env.do(t, http.MethodPost, "/api/v1/loans/"+loanID+"/return", map[string]any{
			"borrower_id": borrowerID,
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "returned", data["status"])
		assert.NotNil(t, data["return_date"])

		// Book is available again
		w = env.do(t, http.MethodGet, "/api/v1/books/"+bookID, nil)
		book := decodeBody(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "available", book["status"])
	})

	t.Run("returns by book id", func(t *testing.T) {
		env := newTestEnv(t)
		bookID := createTestBook(t, env, "9780441172719")
		borrowerID := registerTestBorrower(t, env, "ada@example.com")
		borrowTestBook(t, env, bookID, borrowerID)

		w := env.do(t, http.MethodPost, "/api/v1/loans/book/"+bookID+"/return", map[string]any{
			"borrower_id": borrowerID,
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, "returned", data["status"])
	})

	t.Run("rejects double return", func(t *testing.T) {
		env := newTestEnv(t)
		bookID := createTestBook(t, env, "9780441172719")
		borrowerID := registerTestBorrower(t, env, "ada@example.com")
		loanID := borrowTestBook(t, env, bookID, borrowerID)

		w := env.do(t, http.MethodPost, "/api/v1/loans/"+loanID+"/return", map[string]any{
			"borrower_id": borrowerID,
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPost, "/api/v1/loans/"+loanID+"/return", map[string]any{
			"borrower_id": borrowerID,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects return date before borrow date", func(t *testing.T) {
		env := newTestEnv(t)
		bookID := createTestBook(t, env, "9780441172719")
		borrowerID := registerTestBorrower(t, env, "ada@example.com")
		loanID := borrowTestBook(t, env, bookID, borrowerID)

		past := time.Now().AddDate(0, 0, -7)
		w := env.do(t, http.MethodPost, "/api/v1/loans/"+loanID+"/return", map[string]any{
			"borrower_id": borrowerID,
			"return_date": past.Format(time.RFC3339),
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("404 when the returning borrower does not hold the loan", func(t *testing.T) {
		env := newTestEnv(t)
		bookID := createTestBook(t, env, "9780441172719")
		borrowerID := registerTestBorrower(t, env, "ada@example.com")
		otherID := registerTestBorrower(t, env, "grace@example.com")
		loanID := borrowTestBook(t, env, bookID, borrowerID)

		w := env.do(t, http.MethodPost, "/api/v1/loans/"+loanID+"/return", map[string]any{
			"borrower_id": otherID,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)

		// The loan is untouched and the rightful borrower can still return
		w = env.do(t, http.MethodPost, "/api/v1/loans/"+loanID+"/return", map[string]any{
			"borrower_id": borrowerID,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("400 when the body omits the borrower", func(t *testing.T) {
		env := newTestEnv(t)
		bookID := createTestBook(t, env, "9780441172719")
		borrowerID := registerTestBorrower(t, env, "ada@example.com")
		loanID := borrowTestBook(t, env, bookID, borrowerID)

		w := env.do(t, http.MethodPost, "/api/v1/loans/"+loanID+"/return", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("404 when book has no active loan", func(t *testing.T) {
		env := newTestEnv(t)
		bookID := createTestBook(t, env, "9780441172719")
		borrowerID := registerTestBorrower(t, env, "ada@example.com")

		w := env.do(t, http.MethodPost, "/api/v1/loans/book/"+bookID+"/return", map[string]any{
			"borrower_id": borrowerID,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestLoanHandlerGet(t *testing.T) {
	env := newTestEnv(t)
	bookID := createTestBook(t, env, "9780441172719")
	borrowerID := registerTestBorrower(t, env, "ada@example.com")
	loanID := borrowTestBook(t, env, bookID, borrowerID)

	t.Run("returns loan", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/loans/"+loanID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, loanID, data["id"])
		assert.Equal(t, borrowerID, data["borrower_id"])
	})

	t.Run("400 for malformed id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/loans/nope", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoanHandlerList(t *testing.T) {
	env := newTestEnv(t)
	bookID := createTestBook(t, env, "9780441172719")
	otherBookID := createTestBook(t, env, "9780134685991")
	borrowerID := registerTestBorrower(t, env, "ada@example.com")
	loanID := borrowTestBook(t, env, bookID, borrowerID)
	borrowTestBook(t, env, otherBookID, borrowerID)

	t.Run("lists all loans", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/loans", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		meta := body["meta"].(map[string]interface{})
		assert.Equal(t, float64(2), meta["total"])
	})

	t.Run("filters by book", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/loans?book_id="+bookID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		loans := body["data"].([]interface{})
		require.Len(t, loans, 1)
		assert.Equal(t, loanID, loans[0].(map[string]interface{})["id"])
	})

	t.Run("rejects malformed book filter", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/loans?book_id=nope", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/loans?status=lost", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoanHandlerOverdue(t *testing.T) {
	env := newTestEnv(t)
	bookID := createTestBook(t, env, "9780441172719")
	borrowerID := registerTestBorrower(t, env, "ada@example.com")
	borrowTestBook(t, env, bookID, borrowerID)

	t.Run("no overdue loans initially", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/loans/overdue", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Empty(t, body["data"])
	})

	t.Run("sweep reports scanned loans", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/loans/overdue/sweep", nil)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		data := body["data"].(map[string]interface{})
		assert.Equal(t, float64(0), data["flagged"])
	})
}
