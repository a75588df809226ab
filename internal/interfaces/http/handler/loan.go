package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/library/backend/internal/application/lending"
	"github.com/library/backend/internal/interfaces/http/dto"
	"github.com/library/backend/internal/interfaces/http/middleware"
)

// LoanHandler handles lending API endpoints
type LoanHandler struct {
	BaseHandler
	service *lending.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(service *lending.LoanService) *LoanHandler {
	return &LoanHandler{service: service}
}

// Borrow godoc
// @ID           borrowBook
// @Summary      Borrow a book
// @Description  Creates an active loan for an available book and an active borrower
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        request body lending.BorrowBookRequest true "Book and borrower"
// @Success      201 {object} APIResponse[lending.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /loans [post]
func (h *LoanHandler) Borrow(c *gin.Context) {
	var req lending.BorrowBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	loan, err := h.service.Borrow(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, loan)
}

// Return godoc
// @ID           returnBook
// @Summary      Return a borrowed book
// @Description  Closes the loan held by the given borrower and makes the book
// available again. An omitted return date means the book is returned now.
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        id path string true "Loan ID"
// @Param        request body lending.ReturnBookRequest true "Returning borrower and optional return date"
// @Success      200 {object} APIResponse[lending.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /loans/{id}/return [post]
func (h *LoanHandler) Return(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req lending.ReturnBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	loan, err := h.service.Return(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, loan)
}

// ReturnByBook godoc
// @ID           returnBookByBookID
// @Summary      Return a book by book ID
// @Description  Closes the active loan of the given book without knowing the loan ID
// @Tags         loans
// @Accept       json
// @Produce      json
// @Param        book_id path string true "Book ID"
// @Param        request body lending.ReturnBookRequest true "Returning borrower and optional return date"
// @Success      200 {object} APIResponse[lending.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /loans/book/{book_id}/return [post]
func (h *LoanHandler) ReturnByBook(c *gin.Context) {
	bookID, ok := h.parseIDParam(c, "book_id")
	if !ok {
		return
	}

	var req lending.ReturnBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	loan, err := h.service.ReturnByBook(c.Request.Context(), bookID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, loan)
}

// Get godoc
// @ID           getLoan
// @Summary      Get a loan by ID
// @Tags         loans
// @Produce      json
// @Param        id path string true "Loan ID"
// @Success      200 {object} APIResponse[lending.LoanResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /loans/{id} [get]
func (h *LoanHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	loan, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, loan)
}

// List godoc
// @ID           listLoans
// @Summary      List loans
// @Description  Lists loans with optional status, book and borrower filters
// @Tags         loans
// @Produce      json
// @Param        status query string false "Filter by status"
// @Param        book_id query string false "Filter by book ID"
// @Param        borrower_id query string false "Filter by borrower ID"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]lending.LoanResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /loans [get]
func (h *LoanHandler) List(c *gin.Context) {
	filter := lending.LoanListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	// UUID query params are parsed by hand; form binding does not
	// cover *uuid.UUID fields.
	if raw := c.Query("book_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid book_id parameter")
			return
		}
		filter.BookID = &id
	}
	if raw := c.Query("borrower_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid borrower_id parameter")
			return
		}
		filter.BorrowerID = &id
	}

	loans, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, loans, total, filter.Page, filter.PageSize)
}

// ListOverdue godoc
// @ID           listOverdueLoans
// @Summary      List overdue loans
// @Description  Returns every loan past its due date that has not been returned
// @Tags         loans
// @Produce      json
// @Success      200 {object} APIResponse[[]lending.LoanResponse]
// @Router       /loans/overdue [get]
func (h *LoanHandler) ListOverdue(c *gin.Context) {
	loans, err := h.service.ListOverdue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, loans)
}

// SweepOverdue godoc
// @ID           sweepOverdueLoans
// @Summary      Flag overdue loans
// @Description  Scans active loans past their due date and marks them overdue
// @Tags         loans
// @Produce      json
// @Success      200 {object} APIResponse[lending.SweepResult]
// @Router       /loans/overdue/sweep [post]
func (h *LoanHandler) SweepOverdue(c *gin.Context) {
	result, err := h.service.SweepOverdue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
