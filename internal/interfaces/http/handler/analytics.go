package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/library/backend/internal/application/analytics"
	"github.com/library/backend/internal/interfaces/http/dto"
	"github.com/library/backend/internal/interfaces/http/middleware"
)

// AnalyticsHandler handles lending analytics API endpoints
type AnalyticsHandler struct {
	BaseHandler
	service *analytics.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service *analytics.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// MostBorrowedBooks godoc
// @ID           getMostBorrowedBooks
// @Summary      Most borrowed books
// @Description  Ranks books by borrow count within a date window
// @Tags         analytics
// @Produce      json
// @Param        start_date query string true "Window start (YYYY-MM-DD)"
// @Param        end_date query string true "Window end (YYYY-MM-DD)"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[analytics.BooksAnalyticsResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /analytics/books/most-borrowed [get]
func (h *AnalyticsHandler) MostBorrowedBooks(c *gin.Context) {
	var query analytics.MostBorrowedBooksQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.MostBorrowedBooks(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MostActiveBorrowers godoc
// @ID           getMostActiveBorrowers
// @Summary      Most active borrowers
// @Description  Ranks borrowers by borrow count within a date window
// @Tags         analytics
// @Produce      json
// @Param        start_date query string true "Window start (YYYY-MM-DD)"
// @Param        end_date query string true "Window end (YYYY-MM-DD)"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[analytics.BorrowersAnalyticsResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /analytics/borrowers/most-active [get]
func (h *AnalyticsHandler) MostActiveBorrowers(c *gin.Context) {
	var query analytics.MostActiveBorrowersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.MostActiveBorrowers(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ReadingPace godoc
// @ID           getBorrowerReadingPace
// @Summary      Borrower reading pace
// @Description  Estimates a borrower's average pages read per day from completed loans
// @Tags         analytics
// @Produce      json
// @Param        id path string true "Borrower ID"
// @Success      200 {object} APIResponse[analytics.ReadingPaceResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /analytics/borrowers/{id}/reading-pace [get]
func (h *AnalyticsHandler) ReadingPace(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.service.ReadingPace(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Recommendations godoc
// @ID           getBookRecommendations
// @Summary      Book recommendations
// @Description  Recommends other books borrowed by readers of the given book
// @Tags         analytics
// @Produce      json
// @Param        id path string true "Book ID"
// @Param        limit query int false "Maximum number of recommendations"
// @Success      200 {object} APIResponse[analytics.BooksAnalyticsResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /analytics/books/{id}/recommendations [get]
func (h *AnalyticsHandler) Recommendations(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var query analytics.RecommendationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid limit parameter")
		return
	}
	query.BookID = id

	result, err := h.service.Recommendations(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
