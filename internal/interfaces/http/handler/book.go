package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/library/backend/internal/application/catalog"
	"github.com/library/backend/internal/interfaces/http/middleware"
)

// BookHandler handles book catalog API endpoints
type BookHandler struct {
	BaseHandler
	service *catalog.BookService
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(service *catalog.BookService) *BookHandler {
	return &BookHandler{service: service}
}

// Create godoc
// @ID           createBook
// @Summary      Add a book to the catalog
// @Description  Registers a new book; the ISBN must be unique
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateBookRequest true "Book details"
// @Success      201 {object} APIResponse[catalog.BookResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req catalog.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	book, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, book)
}

// Get godoc
// @ID           getBook
// @Summary      Get a book by ID
// @Tags         books
// @Produce      json
// @Param        id path string true "Book ID"
// @Success      200 {object} APIResponse[catalog.BookResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, book)
}

// GetByISBN godoc
// @ID           getBookByISBN
// @Summary      Get a book by ISBN
// @Tags         books
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} APIResponse[catalog.BookResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /books/isbn/{isbn} [get]
func (h *BookHandler) GetByISBN(c *gin.Context) {
	isbn := c.Param("isbn")

	book, err := h.service.GetByISBN(c.Request.Context(), isbn)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, book)
}

// List godoc
// @ID           listBooks
// @Summary      List books
// @Description  Lists catalog books with optional search, status and category filters
// @Tags         books
// @Produce      json
// @Param        search query string false "Search in title, author or ISBN"
// @Param        status query string false "Filter by status"
// @Param        category query string false "Filter by category"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]catalog.BookResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /books [get]
func (h *BookHandler) List(c *gin.Context) {
	filter := catalog.BookListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	books, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, books, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateBook
// @Summary      Update a book's details
// @Description  Updates title, author, category and page count. The ISBN is immutable.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id path string true "Book ID"
// @Param        request body catalog.UpdateBookRequest true "New details"
// @Success      200 {object} APIResponse[catalog.BookResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req catalog.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	book, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, book)
}

// ChangeStatus godoc
// @ID           changeBookStatus
// @Summary      Change a book's status
// @Description  Moves a book between available, reserved and under_maintenance.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id path string true "Book ID"
// @Param        request body catalog.ChangeBookStatusRequest true "Target status"
// @Success      200 {object} APIResponse[catalog.BookResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /books/{id}/status [patch]
func (h *BookHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req catalog.ChangeBookStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	book, err := h.service.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, book)
}

// Delete godoc
// @ID           deleteBook
// @Summary      Remove a book from the catalog
// @Description  A book with an active loan cannot be removed
// @Tags         books
// @Param        id path string true "Book ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Categories godoc
// @ID           listBookCategories
// @Summary      List known book categories
// @Tags         books
// @Produce      json
// @Success      200 {object} APIResponse[CategoryListData]
// @Router       /books/categories [get]
func (h *BookHandler) Categories(c *gin.Context) {
	h.Success(c, CategoryListData{Categories: h.service.Categories()})
}
