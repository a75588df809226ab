package handler

import (
	"github.com/gin-gonic/gin"
	lendingapp "github.com/library/backend/internal/application/lending"
	"github.com/library/backend/internal/application/membership"
	"github.com/library/backend/internal/interfaces/http/middleware"
)

// BorrowerHandler handles borrower membership API endpoints
type BorrowerHandler struct {
	BaseHandler
	service *membership.BorrowerService
}

// NewBorrowerHandler creates a new BorrowerHandler
func NewBorrowerHandler(service *membership.BorrowerService) *BorrowerHandler {
	return &BorrowerHandler{service: service}
}

// Register godoc
// @ID           registerBorrower
// @Summary      Register a borrower
// @Description  Registers a new borrower; the email must be unique
// @Tags         borrowers
// @Accept       json
// @Produce      json
// @Param        request body membership.RegisterBorrowerRequest true "Borrower details"
// @Success      201 {object} APIResponse[membership.BorrowerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /borrowers [post]
func (h *BorrowerHandler) Register(c *gin.Context) {
	var req membership.RegisterBorrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	borrower, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, borrower)
}

// Get godoc
// @ID           getBorrower
// @Summary      Get a borrower by ID
// @Tags         borrowers
// @Produce      json
// @Param        id path string true "Borrower ID"
// @Success      200 {object} APIResponse[membership.BorrowerResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /borrowers/{id} [get]
func (h *BorrowerHandler) Get(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	borrower, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, borrower)
}

// List godoc
// @ID           listBorrowers
// @Summary      List borrowers
// @Description  Lists borrowers with optional search and status filters
// @Tags         borrowers
// @Produce      json
// @Param        search query string false "Search in name or email"
// @Param        status query string false "Filter by status"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} APIResponse[[]membership.BorrowerResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /borrowers [get]
func (h *BorrowerHandler) List(c *gin.Context) {
	filter := membership.BorrowerListFilter{Page: 1, PageSize: 20}
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	borrowers, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, borrowers, total, filter.Page, filter.PageSize)
}

// Update godoc
// @ID           updateBorrower
// @Summary      Update a borrower's contact details
// @Tags         borrowers
// @Accept       json
// @Produce      json
// @Param        id path string true "Borrower ID"
// @Param        request body membership.UpdateBorrowerRequest true "New details"
// @Success      200 {object} APIResponse[membership.BorrowerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /borrowers/{id} [put]
func (h *BorrowerHandler) Update(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req membership.UpdateBorrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	borrower, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, borrower)
}

// UpdateEmail godoc
// @ID           updateBorrowerEmail
// @Summary      Change a borrower's email
// @Description  The new email must not belong to another borrower
// @Tags         borrowers
// @Accept       json
// @Produce      json
// @Param        id path string true "Borrower ID"
// @Param        request body membership.UpdateBorrowerEmailRequest true "New email"
// @Success      200 {object} APIResponse[membership.BorrowerResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /borrowers/{id}/email [patch]
func (h *BorrowerHandler) UpdateEmail(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req membership.UpdateBorrowerEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	borrower, err := h.service.UpdateEmail(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, borrower)
}

// ChangeStatus godoc
// @ID           changeBorrowerStatus
// @Summary      Change a borrower's membership status
// @Description  Moves a borrower between active, inactive and suspended
// @Tags         borrowers
// @Accept       json
// @Produce      json
// @Param        id path string true "Borrower ID"
// @Param        request body membership.ChangeBorrowerStatusRequest true "Target status"
// @Success      200 {object} APIResponse[membership.BorrowerResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /borrowers/{id}/status [patch]
func (h *BorrowerHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req membership.ChangeBorrowerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	borrower, err := h.service.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, borrower)
}

// Delete godoc
// @ID           deleteBorrower
// @Summary      Remove a borrower
// @Description  A borrower with an active loan cannot be removed
// @Tags         borrowers
// @Param        id path string true "Borrower ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /borrowers/{id} [delete]
func (h *BorrowerHandler) Delete(c *gin.Context) {
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

// LoanHistory godoc
// @ID           getBorrowerLoanHistory
// @Summary      Get a borrower's loan history
// @Description  Returns all loans ever taken by the borrower, newest first
// @Tags         borrowers
// @Produce      json
// @Param        id path string true "Borrower ID"
// @Success      200 {object} APIResponse[[]lending.LoanResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /borrowers/{id}/loans [get]
func (h *BorrowerHandler) LoanHistory(c *gin.Context) {
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	loans, err := h.service.LoanHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]lendingapp.LoanResponse, 0, len(loans))
	for i := range loans {
		responses = append(responses, lendingapp.ToLoanResponse(&loans[i]))
	}

	h.Success(c, responses)
}
