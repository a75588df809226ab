package handler

import "github.com/library/backend/internal/interfaces/http/dto"

// APIResponse represents a generic API response for OpenAPI documentation
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse represents an error API response for OpenAPI documentation
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse represents a simple success API response for OpenAPI documentation
// @Description Simple success response without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// CountData represents count data in response
// @Description Count data
type CountData struct {
	Count int64 `json:"count"`
}

// CategoryListData lists the known book categories
// @Description Book category list
type CategoryListData struct {
	Categories []string `json:"categories"`
}

// SweepStatusData reports the overdue sweep scheduler state
// @Description Overdue sweep scheduler status
type SweepStatusData struct {
	Enabled  bool   `json:"enabled"`
	Running  bool   `json:"running"`
	Interval string `json:"interval,omitempty"`
}
