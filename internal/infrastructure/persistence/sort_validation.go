package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// BookSortFields contains allowed sort fields for books
var BookSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"author":     true,
	"isbn":       true,
	"category":   true,
	"page_count": true,
	"status":     true,
}

// BorrowerSortFields contains allowed sort fields for borrowers
var BorrowerSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"first_name":        true,
	"last_name":         true,
	"email":             true,
	"registration_date": true,
	"status":            true,
}

// LoanSortFields contains allowed sort fields for loans
var LoanSortFields = map[string]bool{
	"id":          true,
	"created_at":  true,
	"updated_at":  true,
	"book_id":     true,
	"borrower_id": true,
	"borrow_date": true,
	"due_date":    true,
	"return_date": true,
	"status":      true,
}
