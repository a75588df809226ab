package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a domain error for rejected input
func NewValidationError(message string) *DomainError {
	return &DomainError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrBookNotAvailable    = NewDomainError("BOOK_NOT_AVAILABLE", "Book is not available for borrowing")
	ErrBorrowerNotActive   = NewDomainError("BORROWER_NOT_ACTIVE", "Borrower account is not active")
	ErrLoanNotActive       = NewDomainError("LOAN_NOT_ACTIVE", "Loan is not active")
	ErrActiveLoanExists    = NewDomainError("ACTIVE_LOAN_EXISTS", "Book already has an active loan")
)
