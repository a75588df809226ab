package testutil

import "context"

// NoopTransactionManager implements shared.TransactionManager without a
// real transactional boundary: fn runs against the live repositories.
// Good enough for the in-memory doubles; rollback behavior is covered by
// the persistence and integration tests against real stores.
type NoopTransactionManager struct{}

// NewNoopTransactionManager creates a new NoopTransactionManager
func NewNoopTransactionManager() *NoopTransactionManager {
	return &NoopTransactionManager{}
}

// WithinTransaction runs fn directly with the given context
func (m *NoopTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
