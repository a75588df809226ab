package persistence

import (
	"context"

	"github.com/library/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactionManager implements shared.TransactionManager on top of
// gorm transactions. The transaction handle travels in the context, so
// every repository call made inside WithinTransaction joins the same
// transaction without the repositories knowing about each other.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// WithinTransaction runs fn inside a single database transaction
func (m *GormTransactionManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFromContext returns the transaction carried by the context, or the
// fallback connection when no transaction is open
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}

// Ensure GormTransactionManager implements TransactionManager
var _ shared.TransactionManager = (*GormTransactionManager)(nil)
