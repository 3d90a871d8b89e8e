package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactor runs a function inside a single database transaction. The
// transaction handle travels in the context, so repository writes performed
// by the function all land on the same connection and commit or roll back
// together.
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a new GormTransactor.
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// InTransaction executes fn within a transaction. Any error from fn rolls
// everything back.
func (t *GormTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom returns the transaction handle carried by ctx, falling back to the
// repository's own connection when no transaction is open.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
