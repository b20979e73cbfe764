package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactor implements booking.Transactor on a gorm connection. The
// transaction handle travels in the context, so repositories transparently
// join an open transaction and fall back to the base connection otherwise.
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a transactor over the given connection.
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// WithinTransaction runs fn inside one database transaction. Any error rolls
// the whole transaction back, leaving no partial writes.
func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFrom returns the transaction bound to the context, or the fallback
// connection when no transaction is open.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}
