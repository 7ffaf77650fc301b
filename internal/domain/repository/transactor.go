package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor hands out database handles to usecases. Repositories receive
// the handle explicitly so that several of them can share one transaction.
type Transactor interface {
	// Conn returns a non-transactional handle bound to ctx
	Conn(ctx context.Context) *gorm.DB
	// WithinTransaction runs fn in a transaction, committing when fn returns nil
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
