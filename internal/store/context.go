package store

import (
	"context"

	"gorm.io/gorm"
)

type contextKey string

const transactionDBKey contextKey = "posadmin_transaction_db"

// withTransaction attaches the active transaction to the context.
func withTransaction(ctx context.Context, tx *gorm.DB) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, transactionDBKey, tx)
}

// WithTransaction binds tx to ctx so store calls made with the returned context
// join tx instead of opening their own transaction.
func WithTransaction(ctx context.Context, tx *gorm.DB) context.Context {
	return withTransaction(ctx, tx)
}

// TransactionFromContext retrieves the active transaction bound to ctx.
func TransactionFromContext(ctx context.Context) (*gorm.DB, bool) {
	if ctx == nil {
		return nil, false
	}
	tx, ok := ctx.Value(transactionDBKey).(*gorm.DB)
	if !ok || tx == nil {
		return nil, false
	}
	return tx, true
}
