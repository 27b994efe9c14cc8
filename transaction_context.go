package posadmin

import (
	"context"

	"github.com/nlstn/go-posadmin/internal/store"
	"gorm.io/gorm"
)

// TransactionFromContext returns the *gorm.DB transaction a store operation
// is running in. Code called with that context can join the transaction.
func TransactionFromContext(ctx context.Context) (*gorm.DB, bool) {
	return store.TransactionFromContext(ctx)
}

// WithTransaction returns a context whose store operations run inside tx
// instead of opening their own transaction.
func WithTransaction(ctx context.Context, tx *gorm.DB) context.Context {
	return store.WithTransaction(ctx, tx)
}
