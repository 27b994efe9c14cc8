// Package store persists the back-office entities through GORM. Every write that
// touches an order and its items runs in a single transaction.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nlstn/go-posadmin/internal/apperrors"
	"github.com/nlstn/go-posadmin/internal/models"
	"gorm.io/gorm"
)

// Store is the relational data store used by the service.
type Store struct {
	db               *gorm.DB
	logger           *slog.Logger
	permissiveStatus bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger selects slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// WithPermissiveStatus disables the order status transition table, allowing any
// status to be written over any other.
func WithPermissiveStatus(permissive bool) Option {
	return func(s *Store) {
		s.permissiveStatus = permissive
	}
}

// New creates a Store on db.
func New(db *gorm.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("store: database handle is required")
	}
	s := &Store{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SetLogger replaces the logger.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	s.logger = logger
}

// SetPermissiveStatus toggles enforcement of the status transition table.
func (s *Store) SetPermissiveStatus(permissive bool) {
	s.permissiveStatus = permissive
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or updates the schema for all entities.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.AllModels()...); err != nil {
		return apperrors.Persistence("migrate schema", err)
	}
	return nil
}

// conn returns the transaction bound to ctx, or the base handle.
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := TransactionFromContext(ctx); ok {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

// runInTransaction runs fn in a transaction. A transaction already bound to ctx
// is joined instead of starting a nested one.
func (s *Store) runInTransaction(ctx context.Context, op string, fn func(ctx context.Context, tx *gorm.DB) error) error {
	if tx, ok := TransactionFromContext(ctx); ok {
		return classify(op, fn(ctx, tx.WithContext(ctx)))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTransaction(ctx, tx), tx)
	})
	if err != nil {
		s.logger.DebugContext(ctx, "transaction rolled back", "op", op, "error", err)
	}
	return classify(op, err)
}

// classify passes taxonomy errors through and turns driver errors into
// persistence errors.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrConflict) || errors.Is(err, apperrors.ErrPersistence) {
		return err
	}
	return apperrors.Persistence(op, err)
}

// first loads dest by primary key and maps a missing row to NotFound.
func first(db *gorm.DB, dest interface{}, entity string, id uint) error {
	err := db.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity, id)
	}
	if err != nil {
		return apperrors.Persistence("load "+entity, err)
	}
	return nil
}

// exists reports whether a row of model with id exists.
func exists(db *gorm.DB, model interface{}, id uint) (bool, error) {
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListOptions controls paging and search for the catalog and customer lists.
type ListOptions struct {
	// Search matches a substring of the name column.
	Search string
	// Limit caps the result size. Zero returns everything.
	Limit int
	// Offset skips the first rows.
	Offset int
}

func (o ListOptions) apply(q *gorm.DB, column string) *gorm.DB {
	if term := strings.TrimSpace(o.Search); term != "" {
		q = q.Where(likeContains(column), "%"+escapeLike(term)+"%")
	}
	return q
}

func (o ListOptions) page(q *gorm.DB) *gorm.DB {
	if o.Limit > 0 {
		q = q.Limit(o.Limit)
	}
	if o.Offset > 0 {
		q = q.Offset(o.Offset)
	}
	return q
}
