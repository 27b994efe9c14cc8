// Package posadmin provides the back office of a small point-of-sale shop.
// Staff manage categories, products, customers, and orders through a JSON
// HTTP API backed by GORM. Order totals are always derived from the order
// items, and item prices are captured from the catalog when a product is
// selected.
package posadmin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nlstn/go-posadmin/internal/handlers"
	"github.com/nlstn/go-posadmin/internal/models"
	"github.com/nlstn/go-posadmin/internal/observability"
	"github.com/nlstn/go-posadmin/internal/pricing"
	"github.com/nlstn/go-posadmin/internal/store"
	"gorm.io/gorm"
)

// Entity and input types of the back office.
type (
	Category  = models.Category
	Product   = models.Product
	Customer  = models.Customer
	Order     = models.Order
	OrderItem = models.OrderItem

	// Money is a currency amount with two decimals.
	Money = pricing.Money

	// ItemInput is one submitted order line.
	ItemInput = store.ItemInput
	// OrderInput is the editable state of an order.
	OrderInput = store.OrderInput
)

// ServiceConfig controls optional service behaviours.
type ServiceConfig struct {
	// PermissiveStatus accepts any order status change instead of enforcing
	// the transition table.
	PermissiveStatus bool
}

// Service is the back office: the store and the HTTP API over one database.
type Service struct {
	// db holds the GORM database connection
	db *gorm.DB
	// store owns every read and write
	store *store.Store
	// api registers the routes on mux
	api *handlers.Handler
	mux *http.ServeMux
	// httpHandler is mux wrapped in the middleware chain
	httpHandler http.Handler
	// logger is used for structured logging throughout the service
	logger        *slog.Logger
	observability *observability.Config
}

// NewService creates a back-office service on db with the default configuration.
func NewService(db *gorm.DB) (*Service, error) {
	return NewServiceWithConfig(db, ServiceConfig{})
}

// NewServiceWithConfig creates a back-office service with additional configuration.
func NewServiceWithConfig(db *gorm.DB, cfg ServiceConfig) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("posadmin: database handle is required")
	}

	logger := slog.Default()
	st, err := store.New(db, store.WithLogger(logger), store.WithPermissiveStatus(cfg.PermissiveStatus))
	if err != nil {
		return nil, err
	}

	s := &Service{
		db:     db,
		store:  st,
		api:    handlers.New(st),
		mux:    http.NewServeMux(),
		logger: logger,
	}
	s.api.SetLogger(logger)
	s.api.Register(s.mux)
	s.buildHTTPHandler()
	return s, nil
}

// SetLogger sets a custom logger for the service.
// If not called, slog.Default() is used.
func (s *Service) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	s.logger = logger
	s.store.SetLogger(logger)
	s.api.SetLogger(logger)
}

// Migrate creates or updates the tables of every entity.
func (s *Service) Migrate(ctx context.Context) error {
	return s.store.Migrate(ctx)
}

// DB returns the database handle the service was created with.
func (s *Service) DB() *gorm.DB {
	return s.db
}

// Store returns the persistence layer used by the HTTP API.
func (s *Service) Store() *store.Store {
	return s.store
}

// HandleFunc registers an additional route on the service's mux, for example
// an administrative endpoint of the hosting binary. Routes share the
// middleware chain of the API.
func (s *Service) HandleFunc(pattern string, handler http.HandlerFunc) {
	s.mux.HandleFunc(pattern, handler)
}

// OnItemsChanged returns the total of an order whose items were edited but
// not saved yet. Items of orderID keep their stored price unless their product
// changed; new items capture the current product price. Pass zero for an
// order that does not exist yet. Nothing is persisted.
func (s *Service) OnItemsChanged(ctx context.Context, orderID uint, items []ItemInput) (Money, error) {
	ctx, span := s.observability.Tracer().StartOperation(ctx, "order", observability.OpRecompute, orderID)
	defer span.End()
	return s.store.PreviewTotal(ctx, orderID, items)
}

// OnProductSelected returns the price a new order item captures for productID.
func (s *Service) OnProductSelected(ctx context.Context, productID uint) (Money, error) {
	ctx, span := s.observability.Tracer().StartOperation(ctx, "product", observability.OpCapture, productID)
	defer span.End()
	return pricing.CaptureUnitPrice(ctx, s.store, productID)
}

// SaveOrder creates or updates an order with its items and recomputed total.
func (s *Service) SaveOrder(ctx context.Context, in OrderInput) (*Order, error) {
	return s.store.SaveOrder(ctx, in)
}

// TransitionOrderStatus changes the status of an order. A non-zero
// expectedVersion must match the stored version.
func (s *Service) TransitionOrderStatus(ctx context.Context, id uint, next OrderStatus, expectedVersion int) (*Order, error) {
	return s.store.TransitionOrderStatus(ctx, id, next, expectedVersion)
}
