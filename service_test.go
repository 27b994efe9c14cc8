package posadmin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func setupService(t *testing.T, cfg ServiceConfig) *Service {
	t.Helper()
	svc, err := NewServiceWithConfig(setupTestDB(t), cfg)
	require.NoError(t, err)
	require.NoError(t, svc.Migrate(context.Background()))
	return svc
}

// seedCatalog creates one customer and products priced 10.00 and 7.25.
func seedCatalog(t *testing.T, svc *Service) (*Customer, *Product, *Product) {
	t.Helper()
	ctx := context.Background()
	category := &Category{Name: "Bakery"}
	require.NoError(t, svc.Store().CreateCategory(ctx, category))
	customer := &Customer{Name: "Alice Baker"}
	require.NoError(t, svc.Store().CreateCustomer(ctx, customer))
	bread := &Product{Name: "Bread", Price: mustMoney(t, "10.00"), CategoryID: category.ID}
	require.NoError(t, svc.Store().CreateProduct(ctx, bread))
	pie := &Product{Name: "Pie", Price: mustMoney(t, "7.25"), CategoryID: category.ID}
	require.NoError(t, svc.Store().CreateProduct(ctx, pie))
	return customer, bread, pie
}

func mustMoney(t *testing.T, s string) Money {
	t.Helper()
	var m Money
	require.NoError(t, m.UnmarshalJSON([]byte(s)))
	return m
}

func TestNewServiceRequiresDB(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}

func TestSetLoggerNil(t *testing.T) {
	svc := setupService(t, ServiceConfig{})
	svc.SetLogger(nil)
	assert.NotNil(t, svc.logger)
}

func TestServeHTTP(t *testing.T) {
	svc := setupService(t, ServiceConfig{})

	rec := httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(`{"name":"Drinks"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"customers":0,"products":0,"orders":0,"categories":1}`, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Server-Timing"))
}

func TestHandleFuncSharesMiddleware(t *testing.T) {
	svc := setupService(t, ServiceConfig{})
	svc.HandleFunc("POST /admin/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	rec := httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/ping", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestOnProductSelected(t *testing.T) {
	svc := setupService(t, ServiceConfig{})
	_, bread, _ := seedCatalog(t, svc)
	ctx := context.Background()

	price, err := svc.OnProductSelected(ctx, bread.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", price.String())

	_, err = svc.OnProductSelected(ctx, 999)
	assert.True(t, IsNotFoundError(err))

	_, err = svc.OnProductSelected(ctx, 0)
	assert.True(t, IsValidationError(err))
}

func TestOnItemsChanged(t *testing.T) {
	svc := setupService(t, ServiceConfig{})
	customer, bread, pie := seedCatalog(t, svc)
	ctx := context.Background()

	total, err := svc.OnItemsChanged(ctx, 0, []ItemInput{{ProductID: bread.ID, Quantity: 2}, {ProductID: pie.ID, Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "27.25", total.String())

	order, err := svc.SaveOrder(ctx, OrderInput{
		CustomerID:    customer.ID,
		PaymentMethod: PaymentCard,
		Items:         []ItemInput{{ProductID: bread.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	// The stored line keeps 10.00 after the catalog price changes.
	bread.Price = mustMoney(t, "12.00")
	require.NoError(t, svc.Store().UpdateProduct(ctx, bread))

	items := []ItemInput{{ID: order.Items[0].ID, ProductID: bread.ID, Quantity: 3}, {ProductID: bread.ID, Quantity: 1}}
	total, err = svc.OnItemsChanged(ctx, order.ID, items)
	require.NoError(t, err)
	assert.Equal(t, "42.00", total.String())

	reloaded, err := svc.Store().GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", reloaded.TotalPrice.String(), "preview must not persist")

	_, err = svc.OnItemsChanged(ctx, 0, []ItemInput{{ProductID: bread.ID, Quantity: 0}})
	assert.True(t, IsValidationError(err))
}

func TestPermissiveStatus(t *testing.T) {
	ctx := context.Background()
	for _, permissive := range []bool{false, true} {
		svc := setupService(t, ServiceConfig{PermissiveStatus: permissive})
		customer, bread, _ := seedCatalog(t, svc)

		order, err := svc.SaveOrder(ctx, OrderInput{
			CustomerID:    customer.ID,
			PaymentMethod: PaymentCash,
			Items:         []ItemInput{{ProductID: bread.ID, Quantity: 1}},
		})
		require.NoError(t, err)
		order, err = svc.TransitionOrderStatus(ctx, order.ID, StatusShipped, 0)
		if !permissive {
			require.ErrorIs(t, err, ErrInvalidTransition)
			continue
		}
		require.NoError(t, err)

		order, err = svc.TransitionOrderStatus(ctx, order.ID, StatusNew, order.Version)
		require.NoError(t, err)
		assert.Equal(t, StatusNew, order.Status)
	}
}

func TestSetObservability(t *testing.T) {
	svc := setupService(t, ServiceConfig{})
	assert.Nil(t, svc.Observability())

	err := svc.SetObservability(ObservabilityConfig{
		TracerProvider:          tracenoop.NewTracerProvider(),
		MeterProvider:           metricnoop.NewMeterProvider(),
		ServiceName:             "test-service",
		ServiceVersion:          "1.0.0",
		EnableDetailedDBTracing: true,
		EnableServerTiming:      true,
	})
	require.NoError(t, err)
	require.NotNil(t, svc.Observability())
	assert.True(t, svc.Observability().IsEnabled())

	rec := httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	header := rec.Header().Get("Server-Timing")
	assert.Contains(t, header, "total")
	assert.Contains(t, header, "db")
}

func TestStartServerTimingWithoutConfig(t *testing.T) {
	ctx := context.Background()
	metric := StartServerTiming(ctx, "test-operation")
	metric.Stop()
	StartServerTimingWithDesc(ctx, "test-op", "Test operation description").Stop()
}

func TestTransactionContext(t *testing.T) {
	svc := setupService(t, ServiceConfig{})
	_, ok := TransactionFromContext(context.Background())
	assert.False(t, ok)

	err := svc.DB().Transaction(func(tx *gorm.DB) error {
		ctx := WithTransaction(context.Background(), tx)
		got, ok := TransactionFromContext(ctx)
		assert.True(t, ok)
		assert.Same(t, tx, got)
		return nil
	})
	require.NoError(t, err)
}
