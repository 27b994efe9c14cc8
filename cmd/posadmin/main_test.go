package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	posadmin "github.com/nlstn/go-posadmin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestParseConfig(t *testing.T) {
	t.Setenv("POSADMIN_DB", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")

	cfg, err := parseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.dbType)
	assert.Equal(t, ":8080", cfg.addr)
	assert.Equal(t, "info", cfg.logLevel)
	assert.False(t, cfg.seed)

	cfg, err = parseConfig([]string{"-db", "postgres", "-dsn", "postgres://x", "-addr", ":9000", "-seed", "-permissive-status", "-server-timing"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.dbType)
	assert.Equal(t, "postgres://x", cfg.dsn)
	assert.Equal(t, ":9000", cfg.addr)
	assert.True(t, cfg.seed)
	assert.True(t, cfg.permissiveStatus)
	assert.True(t, cfg.serverTiming)

	_, err = parseConfig([]string{"-unknown"})
	assert.Error(t, err)
}

func TestParseConfigEnvironment(t *testing.T) {
	t.Setenv("POSADMIN_DB", "mysql")
	t.Setenv("DATABASE_URL", "user:pass@tcp(localhost:3306)/pos")
	t.Setenv("PORT", "9090")

	cfg, err := parseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.dbType)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/pos", cfg.dsn)
	assert.Equal(t, ":9090", cfg.addr)
}

func TestOpenDBRejectsBadConfig(t *testing.T) {
	_, err := openDB(config{dbType: "oracle"}, slog.Default())
	assert.Error(t, err)
	_, err = openDB(config{dbType: "postgres"}, slog.Default())
	assert.Error(t, err)
	_, err = openDB(config{dbType: "mysql"}, slog.Default())
	assert.Error(t, err)
}

func TestOpenDBLogsThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	appLogger := slog.New(slog.NewJSONHandler(&buf, nil))

	db, err := openDB(config{dbType: "sqlite", dsn: ":memory:"}, appLogger)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.Error(t, db.Exec("SELECT * FROM missing_table").Error)

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.Split(line, "\n")[0]), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "SQL executed", entry["msg"])
	assert.Equal(t, "gorm", entry["component"])
}

func TestNewLogger(t *testing.T) {
	l, err := newLogger("debug")
	require.NoError(t, err)
	assert.True(t, l.Enabled(context.Background(), slog.LevelDebug))

	_, err = newLogger("loud")
	assert.Error(t, err)
}

func newTestService(t *testing.T) *posadmin.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	svc, err := posadmin.NewService(db)
	require.NoError(t, err)
	require.NoError(t, svc.Migrate(context.Background()))
	return svc
}

func TestSeedDatabase(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, seedDatabase(ctx, svc))
	stats, err := svc.Store().Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(sampleCategories), stats.Categories)
	assert.EqualValues(t, len(sampleProducts), stats.Products)
	assert.EqualValues(t, len(sampleCustomers), stats.Customers)
	assert.EqualValues(t, len(sampleOrders), stats.Orders)

	latest, err := svc.Store().LatestOrders(ctx, 0)
	require.NoError(t, err)
	statuses := map[posadmin.OrderStatus]bool{}
	for _, o := range latest {
		statuses[o.Status] = true
	}
	assert.True(t, statuses[posadmin.StatusShipped])
	assert.True(t, statuses[posadmin.StatusCancelled])

	// Croissant 2 x 2.40 + Espresso 2 x 2.20
	order, err := svc.Store().GetOrder(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "9.20", order.TotalPrice.String())
}

func TestReseedEndpoint(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	require.NoError(t, seedDatabase(ctx, svc))
	registerReseed(svc)

	_, err := svc.Store().ForceDeleteOrders(ctx, []uint{1, 2})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	svc.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/reseed", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stats, err := svc.Store().Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, len(sampleOrders), stats.Orders)
}
