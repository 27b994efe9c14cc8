// Command posadmin serves the back-office API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	posadmin "github.com/nlstn/go-posadmin"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQueryThreshold is the duration above which GORM logs a statement as slow.
const slowQueryThreshold = 200 * time.Millisecond

type config struct {
	dbType           string
	dsn              string
	addr             string
	seed             bool
	permissiveStatus bool
	otel             bool
	serverTiming     bool
	logLevel         string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseConfig(args []string) (config, error) {
	fs := flag.NewFlagSet("posadmin", flag.ContinueOnError)
	var cfg config
	fs.StringVar(&cfg.dbType, "db", envOr("POSADMIN_DB", "sqlite"), "Database type: sqlite, postgres or mysql")
	fs.StringVar(&cfg.dsn, "dsn", os.Getenv("DATABASE_URL"), "Database DSN. For sqlite, a file path or :memory:")
	fs.StringVar(&cfg.addr, "addr", ":"+envOr("PORT", "8080"), "Address to listen on")
	fs.BoolVar(&cfg.seed, "seed", false, "Seed sample data on startup and expose POST /admin/reseed")
	fs.BoolVar(&cfg.permissiveStatus, "permissive-status", false, "Accept any order status change")
	fs.BoolVar(&cfg.otel, "otel", false, "Report traces and metrics to the global OpenTelemetry providers")
	fs.BoolVar(&cfg.serverTiming, "server-timing", false, "Add the Server-Timing response header")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	return cfg, nil
}

// openDB connects to the configured database. Slow statements and SQL errors
// are logged through appLogger.
func openDB(cfg config, appLogger *slog.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.NewSlogLogger(appLogger.With("component", "gorm"), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	switch cfg.dbType {
	case "sqlite":
		dsn := cfg.dsn
		if dsn == "" {
			dsn = "posadmin.db"
		}
		return gorm.Open(sqlite.Open(dsn), gormConfig)
	case "postgres":
		if cfg.dsn == "" {
			return nil, fmt.Errorf("PostgreSQL DSN required. Use -dsn flag or set DATABASE_URL environment variable")
		}
		return gorm.Open(postgres.Open(cfg.dsn), gormConfig)
	case "mysql":
		if cfg.dsn == "" {
			return nil, fmt.Errorf("MySQL DSN required. Use -dsn flag or set DATABASE_URL environment variable")
		}
		return gorm.Open(mysql.Open(cfg.dsn), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database type: %s. Use 'sqlite', 'postgres' or 'mysql'", cfg.dbType)
	}
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})), nil
}

func run(args []string) error {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	db, err := openDB(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	service, err := posadmin.NewServiceWithConfig(db, posadmin.ServiceConfig{PermissiveStatus: cfg.permissiveStatus})
	if err != nil {
		return err
	}
	service.SetLogger(logger)

	if cfg.otel || cfg.serverTiming {
		obs := posadmin.ObservabilityConfig{EnableServerTiming: cfg.serverTiming}
		if cfg.otel {
			obs.TracerProvider = otel.GetTracerProvider()
			obs.MeterProvider = otel.GetMeterProvider()
			obs.EnableDetailedDBTracing = true
		}
		if err := service.SetObservability(obs); err != nil {
			return err
		}
	}

	ctx := context.Background()
	if err := service.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if cfg.seed {
		if err := seedDatabase(ctx, service); err != nil {
			return err
		}
		registerReseed(service)
	}

	logger.Info("posadmin configured", "db", cfg.dbType, "addr", cfg.addr, "seed", cfg.seed,
		"permissive_status", cfg.permissiveStatus, "otel", cfg.otel, "server_timing", cfg.serverTiming)
	return service.ListenAndServe(cfg.addr)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("posadmin stopped", "error", err)
		os.Exit(1)
	}
}
