// Package cli provides the fintrack command tree and the initialization
// shared by cmd/fintrack and cmd/fintrack-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/reporting"
	"fintrack/internal/storage"
)

// Version is stamped at build time with -ldflags "-X fintrack/internal/cli.Version=...".
var Version = "dev"

// SetupLogger initializes structured logging at level and sets it as the
// default logger.
func SetupLogger(level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitReporting configures Sentry from cfg. The returned func flushes
// pending events.
func InitReporting(cfg *config.Config, logger *log.Logger) func() {
	flush, err := reporting.Init(reporting.Options{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
		Release:     "fintrack@" + Version,
	})
	if err != nil {
		logger.Warn("Error reporting disabled", log.FieldError, err.Error())
		return func() {}
	}
	if cfg.SentryDSN != "" {
		logger.Info("Error reporting enabled", "environment", cfg.SentryEnvironment)
	}
	return flush
}

// OpenSQLite opens the SQLite repository at dbPath, running migrations.
func OpenSQLite(logger *log.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			log.FieldError, err.Error(),
			"path", dbPath,
			"error_type", log.ErrorTypeDatabase)
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	return repo, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// ExitOnError logs err and exits. Used by main packages that do not go through cobra.
func ExitOnError(logger *log.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logger.Error(msg, log.FieldError, err.Error())
	os.Exit(1)
}
