// Package cli provides the start-up steps shared by fintrack commands:
// environment loading, logger and config setup, store opening and signal
// handling.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// SetupLogger builds the logger described by cfg, writing to w, tags it with
// a fresh invocation id and installs it as the slog default.
func SetupLogger(cfg *config.Config, w io.Writer) (*log.Logger, string) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level, _ = log.ParseLevel("info")
	}

	logger := log.New(log.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Component: log.ComponentCLI,
		Output:    w,
	})
	logger, id := logger.WithInvocation()
	log.SetDefault(logger)
	return logger, id
}

// LoadEnvFile loads a .env file for local use. A missing file is not an
// error; a malformed one is.
func LoadEnvFile(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadAndValidateConfig reads the environment and validates the result.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitSQLite opens the store at dbPath, creating and migrating it as needed.
func InitSQLite(logger *log.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, log.FieldPath, dbPath)
		return nil, err
	}
	logger.Debug("SQLite repository ready", log.FieldPath, dbPath)
	return repo, nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM. Call stop
// to release the signal handler.
func SignalContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
