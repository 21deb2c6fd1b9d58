package rolldb

import (
	"time"

	"github.com/canvasstrack/voterroll/internal/appconf"
)

const (
	// DefaultBulkInsertBatchSize is the number of voters written per multi-row
	// INSERT. Nine columns per voter keeps a batch under SQLite's default
	// SQLITE_MAX_VARIABLE_NUMBER of 32766.
	DefaultBulkInsertBatchSize = 1000

	DefaultMaxOpenConns   = 50
	DefaultAcquireTimeout = 10 * time.Second
)

// Config holds configuration options for the Client
type Config struct {
	// Database configuration
	Driver  string              // sqlite (default), sqlite3, mysql or pgx
	DSN     string              // File path for SQLite drivers, connection string otherwise
	Env     appconf.Environment // Environment name: development, test, production.
	verbose bool                // Enable verbose logging

	// Pool tuning
	MaxOpenConns int
	// AcquireTimeout bounds how long WithConn waits for a pooled connection
	// before reporting ErrStorageUnavailable.
	AcquireTimeout time.Duration

	// BulkInsertBatchSize controls how many voters are inserted per statement.
	// Set to 0 to use the default value.
	BulkInsertBatchSize int
}

func NewConfig(driver, dsn string, env appconf.Environment, verbose bool) Config {
	return Config{
		Driver:              driver,
		DSN:                 dsn,
		Env:                 env,
		verbose:             verbose,
		MaxOpenConns:        DefaultMaxOpenConns,
		AcquireTimeout:      DefaultAcquireTimeout,
		BulkInsertBatchSize: DefaultBulkInsertBatchSize,
	}
}

// GetBulkInsertBatchSize returns the configured batch size, or the default if not set
func (c Config) GetBulkInsertBatchSize() int {
	if c.BulkInsertBatchSize <= 0 {
		return DefaultBulkInsertBatchSize
	}
	return c.BulkInsertBatchSize
}

func (c Config) driverName() string {
	if c.Driver == "" {
		return "sqlite"
	}
	return c.Driver
}

func (c Config) maxOpenConns() int {
	if c.MaxOpenConns <= 0 {
		return DefaultMaxOpenConns
	}
	return c.MaxOpenConns
}

func (c Config) acquireTimeout() time.Duration {
	if c.AcquireTimeout <= 0 {
		return DefaultAcquireTimeout
	}
	return c.AcquireTimeout
}

func (c Config) isSQLite() bool {
	d := c.driverName()
	return d == "sqlite" || d == "sqlite3"
}

func (c Config) isInMemory() bool {
	return c.isSQLite() && c.DSN == ":memory:"
}
