// Package rolldb is the storage layer for the voter roll, canvassing visits
// and canvasser accounts. It runs on SQLite, MySQL or PostgreSQL.
package rolldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/canvasstrack/voterroll/internal/appconf"
	"github.com/canvasstrack/voterroll/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "github.com/mattn/go-sqlite3"    // CGo-based SQLite driver
)

// Client is the main entry point for the library
type Client struct {
	config  Config
	DB      *sql.DB
	Queries *Queries
	logger  *slog.Logger
}

// NewClient opens the database, sizes the pool and applies the schema.
func NewClient(config Config) (*Client, error) {
	if config.Env == appconf.Test && config.isSQLite() && !config.isInMemory() {
		return nil, fmt.Errorf("test database must use in-memory storage, got %q", config.DSN)
	}

	dialect, err := DialectFor(config.driverName())
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(config.driverName(), dataSourceName(config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	configureConnectionPool(db, config)

	ctx, cancel := context.WithTimeout(context.Background(), config.acquireTimeout())
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	if err := migrate(ctx, db, dialect); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger := slog.Default().With(slog.String("component", "rolldb"))
	if config.verbose {
		logging.LogOperation(logger, "database_opened",
			slog.String("driver", config.driverName()),
			slog.Int("max_open_conns", db.Stats().MaxOpenConnections))
	}

	return &Client{
		config:  config,
		DB:      db,
		Queries: New(db, dialect),
		logger:  logger,
	}, nil
}

// dataSourceName adds a busy timeout to file backed modernc databases so
// that concurrent writers wait instead of failing with SQLITE_BUSY.
func dataSourceName(config Config) string {
	if config.driverName() != "sqlite" || config.isInMemory() || strings.Contains(config.DSN, "_pragma=") {
		return config.DSN
	}
	sep := "?"
	if strings.Contains(config.DSN, "?") {
		sep = "&"
	}
	return config.DSN + sep + "_pragma=busy_timeout(5000)"
}

func configureConnectionPool(db *sql.DB, config Config) {
	if config.isInMemory() {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	maxOpen := config.maxOpenConns()
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(min(5, maxOpen))
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
}

// Dialect returns the SQL dialect of the underlying driver.
func (c *Client) Dialect() Dialect {
	return c.Queries.dialect
}

// WithConn acquires one pooled connection, runs fn with queries bound to it
// and returns the connection to the pool on every exit path. Acquisition is
// bounded by Config.AcquireTimeout; running out of time yields
// ErrStorageUnavailable.
func (c *Client) WithConn(ctx context.Context, fn func(q *Queries) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, c.config.acquireTimeout())
	conn, err := c.DB.Conn(acquireCtx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	defer logging.SafeCloseWithLogging(conn, c.logger, "db_conn")

	return fn(c.Queries.WithDB(conn))
}

// WithTx is WithConn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (c *Client) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	return c.WithConn(ctx, func(q *Queries) error {
		conn, ok := q.db.(*sql.Conn)
		if !ok {
			return errors.New("rolldb: WithTx requires a dedicated connection")
		}
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		if err := fn(q.WithTx(tx)); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.LogError(c.logger, "rollback failed", rbErr)
			}
			return err
		}
		return tx.Commit()
	})
}

// Ping checks that a connection can be acquired and used.
func (c *Client) Ping(ctx context.Context) error {
	return c.WithConn(ctx, func(q *Queries) error {
		conn := q.db.(*sql.Conn)
		return conn.PingContext(ctx)
	})
}

// InUseConnections reports the number of connections currently checked out.
func (c *Client) InUseConnections() int {
	return c.DB.Stats().InUse
}

func (c *Client) Close() error {
	return c.DB.Close()
}
