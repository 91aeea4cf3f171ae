// Package database contains the logic for establishing
// connections to the flight database.
//
// It owns the single engine handle (a database/sql pool) and
// integrates the logger/tracer with the PostgreSQL driver (pgx).
//
// It handles:
//   - resolving the configured URI to a driver (pgx or SQLite)
//   - creating the *sql.DB and applying pool settings
//   - wiring query tracing/logging (pgx tracelog) for PostgreSQL
//   - optional New Relic instrumentation (nrpgx5)
//   - scoped per-query connections and a single, idempotent Close
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/deppfellow/flight-data/internal/config"
	loggerConfig "github.com/deppfellow/flight-data/internal/logger"
)

// ErrClosed is returned by Conn after Close. It wraps sql.ErrConnDone so it
// classifies as a connectivity failure.
var ErrClosed = fmt.Errorf("database handle is closed: %w", sql.ErrConnDone)

// Database wraps the engine handle and a logger.
//
// DB is the shared connection pool; every query borrows a scoped
// connection from it through Conn.
type Database struct {
	DB     *sql.DB
	Target Target

	log       *zerolog.Logger
	closeOnce sync.Once
	closed    chan struct{}
}

// multiTracer allows chaining multiple pgx tracers.
//
// pgx supports a single Tracer in ConnConfig. This type runs every tracer
// that implements TraceQueryStart / TraceQueryEnd, in order.
type multiTracer struct {
	tracers []any
}

func (mt *multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryStart(context.Context, *pgx.Conn, pgx.TraceQueryStartData) context.Context
		}); ok {
			ctx = t.TraceQueryStart(ctx, conn, data)
		}
	}
	return ctx
}

func (mt *multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, tracer := range mt.tracers {
		if t, ok := tracer.(interface {
			TraceQueryEnd(context.Context, *pgx.Conn, pgx.TraceQueryEndData)
		}); ok {
			t.TraceQueryEnd(ctx, conn, data)
		}
	}
}

// New opens the engine described by cfg.Database.URI.
//
// Construction errors (unknown scheme, unparsable DSN, unreachable engine)
// are returned to the caller; nothing here is retried.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*Database, error) {
	target, err := ResolveTarget(cfg.Database.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database uri: %w", err)
	}

	var db *sql.DB
	switch target.Driver {
	case DriverPostgres:
		db, err = openPostgres(target, cfg, logger, loggerService)
	default:
		db, err = sql.Open(string(DriverSQLite), target.DSN)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	applyPoolSettings(db, target, cfg.Database)

	database := &Database{
		DB:     db,
		Target: target,
		log:    logger,
		closed: make(chan struct{}),
	}

	// Ping with a timeout so startup fails fast if the engine is down.
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.PingTimeout)*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().
		Str("driver", string(target.Driver)).
		Str("uri", target.Redacted()).
		Msg("connected to the database")

	return database, nil
}

// openPostgres builds a pgx connection config, attaches tracers and wraps
// it as a *sql.DB.
func openPostgres(target Target, cfg *config.Config, logger *zerolog.Logger, loggerService *loggerConfig.LoggerService) (*sql.DB, error) {
	connConfig, err := pgx.ParseConfig(target.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}

	if loggerService.GetApplication() != nil {
		connConfig.Tracer = nrpgx5.NewTracer()
	}

	// SQL statement logging is noisy, local env only.
	if cfg.IsLocal() {
		globalLevel := logger.GetLevel()
		localTracer := &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(loggerConfig.NewPgxLogger(globalLevel)),
			LogLevel: tracelog.LogLevel(loggerConfig.GetPgxTraceLogLevel(globalLevel)),
		}

		if connConfig.Tracer != nil {
			connConfig.Tracer = &multiTracer{
				tracers: []any{connConfig.Tracer, localTracer},
			}
		} else {
			connConfig.Tracer = localTracer
		}
	}

	return stdlib.OpenDB(*connConfig), nil
}

func applyPoolSettings(db *sql.DB, target Target, cfg config.DatabaseConfig) {
	// Every connection to :memory: is a different database.
	if target.IsMemory() {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)
}

// Conn borrows a scoped connection from the pool. The caller must Close it;
// closing returns it to the pool.
func (db *Database) Conn(ctx context.Context) (*sql.Conn, error) {
	select {
	case <-db.closed:
		return nil, ErrClosed
	default:
	}
	return db.DB.Conn(ctx)
}

// Ping verifies the engine is reachable.
func (db *Database) Ping(ctx context.Context) error {
	return db.DB.PingContext(ctx)
}

// Close releases the engine. Only the first call closes the pool; later
// calls return nil.
func (db *Database) Close() error {
	var err error
	db.closeOnce.Do(func() {
		db.log.Info().Msg("closing database connection pool")
		close(db.closed)
		err = db.DB.Close()
	})
	return err
}
