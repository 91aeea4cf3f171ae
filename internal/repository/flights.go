package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/flight-data/internal/database"
	"github.com/deppfellow/flight-data/internal/metrics"
	"github.com/deppfellow/flight-data/internal/sqlerr"
)

// FlightRepository runs the predefined flight lookups against one engine.
//
// It is safe for concurrent use: every lookup borrows its own connection
// from the pool and returns it before the method returns.
type FlightRepository struct {
	db     *database.Database
	logger *zerolog.Logger

	slowQueryThreshold time.Duration
	closeOnce          sync.Once
}

// Option customizes a FlightRepository.
type Option func(*FlightRepository)

// WithSlowQueryThreshold logs a warning for lookups slower than d.
// Zero disables the warning.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(r *FlightRepository) {
		r.slowQueryThreshold = d
	}
}

func NewFlightRepository(db *database.Database, logger *zerolog.Logger, opts ...Option) *FlightRepository {
	r := &FlightRepository{
		db:     db,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetFlightByID returns the flight with the given ID joined with its airline,
// or an empty set.
func (r *FlightRepository) GetFlightByID(ctx context.Context, flightID int64) ResultSet {
	return r.execute(ctx, QueryByID, Params{"id": flightID})
}

// GetFlightsByDate returns every flight scheduled on the given day.
// Calendar validity is not checked; an impossible date matches nothing.
func (r *FlightRepository) GetFlightsByDate(ctx context.Context, day, month, year int) ResultSet {
	return r.execute(ctx, QueryByDate, Params{"day": day, "month": month, "year": year})
}

// GetDelayedFlightsByAirline returns delayed flights operated by the airline
// with the given full name. The match is exact and case-sensitive.
func (r *FlightRepository) GetDelayedFlightsByAirline(ctx context.Context, airlineName string) ResultSet {
	return r.execute(ctx, QueryByAirline, Params{"airline": airlineName})
}

// GetDelayedFlightsByAirport returns delayed flights departing from the
// airport with the given IATA code.
func (r *FlightRepository) GetDelayedFlightsByAirport(ctx context.Context, airportCode string) ResultSet {
	return r.execute(ctx, QueryByAirport, Params{"airport": airportCode})
}

// GetDelayPercentageByAirline returns, per airline, the share of its flights
// with a positive departure delay, highest first.
func (r *FlightRepository) GetDelayPercentageByAirline(ctx context.Context) ResultSet {
	return r.execute(ctx, QueryDelayPercentageByAirline, Params{})
}

// Close releases the underlying engine. It is safe to call more than once;
// lookups after Close return an empty set.
func (r *FlightRepository) Close() error {
	var err error
	r.closeOnce.Do(func() {
		err = r.db.Close()
	})
	return err
}

// Ping reports whether the engine is reachable.
func (r *FlightRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// execute runs one predefined query and applies the error policy: any
// failure is logged with its category and counted, and an empty set is
// returned in its place.
func (r *FlightRepository) execute(ctx context.Context, name QueryName, params Params) ResultSet {
	logger := r.loggerFor(ctx)

	start := time.Now()
	rows, err := r.run(ctx, name, params)
	elapsed := time.Since(start)

	if err != nil {
		category := sqlerr.Classify(err)
		logger.Error().
			Err(err).
			Str("category", string(category)).
			Str("query", string(name)).
			Interface("params", params).
			Dur("duration", elapsed).
			Msg("flight query failed")
		metrics.ObserveQuery(string(name), 0, string(category), elapsed.Seconds())
		return ResultSet{}
	}

	if r.slowQueryThreshold > 0 && elapsed > r.slowQueryThreshold {
		logger.Warn().
			Str("query", string(name)).
			Dur("duration", elapsed).
			Dur("threshold", r.slowQueryThreshold).
			Msg("slow flight query")
	}

	logger.Debug().
		Str("query", string(name)).
		Int("rows", len(rows)).
		Dur("duration", elapsed).
		Msg("flight query executed")
	metrics.ObserveQuery(string(name), len(rows), "", elapsed.Seconds())

	return rows
}

// loggerFor prefers the request-scoped logger carried by ctx.
func (r *FlightRepository) loggerFor(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return r.logger
}

// run borrows a connection, executes the query and materializes every row
// before the connection goes back to the pool.
func (r *FlightRepository) run(ctx context.Context, name QueryName, params Params) (result ResultSet, err error) {
	defer func() {
		if p := recover(); p != nil {
			result, err = nil, fmt.Errorf("panic during query %s: %v", name, p)
		}
	}()

	query, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown query %q", sqlerr.ErrBinding, name)
	}

	args, err := query.Bind(params)
	if err != nil {
		return nil, err
	}

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query.SQL(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result = ResultSet{}
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}

		for i := range values {
			values[i] = normalizeValue(values[i])
		}
		result = append(result, NewRow(columns, values))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
