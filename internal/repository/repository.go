// Package repository handles all interactions with the flight database.
//
// It contains the predefined read-only SQL queries and the FlightRepository
// that runs them, abstracting SQL logic away from the service layer.
//
// Lookups never return an error: every failure is classified, logged and
// counted, and the caller receives an empty ResultSet.
package repository

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/deppfellow/flight-data/internal/config"
	"github.com/deppfellow/flight-data/internal/database"
	loggerConfig "github.com/deppfellow/flight-data/internal/logger"
)

// Open builds a FlightRepository for uri with default pool settings.
// Construction failures (bad scheme, unreachable engine) are returned.
func Open(uri string, logger *zerolog.Logger) (*FlightRepository, error) {
	cfg := config.Default()
	cfg.Database.URI = uri

	db, err := database.New(cfg, logger, loggerConfig.NewLoggerService(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open flight repository: %w", err)
	}

	return NewFlightRepository(db, logger,
		WithSlowQueryThreshold(cfg.Observability.Logging.SlowQueryThreshold)), nil
}
