package repository

import (
	"github.com/deppfellow/flight-data/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Flights *FlightRepository
}

// NewRepositories constructs the repository container on top of the
// database owned by s.
func NewRepositories(s *server.Server) *Repositories {
	var opts []Option
	if s.Config.Observability != nil {
		opts = append(opts, WithSlowQueryThreshold(s.Config.Observability.Logging.SlowQueryThreshold))
	}

	return &Repositories{
		Flights: NewFlightRepository(s.DB, s.Logger, opts...),
	}
}
