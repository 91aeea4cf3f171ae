// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"github.com/deppfellow/flight-data/internal/repository"
	"github.com/deppfellow/flight-data/internal/server"
)

type Services struct {
	Flights *FlightService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Flights: NewFlightService(s, repos.Flights),
	}, nil
}
