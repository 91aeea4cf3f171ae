package handler

import (
	"github.com/deppfellow/flight-data/internal/server"
	"github.com/deppfellow/flight-data/internal/service"
)

// Handlers is a container that groups all HTTP handlers.
type Handlers struct {
	Health  *HealthHandler
	Flights *FlightHandler
	OpenAPI *OpenAPIHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		Flights: NewFlightHandler(s, services.Flights),
		OpenAPI: NewOpenAPIHandler(s),
	}
}
