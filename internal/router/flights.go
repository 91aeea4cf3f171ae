package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/flight-data/internal/handler"
)

func registerFlightRoutes(g *echo.Group, h *handler.Handlers) {
	g.GET("/flights", h.Flights.GetFlightsByDate())
	g.GET("/flights/:id", h.Flights.GetFlightByID())
	g.GET("/airlines/delay-percentage", h.Flights.GetDelayPercentageByAirline())
	g.GET("/airlines/:airline/delayed-flights", h.Flights.GetDelayedFlightsByAirline())
	g.GET("/airports/:airport/delayed-flights", h.Flights.GetDelayedFlightsByAirport())
}
