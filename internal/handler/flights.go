package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/flight-data/internal/server"
	"github.com/deppfellow/flight-data/internal/service"
	"github.com/deppfellow/flight-data/internal/validation"
)

type GetFlightByIDRequest struct {
	ID int64 `param:"id"`
}

func (r *GetFlightByIDRequest) Validate() error {
	return validation.Struct(r)
}

// GetFlightsByDateRequest holds the calendar date. Zero counts as missing;
// impossible dates such as 31/02 are accepted and match nothing.
type GetFlightsByDateRequest struct {
	Day   int `query:"day" validate:"required,min=1,max=31"`
	Month int `query:"month" validate:"required,min=1,max=12"`
	Year  int `query:"year" validate:"required,min=1"`
}

func (r *GetFlightsByDateRequest) Validate() error {
	return validation.Struct(r)
}

type GetDelayedByAirlineRequest struct {
	Airline string `param:"airline" validate:"required,max=200"`
}

func (r *GetDelayedByAirlineRequest) Validate() error {
	return validation.Struct(r)
}

type GetDelayedByAirportRequest struct {
	Airport string `param:"airport" validate:"required,iata"`
}

func (r *GetDelayedByAirportRequest) Validate() error {
	return validation.Struct(r)
}

type GetDelayPercentageRequest struct{}

func (r *GetDelayPercentageRequest) Validate() error {
	return nil
}

// FlightHandler serves the flight lookups. Lookups that match nothing and
// lookups that failed both answer 200 with count 0.
type FlightHandler struct {
	Handler
	flights *service.FlightService
}

func NewFlightHandler(s *server.Server, flights *service.FlightService) *FlightHandler {
	return &FlightHandler{
		Handler: NewHandler(s),
		flights: flights,
	}
}

func (h *FlightHandler) GetFlightByID() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, req *GetFlightByIDRequest) (*service.FlightsResult, error) {
			return h.flights.FlightByID(c.Request().Context(), req.ID), nil
		},
		http.StatusOK,
		func() *GetFlightByIDRequest { return &GetFlightByIDRequest{} },
	)
}

func (h *FlightHandler) GetFlightsByDate() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, req *GetFlightsByDateRequest) (*service.FlightsResult, error) {
			return h.flights.FlightsByDate(c.Request().Context(), req.Day, req.Month, req.Year), nil
		},
		http.StatusOK,
		func() *GetFlightsByDateRequest { return &GetFlightsByDateRequest{} },
	)
}

func (h *FlightHandler) GetDelayedFlightsByAirline() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, req *GetDelayedByAirlineRequest) (*service.FlightsResult, error) {
			return h.flights.DelayedFlightsByAirline(c.Request().Context(), req.Airline), nil
		},
		http.StatusOK,
		func() *GetDelayedByAirlineRequest { return &GetDelayedByAirlineRequest{} },
	)
}

func (h *FlightHandler) GetDelayedFlightsByAirport() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, req *GetDelayedByAirportRequest) (*service.FlightsResult, error) {
			return h.flights.DelayedFlightsByAirport(c.Request().Context(), req.Airport), nil
		},
		http.StatusOK,
		func() *GetDelayedByAirportRequest { return &GetDelayedByAirportRequest{} },
	)
}

func (h *FlightHandler) GetDelayPercentageByAirline() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, req *GetDelayPercentageRequest) (*service.FlightsResult, error) {
			return h.flights.DelayPercentageByAirline(c.Request().Context()), nil
		},
		http.StatusOK,
		func() *GetDelayPercentageRequest { return &GetDelayPercentageRequest{} },
	)
}
