package service

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/flight-data/internal/repository"
	"github.com/deppfellow/flight-data/internal/server"
)

// FlightReader is the set of lookups the service depends on.
// *repository.FlightRepository satisfies it.
type FlightReader interface {
	GetFlightByID(ctx context.Context, flightID int64) repository.ResultSet
	GetFlightsByDate(ctx context.Context, day, month, year int) repository.ResultSet
	GetDelayedFlightsByAirline(ctx context.Context, airlineName string) repository.ResultSet
	GetDelayedFlightsByAirport(ctx context.Context, airportCode string) repository.ResultSet
	GetDelayPercentageByAirline(ctx context.Context) repository.ResultSet
}

// FlightsResult is the payload returned for every lookup.
//
// Count is zero both when nothing matched and when the lookup failed; the
// failure itself is visible in logs and metrics only.
type FlightsResult struct {
	Query string               `json:"query"`
	Count int                  `json:"count"`
	Rows  repository.ResultSet `json:"rows"`
}

type FlightService struct {
	server  *server.Server
	flights FlightReader
}

func NewFlightService(s *server.Server, flights FlightReader) *FlightService {
	return &FlightService{
		server:  s,
		flights: flights,
	}
}

func (s *FlightService) FlightByID(ctx context.Context, flightID int64) *FlightsResult {
	defer segment(ctx, repository.QueryByID).End()
	return newResult(repository.QueryByID, s.flights.GetFlightByID(ctx, flightID))
}

func (s *FlightService) FlightsByDate(ctx context.Context, day, month, year int) *FlightsResult {
	defer segment(ctx, repository.QueryByDate).End()
	return newResult(repository.QueryByDate, s.flights.GetFlightsByDate(ctx, day, month, year))
}

func (s *FlightService) DelayedFlightsByAirline(ctx context.Context, airlineName string) *FlightsResult {
	defer segment(ctx, repository.QueryByAirline).End()
	return newResult(repository.QueryByAirline, s.flights.GetDelayedFlightsByAirline(ctx, airlineName))
}

func (s *FlightService) DelayedFlightsByAirport(ctx context.Context, airportCode string) *FlightsResult {
	defer segment(ctx, repository.QueryByAirport).End()
	return newResult(repository.QueryByAirport, s.flights.GetDelayedFlightsByAirport(ctx, airportCode))
}

func (s *FlightService) DelayPercentageByAirline(ctx context.Context) *FlightsResult {
	defer segment(ctx, repository.QueryDelayPercentageByAirline).End()
	return newResult(repository.QueryDelayPercentageByAirline, s.flights.GetDelayPercentageByAirline(ctx))
}

func newResult(name repository.QueryName, rows repository.ResultSet) *FlightsResult {
	if rows == nil {
		rows = repository.ResultSet{}
	}
	return &FlightsResult{
		Query: string(name),
		Count: len(rows),
		Rows:  rows,
	}
}

// segment starts a New Relic segment when the request carries a transaction.
// Both the transaction and the returned segment may be nil.
func segment(ctx context.Context, name repository.QueryName) *newrelic.Segment {
	return newrelic.FromContext(ctx).StartSegment("flights." + string(name))
}
