package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/deppfellow/flight-data/internal/repository"
	"github.com/deppfellow/flight-data/internal/service"
)

// dateLayout is DD/MM/YYYY; single-digit days and months are accepted.
const dateLayout = "2/1/2006"

type lookup func(ctx context.Context, svc *service.FlightService) *service.FlightsResult

func newQueryCmd(opts *options) *cobra.Command {
	query := &cobra.Command{
		Use:   "query",
		Short: "Run one lookup and print the result",
	}

	query.PersistentFlags().BoolVar(&opts.json, "json", false, "print the result as JSON")

	query.AddCommand(
		&cobra.Command{
			Use:     "by-id <id>",
			Short:   "Show the flight with the given ID",
			Example: "  flights query by-id 7",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid flight id %q: must be an integer", args[0])
				}
				return run(cmd, opts, func(ctx context.Context, svc *service.FlightService) *service.FlightsResult {
					return svc.FlightByID(ctx, id)
				})
			},
		},
		&cobra.Command{
			Use:     "by-date <DD/MM/YYYY>",
			Short:   "Show all flights on a date",
			Example: "  flights query by-date 01/03/2015",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				day, month, year, err := parseDate(args[0])
				if err != nil {
					return err
				}
				return run(cmd, opts, func(ctx context.Context, svc *service.FlightService) *service.FlightsResult {
					return svc.FlightsByDate(ctx, day, month, year)
				})
			},
		},
		&cobra.Command{
			Use:     "by-airline <airline name>",
			Short:   "Show delayed flights of an airline",
			Example: `  flights query by-airline "Delta Air Lines Inc."`,
			Args:    cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				airline := strings.Join(args, " ")
				return run(cmd, opts, func(ctx context.Context, svc *service.FlightService) *service.FlightsResult {
					return svc.DelayedFlightsByAirline(ctx, airline)
				})
			},
		},
		&cobra.Command{
			Use:     "by-airport <IATA code>",
			Short:   "Show delayed departures from an airport",
			Example: "  flights query by-airport JFK",
			Args:    cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				airport := strings.ToUpper(strings.TrimSpace(args[0]))
				return run(cmd, opts, func(ctx context.Context, svc *service.FlightService) *service.FlightsResult {
					return svc.DelayedFlightsByAirport(ctx, airport)
				})
			},
		},
		&cobra.Command{
			Use:   "delay-percentage",
			Short: "Show the share of delayed flights per airline",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return run(cmd, opts, func(ctx context.Context, svc *service.FlightService) *service.FlightsResult {
					return svc.DelayPercentageByAirline(ctx)
				})
			},
		},
	)

	return query
}

// run opens the database, performs one lookup, prints it and closes the
// database again.
func run(cmd *cobra.Command, opts *options, fn lookup) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	opts.quietLevel(cfg)

	s, err := bootstrap(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = s.Shutdown(context.Background()) }()

	repos := repository.NewRepositories(s)
	svc := service.NewFlightService(s, repos.Flights)

	result := fn(cmd.Context(), svc)

	return render(cmd.OutOrStdout(), result, opts.json)
}

func parseDate(value string) (day, month, year int, err error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q: expected DD/MM/YYYY", value)
	}
	return t.Day(), int(t.Month()), t.Year(), nil
}
