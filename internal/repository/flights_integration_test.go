package repository

import (
	"context"
	"database/sql"
	"math"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var postgresFixture = []string{
	`CREATE TABLE airlines (ID TEXT PRIMARY KEY, AIRLINE TEXT NOT NULL)`,
	`CREATE TABLE flights (
		ID BIGINT PRIMARY KEY,
		YEAR INTEGER NOT NULL,
		MONTH INTEGER NOT NULL,
		DAY INTEGER NOT NULL,
		AIRLINE TEXT NOT NULL REFERENCES airlines (ID),
		FLIGHT_NUMBER INTEGER,
		ORIGIN_AIRPORT TEXT NOT NULL,
		DESTINATION_AIRPORT TEXT NOT NULL,
		DEPARTURE_DELAY INTEGER
	)`,
	`INSERT INTO airlines (ID, AIRLINE) VALUES
		('AA', 'American Airlines Inc.'),
		('DL', 'Delta Air Lines Inc.'),
		('UA', 'United Air Lines Inc.')`,
	`INSERT INTO flights VALUES
		(7,  2015, 3, 1, 'AA', 100, 'JFK', 'LAX', 25),
		(8,  2015, 3, 1, 'DL', 200, 'ATL', 'JFK', -3),
		(9,  2015, 3, 2, 'AA', 101, 'JFK', 'ORD', 0),
		(10, 2015, 3, 1, 'UA', 300, 'SFO', 'JFK', 20),
		(11, 2015, 3, 2, 'DL', 201, 'JFK', 'ATL', 45),
		(12, 2015, 3, 3, 'UA', 301, 'SFO', 'LAX', 5),
		(13, 2015, 3, 3, 'AA', 102, 'LAX', 'JFK', NULL)`,
}

// setupPostgres starts PostgreSQL in a container and loads the fixture.
func setupPostgres(t *testing.T) string {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION is not set")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("flights_test"),
		postgres.WithUsername("flights"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	seed, err := sql.Open("pgx", uri)
	if err != nil {
		t.Fatalf("failed to open seed connection: %v", err)
	}
	defer seed.Close()

	for _, stmt := range postgresFixture {
		if _, err := seed.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("failed to load fixture: %v", err)
		}
	}

	return uri
}

func TestFlightRepository_Postgres(t *testing.T) {
	uri := setupPostgres(t)
	ctx := context.Background()

	logger := zerolog.New(zerolog.NewTestWriter(t))
	repo, err := Open(uri, &logger)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer repo.Close()

	rs := repo.GetFlightByID(ctx, 7)
	if len(rs) != 1 {
		t.Fatalf("expected 1 row for flight 7, got %d", len(rs))
	}
	if id, _ := rs[0].Int64("FLIGHT_ID"); id != 7 {
		t.Errorf("FLIGHT_ID = %d, want 7", id)
	}
	if delay, _ := rs[0].Int64("DELAY"); delay != 25 {
		t.Errorf("DELAY = %d, want 25", delay)
	}
	if got := rs[0].String("AIRLINE_NAME"); got != "American Airlines Inc." {
		t.Errorf("AIRLINE_NAME = %q", got)
	}

	if rs := repo.GetFlightsByDate(ctx, 1, 3, 2015); len(rs) != 3 {
		t.Errorf("expected 3 flights on 2015-03-01, got %d", len(rs))
	}

	if rs := repo.GetDelayedFlightsByAirline(ctx, "ZZZ"); !rs.Empty() {
		t.Errorf("unknown airline returned %d rows", len(rs))
	}

	if rs := repo.GetDelayedFlightsByAirport(ctx, "JFK"); len(rs) != 2 {
		t.Errorf("expected 2 delayed JFK departures, got %d", len(rs))
	}

	pct := repo.GetDelayPercentageByAirline(ctx)
	if len(pct) != 3 {
		t.Fatalf("expected 3 airlines, got %d", len(pct))
	}
	if got := pct[0].String("AIRLINE"); got != "United Air Lines Inc." {
		t.Errorf("first airline = %q", got)
	}
	if v, ok := pct[2].Float64("DELAY_PERCENTAGE"); !ok || math.Abs(v-33.33) > 0.001 {
		t.Errorf("American DELAY_PERCENTAGE = %v, %v", v, ok)
	}
}
