package repository

import (
	"bytes"
	"context"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/deppfellow/flight-data/internal/testutil"
)

func newTestRepository(t *testing.T) (*FlightRepository, string, *bytes.Buffer) {
	t.Helper()

	path, uri := testutil.FlightsDB(t)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	repo, err := Open(uri, &logger)
	if err != nil {
		t.Fatalf("Open(%q) returned error: %v", uri, err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	return repo, path, &buf
}

func ids(t *testing.T, rs ResultSet, column string) []int64 {
	t.Helper()

	out := make([]int64, 0, len(rs))
	for _, row := range rs {
		id, ok := row.Int64(column)
		if !ok {
			t.Fatalf("row has no integer %s column: %v", column, row.Map())
		}
		out = append(out, id)
	}
	return out
}

func TestGetFlightByID(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	rs := repo.GetFlightByID(context.Background(), 7)
	if len(rs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rs))
	}

	row := rs[0]
	if id, _ := row.Int64("FLIGHT_ID"); id != 7 {
		t.Errorf("FLIGHT_ID = %d, want 7", id)
	}
	if delay, _ := row.Int64("DELAY"); delay != 25 {
		t.Errorf("DELAY = %d, want 25", delay)
	}
	if got := row.String("AIRLINE_NAME"); got != "American Airlines Inc." {
		t.Errorf("AIRLINE_NAME = %q", got)
	}
	if got := row.String("ORIGIN_AIRPORT"); got != "JFK" {
		t.Errorf("ORIGIN_AIRPORT = %q", got)
	}
}

func TestGetFlightByID_Unknown(t *testing.T) {
	repo, _, buf := newTestRepository(t)

	rs := repo.GetFlightByID(context.Background(), 999999)
	if !rs.Empty() {
		t.Fatalf("expected empty result, got %d rows", len(rs))
	}
	if strings.Contains(buf.String(), `"level":"error"`) {
		t.Errorf("no match must not log an error: %s", buf.String())
	}
}

func TestGetFlightsByDate(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	rs := repo.GetFlightsByDate(context.Background(), 1, 3, 2015)

	got := ids(t, rs, "ID")
	want := map[int64]bool{7: true, 8: true, 10: true}
	if len(got) != len(want) {
		t.Fatalf("got IDs %v, want 7, 8 and 10", got)
	}
	for _, id := range got {
		if !want[id] {
			t.Errorf("unexpected flight %d on 2015-03-01", id)
		}
	}

	wantColumns := []string{"ID", "ORIGIN_AIRPORT", "DESTINATION_AIRPORT", "AIRLINE", "DELAY"}
	if cols := rs.Columns(); !reflect.DeepEqual(cols, wantColumns) {
		t.Errorf("columns = %v, want %v", cols, wantColumns)
	}
}

func TestGetFlightsByDate_ImpossibleDate(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	if rs := repo.GetFlightsByDate(context.Background(), 31, 2, 2015); !rs.Empty() {
		t.Errorf("expected no flights on 31/02/2015, got %d", len(rs))
	}
}

func TestGetDelayedFlightsByAirline(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()

	rs := repo.GetDelayedFlightsByAirline(ctx, "American Airlines Inc.")
	if got := ids(t, rs, "ID"); !reflect.DeepEqual(got, []int64{7}) {
		t.Errorf("American delayed flights = %v, want [7]", got)
	}
	if rs.Empty() || rs[0].String("AIRLINE") != "American Airlines Inc." {
		t.Errorf("AIRLINE column must carry the airline name")
	}

	// A delay equal to the threshold counts as delayed.
	rs = repo.GetDelayedFlightsByAirline(ctx, "United Air Lines Inc.")
	if got := ids(t, rs, "ID"); !reflect.DeepEqual(got, []int64{10}) {
		t.Errorf("United delayed flights = %v, want [10]", got)
	}

	if rs := repo.GetDelayedFlightsByAirline(ctx, "ZZZ"); !rs.Empty() {
		t.Errorf("unknown airline returned %d rows", len(rs))
	}
	if rs := repo.GetDelayedFlightsByAirline(ctx, "american airlines inc."); !rs.Empty() {
		t.Errorf("airline match must be case-sensitive")
	}
}

func TestGetDelayedFlightsByAirport(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	rs := repo.GetDelayedFlightsByAirport(context.Background(), "JFK")

	for _, row := range rs {
		if row.String("ORIGIN_AIRPORT") != "JFK" {
			t.Errorf("row from %s in JFK result", row.String("ORIGIN_AIRPORT"))
		}
		if delay, ok := row.Int64("DELAY"); !ok || delay < DelayedThreshold {
			t.Errorf("flight with delay %d is not delayed", delay)
		}
	}

	got := ids(t, rs, "ID")
	if len(got) != 2 {
		t.Fatalf("JFK delayed flights = %v, want 7 and 11", got)
	}
}

func TestGetDelayPercentageByAirline(t *testing.T) {
	repo, _, _ := newTestRepository(t)

	rs := repo.GetDelayPercentageByAirline(context.Background())

	want := []struct {
		airline string
		pct     float64
	}{
		{"United Air Lines Inc.", 100},
		{"Delta Air Lines Inc.", 50},
		{"American Airlines Inc.", 33.33},
	}
	if len(rs) != len(want) {
		t.Fatalf("expected %d airlines, got %d", len(want), len(rs))
	}

	for i, w := range want {
		row := rs[i]
		if got := row.String("AIRLINE"); got != w.airline {
			t.Errorf("row %d AIRLINE = %q, want %q", i, got, w.airline)
		}
		pct, ok := row.Float64("DELAY_PERCENTAGE")
		if !ok {
			t.Fatalf("row %d has no numeric DELAY_PERCENTAGE: %v", i, row.Map())
		}
		if math.Abs(pct-w.pct) > 0.001 {
			t.Errorf("row %d DELAY_PERCENTAGE = %v, want %v", i, pct, w.pct)
		}
		if pct < 0 || pct > 100 {
			t.Errorf("row %d DELAY_PERCENTAGE out of range: %v", i, pct)
		}
	}
}

func TestLookupsAreIdempotent(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	ctx := context.Background()

	calls := map[string]func() ResultSet{
		"by_id":      func() ResultSet { return repo.GetFlightByID(ctx, 7) },
		"by_date":    func() ResultSet { return repo.GetFlightsByDate(ctx, 1, 3, 2015) },
		"by_airline": func() ResultSet { return repo.GetDelayedFlightsByAirline(ctx, "Delta Air Lines Inc.") },
		"by_airport": func() ResultSet { return repo.GetDelayedFlightsByAirport(ctx, "SFO") },
		"percentage": func() ResultSet { return repo.GetDelayPercentageByAirline(ctx) },
	}

	for name, call := range calls {
		first, second := call(), call()
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%s: repeated call returned a different result", name)
		}
	}
}

func TestFailureAfterClose(t *testing.T) {
	repo, _, buf := newTestRepository(t)

	if err := repo.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}

	rs := repo.GetFlightByID(context.Background(), 7)
	if rs == nil || !rs.Empty() {
		t.Fatalf("expected a non-nil empty result, got %v", rs)
	}

	logs := buf.String()
	if !strings.Contains(logs, `"category":"connectivity"`) {
		t.Errorf("expected a connectivity diagnostic, got: %s", logs)
	}
	if !strings.Contains(logs, `"query":"by_id"`) {
		t.Errorf("diagnostic must name the query, got: %s", logs)
	}
}

func TestFailureOnMissingTable(t *testing.T) {
	repo, path, buf := newTestRepository(t)

	testutil.Exec(t, path, `DROP TABLE flights`)

	rs := repo.GetDelayPercentageByAirline(context.Background())
	if !rs.Empty() {
		t.Fatalf("expected empty result, got %d rows", len(rs))
	}
	if !strings.Contains(buf.String(), `"category":"statement"`) {
		t.Errorf("expected a statement diagnostic, got: %s", buf.String())
	}
}

func TestFailureOnCanceledContext(t *testing.T) {
	repo, _, buf := newTestRepository(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if rs := repo.GetFlightsByDate(ctx, 1, 3, 2015); !rs.Empty() {
		t.Fatalf("expected empty result, got %d rows", len(rs))
	}
	if !strings.Contains(buf.String(), `"category":"canceled"`) {
		t.Errorf("expected a canceled diagnostic, got: %s", buf.String())
	}
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	logger := zerolog.Nop()
	if _, err := Open("mysql://localhost/flights", &logger); err == nil {
		t.Fatal("expected construction error for unsupported scheme")
	}
}
