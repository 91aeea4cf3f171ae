package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/deppfellow/flight-data/internal/config"
	"github.com/deppfellow/flight-data/internal/handler"
	loggerPkg "github.com/deppfellow/flight-data/internal/logger"
	"github.com/deppfellow/flight-data/internal/middleware"
	"github.com/deppfellow/flight-data/internal/repository"
	"github.com/deppfellow/flight-data/internal/server"
	"github.com/deppfellow/flight-data/internal/service"
	"github.com/deppfellow/flight-data/internal/testutil"
)

type flightsResponse struct {
	Query string           `json:"query"`
	Count int              `json:"count"`
	Rows  []map[string]any `json:"rows"`
}

type errorResponse struct {
	Code   string `json:"code"`
	Status int    `json:"status"`
	Errors []struct {
		Field string `json:"field"`
		Error string `json:"error"`
	} `json:"errors"`
}

func newTestRouter(t *testing.T) (*echo.Echo, *server.Server) {
	t.Helper()

	_, uri := testutil.FlightsDB(t)

	cfg := config.Default()
	cfg.Database.URI = uri

	logger := zerolog.Nop()
	s, err := server.New(cfg, &logger, loggerPkg.NewLoggerService(nil))
	if err != nil {
		t.Fatalf("server.New returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown(context.Background()) })

	services, err := service.NewService(s, repository.NewRepositories(s))
	if err != nil {
		t.Fatalf("service.NewService returned error: %v", err)
	}

	return NewRouter(s, handler.NewHandlers(s, services)), s
}

func get(t *testing.T, r *echo.Echo, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeFlights(t *testing.T, rec *httptest.ResponseRecorder) flightsResponse {
	t.Helper()

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var res flightsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("failed to decode body %s: %v", rec.Body.String(), err)
	}
	return res
}

func TestFlightRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name  string
		path  string
		query string
		count int
	}{
		{"by id", "/api/v1/flights/7", "by_id", 1},
		{"unknown id", "/api/v1/flights/999999", "by_id", 0},
		{"by date", "/api/v1/flights?day=1&month=3&year=2015", "by_date", 3},
		{"impossible date", "/api/v1/flights?day=31&month=2&year=2015", "by_date", 0},
		{"by airline", "/api/v1/airlines/American%20Airlines%20Inc./delayed-flights", "by_airline", 1},
		{"unknown airline", "/api/v1/airlines/ZZZ/delayed-flights", "by_airline", 0},
		{"by airport", "/api/v1/airports/JFK/delayed-flights", "by_airport", 2},
		{"delay percentage", "/api/v1/airlines/delay-percentage", "delay_percentage_by_airline", 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := decodeFlights(t, get(t, r, tc.path))

			if res.Query != tc.query {
				t.Errorf("query = %q, want %q", res.Query, tc.query)
			}
			if res.Count != tc.count || len(res.Rows) != tc.count {
				t.Errorf("count = %d with %d rows, want %d", res.Count, len(res.Rows), tc.count)
			}
		})
	}
}

func TestFlightByID_Body(t *testing.T) {
	r, _ := newTestRouter(t)

	res := decodeFlights(t, get(t, r, "/api/v1/flights/7"))
	if len(res.Rows) != 1 {
		t.Fatalf("expected one row, got %d", len(res.Rows))
	}

	row := res.Rows[0]
	if row["FLIGHT_ID"] != float64(7) {
		t.Errorf("FLIGHT_ID = %v", row["FLIGHT_ID"])
	}
	if row["DELAY"] != float64(25) {
		t.Errorf("DELAY = %v", row["DELAY"])
	}
	if row["AIRLINE_NAME"] != "American Airlines Inc." {
		t.Errorf("AIRLINE_NAME = %v", row["AIRLINE_NAME"])
	}
}

func TestDelayPercentage_Order(t *testing.T) {
	r, _ := newTestRouter(t)

	res := decodeFlights(t, get(t, r, "/api/v1/airlines/delay-percentage"))

	// Rows keep the engine's column order in the encoded body.
	if !strings.Contains(get(t, r, "/api/v1/airlines/delay-percentage").Body.String(),
		`{"AIRLINE":"United Air Lines Inc.","DELAY_PERCENTAGE":100}`) {
		t.Error("expected United first with its columns in query order")
	}

	prev := 101.0
	for _, row := range res.Rows {
		pct, ok := row["DELAY_PERCENTAGE"].(float64)
		if !ok {
			t.Fatalf("DELAY_PERCENTAGE is not a number: %v", row["DELAY_PERCENTAGE"])
		}
		if pct > prev {
			t.Errorf("percentages not descending: %v after %v", pct, prev)
		}
		prev = pct
	}
}

func TestBadRequests(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name  string
		path  string
		field string
	}{
		{"non-integer id", "/api/v1/flights/abc", ""},
		{"missing year", "/api/v1/flights?day=1&month=3", "year"},
		{"non-integer day", "/api/v1/flights?day=first&month=3&year=2015", ""},
		{"month out of range", "/api/v1/flights?day=1&month=13&year=2015", "month"},
		{"bad airport code", "/api/v1/airports/JFKX/delayed-flights", "airport"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, r, tc.path)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body.String())
			}

			var res errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("failed to decode error body: %v", err)
			}
			if res.Code != "BAD_REQUEST" {
				t.Errorf("code = %q", res.Code)
			}
			if tc.field == "" {
				return
			}
			for _, fe := range res.Errors {
				if fe.Field == tc.field {
					return
				}
			}
			t.Errorf("expected a field error for %s, got %+v", tc.field, res.Errors)
		})
	}
}

func TestFailedLookupIsEmptyOK(t *testing.T) {
	r, s := newTestRouter(t)

	if err := s.DB.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	res := decodeFlights(t, get(t, r, "/api/v1/flights/7"))
	if res.Count != 0 || len(res.Rows) != 0 {
		t.Errorf("failed lookup must answer an empty result, got %+v", res)
	}
}

func TestSystemRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := get(t, r, "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("/status = %d; body: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Errorf("unexpected /status body: %s", rec.Body.String())
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("response must carry a request id")
	}

	get(t, r, "/api/v1/flights/7")
	rec = get(t, r, "/metrics")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "flights_query_total") {
		t.Errorf("/metrics does not expose query counters: %d", rec.Code)
	}

	rec = get(t, r, "/openapi.json")
	if rec.Code != http.StatusOK || !json.Valid(rec.Body.Bytes()) {
		t.Errorf("/openapi.json = %d", rec.Code)
	}
}

func TestStatus_DatabaseDown(t *testing.T) {
	r, s := newTestRouter(t)
	_ = s.DB.Close()

	rec := get(t, r, "/status")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/status with closed database = %d, want 503", rec.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/airlines/delay-percentage", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get(middleware.RequestIDHeader); got != "req-123" {
		t.Errorf("X-Request-ID = %q, want req-123", got)
	}
}

func TestUnknownRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := get(t, r, "/api/v1/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"code":"NOT_FOUND"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}
