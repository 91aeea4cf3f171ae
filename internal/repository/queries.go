package repository

import (
	"fmt"
	"strconv"

	"github.com/deppfellow/flight-data/internal/sqlerr"
)

// QueryName identifies one of the predefined lookups.
type QueryName string

const (
	QueryByID                     QueryName = "by_id"
	QueryByDate                   QueryName = "by_date"
	QueryByAirline                QueryName = "by_airline"
	QueryByAirport                QueryName = "by_airport"
	QueryDelayPercentageByAirline QueryName = "delay_percentage_by_airline"
)

// DelayedThreshold is the departure delay, in minutes, from which a flight
// counts as delayed.
const DelayedThreshold = 20

// Query is an immutable, read-only SQL statement with positional
// placeholders $1..$n. paramNames[i] is the name bound to $(i+1).
//
// $n placeholders are understood by both PostgreSQL and SQLite. Output
// columns use quoted upper-case aliases so both engines report the same
// column names.
type Query struct {
	name       QueryName
	sql        string
	paramNames []string
}

// Name returns the query identifier.
func (q Query) Name() QueryName { return q.name }

// SQL returns the statement text.
func (q Query) SQL() string { return q.sql }

// ParamNames returns the placeholder names in positional order.
func (q Query) ParamNames() []string {
	return append([]string(nil), q.paramNames...)
}

// Bind turns named parameters into positional arguments. The keys of params
// must match the placeholder names exactly: a missing or an unexpected key
// is an error wrapping sqlerr.ErrBinding.
func (q Query) Bind(params Params) ([]any, error) {
	args := make([]any, len(q.paramNames))
	for i, name := range q.paramNames {
		value, ok := params[name]
		if !ok {
			return nil, fmt.Errorf("%w: query %s: missing parameter %q", sqlerr.ErrBinding, q.name, name)
		}
		args[i] = value
	}

	if len(params) != len(q.paramNames) {
		for name := range params {
			if !q.hasParam(name) {
				return nil, fmt.Errorf("%w: query %s: unexpected parameter %q", sqlerr.ErrBinding, q.name, name)
			}
		}
	}

	return args, nil
}

func (q Query) hasParam(name string) bool {
	for _, p := range q.paramNames {
		if p == name {
			return true
		}
	}
	return false
}

var delayed = strconv.Itoa(DelayedThreshold)

var queryStore = []Query{
	{
		name: QueryByID,
		sql: `SELECT flights.*, airlines.AIRLINE AS "AIRLINE_NAME", flights.ID AS "FLIGHT_ID",
	flights.DEPARTURE_DELAY AS "DELAY"
FROM flights
JOIN airlines ON flights.AIRLINE = airlines.ID
WHERE flights.ID = $1`,
		paramNames: []string{"id"},
	},
	{
		name: QueryByDate,
		sql: `SELECT ID AS "ID", ORIGIN_AIRPORT AS "ORIGIN_AIRPORT",
	DESTINATION_AIRPORT AS "DESTINATION_AIRPORT", AIRLINE AS "AIRLINE", DEPARTURE_DELAY AS "DELAY"
FROM flights
WHERE YEAR = $1 AND MONTH = $2 AND DAY = $3`,
		paramNames: []string{"year", "month", "day"},
	},
	{
		name: QueryByAirline,
		sql: `SELECT f.ID AS "ID", f.ORIGIN_AIRPORT AS "ORIGIN_AIRPORT",
	f.DESTINATION_AIRPORT AS "DESTINATION_AIRPORT", a.AIRLINE AS "AIRLINE", f.DEPARTURE_DELAY AS "DELAY"
FROM flights AS f
JOIN airlines AS a ON f.AIRLINE = a.ID
WHERE a.AIRLINE = $1 AND f.DEPARTURE_DELAY >= ` + delayed,
		paramNames: []string{"airline"},
	},
	{
		name: QueryByAirport,
		sql: `SELECT f.ID AS "ID", f.ORIGIN_AIRPORT AS "ORIGIN_AIRPORT",
	f.DESTINATION_AIRPORT AS "DESTINATION_AIRPORT", a.AIRLINE AS "AIRLINE", f.DEPARTURE_DELAY AS "DELAY"
FROM flights AS f
JOIN airlines AS a ON f.AIRLINE = a.ID
WHERE f.ORIGIN_AIRPORT = $1 AND f.DEPARTURE_DELAY >= ` + delayed,
		paramNames: []string{"airport"},
	},
	{
		// Ties on the percentage are broken by airline name so repeated calls
		// return the same order.
		name: QueryDelayPercentageByAirline,
		sql: `SELECT a.AIRLINE AS "AIRLINE",
	CAST(ROUND(SUM(CASE WHEN f.DEPARTURE_DELAY > 0 THEN 1 ELSE 0 END) * 100.0 / COUNT(*), 2)
		AS DOUBLE PRECISION) AS "DELAY_PERCENTAGE"
FROM flights AS f
JOIN airlines AS a ON f.AIRLINE = a.ID
GROUP BY a.AIRLINE
ORDER BY "DELAY_PERCENTAGE" DESC, a.AIRLINE ASC`,
	},
}

// Lookup returns the query registered under name.
func Lookup(name QueryName) (Query, bool) {
	for _, q := range queryStore {
		if q.name == name {
			return q, true
		}
	}
	return Query{}, false
}

// Queries returns every predefined query in declaration order.
func Queries() []Query {
	return append([]Query(nil), queryStore...)
}
