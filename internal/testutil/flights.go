// Package testutil builds small flight databases for tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// Schema matches the layout of the flights dataset: airlines keyed by IATA
// code and flights referencing them.
const Schema = `
CREATE TABLE airlines (
	ID      TEXT PRIMARY KEY,
	AIRLINE TEXT NOT NULL
);
CREATE TABLE flights (
	ID                  INTEGER PRIMARY KEY,
	YEAR                INTEGER NOT NULL,
	MONTH               INTEGER NOT NULL,
	DAY                 INTEGER NOT NULL,
	AIRLINE             TEXT NOT NULL,
	FLIGHT_NUMBER       INTEGER,
	ORIGIN_AIRPORT      TEXT NOT NULL,
	DESTINATION_AIRPORT TEXT NOT NULL,
	DEPARTURE_DELAY     INTEGER
);`

// Seed is the fixture data.
//
//	airline   flights  delayed>0  delay %
//	UA        2        2          100.00
//	DL        2        1           50.00
//	AA        3        1           33.33
//	NK        0        -           (absent)
const Seed = `
INSERT INTO airlines (ID, AIRLINE) VALUES
	('AA', 'American Airlines Inc.'),
	('DL', 'Delta Air Lines Inc.'),
	('UA', 'United Air Lines Inc.'),
	('NK', 'Spirit Air Lines');
INSERT INTO flights (ID, YEAR, MONTH, DAY, AIRLINE, FLIGHT_NUMBER, ORIGIN_AIRPORT, DESTINATION_AIRPORT, DEPARTURE_DELAY) VALUES
	(7,  2015, 3, 1, 'AA', 100, 'JFK', 'LAX', 25),
	(8,  2015, 3, 1, 'DL', 200, 'ATL', 'JFK', -3),
	(9,  2015, 3, 2, 'AA', 101, 'JFK', 'ORD', 0),
	(10, 2015, 3, 1, 'UA', 300, 'SFO', 'JFK', 20),
	(11, 2015, 3, 2, 'DL', 201, 'JFK', 'ATL', 45),
	(12, 2015, 3, 3, 'UA', 301, 'SFO', 'LAX', 5),
	(13, 2015, 3, 3, 'AA', 102, 'LAX', 'JFK', NULL);`

// FlightsDB writes the fixture to a temporary SQLite file and returns its
// path and a sqlite:// URI for it.
func FlightsDB(t testing.TB) (path, uri string) {
	t.Helper()

	path = filepath.Join(t.TempDir(), "flights.sqlite3")
	Exec(t, path, Schema, Seed)

	return path, "sqlite:///" + path
}

// Exec runs statements against the SQLite file at path on a writable
// connection of its own.
func Exec(t testing.TB, path string, statements ...string) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to execute fixture statement: %v", err)
		}
	}
}
