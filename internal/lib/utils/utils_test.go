package utils

import (
	"bytes"
	"testing"
)

func TestHumanize(t *testing.T) {
	cases := map[string]string{
		"DELAY_PERCENTAGE": "Delay Percentage",
		"FLIGHT_ID":        "Flight Id",
		"origin_airport":   "Origin Airport",
		"ID":               "Id",
		"":                 "",
	}

	for in, want := range cases {
		if got := Humanize(in); got != want {
			t.Errorf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, map[string]int{"count": 0}); err != nil {
		t.Fatalf("PrintJSON returned error: %v", err)
	}
	if got := buf.String(); got != "{\n  \"count\": 0\n}\n" {
		t.Errorf("PrintJSON wrote %q", got)
	}
}

func TestPrintJSON_Unsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, make(chan int)); err == nil {
		t.Error("expected an error for a channel")
	}
}
