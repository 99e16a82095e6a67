package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

func TestWriteVehicleTable(t *testing.T) {
	var buf bytes.Buffer
	if err := writeVehicleTable(&buf, nil); err != nil {
		t.Fatalf("empty table: %v", err)
	}
	if !strings.Contains(buf.String(), "No vehicles yet") {
		t.Fatalf("unexpected empty output %q", buf.String())
	}

	buf.Reset()
	list := []vehicle.Vehicle{{
		ID: "v1", Make: "Ford", Model: "F-150", Year: 2022, Type: vehicle.TypeTruck,
		LicensePlate: "ABC123", CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
	if err := writeVehicleTable(&buf, list); err != nil {
		t.Fatalf("table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ID", "2022 Ford F-150", "ABC123", "v1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}
