package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-trackjournal/internal/store/memory"
	"github.com/goliatone/go-trackjournal/pkg/store"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

func TestInstrument_CountsByOpAndCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	collectors, err := NewCollectors(reg)
	if err != nil {
		t.Fatalf("collectors: %v", err)
	}
	s := Instrument(memory.New(), collectors)
	ctx := context.Background()

	created, err := s.Create(ctx, "owner-1", vehicle.Data{Make: "Toyota", Model: "Camry", Year: 2020, Type: vehicle.TypeCar})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Get(ctx, created.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := s.Get(ctx, "missing"); err == nil {
		t.Fatalf("expected not found")
	}

	if got := testutil.ToFloat64(collectors.Operations.WithLabelValues("create", "ok")); got != 1 {
		t.Fatalf("create ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collectors.Operations.WithLabelValues("get", "ok")); got != 1 {
		t.Fatalf("get ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collectors.Operations.WithLabelValues("get", store.CodeVehicleNotFound)); got != 1 {
		t.Fatalf("get not found = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(collectors.Duration); n != 2 {
		t.Fatalf("expected 2 histogram series, got %d", n)
	}
}

func TestInstrument_UnavailableBackend(t *testing.T) {
	collectors, err := NewCollectors(nil)
	if err != nil {
		t.Fatalf("collectors: %v", err)
	}
	s := Instrument(store.Unavailable{}, collectors)
	if err := s.Delete(context.Background(), "id"); store.CodeOf(err) != store.CodeBackendNotInitialized {
		t.Fatalf("expected backend error, got %v", err)
	}
	if got := testutil.ToFloat64(collectors.Operations.WithLabelValues("delete", store.CodeBackendNotInitialized)); got != 1 {
		t.Fatalf("delete backend = %v, want 1", got)
	}
}

func TestNewCollectors_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewCollectors(reg); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := NewCollectors(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
