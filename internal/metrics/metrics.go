// Package metrics instruments record stores with Prometheus collectors.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-trackjournal/pkg/store"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

// Collectors groups the store metrics so they can be registered once and
// shared by several decorated stores.
type Collectors struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewCollectors creates the collectors and registers them with reg when it is
// not nil.
func NewCollectors(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trackjournal",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Record store operations by operation and result code.",
		}, []string{"op", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "trackjournal",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Record store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}
	if reg != nil {
		for _, collector := range []prometheus.Collector{c.Operations, c.Duration} {
			if err := reg.Register(collector); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Store decorates a RecordStore.
type Store struct {
	next    store.RecordStore
	metrics *Collectors
	now     func() time.Time
}

var _ store.RecordStore = (*Store)(nil)

// Instrument wraps next.
func Instrument(next store.RecordStore, metrics *Collectors) *Store {
	return &Store{next: next, metrics: metrics, now: time.Now}
}

func (s *Store) observe(op string, start time.Time, err error) {
	code := "ok"
	if err != nil {
		code = store.CodeOf(err)
	}
	s.metrics.Operations.WithLabelValues(op, code).Inc()
	s.metrics.Duration.WithLabelValues(op).Observe(s.now().Sub(start).Seconds())
}

func (s *Store) List(ctx context.Context, ownerID string) ([]vehicle.Vehicle, error) {
	start := s.now()
	out, err := s.next.List(ctx, ownerID)
	s.observe("list", start, err)
	return out, err
}

func (s *Store) Get(ctx context.Context, id string) (vehicle.Vehicle, error) {
	start := s.now()
	out, err := s.next.Get(ctx, id)
	s.observe("get", start, err)
	return out, err
}

func (s *Store) Create(ctx context.Context, ownerID string, data vehicle.Data) (vehicle.Vehicle, error) {
	start := s.now()
	out, err := s.next.Create(ctx, ownerID, data)
	s.observe("create", start, err)
	return out, err
}

func (s *Store) Update(ctx context.Context, id string, patch vehicle.Patch) (vehicle.Vehicle, error) {
	start := s.now()
	out, err := s.next.Update(ctx, id, patch)
	s.observe("update", start, err)
	return out, err
}

func (s *Store) Delete(ctx context.Context, id string) error {
	start := s.now()
	err := s.next.Delete(ctx, id)
	s.observe("delete", start, err)
	return err
}
