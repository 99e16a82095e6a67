package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-trackjournal/pkg/catalog"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// stubResolver serves the embedded catalog and lets tests inject failures or
// block model loads for a given make.
type stubResolver struct {
	*catalog.Static

	mu        sync.Mutex
	makesErr  error
	modelsErr error
	block     map[string]chan struct{}
	started   chan string
}

func newStubResolver(t *testing.T) *stubResolver {
	t.Helper()
	static, err := catalog.NewDefaultStatic()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	return &stubResolver{Static: static, block: map[string]chan struct{}{}}
}

func (r *stubResolver) Makes(ctx context.Context) ([]vehicle.Make, error) {
	r.mu.Lock()
	err := r.makesErr
	r.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return r.Static.Makes(ctx)
}

func (r *stubResolver) Models(ctx context.Context, makeID string) ([]vehicle.Model, error) {
	r.mu.Lock()
	err := r.modelsErr
	gate := r.block[makeID]
	started := r.started
	r.mu.Unlock()

	if started != nil {
		started <- makeID
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return r.Static.Models(ctx, makeID)
}

type createCall struct {
	OwnerID string
	Data    vehicle.Data
}

type stubSubmitter struct {
	mu      sync.Mutex
	creates []createCall
	updates []vehicle.Vehicle
	err     error
}

func (s *stubSubmitter) Create(_ context.Context, ownerID string, data vehicle.Data) (vehicle.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates = append(s.creates, createCall{OwnerID: ownerID, Data: data})
	if s.err != nil {
		return vehicle.Vehicle{}, s.err
	}
	v := vehicle.Vehicle{ID: "veh-1", OwnerID: ownerID, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	vehicle.FullPatch(data).Apply(&v)
	return v, nil
}

func (s *stubSubmitter) Update(_ context.Context, v vehicle.Vehicle) (vehicle.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, v)
	if s.err != nil {
		return vehicle.Vehicle{}, s.err
	}
	v.UpdatedAt = fixedNow
	return v, nil
}

func (s *stubSubmitter) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.creates), len(s.updates)
}

var errBoom = errors.New("catalog offline")

func newController(t *testing.T, intent Intent, r *stubResolver, s *stubSubmitter, opts ...Option) *Controller {
	t.Helper()
	opts = append([]Option{WithClock(clock)}, opts...)
	c, err := New(intent, r, s, opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

func mustInit(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if c.State() != Ready {
		t.Fatalf("expected ready after init, got %s", c.State())
	}
}
