package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-trackjournal/pkg/auth"
	"github.com/goliatone/go-trackjournal/pkg/store"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

type tickingClock struct {
	at time.Time
}

func (c *tickingClock) Now() time.Time {
	c.at = c.at.Add(time.Minute)
	return c.at
}

func newTestStore() *Store {
	clock := &tickingClock{at: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	n := 0
	return New(WithClock(clock.Now), WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("veh-%d", n)
	}))
}

func camry() vehicle.Data {
	return vehicle.Data{Make: "Toyota", Model: "Camry", Year: 2020, Type: vehicle.TypeCar}
}

func TestStore_CreateAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	first, err := s.Create(ctx, "owner-1", camry())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := s.Create(ctx, "owner-1", vehicle.Data{Make: "Honda", Model: "Civic", Year: 2018, Type: vehicle.TypeCar})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(ctx, "owner-2", camry()); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.List(ctx, "owner-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []vehicle.Vehicle{second, first}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if first.CreatedAt != first.UpdatedAt || first.OwnerID != "owner-1" {
		t.Fatalf("unexpected stamps on create: %+v", first)
	}
}

func TestStore_ListUnknownOwnerIsEmpty(t *testing.T) {
	got, err := newTestStore().List(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestStore_UpdateIsPartial(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	created, err := s.Create(ctx, "owner-1", camry())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	color := "Blue"
	updated, err := s.Update(ctx, created.ID, vehicle.Patch{Color: &color})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Color != "Blue" || updated.Make != "Toyota" || updated.Year != 2020 {
		t.Fatalf("unexpected record after update: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected UpdatedAt to advance")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("CreatedAt must not change")
	}

	reread, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(updated, reread); diff != "" {
		t.Fatalf("re-read mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_MissingRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("get: expected not found, got %v", err)
	}
	if _, err := s.Update(ctx, "missing", vehicle.Patch{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("update: expected not found, got %v", err)
	}
	if err := s.Delete(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("delete: expected not found, got %v", err)
	}
	if err := s.Delete(ctx, "missing"); err == nil || err.Error() != "Vehicle not found" {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	created, _ := s.Create(ctx, "owner-1", camry())
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, created.ID); store.CodeOf(err) != store.CodeVehicleNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestStore().List(ctx, "owner-1"); store.CodeOf(err) != store.CodeCancelled {
		t.Fatalf("expected cancelled code, got %v", err)
	}
}

func TestStore_Profiles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	if _, err := s.GetProfile(ctx, "uid-1"); store.CodeOf(err) != store.CodeProfileNotFound {
		t.Fatalf("expected profile-not-found, got %v", err)
	}
	if err := s.CreateProfile(ctx, "uid-1", "a@b.co"); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	p, err := s.GetProfile(ctx, "uid-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.ID != "uid-1" || p.Email != "a@b.co" || p.CreatedAt.IsZero() {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestStore_Accounts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore()
	acct := auth.Account{UID: "uid-1", Email: "Driver@Example.com", Provider: auth.ProviderPassword, PasswordHash: "h1"}
	if err := s.CreateAccount(ctx, acct); err != nil {
		t.Fatalf("create account: %v", err)
	}
	dup := auth.Account{UID: "uid-2", Email: "driver@example.com", Provider: auth.ProviderPassword}
	if err := s.CreateAccount(ctx, dup); !errors.Is(err, auth.ErrEmailAlreadyInUse) {
		t.Fatalf("expected email in use, got %v", err)
	}

	found, err := s.AccountByEmail(ctx, "DRIVER@example.com")
	if err != nil {
		t.Fatalf("by email: %v", err)
	}
	if found.UID != "uid-1" || found.CreatedAt.IsZero() {
		t.Fatalf("unexpected account: %+v", found)
	}

	if err := s.UpdatePassword(ctx, "uid-1", "h2"); err != nil {
		t.Fatalf("update password: %v", err)
	}
	at := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	if err := s.TouchSignIn(ctx, "uid-1", at); err != nil {
		t.Fatalf("touch: %v", err)
	}
	found, _ = s.AccountByUID(ctx, "uid-1")
	if found.PasswordHash != "h2" || !found.LastSignInAt.Equal(at) {
		t.Fatalf("mutations not applied: %+v", found)
	}

	if _, err := s.AccountBySubject(ctx, auth.ProviderGoogle, "sub"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
	if err := s.UpdatePassword(ctx, "nope", "x"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}
