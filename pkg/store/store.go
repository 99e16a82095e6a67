package store

import (
	"context"
	"time"

	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

// RecordStore persists garage records.
//
// List returns the owner's records newest first. Update applies a partial
// patch, stamps UpdatedAt and returns the stored record as re-read after the
// write. Get, Update and Delete return CodeVehicleNotFound for unknown ids.
type RecordStore interface {
	List(ctx context.Context, ownerID string) ([]vehicle.Vehicle, error)
	Get(ctx context.Context, id string) (vehicle.Vehicle, error)
	Create(ctx context.Context, ownerID string, data vehicle.Data) (vehicle.Vehicle, error)
	Update(ctx context.Context, id string, patch vehicle.Patch) (vehicle.Vehicle, error)
	Delete(ctx context.Context, id string) error
}

// Profile is the per-user document created right after sign-up.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileStore persists user profiles.
type ProfileStore interface {
	CreateProfile(ctx context.Context, uid, email string) error
	GetProfile(ctx context.Context, uid string) (Profile, error)
}

// Clock returns the current time. Implementations take one so tests can pin
// timestamps.
type Clock func() time.Time
