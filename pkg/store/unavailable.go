package store

import (
	"context"

	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

// Unavailable stands in for a backend that could not be constructed. Every
// operation fails with CodeBackendNotInitialized without doing any work.
type Unavailable struct{}

var (
	_ RecordStore  = Unavailable{}
	_ ProfileStore = Unavailable{}
)

func (Unavailable) List(context.Context, string) ([]vehicle.Vehicle, error) {
	return nil, BackendNotInitialized()
}

func (Unavailable) Get(context.Context, string) (vehicle.Vehicle, error) {
	return vehicle.Vehicle{}, BackendNotInitialized()
}

func (Unavailable) Create(context.Context, string, vehicle.Data) (vehicle.Vehicle, error) {
	return vehicle.Vehicle{}, BackendNotInitialized()
}

func (Unavailable) Update(context.Context, string, vehicle.Patch) (vehicle.Vehicle, error) {
	return vehicle.Vehicle{}, BackendNotInitialized()
}

func (Unavailable) Delete(context.Context, string) error {
	return BackendNotInitialized()
}

func (Unavailable) CreateProfile(context.Context, string, string) error {
	return BackendNotInitialized()
}

func (Unavailable) GetProfile(context.Context, string) (Profile, error) {
	return Profile{}, BackendNotInitialized()
}
