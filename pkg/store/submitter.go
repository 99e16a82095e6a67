package store

import (
	"context"

	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

// Submitter adapts a RecordStore to the create/update pair used by vehicle
// editors.
type Submitter struct {
	Records RecordStore
}

// NewSubmitter wraps records.
func NewSubmitter(records RecordStore) *Submitter {
	return &Submitter{Records: records}
}

func (s *Submitter) Create(ctx context.Context, ownerID string, data vehicle.Data) (vehicle.Vehicle, error) {
	if s == nil || s.Records == nil {
		return vehicle.Vehicle{}, BackendNotInitialized()
	}
	return s.Records.Create(ctx, ownerID, data)
}

// Update writes every editable attribute of v.
func (s *Submitter) Update(ctx context.Context, v vehicle.Vehicle) (vehicle.Vehicle, error) {
	if s == nil || s.Records == nil {
		return vehicle.Vehicle{}, BackendNotInitialized()
	}
	return s.Records.Update(ctx, v.ID, vehicle.FullPatch(v.Data()))
}
