package catalog

import (
	"context"

	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

// Resolver resolves the make catalog and the models that depend on a make.
//
// Models returns an empty slice, not an error, for an unknown make id. Search
// operations filter by a case-insensitive substring of the name; an empty term
// returns the unfiltered list.
type Resolver interface {
	Makes(ctx context.Context) ([]vehicle.Make, error)
	Models(ctx context.Context, makeID string) ([]vehicle.Model, error)
	SearchMakes(ctx context.Context, term string) ([]vehicle.Make, error)
	SearchModels(ctx context.Context, makeID, term string) ([]vehicle.Model, error)
}

// Catalog is the in-memory form of the make/model tables.
type Catalog struct {
	Makes  []vehicle.Make  `yaml:"makes" json:"makes"`
	Models []vehicle.Model `yaml:"models" json:"models"`
}

// MakeByID returns the make with id.
func (c Catalog) MakeByID(id string) (vehicle.Make, bool) {
	for _, m := range c.Makes {
		if m.ID == id {
			return m, true
		}
	}
	return vehicle.Make{}, false
}

// ModelsFor returns the models whose MakeID equals makeID, in catalog order.
func (c Catalog) ModelsFor(makeID string) []vehicle.Model {
	out := make([]vehicle.Model, 0, 8)
	for _, m := range c.Models {
		if m.MakeID == makeID {
			out = append(out, m)
		}
	}
	return out
}
