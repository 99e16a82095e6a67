package catalog

import (
	"context"
	"embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

//go:embed data/catalog.yaml
var dataFS embed.FS

const defaultCatalogPath = "data/catalog.yaml"

var (
	defaultOnce    sync.Once
	defaultCatalog Catalog
	defaultErr     error
)

// DefaultCatalog returns a copy of the embedded seed catalog.
func DefaultCatalog() (Catalog, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultCatalogPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		cat, err := LoadCatalog(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultCatalog = cat
	})

	if defaultErr != nil {
		return Catalog{}, defaultErr
	}
	return Catalog{
		Makes:  append([]vehicle.Make{}, defaultCatalog.Makes...),
		Models: append([]vehicle.Model{}, defaultCatalog.Models...),
	}, nil
}

// LoadCatalog decodes a YAML catalog and checks its referential properties:
// make ids are unique, model ids are unique across the whole catalog and every
// model references a known make.
func LoadCatalog(r io.Reader) (Catalog, error) {
	if r == nil {
		return Catalog{}, fmt.Errorf("catalog: missing reader")
	}
	var cat Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return Catalog{}, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := cat.Check(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

// Check reports the first structural problem in c.
func (c Catalog) Check() error {
	makes := make(map[string]struct{}, len(c.Makes))
	for _, m := range c.Makes {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			return fmt.Errorf("catalog: make %q has no id", m.Name)
		}
		if _, dup := makes[id]; dup {
			return fmt.Errorf("catalog: duplicate make id %q", id)
		}
		makes[id] = struct{}{}
	}
	models := make(map[string]struct{}, len(c.Models))
	for _, m := range c.Models {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			return fmt.Errorf("catalog: model %q has no id", m.Name)
		}
		if _, dup := models[id]; dup {
			return fmt.Errorf("catalog: duplicate model id %q", id)
		}
		models[id] = struct{}{}
		if _, ok := makes[m.MakeID]; !ok {
			return fmt.Errorf("catalog: model %q references unknown make %q", id, m.MakeID)
		}
	}
	return nil
}

// Static resolves choices from an in-memory catalog. It never fails once
// constructed, apart from context cancellation.
type Static struct {
	catalog Catalog
}

var _ Resolver = (*Static)(nil)

// NewStatic wraps cat. Use DefaultCatalog for the embedded seed data.
func NewStatic(cat Catalog) *Static {
	return &Static{catalog: cat}
}

// NewDefaultStatic returns a resolver over the embedded seed catalog.
func NewDefaultStatic() (*Static, error) {
	cat, err := DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return NewStatic(cat), nil
}

// Catalog returns the backing tables.
func (s *Static) Catalog() Catalog {
	return s.catalog
}

func (s *Static) Makes(ctx context.Context) ([]vehicle.Make, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]vehicle.Make{}, s.catalog.Makes...), nil
}

func (s *Static) Models(ctx context.Context, makeID string) ([]vehicle.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.catalog.ModelsFor(makeID), nil
}

func (s *Static) SearchMakes(ctx context.Context, term string) ([]vehicle.Make, error) {
	makes, err := s.Makes(ctx)
	if err != nil {
		return nil, err
	}
	return FilterMakes(makes, term), nil
}

func (s *Static) SearchModels(ctx context.Context, makeID, term string) ([]vehicle.Model, error) {
	models, err := s.Models(ctx, makeID)
	if err != nil {
		return nil, err
	}
	return FilterModels(models, term), nil
}
