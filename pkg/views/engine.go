package views

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

const templateExt = ".tpl"

// Engine renders pongo2 templates from an fs.FS, caching parsed templates.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

// NewEngine loads templates from files.
func NewEngine(files fs.FS) (*Engine, error) {
	if files == nil {
		return nil, errors.New("views: template fs is required")
	}
	registerFilters()
	return &Engine{
		set:       pongo2.NewSet("trackjournal", pongo2.NewFSLoader(files)),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// Globals seeds values visible to every template.
func (e *Engine) Globals(data map[string]any) error {
	ctx, err := toContext(data)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	e.set.Globals.Update(ctx)
	return nil
}

// Render executes the named template (extension optional) into w.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	if !strings.HasSuffix(name, templateExt) {
		name += templateExt
	}
	tmpl, err := e.lookup(name)
	if err != nil {
		return err
	}
	ctx, err := toContext(data)
	if err != nil {
		return fmt.Errorf("views: convert data: %w", err)
	}

	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("views: execute %q: %w", name, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func (e *Engine) lookup(name string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.templates[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("views: load template %q: %w", name, err)
	}
	e.templates[name] = tmpl
	return tmpl, nil
}

// toContext flattens data through JSON so templates see the same keys as the
// API.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	out := pongo2.Context{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var filtersOnce sync.Once

func registerFilters() {
	filtersOnce.Do(func() {
		if !pongo2.FilterExists("typelabel") {
			_ = pongo2.RegisterFilter("typelabel", filterTypeLabel)
		}
		if !pongo2.FilterExists("typeicon") {
			_ = pongo2.RegisterFilter("typeicon", filterTypeIcon)
		}
	})
}

func filterTypeLabel(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(vehicle.Type(in.String()).Info().Label), nil
}

func filterTypeIcon(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(vehicle.Type(in.String()).Info().Icon), nil
}
