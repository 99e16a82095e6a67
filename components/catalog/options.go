package catalog

import (
	"net/http"

	"github.com/goliatone/go-trackjournal/pkg/catalog"
)

type EmptySearchMode string

const (
	// EmptySearchAll returns the full list when the query is blank.
	EmptySearchAll EmptySearchMode = "all"
	// EmptySearchNone returns an empty list until the user types.
	EmptySearchNone EmptySearchMode = "none"
)

// Order selects how matches are sorted.
type Order string

const (
	// OrderRank puts labels starting with the query first.
	OrderRank Order = "rank"
	// OrderCatalog keeps the resolver order. Resolver clients page with it.
	OrderCatalog Order = "catalog"
)

type GuardFunc func(r *http.Request) error

type Options struct {
	RoutePath       string
	ModelsSegment   string
	SearchParam     string
	LimitParam      string
	OffsetParam     string
	OrderParam      string
	DefaultLimit    int
	MaxLimit        int
	EmptySearchMode EmptySearchMode
	Guard           GuardFunc

	// Resolver backs the handler. Nil uses the embedded seed catalog.
	Resolver catalog.Resolver
}

type OptionFn func(*Options)

func DefaultOptions() Options {
	return Options{
		RoutePath:       "/api/makes",
		ModelsSegment:   "models",
		SearchParam:     "q",
		LimitParam:      "limit",
		OffsetParam:     "offset",
		OrderParam:      "order",
		DefaultLimit:    50,
		MaxLimit:        200,
		EmptySearchMode: EmptySearchAll,
	}
}

func NewOptions(fns ...OptionFn) Options {
	opts := DefaultOptions()
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 50
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 200
	}
	if opts.EmptySearchMode == "" {
		opts.EmptySearchMode = EmptySearchAll
	}
	if opts.RoutePath == "" {
		opts.RoutePath = "/api/makes"
	}
	if opts.ModelsSegment == "" {
		opts.ModelsSegment = "models"
	}
	if opts.SearchParam == "" {
		opts.SearchParam = "q"
	}
	if opts.LimitParam == "" {
		opts.LimitParam = "limit"
	}
	if opts.OffsetParam == "" {
		opts.OffsetParam = "offset"
	}
	if opts.OrderParam == "" {
		opts.OrderParam = "order"
	}
	return opts
}

func WithRoutePath(path string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.RoutePath = path
	}
}

func WithSearchParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.SearchParam = name
	}
}

func WithLimitParam(name string) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.LimitParam = name
	}
}

func WithDefaultLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.DefaultLimit = limit
	}
}

func WithMaxLimit(limit int) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.MaxLimit = limit
	}
}

func WithEmptySearchMode(mode EmptySearchMode) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.EmptySearchMode = mode
	}
}

func WithGuard(guard GuardFunc) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Guard = guard
	}
}

func WithResolver(resolver catalog.Resolver) OptionFn {
	return func(o *Options) {
		if o == nil {
			return
		}
		o.Resolver = resolver
	}
}

func clampLimit(limit int, opts Options) int {
	if limit < 0 {
		return 0
	}
	if limit == 0 {
		limit = opts.DefaultLimit
	}
	if opts.MaxLimit > 0 && limit > opts.MaxLimit {
		return opts.MaxLimit
	}
	return limit
}
