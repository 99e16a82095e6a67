package catalog

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-trackjournal/pkg/catalog"
)

type HTTPError interface {
	error
	StatusCode() int
}

type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// optionsResponse carries one page of matches. Total counts every match so
// clients can page with the offset parameter.
type optionsResponse struct {
	Data  []Option `json:"data"`
	Total int      `json:"total"`
}

// Handler builds a handler with default options plus any overrides.
func Handler(fns ...OptionFn) http.Handler {
	return HandlerWithOptions(NewOptions(fns...))
}

// HandlerWithOptions builds a handler from a pre-constructed Options value.
func HandlerWithOptions(opts Options) http.Handler {
	opts = NewOptions(func(o *Options) { *o = opts })
	routePath := "/" + strings.Trim(strings.TrimSpace(opts.RoutePath), "/")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r == nil {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", http.MethodGet+", "+http.MethodHead)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		if opts.Guard != nil {
			if err := opts.Guard(r); err != nil {
				writeGuardError(w, err)
				return
			}
		}

		resolver := opts.Resolver
		if resolver == nil {
			static, err := catalog.NewDefaultStatic()
			if err != nil {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			resolver = static
		}

		makeID, isModels, ok := parseRoute(r.URL.Path, routePath, opts.ModelsSegment)
		if !ok {
			http.NotFound(w, r)
			return
		}

		var (
			options []Option
			err     error
		)
		if isModels {
			options, err = modelOptions(r, resolver, makeID)
		} else {
			options, err = makeOptions(r, resolver)
		}
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}

		params := r.URL.Query()
		order := OrderRank
		if Order(params.Get(opts.OrderParam)) == OrderCatalog {
			order = OrderCatalog
		}
		matches := Match(options, params.Get(opts.SearchParam), order, opts)
		results := Page(matches, parseInt(params.Get(opts.OffsetParam)), parseInt(params.Get(opts.LimitParam)), opts)
		if results == nil {
			results = []Option{}
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(true)
		_ = enc.Encode(optionsResponse{Data: results, Total: len(matches)})
	})
}

func makeOptions(r *http.Request, resolver catalog.Resolver) ([]Option, error) {
	makes, err := resolver.Makes(r.Context())
	if err != nil {
		return nil, err
	}
	out := make([]Option, 0, len(makes))
	for _, m := range makes {
		out = append(out, Option{Value: m.ID, Label: m.Name})
	}
	return out, nil
}

func modelOptions(r *http.Request, resolver catalog.Resolver, makeID string) ([]Option, error) {
	models, err := resolver.Models(r.Context(), makeID)
	if err != nil {
		return nil, err
	}
	out := make([]Option, 0, len(models))
	for _, m := range models {
		out = append(out, Option{Value: m.ID, Label: m.Name})
	}
	return out, nil
}

// parseRoute accepts ".../{routePath}" and ".../{routePath}/{id}/{segment}".
// Any mount prefix before routePath is ignored.
func parseRoute(path, routePath, segment string) (makeID string, models bool, ok bool) {
	idx := strings.LastIndex(path, routePath)
	if idx < 0 {
		return "", false, false
	}
	rest := strings.Trim(path[idx+len(routePath):], "/")
	if rest == "" {
		return "", false, true
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != segment || parts[0] == "" {
		return "", false, false
	}
	id, err := url.PathUnescape(parts[0])
	if err != nil {
		return "", false, false
	}
	return id, true, true
}

func writeGuardError(w http.ResponseWriter, err error) {
	if w == nil {
		return
	}
	if err == nil {
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	code := http.StatusForbidden
	var httpErr HTTPError
	if errors.As(err, &httpErr) && httpErr != nil {
		code = httpErr.StatusCode()
		if code <= 0 {
			code = http.StatusForbidden
		}
	}
	http.Error(w, http.StatusText(code), code)
}

func parseInt(raw string) int {
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
