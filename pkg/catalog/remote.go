package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

const (
	defaultCacheSize  = 128
	defaultMakesPath  = "/api/makes"
	defaultRemoteWait = 10 * time.Second
	defaultPageSize   = 200
	maxRemotePages    = 1000
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RemoteOption configures a Remote resolver.
type RemoteOption func(*Remote)

// WithHTTPClient overrides the client used for catalog requests.
func WithHTTPClient(client HTTPDoer) RemoteOption {
	return func(r *Remote) {
		if client != nil {
			r.client = client
		}
	}
}

// WithCacheSize sets the number of cached responses. Zero disables caching.
func WithCacheSize(size int) RemoteOption {
	return func(r *Remote) {
		r.cacheSize = size
	}
}

// WithMakesPath overrides the route serving the make list.
func WithMakesPath(path string) RemoteOption {
	return func(r *Remote) {
		if path = strings.TrimSpace(path); path != "" {
			r.makesPath = "/" + strings.Trim(path, "/")
		}
	}
}

// WithPageSize sets how many entries are requested per page.
func WithPageSize(size int) RemoteOption {
	return func(r *Remote) {
		if size > 0 {
			r.pageSize = size
		}
	}
}

// Remote resolves choices from a catalog HTTP endpoint. Successful responses
// are cached by request URL; failures are never cached and propagate to the
// caller. Lists are read page by page in catalog order, so Makes and Models
// return every entry and searches keep the same order as Static.
type Remote struct {
	baseURL   *url.URL
	client    HTTPDoer
	makesPath string
	pageSize  int
	cacheSize int
	cache     *lru.Cache[string, []remoteOption]
}

var _ Resolver = (*Remote)(nil)

// NewRemote builds a resolver against baseURL (e.g. "http://localhost:8080").
func NewRemote(baseURL string, opts ...RemoteOption) (*Remote, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("catalog: parse base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("catalog: base url %q must be absolute", baseURL)
	}
	r := &Remote{
		baseURL:   parsed,
		client:    &http.Client{Timeout: defaultRemoteWait},
		makesPath: defaultMakesPath,
		pageSize:  defaultPageSize,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.cacheSize > 0 {
		cache, err := lru.New[string, []remoteOption](r.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("catalog: create cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

func (r *Remote) Makes(ctx context.Context) ([]vehicle.Make, error) {
	return r.SearchMakes(ctx, "")
}

func (r *Remote) Models(ctx context.Context, makeID string) ([]vehicle.Model, error) {
	return r.SearchModels(ctx, makeID, "")
}

func (r *Remote) SearchMakes(ctx context.Context, term string) ([]vehicle.Make, error) {
	opts, err := r.fetch(ctx, r.makesPath, term)
	if err != nil {
		return nil, err
	}
	out := make([]vehicle.Make, 0, len(opts))
	for _, opt := range opts {
		out = append(out, vehicle.Make{ID: opt.Value, Name: opt.Label})
	}
	return out, nil
}

func (r *Remote) SearchModels(ctx context.Context, makeID, term string) ([]vehicle.Model, error) {
	makeID = strings.TrimSpace(makeID)
	if makeID == "" {
		return []vehicle.Model{}, nil
	}
	path := r.makesPath + "/" + url.PathEscape(makeID) + "/models"
	opts, err := r.fetch(ctx, path, term)
	if err != nil {
		return nil, err
	}
	out := make([]vehicle.Model, 0, len(opts))
	for _, opt := range opts {
		out = append(out, vehicle.Model{ID: opt.Value, Name: opt.Label, MakeID: makeID})
	}
	return out, nil
}

type remoteOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type remoteResponse struct {
	Data  []remoteOption `json:"data"`
	Total *int           `json:"total"`
}

func (r *Remote) fetch(ctx context.Context, path, term string) ([]remoteOption, error) {
	endpoint := r.baseURL.JoinPath(path)
	query := url.Values{}
	if term = strings.TrimSpace(term); term != "" {
		query.Set("q", term)
	}
	query.Set("order", "catalog")
	endpoint.RawQuery = query.Encode()
	key := endpoint.String()

	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			return append([]remoteOption{}, cached...), nil
		}
	}

	all := []remoteOption{}
	for page := 0; ; page++ {
		if page == maxRemotePages {
			return nil, fmt.Errorf("catalog: fetch %s: more than %d pages", path, maxRemotePages)
		}
		query.Set("limit", strconv.Itoa(r.pageSize))
		query.Set("offset", strconv.Itoa(len(all)))
		endpoint.RawQuery = query.Encode()

		payload, err := r.fetchPage(ctx, path, endpoint.String())
		if err != nil {
			return nil, err
		}
		all = append(all, payload.Data...)
		if len(payload.Data) == 0 {
			break
		}
		if payload.Total != nil {
			if len(all) >= *payload.Total {
				break
			}
			continue
		}
		if len(payload.Data) < r.pageSize {
			break
		}
	}

	if r.cache != nil {
		r.cache.Add(key, all)
	}
	return append([]remoteOption{}, all...), nil
}

func (r *Remote) fetchPage(ctx context.Context, path, target string) (remoteResponse, error) {
	var payload remoteResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return payload, fmt.Errorf("catalog: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return payload, fmt.Errorf("catalog: fetch %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return payload, fmt.Errorf("catalog: fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return payload, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	return payload, nil
}
