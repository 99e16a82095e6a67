package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	pkgcatalog "github.com/goliatone/go-trackjournal/pkg/catalog"
	"github.com/goliatone/go-trackjournal/pkg/vehicle"
)

type handlerResponse struct {
	Data []Option `json:"data"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) handlerResponse {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("expected JSON content-type, got %q", ct)
	}
	var payload handlerResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandler_ListsMakes(t *testing.T) {
	payload := decode(t, serve(Handler(), "/api/makes"))
	if len(payload.Data) != 5 {
		t.Fatalf("expected 5 makes, got %#v", payload.Data)
	}
	if payload.Data[0] != (Option{Value: "1", Label: "Toyota"}) {
		t.Fatalf("unexpected first option: %#v", payload.Data[0])
	}
}

func TestHandler_ListsModelsForMake(t *testing.T) {
	payload := decode(t, serve(Handler(), "/api/makes/3/models?q=us"))
	want := []Option{
		{Value: "12", Label: "Mustang"},
		{Value: "15", Label: "Focus"},
	}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("models mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_UnknownMakeReturnsEmptyArray(t *testing.T) {
	payload := decode(t, serve(Handler(), "/api/makes/999/models"))
	if payload.Data == nil || len(payload.Data) != 0 {
		t.Fatalf("expected empty data array, got %#v", payload.Data)
	}
}

func TestHandler_PrefixMatchesFirst(t *testing.T) {
	static := pkgcatalog.NewStatic(pkgcatalog.Catalog{
		Makes: []vehicle.Make{
			{ID: "1", Name: "Alfa Romeo"},
			{ID: "2", Name: "Romeo Motors"},
		},
	})
	payload := decode(t, serve(Handler(WithResolver(static)), "/api/makes?q=romeo"))
	want := []Option{
		{Value: "2", Label: "Romeo Motors"},
		{Value: "1", Label: "Alfa Romeo"},
	}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestHandler_LimitClamped(t *testing.T) {
	payload := decode(t, serve(Handler(WithMaxLimit(2)), "/api/makes?limit=10"))
	if len(payload.Data) != 2 {
		t.Fatalf("expected 2 results, got %d", len(payload.Data))
	}
}

func TestHandler_EmptySearchNone(t *testing.T) {
	payload := decode(t, serve(Handler(WithEmptySearchMode(EmptySearchNone)), "/api/makes"))
	if len(payload.Data) != 0 {
		t.Fatalf("expected no results, got %#v", payload.Data)
	}
}

func TestHandler_GuardRejects(t *testing.T) {
	h := Handler(WithGuard(func(r *http.Request) error {
		return StatusError{Code: http.StatusUnauthorized}
	}))
	if rec := serve(h, "/api/makes"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/makes", nil)
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Fatalf("expected Allow header, got %q", allow)
	}
}

func TestHandler_UnknownSubrouteNotFound(t *testing.T) {
	if rec := serve(Handler(), "/api/makes/1/trims"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

type failingResolver struct{ pkgcatalog.Resolver }

func (failingResolver) Makes(context.Context) ([]vehicle.Make, error) {
	return nil, errors.New("catalog offline")
}

func TestHandler_ResolverFailure(t *testing.T) {
	if rec := serve(Handler(WithResolver(failingResolver{})), "/api/makes"); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", rec.Code)
	}
}

func manyMakes(n int) *pkgcatalog.Static {
	makes := make([]vehicle.Make, 0, n)
	for i := 1; i <= n; i++ {
		makes = append(makes, vehicle.Make{ID: strconv.Itoa(i), Name: fmt.Sprintf("Make %02d", i)})
	}
	return pkgcatalog.NewStatic(pkgcatalog.Catalog{Makes: makes})
}

func TestHandler_OffsetAndTotal(t *testing.T) {
	rec := serve(Handler(WithResolver(manyMakes(60))), "/api/makes?limit=20&offset=50")
	var payload optionsResponse
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total != 60 {
		t.Fatalf("expected total 60, got %d", payload.Total)
	}
	if len(payload.Data) != 10 || payload.Data[0].Label != "Make 51" {
		t.Fatalf("unexpected page %#v", payload.Data)
	}
}

func TestHandler_CatalogOrderSkipsRanking(t *testing.T) {
	static := pkgcatalog.NewStatic(pkgcatalog.Catalog{
		Makes: []vehicle.Make{
			{ID: "1", Name: "Alfa Romeo"},
			{ID: "2", Name: "Romeo Motors"},
		},
	})
	payload := decode(t, serve(Handler(WithResolver(static)), "/api/makes?q=romeo&order=catalog"))
	want := []Option{
		{Value: "1", Label: "Alfa Romeo"},
		{Value: "2", Label: "Romeo Motors"},
	}
	if diff := cmp.Diff(want, payload.Data); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRemote_ReadsFullListThroughHandler(t *testing.T) {
	static := manyMakes(60)
	srv := httptest.NewServer(Handler(WithResolver(static)))
	defer srv.Close()
	ctx := context.Background()
	want, err := static.Makes(ctx)
	if err != nil {
		t.Fatalf("static makes: %v", err)
	}

	for _, size := range []int{0, 25, 60} {
		opts := []pkgcatalog.RemoteOption{pkgcatalog.WithHTTPClient(srv.Client()), pkgcatalog.WithCacheSize(0)}
		if size > 0 {
			opts = append(opts, pkgcatalog.WithPageSize(size))
		}
		remote, err := pkgcatalog.NewRemote(srv.URL, opts...)
		if err != nil {
			t.Fatalf("new remote: %v", err)
		}
		got, err := remote.Makes(ctx)
		if err != nil {
			t.Fatalf("page size %d: makes: %v", size, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("page size %d: makes mismatch (-want +got):\n%s", size, diff)
		}
	}
}

func TestRemote_SearchMatchesStaticOrder(t *testing.T) {
	static := pkgcatalog.NewStatic(pkgcatalog.Catalog{
		Makes: []vehicle.Make{
			{ID: "1", Name: "Alfa Romeo"},
			{ID: "2", Name: "Romeo Motors"},
			{ID: "3", Name: "Ford"},
		},
	})
	srv := httptest.NewServer(Handler(WithResolver(static), WithMaxLimit(1)))
	defer srv.Close()

	remote, err := pkgcatalog.NewRemote(srv.URL, pkgcatalog.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new remote: %v", err)
	}
	ctx := context.Background()
	want, err := static.SearchMakes(ctx, "romeo")
	if err != nil {
		t.Fatalf("static search: %v", err)
	}
	got, err := remote.SearchMakes(ctx, "romeo")
	if err != nil {
		t.Fatalf("remote search: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}
}
