// Package server exposes the garage over HTTP: the JSON API with its OpenAPI
// description, the catalog endpoints, server-rendered pages, health and
// metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	catalogcomponent "github.com/goliatone/go-trackjournal/components/catalog"
	"github.com/goliatone/go-trackjournal/pkg/auth"
	"github.com/goliatone/go-trackjournal/pkg/catalog"
	"github.com/goliatone/go-trackjournal/pkg/store"
	"github.com/goliatone/go-trackjournal/pkg/views"
)

// Options configures the listener.
type Options struct {
	Addr            string
	BasePath        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	SecureCookies   bool
}

// Deps are the collaborators served over HTTP.
type Deps struct {
	Records  store.RecordStore
	Profiles store.ProfileStore
	Auth     auth.Service
	Tokens   auth.TokenVerifier
	Resetter auth.PasswordResetter
	Catalog  catalog.Resolver
	Views    *views.Views
	Metrics  http.Handler
	// Ready reports backend health for /healthz.
	Ready  func(ctx context.Context) error
	Logger *zap.Logger
	Now    func() time.Time
}

// Server wires handlers onto a ServeMux.
type Server struct {
	opts     Options
	deps     Deps
	logger   *zap.Logger
	doc      *openapi3.T
	docJSON  []byte
	validate *requestValidator
	handler  http.Handler
}

// New builds the server and its routes.
func New(ctx context.Context, opts Options, deps Deps) (*Server, error) {
	if deps.Records == nil {
		deps.Records = store.Unavailable{}
	}
	if deps.Auth == nil || deps.Tokens == nil {
		return nil, errors.New("server: auth service and token verifier are required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("server: catalog resolver is required")
	}
	if deps.Views == nil {
		v, err := views.New("")
		if err != nil {
			return nil, err
		}
		deps.Views = v
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	doc, err := LoadDocument(ctx)
	if err != nil {
		return nil, err
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("server: encode openapi document: %w", err)
	}

	s := &Server{
		opts:     opts,
		deps:     deps,
		logger:   deps.Logger,
		doc:      doc,
		docJSON:  docJSON,
		validate: newRequestValidator(doc),
	}
	mux := http.NewServeMux()
	if err := s.routes(mux); err != nil {
		return nil, err
	}

	var root http.Handler = mux
	if base := strings.TrimRight(strings.TrimSpace(opts.BasePath), "/"); base != "" && base != "/" {
		outer := http.NewServeMux()
		outer.Handle(base+"/", http.StripPrefix(base, mux))
		root = outer
	}
	s.handler = s.logRequests(root)
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes(mux *http.ServeMux) error {
	type apiRoute struct {
		method, path string
		handler      http.HandlerFunc
		authed       bool
	}
	api := []apiRoute{
		{http.MethodPost, "/api/auth/signup", s.handleSignUp, false},
		{http.MethodPost, "/api/auth/signin", s.handleSignIn, false},
		{http.MethodPost, "/api/auth/reset", s.handleSendReset, false},
		{http.MethodPost, "/api/auth/reset/confirm", s.handleConfirmReset, false},
		{http.MethodPost, "/api/auth/google", s.handleGoogle, false},
		{http.MethodPost, "/api/auth/apple", s.handleApple, false},
		{http.MethodGet, "/api/vehicles", s.handleListVehicles, true},
		{http.MethodPost, "/api/vehicles", s.handleCreateVehicle, true},
		{http.MethodGet, "/api/vehicles/{id}", s.handleGetVehicle, true},
		{http.MethodPatch, "/api/vehicles/{id}", s.handleUpdateVehicle, true},
		{http.MethodDelete, "/api/vehicles/{id}", s.handleDeleteVehicle, true},
	}
	for _, route := range api {
		validated, err := s.validate.wrap(route.method, route.path, route.handler)
		if err != nil {
			return err
		}
		if route.authed {
			validated = s.authenticate(validated, apiUnauthorized)
		}
		mux.Handle(route.method+" "+route.path, validated)
	}

	component := catalogcomponent.New(catalogcomponent.WithResolver(s.deps.Catalog))
	if _, err := component.RegisterRoutes(mux, ""); err != nil {
		return err
	}

	mux.HandleFunc("GET /openapi.json", s.handleOpenAPI)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.deps.Metrics != nil {
		mux.Handle("GET /metrics", s.deps.Metrics)
	}

	pages := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /garage", s.pageGarage},
		{"GET /garage/new", s.pageNewVehicle},
		{"POST /garage/new", s.pageCreateVehicle},
		{"GET /garage/{id}/edit", s.pageEditVehicle},
		{"POST /garage/{id}/edit", s.pageUpdateVehicle},
	}
	for _, page := range pages {
		mux.Handle(page.pattern, s.authenticate(page.handler, s.pageUnauthorized))
	}
	mux.HandleFunc("GET /reset-password", s.pageReset)
	mux.HandleFunc("POST /reset-password", s.pageConfirmReset)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.path("/garage"), http.StatusFound)
	})
	return nil
}

func (s *Server) path(p string) string {
	base := strings.TrimRight(strings.TrimSpace(s.opts.BasePath), "/")
	return base + p
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.docJSON)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server: listening", zap.String("addr", s.opts.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.logger.Info("server: shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
