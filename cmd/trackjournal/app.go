package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-trackjournal/internal/authlocal"
	"github.com/goliatone/go-trackjournal/internal/mail"
	"github.com/goliatone/go-trackjournal/internal/metrics"
	"github.com/goliatone/go-trackjournal/internal/store/memory"
	"github.com/goliatone/go-trackjournal/internal/store/sqlstore"
	"github.com/goliatone/go-trackjournal/pkg/auth"
	"github.com/goliatone/go-trackjournal/pkg/catalog"
	"github.com/goliatone/go-trackjournal/pkg/config"
	"github.com/goliatone/go-trackjournal/pkg/store"
)

// backend is what every store driver provides.
type backend interface {
	store.RecordStore
	store.ProfileStore
	auth.AccountStore
}

// app is the composition root shared by every command.
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	records  store.RecordStore
	profiles store.ProfileStore
	auth     auth.Service
	tokens   auth.TokenVerifier
	resetter auth.PasswordResetter
	catalog  catalog.Resolver
	registry *prometheus.Registry
	ready    func(ctx context.Context) error

	closers []func() error
}

func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	resolver, err := buildCatalog(cfg)
	if err != nil {
		return nil, err
	}
	a.catalog = resolver

	if !cfg.BackendConfigured() {
		logger.Warn("backend is not configured; store and auth operations will fail",
			zap.Bool("api_key", cfg.Backend.APIKey != ""),
			zap.Bool("app_id", cfg.Backend.AppID != ""),
			zap.Bool("project_id", cfg.Backend.ProjectID != ""),
		)
		a.records = store.Unavailable{}
		a.profiles = store.Unavailable{}
		a.auth = auth.Unavailable{}
		a.tokens = auth.Unavailable{}
		a.resetter = auth.Unavailable{}
		a.ready = func(context.Context) error { return store.BackendNotInitialized() }
		return a, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	db, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}
	collected, err := metrics.NewCollectors(a.registry)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.records = metrics.Instrument(db, collected)
	a.profiles = db

	mailer, err := buildMailer(cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	svc, err := authlocal.New(authConfig(cfg), db, mailer, authlocal.WithLogger(logger))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.auth = auth.NewOnboarding(svc, db, logger)
	a.tokens = svc
	a.resetter = svc
	return a, nil
}

func (a *app) openBackend(ctx context.Context) (backend, error) {
	driver := a.cfg.Store.Driver
	if a.cfg.UseEmulator() {
		a.logger.Info("using in-memory emulator",
			zap.String("host", a.cfg.Backend.EmulatorHost),
			zap.Int("port", a.cfg.Backend.EmulatorPort),
		)
		driver = config.DriverMemory
	}

	switch driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverSQLite, config.DriverPostgres:
		dialect := sqlstore.DialectSQLite
		if driver == config.DriverPostgres {
			dialect = sqlstore.DialectPostgres
		}
		db, err := sqlstore.Open(ctx, dialect, a.cfg.Store.DSN)
		if err != nil {
			return nil, store.NewError(store.CodeBackendNotInitialized, store.MessageBackendNotInitialized, err)
		}
		a.closers = append(a.closers, db.Close)
		a.ready = func(ctx context.Context) error { return db.DB().PingContext(ctx) }
		a.logger.Info("store opened", zap.String("driver", driver))
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// Close releases the store connections.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}

func (a *app) metricsHandler() http.Handler {
	return promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})
}

func authConfig(cfg *config.Config) authlocal.Config {
	return authlocal.Config{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   "trackjournal",
		Audience: cfg.Backend.ProjectID,
		TokenTTL: cfg.Auth.TokenTTL,
		ResetTTL: cfg.Auth.ResetTTL,
		ResetURL: publicURL(cfg, "/reset-password"),
		Google:   authlocal.IdentityProvider{Audience: cfg.Auth.GoogleAudience, Key: cfg.Auth.GoogleSecret},
		Apple:    authlocal.IdentityProvider{Audience: cfg.Auth.AppleAudience, Key: cfg.Auth.AppleSecret},
	}
}

func publicURL(cfg *config.Config, path string) string {
	base := strings.TrimRight(cfg.Server.PublicURL, "/")
	if base == "" {
		base = "http://localhost" + cfg.Server.Addr
	}
	return base + strings.TrimRight(cfg.Server.BasePath, "/") + path
}

func buildMailer(cfg *config.Config, logger *zap.Logger) (mail.Mailer, error) {
	if !cfg.Mail.Enabled() {
		return mail.LogMailer{Logger: logger}, nil
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		NoTLS:    cfg.Mail.NoTLS,
	}, logger)
}

func buildCatalog(cfg *config.Config) (catalog.Resolver, error) {
	if remote := strings.TrimSpace(cfg.Catalog.RemoteURL); remote != "" {
		return catalog.NewRemote(remote, catalog.WithCacheSize(cfg.Catalog.CacheSize))
	}
	static, err := catalog.NewDefaultStatic()
	if err != nil {
		return nil, fmt.Errorf("load seed catalog: %w", err)
	}
	return static, nil
}
