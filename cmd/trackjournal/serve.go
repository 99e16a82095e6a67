package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-trackjournal/internal/server"
	"github.com/goliatone/go-trackjournal/pkg/views"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr != "" {
				cfg.Server.Addr = addr
			}
			a, err := buildApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			pages, err := views.New(cfg.Theme.Variant)
			if err != nil {
				return err
			}
			srv, err := server.New(ctx, server.Options{
				Addr:            cfg.Server.Addr,
				BasePath:        cfg.Server.BasePath,
				ReadTimeout:     cfg.Server.ReadTimeout,
				WriteTimeout:    cfg.Server.WriteTimeout,
				ShutdownTimeout: cfg.Server.ShutdownTimeout,
				SecureCookies:   strings.HasPrefix(cfg.Server.PublicURL, "https://"),
			}, server.Deps{
				Records:  a.records,
				Profiles: a.profiles,
				Auth:     a.auth,
				Tokens:   a.tokens,
				Resetter: a.resetter,
				Catalog:  a.catalog,
				Views:    pages,
				Metrics:  a.metricsHandler(),
				Ready:    a.ready,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			logger.Info("starting trackjournal", zap.String("addr", cfg.Server.Addr), zap.String("theme", pages.Theme().Name))
			return srv.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
