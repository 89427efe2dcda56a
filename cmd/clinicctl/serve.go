package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-console/internal/handler"
	"github.com/jwalitptl/clinic-console/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-console/internal/middleware"
	"github.com/jwalitptl/clinic-console/internal/router"
	"github.com/jwalitptl/clinic-console/pkg/messaging"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve store snapshots, patient histories and the agenda over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			return runServer(ctx, a)
		},
	}
}

func runServer(ctx context.Context, a *app) error {
	if err := a.stores.Start(ctx); err != nil {
		return err
	}

	pinger, _ := a.broker.(messaging.Pinger)
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = a.cfg.Server.CORSOrigins

	r := router.NewRouter(
		handler.NewHandler(a.views, a.stores, pinger),
		prometheus.New(a.cfg.Metrics.Namespace, a.registry),
		router.RouterConfig{
			CORSConfig:     cors,
			RequestTimeout: a.cfg.Server.RequestTimeout,
			Logger:         a.log,
			Debug:          a.cfg.Server.Debug,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Str("api", a.cfg.API.BaseURL).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info().Msg("server exited properly")
	return nil
}
