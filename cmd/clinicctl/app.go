package main

import (
	"context"
	"fmt"
	"os"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/clinic-console/internal/api"
	"github.com/jwalitptl/clinic-console/internal/config"
	"github.com/jwalitptl/clinic-console/internal/resource"
	"github.com/jwalitptl/clinic-console/internal/timeline"
	"github.com/jwalitptl/clinic-console/internal/view"
	"github.com/jwalitptl/clinic-console/pkg/auth"
	"github.com/jwalitptl/clinic-console/pkg/logger"
	"github.com/jwalitptl/clinic-console/pkg/messaging"
	"github.com/jwalitptl/clinic-console/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-console/pkg/metrics"
)

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	registry *promclient.Registry
	metrics  *metrics.Metrics
	broker   messaging.Broker
	stores   *resource.Registry
	views    *view.Service
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	l := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stderr,
		JSON:       cfg.Log.JSON,
	}).Zerolog()

	env, err := config.LoadSession()
	if err != nil {
		return nil, err
	}
	session := auth.NewSession()
	session.SetToken(env.Token)
	if exp := session.ExpiresAt(); !exp.IsZero() && time.Now().After(exp) {
		l.Warn().Time("expired_at", exp).Msg("session token already expired, requests go out unauthenticated")
	}

	reg := promclient.NewRegistry()
	m := metrics.NewMetrics(cfg.Metrics.Namespace, reg)

	client := api.NewClient(api.Config{
		BaseURL:         cfg.API.BaseURL,
		Timeout:         cfg.API.Timeout,
		RateLimit:       cfg.API.RateLimit,
		RateBurst:       cfg.API.RateBurst,
		BreakerFailures: cfg.API.BreakerFailures,
		BreakerTimeout:  cfg.API.BreakerTimeout,
	},
		api.WithTokenSource(session),
		api.WithMetrics(m),
		api.WithLogger(l.With().Str("component", "api").Logger()),
	)

	broker, err := newBroker(ctx, cfg.Notifications, l)
	if err != nil {
		return nil, err
	}

	stores := resource.NewRegistry(client, broker, resource.Options{
		Logger:  l.With().Str("component", "store").Logger(),
		Metrics: m,
	})

	return &app{
		cfg:      cfg,
		log:      l,
		registry: reg,
		metrics:  m,
		broker:   broker,
		stores:   stores,
		views: view.NewService(stores, timeline.Default(), view.Config{
			CacheDuration:   cfg.View.CacheDuration,
			CleanupInterval: cfg.View.CleanupInterval,
		}),
	}, nil
}

func newBroker(ctx context.Context, cfg config.NotificationsConfig, l zerolog.Logger) (messaging.Broker, error) {
	if cfg.RedisURL == "" {
		return messaging.NewMemoryBroker(), nil
	}
	broker, err := redis.NewRedisBroker(ctx, redis.Config{
		URL:    cfg.RedisURL,
		Prefix: cfg.Prefix,
	}, l.With().Str("component", "broker").Logger())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notification broker: %w", err)
	}
	return broker, nil
}

func (a *app) Close() {
	if err := a.broker.Close(); err != nil {
		a.log.Error().Err(err).Msg("failed to close notification broker")
	}
}
