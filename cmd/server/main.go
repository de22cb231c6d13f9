package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/socialauth/modules/social"
	"github.com/dmitrymomot/socialauth/pkg/account"
	"github.com/dmitrymomot/socialauth/pkg/config"
	"github.com/dmitrymomot/socialauth/pkg/httpserver"
	"github.com/dmitrymomot/socialauth/pkg/logger"
	"github.com/dmitrymomot/socialauth/pkg/pg"
	"github.com/dmitrymomot/socialauth/pkg/pgstore"
	"github.com/dmitrymomot/socialauth/pkg/provider"
	"github.com/dmitrymomot/socialauth/pkg/redis"
	"github.com/dmitrymomot/socialauth/pkg/statestore"
)

func main() {
	var logCfg logger.Config
	config.MustLoad(&logCfg)
	log := logger.NewFromConfig(logCfg)

	if err := run(log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		srvCfg      httpserver.Config
		pgCfg       pg.Config
		redisCfg    redis.Config
		stateCfg    statestore.Config
		resolverCfg account.ResolverConfig
		googleCfg   provider.GoogleConfig
		githubCfg   provider.GitHubConfig
	)
	config.MustLoad(&srvCfg)
	config.MustLoad(&pgCfg)
	config.MustLoad(&redisCfg)
	config.MustLoad(&stateCfg)
	config.MustLoad(&resolverCfg)
	config.MustLoad(&googleCfg)
	config.MustLoad(&githubCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgstore.Migrations, pgCfg, log); err != nil {
		return err
	}

	// Redis is optional: with REDIS_URL set the state store survives
	// horizontal scaling, otherwise tokens live in process memory.
	states, closeStates, stateCheck, err := buildStateStore(ctx, redisCfg, stateCfg, log)
	if err != nil {
		return err
	}
	defer closeStates()

	healthchecks := []func(context.Context) error{pg.Healthcheck(pool)}
	if stateCheck != nil {
		healthchecks = append(healthchecks, stateCheck)
	}

	registry := provider.NewRegistry(
		provider.NewGoogleAdapter(googleCfg),
		provider.NewGitHubAdapter(githubCfg),
	)

	store := pgstore.NewStore(pool)
	resolver := account.NewResolver(registry, states, store, store, resolverCfg,
		account.WithLogger(log))
	linking := account.NewLinkingService(registry, store,
		account.WithLinkingLogger(log))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/health", httpserver.HealthCheckHandler(log, healthchecks...))
	r.Mount("/auth/social", social.NewService(resolver, linking, social.WithLogger(log)).Handle())

	return httpserver.New(srvCfg, httpserver.WithLogger(log)).Run(ctx, r)
}

func buildStateStore(ctx context.Context, redisCfg redis.Config, stateCfg statestore.Config, log *slog.Logger) (statestore.Store, func(), func(context.Context) error, error) {
	if redisCfg.ConnectionURL == "" {
		store := statestore.NewMemoryStore(stateCfg)
		log.Info("using in-memory state store")
		return store, func() { _ = store.Close() }, nil, nil
	}

	client, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return nil, nil, nil, err
	}
	store := statestore.NewRedisStore(client, stateCfg)
	log.Info("using redis state store")
	return store, func() {
		_ = store.Close()
		_ = client.Close()
	}, redis.Healthcheck(client), nil
}
