package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ougirez/certzone/internal/pkg/config"
	"github.com/ougirez/certzone/internal/pkg/logger"
	"github.com/ougirez/certzone/internal/pkg/store"
	"github.com/ougirez/certzone/internal/service/address"
	"github.com/ougirez/certzone/internal/service/ingest"
	"github.com/ougirez/certzone/internal/service/reference"
	"github.com/ougirez/certzone/internal/service/registry"
	"github.com/ougirez/certzone/internal/service/resolver"
	"github.com/redis/go-redis/v9"
)

// app holds everything a file needs to be ingested.
type app struct {
	pool    *pgxpool.Pool
	redis   redis.UniversalClient
	handler *ingest.Handler
}

func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	a.pool, err = store.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	st := store.NewStore(a.pool)

	ref, err := reference.Load(ctx, st)
	if err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "reference regions: %v", ref.Regions())

	var cache registry.Cache = registry.NopCache{}
	if cfg.RedisAddr != "" {
		a.redis = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{cfg.RedisAddr}})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		cache = registry.NewRedisCache(a.redis, cfg.RedisTTL)
		logger.Infof(ctx, "registry responses are cached in redis %s for %s", cfg.RedisAddr, cfg.RedisTTL)
	}

	client, err := registry.NewClient(cfg.RegistryURL, &http.Client{Timeout: cfg.RegistryTimeout}, cache)
	if err != nil {
		return nil, err
	}

	engine := ingest.NewEngine(
		resolver.NewResolver(client, ref, cfg.RegistryIsMain),
		address.NewFormatter(ref),
		ref,
	)
	a.handler = ingest.NewHandler(st, engine)

	return a, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
