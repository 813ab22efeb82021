package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"filmorate/internal/app/catalog"
	"filmorate/internal/app/films"
	"filmorate/internal/cache"
	"filmorate/internal/config"
	"filmorate/internal/http/middleware"
	"filmorate/internal/httpapi"
	"filmorate/internal/store"
	"filmorate/internal/store/memory"
)

// dependencies holds the storage backends chosen at start-up.
type dependencies struct {
	films   films.Store
	catalog catalog.Store

	db    *sql.DB
	redis *redis.Client
}

func openDependencies(ctx context.Context, cfg *config.Config) (*dependencies, error) {
	deps := &dependencies{}

	switch cfg.Storage {
	case config.StorageMemory:
		st := memory.New()
		deps.films, deps.catalog = st, st
	default:
		db, err := openDatabase(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		st := store.New(db)
		deps.db = db
		deps.films, deps.catalog = st, st
	}

	if cfg.Cache.Addr == "" {
		return deps, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	deps.redis = client
	deps.films = cache.NewPopularFilms(deps.films, client, cfg.Cache.TTL)
	log.Info().Str("addr", cfg.Cache.Addr).Dur("ttl", cfg.Cache.TTL).Msg("popular films cache enabled")

	return deps, nil
}

func (d *dependencies) Close() {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("close redis")
		}
	}
	if d.db != nil {
		if err := d.db.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}
}

func newHTTPHandler(cfg *config.Config, deps *dependencies) http.Handler {
	filmSvc := films.New(deps.films, films.NewValidator())
	catalogSvc := catalog.New(deps.catalog)

	if cfg.Security.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET not set, write endpoints are unauthenticated")
	}

	var handler http.Handler = httpapi.New(filmSvc, catalogSvc).Routes()
	handler = middleware.RequireToken(cfg.Security.JWTSecret)(handler)
	handler = middleware.Recovery()(handler)
	handler = middleware.RequestLogging()(handler)
	return middleware.CORS(cfg.CORS.AllowedOrigins)(handler)
}
