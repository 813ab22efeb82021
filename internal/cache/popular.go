package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"filmorate/internal/app/films"
	"filmorate/internal/models"
)

const (
	keyPrefix = "popular:"
	// keyGeneration is bumped on every write; cached rankings are keyed by it.
	keyGeneration = keyPrefix + "gen"

	// DefaultTTL bounds how stale a cached ranking can get.
	DefaultTTL = time.Minute
)

// Client is the subset of the Redis API the cache relies on.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// PopularFilms wraps a film store and caches MostPopularFilms results in Redis.
// Any write through the wrapper moves to a new cache generation.
type PopularFilms struct {
	films.Store
	client Client
	ttl    time.Duration
}

// NewPopularFilms decorates st with a Redis cache.
func NewPopularFilms(st films.Store, client Client, ttl time.Duration) *PopularFilms {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PopularFilms{Store: st, client: client, ttl: ttl}
}

// MostPopularFilms serves a cached ranking when present and otherwise stores a fresh one.
func (c *PopularFilms) MostPopularFilms(ctx context.Context, count int) ([]models.Film, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("popular films cache read failed")
		return c.Store.MostPopularFilms(ctx, count)
	}
	key := popularKey(gen, count)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []models.Film
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
		log.Warn().Str("key", key).Msg("discarding malformed cache entry")
	case !errors.Is(err, redis.Nil):
		log.Warn().Err(err).Str("key", key).Msg("popular films cache read failed")
	}

	result, err := c.Store.MostPopularFilms(ctx, count)
	if err != nil {
		return nil, err
	}
	c.remember(ctx, key, result)
	return result, nil
}

func (c *PopularFilms) CreateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	created, err := c.Store.CreateFilm(ctx, film)
	if err == nil {
		c.invalidate(ctx)
	}
	return created, err
}

func (c *PopularFilms) UpdateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	updated, err := c.Store.UpdateFilm(ctx, film)
	if err == nil {
		c.invalidate(ctx)
	}
	return updated, err
}

func (c *PopularFilms) DeleteFilm(ctx context.Context, id int64) error {
	if err := c.Store.DeleteFilm(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *PopularFilms) AddLike(ctx context.Context, filmID, userID int64) error {
	if err := c.Store.AddLike(ctx, filmID, userID); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *PopularFilms) DeleteLike(ctx context.Context, filmID, userID int64) error {
	if err := c.Store.DeleteLike(ctx, filmID, userID); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// remember stores result under key. A write racing this read has already
// bumped the generation, so the entry is never served and just expires.
func (c *PopularFilms) remember(ctx context.Context, key string, result []models.Film) {
	payload, err := json.Marshal(result)
	if err != nil {
		log.Warn().Err(err).Msg("encode popular films")
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("popular films cache write failed")
	}
}

func (c *PopularFilms) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, keyGeneration).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *PopularFilms) invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, keyGeneration).Err(); err != nil {
		log.Warn().Err(err).Msg("popular films cache invalidation failed")
	}
}

func popularKey(gen int64, count int) string {
	return fmt.Sprintf("%s%d:%d", keyPrefix, gen, count)
}
