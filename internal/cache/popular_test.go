package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmorate/internal/models"
	"filmorate/internal/store/memory"
)

type fakeRedis struct {
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	getHits int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		values: make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	if key != keyGeneration {
		f.getHits++
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Incr(_ context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(f.values[key], 10, 64)
	n++
	f.values[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

// racingStore runs onPopular after computing a ranking, before it is returned.
type racingStore struct {
	*memory.Store
	onPopular func()
}

func (s *racingStore) MostPopularFilms(ctx context.Context, count int) ([]models.Film, error) {
	result, err := s.Store.MostPopularFilms(ctx, count)
	if s.onPopular != nil {
		hook := s.onPopular
		s.onPopular = nil
		hook()
	}
	return result, err
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()

	st := memory.New()
	for _, name := range []string{"first", "second"} {
		_, err := st.CreateFilm(context.Background(), models.Film{
			Name:        name,
			ReleaseDate: models.NewDate(2001, time.May, 1),
			Duration:    90,
		})
		require.NoError(t, err)
	}
	return st
}

func TestMostPopularFilmsServesFromCache(t *testing.T) {
	ctx := context.Background()
	st := seededStore(t)
	rdb := newFakeRedis()
	c := NewPopularFilms(st, rdb, time.Minute)

	first, err := c.MostPopularFilms(ctx, 10)
	require.NoError(t, err)
	assert.Contains(t, rdb.values, "popular:0:10")
	assert.Equal(t, time.Minute, rdb.ttls["popular:0:10"])

	// A write straight to the underlying store bypasses invalidation,
	// so a cached answer must still show the old ranking.
	require.NoError(t, st.AddLike(ctx, 2, 1))

	second, err := c.MostPopularFilms(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, rdb.getHits)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), second[0].ID)
}

func TestLikeInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	c := NewPopularFilms(seededStore(t), rdb, time.Minute)

	_, err := c.MostPopularFilms(ctx, 10)
	require.NoError(t, err)

	require.NoError(t, c.AddLike(ctx, 2, 1))
	assert.Equal(t, "1", rdb.values[keyGeneration])

	popular, err := c.MostPopularFilms(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, rdb.getHits)
	assert.Equal(t, int64(2), popular[0].ID)
	assert.Equal(t, 1, popular[0].Likes)
	assert.Contains(t, rdb.values, "popular:1:10")
}

func TestRankingComputedBeforeWriteIsNotServed(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	st := &racingStore{Store: seededStore(t)}
	c := NewPopularFilms(st, rdb, time.Minute)

	st.onPopular = func() {
		require.NoError(t, c.AddLike(ctx, 2, 1))
	}

	stale, err := c.MostPopularFilms(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stale[0].ID)

	fresh, err := c.MostPopularFilms(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, rdb.getHits)
	assert.Equal(t, int64(2), fresh[0].ID)
	assert.Equal(t, 1, fresh[0].Likes)
}

func TestFailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	c := NewPopularFilms(seededStore(t), rdb, time.Minute)

	_, err := c.MostPopularFilms(ctx, 10)
	require.NoError(t, err)

	require.Error(t, c.DeleteFilm(ctx, 404))
	assert.NotContains(t, rdb.values, keyGeneration)

	_, err = c.MostPopularFilms(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, rdb.getHits)
}

func TestRedisFailureFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	rdb.getErr = errors.New("connection refused")
	c := NewPopularFilms(seededStore(t), rdb, 0)

	popular, err := c.MostPopularFilms(ctx, 1)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, int64(1), popular[0].ID)
}

func TestPassThroughReads(t *testing.T) {
	ctx := context.Background()
	c := NewPopularFilms(seededStore(t), newFakeRedis(), time.Minute)

	film, err := c.FilmByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "second", film.Name)
}
