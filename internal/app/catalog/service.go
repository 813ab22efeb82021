package catalog

import (
	"context"
	"errors"
	"fmt"

	"filmorate/internal/models"
	"filmorate/internal/store"
)

// ErrNotFound signals an unknown rating or genre ID.
var ErrNotFound = errors.New("catalog entry not found")

// Store captures the lookups needed for the MPA and genre catalogues.
type Store interface {
	Ratings(ctx context.Context) ([]models.Mpa, error)
	Rating(ctx context.Context, id int64) (models.Mpa, error)
	Genres(ctx context.Context) ([]models.Genre, error)
	Genre(ctx context.Context, id int64) (models.Genre, error)
}

// Service exposes read-only catalogue lookups.
type Service interface {
	Ratings(ctx context.Context) ([]models.Mpa, error)
	Rating(ctx context.Context, id int64) (models.Mpa, error)
	Genres(ctx context.Context) ([]models.Genre, error)
	Genre(ctx context.Context, id int64) (models.Genre, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(st Store) Service {
	return &service{store: st}
}

func (s *service) Ratings(ctx context.Context) ([]models.Mpa, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Ratings(ctx)
}

func (s *service) Rating(ctx context.Context, id int64) (models.Mpa, error) {
	if err := ctx.Err(); err != nil {
		return models.Mpa{}, err
	}
	mpa, err := s.store.Rating(ctx, id)
	if errors.Is(err, store.ErrEmptyResult) {
		return models.Mpa{}, fmt.Errorf("%w: mpa %d", ErrNotFound, id)
	}
	return mpa, err
}

func (s *service) Genres(ctx context.Context) ([]models.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Genres(ctx)
}

func (s *service) Genre(ctx context.Context, id int64) (models.Genre, error) {
	if err := ctx.Err(); err != nil {
		return models.Genre{}, err
	}
	genre, err := s.store.Genre(ctx, id)
	if errors.Is(err, store.ErrEmptyResult) {
		return models.Genre{}, fmt.Errorf("%w: genre %d", ErrNotFound, id)
	}
	return genre, err
}
