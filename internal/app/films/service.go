package films

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"filmorate/internal/models"
	"filmorate/internal/store"
)

var (
	// ErrValidation marks a request rejected because of bad input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a request for a film that does not exist.
	ErrNotFound = errors.New("film not found")
)

// Store defines persistence operations required for film workflows.
// Implementations report a missing film as store.ErrEmptyResult.
type Store interface {
	CreateFilm(ctx context.Context, film models.Film) (models.Film, error)
	UpdateFilm(ctx context.Context, film models.Film) (models.Film, error)
	DeleteFilm(ctx context.Context, id int64) error
	FilmByID(ctx context.Context, id int64) (models.Film, error)
	AllFilms(ctx context.Context) ([]models.Film, error)
	MostPopularFilms(ctx context.Context, count int) ([]models.Film, error)
	AddLike(ctx context.Context, filmID, userID int64) error
	DeleteLike(ctx context.Context, filmID, userID int64) error
}

// Validator checks film payloads before they reach storage.
type Validator interface {
	ValidateFilm(film models.Film) error
	ValidFilmID(count int, id int64) bool
}

// Service describes high level film operations used by HTTP handlers.
type Service interface {
	CreateFilm(ctx context.Context, film models.Film) (models.Film, error)
	UpdateFilm(ctx context.Context, film models.Film) (models.Film, error)
	GetFilmByID(ctx context.Context, id int64) (models.Film, error)
	AllFilms(ctx context.Context) ([]models.Film, error)
	MostPopularFilms(ctx context.Context, count int) ([]models.Film, error)
	AddLike(ctx context.Context, id, userID int64) error
	DeleteLike(ctx context.Context, id, userID int64) error
	DeleteFilm(ctx context.Context, id int64) error
}

type service struct {
	store     Store
	validator Validator
}

// New constructs a films Service backed by the given store and validator.
func New(st Store, validator Validator) Service {
	return &service{store: st, validator: validator}
}

func (s *service) CreateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	if err := ctx.Err(); err != nil {
		return models.Film{}, err
	}

	if err := s.validator.ValidateFilm(film); err != nil {
		log.Warn().Err(err).Str("name", film.Name).Msg("film rejected")
		return models.Film{}, err
	}

	created, err := s.store.CreateFilm(ctx, film)
	if err != nil {
		return models.Film{}, fmt.Errorf("create film: %w", err)
	}

	log.Debug().Int64("film_id", created.ID).Str("name", created.Name).Msg("film saved")
	return created, nil
}

func (s *service) UpdateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	if err := ctx.Err(); err != nil {
		return models.Film{}, err
	}

	if _, err := s.GetFilmByID(ctx, film.ID); err != nil {
		return models.Film{}, err
	}

	if err := s.validator.ValidateFilm(film); err != nil {
		log.Warn().Err(err).Int64("film_id", film.ID).Msg("film update rejected")
		return models.Film{}, err
	}

	all, err := s.store.AllFilms(ctx)
	if err != nil {
		return models.Film{}, fmt.Errorf("count films: %w", err)
	}
	if !s.validator.ValidFilmID(len(all), film.ID) {
		log.Warn().Int64("film_id", film.ID).Int("count", len(all)).Msg("film update rejected: id out of range")
		return models.Film{}, fmt.Errorf("%w: id %d", ErrNotFound, film.ID)
	}

	updated, err := s.store.UpdateFilm(ctx, film)
	if err != nil {
		if errors.Is(err, store.ErrEmptyResult) {
			log.Warn().Int64("film_id", film.ID).Msg("film update rejected")
			return models.Film{}, fmt.Errorf("%w: id %d", ErrNotFound, film.ID)
		}
		return models.Film{}, fmt.Errorf("update film: %w", err)
	}

	log.Debug().Int64("film_id", updated.ID).Msg("film updated")
	return updated, nil
}

func (s *service) GetFilmByID(ctx context.Context, id int64) (models.Film, error) {
	if err := ctx.Err(); err != nil {
		return models.Film{}, err
	}

	film, err := s.store.FilmByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrEmptyResult) {
			log.Warn().Int64("film_id", id).Msg("film lookup failed")
			return models.Film{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return models.Film{}, err
	}
	return film, nil
}

func (s *service) AllFilms(ctx context.Context) ([]models.Film, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.AllFilms(ctx)
}

func (s *service) MostPopularFilms(ctx context.Context, count int) ([]models.Film, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if count <= 0 {
		log.Warn().Int("count", count).Msg("popular films request rejected")
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrValidation, count)
	}
	return s.store.MostPopularFilms(ctx, count)
}

func (s *service) AddLike(ctx context.Context, id, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.AddLike(ctx, id, userID)
}

func (s *service) DeleteLike(ctx context.Context, id, userID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteLike(ctx, id, userID)
}

func (s *service) DeleteFilm(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if id <= 0 {
		log.Warn().Int64("film_id", id).Msg("film delete rejected")
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	if err := s.store.DeleteFilm(ctx, id); err != nil {
		if errors.Is(err, store.ErrEmptyResult) {
			log.Warn().Int64("film_id", id).Msg("film delete rejected")
			return fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return fmt.Errorf("delete film: %w", err)
	}

	log.Debug().Int64("film_id", id).Msg("film deleted")
	return nil
}
