package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"

	"filmorate/internal/models"
	"filmorate/internal/store"
)

// Store keeps films, likes and the catalogues in memory.
type Store struct {
	mu     sync.RWMutex
	films  map[int64]models.Film
	likes  map[int64]map[int64]struct{}
	mpa    map[int64]models.Mpa
	genres map[int64]models.Genre
	nextID int64
}

// New returns a Store seeded with the MPA ratings and genres.
func New() *Store {
	s := &Store{
		films:  make(map[int64]models.Film),
		likes:  make(map[int64]map[int64]struct{}),
		mpa:    make(map[int64]models.Mpa),
		genres: make(map[int64]models.Genre),
		nextID: 1,
	}
	for _, m := range DefaultRatings {
		s.mpa[m.ID] = m
	}
	for _, g := range DefaultGenres {
		s.genres[g.ID] = g
	}
	return s
}

// DefaultRatings mirrors the rows seeded by the SQL migrations.
var DefaultRatings = []models.Mpa{
	{ID: 1, Name: "G"},
	{ID: 2, Name: "PG"},
	{ID: 3, Name: "PG-13"},
	{ID: 4, Name: "R"},
	{ID: 5, Name: "NC-17"},
}

// DefaultGenres mirrors the rows seeded by the SQL migrations.
var DefaultGenres = []models.Genre{
	{ID: 1, Name: "Комедия"},
	{ID: 2, Name: "Драма"},
	{ID: 3, Name: "Мультфильм"},
	{ID: 4, Name: "Триллер"},
	{ID: 5, Name: "Документальный"},
	{ID: 6, Name: "Боевик"},
}

// CreateFilm stores a film under the next sequential ID.
func (s *Store) CreateFilm(_ context.Context, film models.Film) (models.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resolved, err := s.resolve(film)
	if err != nil {
		return models.Film{}, err
	}

	resolved.ID = s.nextID
	resolved.Likes = 0
	s.nextID++
	s.films[resolved.ID] = resolved

	return cloneFilm(resolved), nil
}

// UpdateFilm replaces a stored film, keeping its likes.
func (s *Store) UpdateFilm(_ context.Context, film models.Film) (models.Film, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.films[film.ID]; !ok {
		return models.Film{}, store.ErrEmptyResult
	}

	resolved, err := s.resolve(film)
	if err != nil {
		return models.Film{}, err
	}
	resolved.Likes = len(s.likes[film.ID])
	s.films[film.ID] = resolved

	return cloneFilm(resolved), nil
}

// DeleteFilm removes a film and its likes.
func (s *Store) DeleteFilm(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.films[id]; !ok {
		return store.ErrEmptyResult
	}
	delete(s.films, id)
	delete(s.likes, id)
	return nil
}

// FilmByID returns a copy of the stored film.
func (s *Store) FilmByID(_ context.Context, id int64) (models.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	film, ok := s.films[id]
	if !ok {
		return models.Film{}, store.ErrEmptyResult
	}
	return s.view(film), nil
}

// AllFilms lists every film ordered by ID.
func (s *Store) AllFilms(_ context.Context) ([]models.Film, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	films := lo.Map(lo.Values(s.films), func(f models.Film, _ int) models.Film {
		return s.view(f)
	})
	sort.Slice(films, func(i, j int) bool { return films[i].ID < films[j].ID })
	return films, nil
}

// MostPopularFilms lists up to count films by like count, ties broken by ID.
func (s *Store) MostPopularFilms(ctx context.Context, count int) ([]models.Film, error) {
	films, err := s.AllFilms(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(films, func(i, j int) bool {
		return films[i].Likes > films[j].Likes
	})
	if count < 0 {
		count = 0
	}
	return lo.Subset(films, 0, uint(count)), nil
}

// AddLike records a like; liking twice is a no-op.
func (s *Store) AddLike(_ context.Context, filmID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.films[filmID]; !ok {
		return fmt.Errorf("film %d: %w", filmID, store.ErrEmptyResult)
	}
	users, ok := s.likes[filmID]
	if !ok {
		users = make(map[int64]struct{})
		s.likes[filmID] = users
	}
	users[userID] = struct{}{}
	return nil
}

// DeleteLike removes a like.
func (s *Store) DeleteLike(_ context.Context, filmID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := s.likes[filmID]
	if _, ok := users[userID]; !ok {
		return fmt.Errorf("like of film %d by user %d: %w", filmID, userID, store.ErrEmptyResult)
	}
	delete(users, userID)
	return nil
}

// Ratings lists the MPA ratings ordered by ID.
func (s *Store) Ratings(_ context.Context) ([]models.Mpa, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ratings := lo.Values(s.mpa)
	sort.Slice(ratings, func(i, j int) bool { return ratings[i].ID < ratings[j].ID })
	return ratings, nil
}

// Rating returns a single MPA rating.
func (s *Store) Rating(_ context.Context, id int64) (models.Mpa, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mpa, ok := s.mpa[id]
	if !ok {
		return models.Mpa{}, store.ErrEmptyResult
	}
	return mpa, nil
}

// Genres lists every genre ordered by ID.
func (s *Store) Genres(_ context.Context) ([]models.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genres := lo.Values(s.genres)
	sort.Slice(genres, func(i, j int) bool { return genres[i].ID < genres[j].ID })
	return genres, nil
}

// Genre returns a single genre.
func (s *Store) Genre(_ context.Context, id int64) (models.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genre, ok := s.genres[id]
	if !ok {
		return models.Genre{}, store.ErrEmptyResult
	}
	return genre, nil
}

// resolve fills catalogue names and drops duplicate genres. Callers hold mu.
func (s *Store) resolve(film models.Film) (models.Film, error) {
	if film.Mpa != nil {
		mpa, ok := s.mpa[film.Mpa.ID]
		if !ok {
			return models.Film{}, fmt.Errorf("mpa %d: %w", film.Mpa.ID, store.ErrEmptyResult)
		}
		film.Mpa = &mpa
	}

	genres := make([]models.Genre, 0, len(film.Genres))
	for _, g := range lo.UniqBy(film.Genres, func(g models.Genre) int64 { return g.ID }) {
		genre, ok := s.genres[g.ID]
		if !ok {
			return models.Film{}, fmt.Errorf("genre %d: %w", g.ID, store.ErrEmptyResult)
		}
		genres = append(genres, genre)
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].ID < genres[j].ID })
	film.Genres = genres

	return film, nil
}

// view returns a copy of film with its current like count. Callers hold mu.
func (s *Store) view(film models.Film) models.Film {
	film = cloneFilm(film)
	film.Likes = len(s.likes[film.ID])
	return film
}

func cloneFilm(film models.Film) models.Film {
	if film.Mpa != nil {
		mpa := *film.Mpa
		film.Mpa = &mpa
	}
	film.Genres = append([]models.Genre{}, film.Genres...)
	return film
}
