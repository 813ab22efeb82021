package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filmorate/internal/models"
)

// Ratings lists the MPA ratings ordered by ID.
func (s *Store) Ratings(ctx context.Context) ([]models.Mpa, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM mpa
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select mpa: %w", err)
	}
	defer rows.Close()

	ratings := []models.Mpa{}
	for rows.Next() {
		var mpa models.Mpa
		if err := rows.Scan(&mpa.ID, &mpa.Name); err != nil {
			return nil, fmt.Errorf("scan mpa: %w", err)
		}
		ratings = append(ratings, mpa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mpa: %w", err)
	}
	return ratings, nil
}

// Rating returns a single MPA rating.
func (s *Store) Rating(ctx context.Context, id int64) (models.Mpa, error) {
	var mpa models.Mpa
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name
		FROM mpa
		WHERE id = $1
	`, id).Scan(&mpa.ID, &mpa.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Mpa{}, ErrEmptyResult
		}
		return models.Mpa{}, fmt.Errorf("select mpa: %w", err)
	}
	return mpa, nil
}

// Genres lists every genre ordered by ID.
func (s *Store) Genres(ctx context.Context) ([]models.Genre, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM genres
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("select genres: %w", err)
	}
	defer rows.Close()

	genres := []models.Genre{}
	for rows.Next() {
		var genre models.Genre
		if err := rows.Scan(&genre.ID, &genre.Name); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, genre)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genres: %w", err)
	}
	return genres, nil
}

// Genre returns a single genre.
func (s *Store) Genre(ctx context.Context, id int64) (models.Genre, error) {
	var genre models.Genre
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name
		FROM genres
		WHERE id = $1
	`, id).Scan(&genre.ID, &genre.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Genre{}, ErrEmptyResult
		}
		return models.Genre{}, fmt.Errorf("select genre: %w", err)
	}
	return genre, nil
}
