package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"filmorate/internal/models"
)

const selectFilms = `
	SELECT f.id, f.name, f.description, f.release_date, f.duration, m.id, m.name,
		(SELECT COUNT(*) FROM film_likes l WHERE l.film_id = f.id) AS likes
	FROM films f
	LEFT JOIN mpa m ON m.id = f.mpa_id
`

// CreateFilm inserts a film together with its genres and returns it with the assigned ID.
func (s *Store) CreateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Film{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO films (name, description, release_date, duration, mpa_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, film.Name, film.Description, film.ReleaseDate.Time, film.Duration, mpaID(film)).Scan(&film.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Film{}, fmt.Errorf("mpa %v: %w", mpaID(film), ErrEmptyResult)
		}
		return models.Film{}, fmt.Errorf("insert film: %w", err)
	}

	if err := insertGenres(ctx, tx, film); err != nil {
		return models.Film{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Film{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return film, nil
}

// UpdateFilm overwrites the stored columns and genres of an existing film.
func (s *Store) UpdateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Film{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE films
		SET name = $1, description = $2, release_date = $3, duration = $4, mpa_id = $5
		WHERE id = $6
	`, film.Name, film.Description, film.ReleaseDate.Time, film.Duration, mpaID(film), film.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return models.Film{}, fmt.Errorf("mpa %v: %w", mpaID(film), ErrEmptyResult)
		}
		return models.Film{}, fmt.Errorf("update film: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return models.Film{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM film_genres
		WHERE film_id = $1
	`, film.ID); err != nil {
		return models.Film{}, fmt.Errorf("clear genres: %w", err)
	}

	if err := insertGenres(ctx, tx, film); err != nil {
		return models.Film{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Film{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return film, nil
}

// DeleteFilm removes a film; genres and likes go with it through ON DELETE CASCADE.
func (s *Store) DeleteFilm(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM films
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("delete film: %w", err)
	}
	return requireAffected(res)
}

// FilmByID returns a single film with its genres and like count.
func (s *Store) FilmByID(ctx context.Context, id int64) (models.Film, error) {
	row := s.db.QueryRowContext(ctx, selectFilms+`
	WHERE f.id = $1
	`, id)

	film, err := scanFilm(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Film{}, ErrEmptyResult
		}
		return models.Film{}, fmt.Errorf("select film: %w", err)
	}

	films := []models.Film{film}
	if err := s.attachGenres(ctx, films); err != nil {
		return models.Film{}, err
	}
	return films[0], nil
}

// AllFilms lists every film ordered by ID.
func (s *Store) AllFilms(ctx context.Context) ([]models.Film, error) {
	return s.queryFilms(ctx, selectFilms+`
	ORDER BY f.id ASC
	`)
}

// MostPopularFilms lists up to count films ordered by like count, ties broken by ID.
func (s *Store) MostPopularFilms(ctx context.Context, count int) ([]models.Film, error) {
	return s.queryFilms(ctx, selectFilms+`
	ORDER BY likes DESC, f.id ASC
	LIMIT $1
	`, count)
}

// AddLike records that userID likes filmID. Repeated likes are ignored.
func (s *Store) AddLike(ctx context.Context, filmID, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO film_likes (film_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (film_id, user_id) DO NOTHING
	`, filmID, userID); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("film %d: %w", filmID, ErrEmptyResult)
		}
		return fmt.Errorf("insert like: %w", err)
	}
	return nil
}

// DeleteLike removes a like; a like that does not exist yields ErrEmptyResult.
func (s *Store) DeleteLike(ctx context.Context, filmID, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM film_likes
		WHERE film_id = $1 AND user_id = $2
	`, filmID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	return requireAffected(res)
}

func (s *Store) queryFilms(ctx context.Context, query string, args ...any) ([]models.Film, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select films: %w", err)
	}
	defer rows.Close()

	films := []models.Film{}
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan film: %w", err)
		}
		films = append(films, film)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate films: %w", err)
	}

	if err := s.attachGenres(ctx, films); err != nil {
		return nil, err
	}
	return films, nil
}

// attachGenres loads genres for all films in one query.
func (s *Store) attachGenres(ctx context.Context, films []models.Film) error {
	if len(films) == 0 {
		return nil
	}

	ids := make([]int64, len(films))
	index := make(map[int64]int, len(films))
	for i, film := range films {
		ids[i] = film.ID
		index[film.ID] = i
		films[i].Genres = []models.Genre{}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT fg.film_id, g.id, g.name
		FROM film_genres fg
		JOIN genres g ON g.id = fg.genre_id
		WHERE fg.film_id = ANY($1)
		ORDER BY fg.film_id, g.id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("select genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			filmID int64
			genre  models.Genre
		)
		if err := rows.Scan(&filmID, &genre.ID, &genre.Name); err != nil {
			return fmt.Errorf("scan genre: %w", err)
		}
		if i, ok := index[filmID]; ok {
			films[i].Genres = append(films[i].Genres, genre)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate genres: %w", err)
	}
	return nil
}

func insertGenres(ctx context.Context, tx *sql.Tx, film models.Film) error {
	for _, genre := range film.Genres {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO film_genres (film_id, genre_id)
			VALUES ($1, $2)
			ON CONFLICT (film_id, genre_id) DO NOTHING
		`, film.ID, genre.ID); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("genre %d: %w", genre.ID, ErrEmptyResult)
			}
			return fmt.Errorf("insert genre: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFilm(row rowScanner) (models.Film, error) {
	var (
		film    models.Film
		mpaID   sql.NullInt64
		mpaName sql.NullString
	)
	if err := row.Scan(
		&film.ID,
		&film.Name,
		&film.Description,
		&film.ReleaseDate.Time,
		&film.Duration,
		&mpaID,
		&mpaName,
		&film.Likes,
	); err != nil {
		return models.Film{}, err
	}
	if mpaID.Valid {
		film.Mpa = &models.Mpa{ID: mpaID.Int64, Name: mpaName.String}
	}
	return film, nil
}

func mpaID(film models.Film) any {
	if film.Mpa == nil {
		return nil
	}
	return film.Mpa.ID
}
