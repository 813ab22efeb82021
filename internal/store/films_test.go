package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"filmorate/internal/models"
)

var filmColumns = []string{"id", "name", "description", "release_date", "duration", "mpa_id", "mpa_name", "likes"}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return New(db), mock
}

func TestCreateFilmSuccess(t *testing.T) {
	s, mock := newMockStore(t)

	released := time.Date(1967, time.March, 25, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO films (name, description, release_date, duration, mpa_id)`)).
		WithArgs("Nick Name", "adipisicing", released, 100, int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO film_genres (film_id, genre_id)`)).
		WithArgs(int64(7), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	film := models.Film{
		Name:        "Nick Name",
		Description: "adipisicing",
		ReleaseDate: models.Date{Time: released},
		Duration:    100,
		Mpa:         &models.Mpa{ID: 1},
		Genres:      []models.Genre{{ID: 2}},
	}

	got, err := s.CreateFilm(context.Background(), film)
	if err != nil {
		t.Fatalf("CreateFilm error: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("expected film ID 7, got %d", got.ID)
	}
	if got.Name != film.Name || got.Duration != film.Duration {
		t.Fatalf("expected stored fields unchanged, got %#v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateFilmUnknownMpa(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO films`)).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	_, err := s.CreateFilm(context.Background(), models.Film{
		Name:        "Film",
		ReleaseDate: models.NewDate(2000, time.January, 1),
		Duration:    90,
		Mpa:         &models.Mpa{ID: 42},
	})
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateFilmMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE films SET name = $1`)).
		WithArgs("Film", "", sqlmock.AnyArg(), 90, nil, int64(9999)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := s.UpdateFilm(context.Background(), models.Film{
		ID:          9999,
		Name:        "Film",
		ReleaseDate: models.NewDate(2000, time.January, 1),
		Duration:    90,
	})
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateFilmReplacesGenres(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE films SET name = $1`)).
		WithArgs("Film Updated", "New film update decription", sqlmock.AnyArg(), 190, int64(2), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM film_genres WHERE film_id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO film_genres (film_id, genre_id)`)).
		WithArgs(int64(1), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	film := models.Film{
		ID:          1,
		Name:        "Film Updated",
		Description: "New film update decription",
		ReleaseDate: models.NewDate(1989, time.April, 17),
		Duration:    190,
		Mpa:         &models.Mpa{ID: 2},
		Genres:      []models.Genre{{ID: 1}},
	}

	got, err := s.UpdateFilm(context.Background(), film)
	if err != nil {
		t.Fatalf("UpdateFilm error: %v", err)
	}
	if got.ID != 1 || got.Name != "Film Updated" {
		t.Fatalf("unexpected film: %#v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFilmByIDNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`LEFT JOIN mpa m ON m.id = f.mpa_id WHERE f.id = $1`)).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	_, err := s.FilmByID(context.Background(), 999)
	if !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFilmByIDLoadsGenresAndMpa(t *testing.T) {
	s, mock := newMockStore(t)

	released := time.Date(1975, time.November, 19, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE f.id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(filmColumns).
			AddRow(int64(3), "One Flew Over the Cuckoo's Nest", "drama", released, 133, int64(4), "R", 2))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM film_genres fg JOIN genres g ON g.id = fg.genre_id WHERE fg.film_id = ANY($1)`)).
		WithArgs(pq.Array([]int64{3})).
		WillReturnRows(sqlmock.NewRows([]string{"film_id", "id", "name"}).
			AddRow(int64(3), int64(2), "Драма"))

	film, err := s.FilmByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("FilmByID error: %v", err)
	}
	if film.Mpa == nil || film.Mpa.Name != "R" {
		t.Fatalf("expected mpa R, got %#v", film.Mpa)
	}
	if len(film.Genres) != 1 || film.Genres[0].Name != "Драма" {
		t.Fatalf("unexpected genres: %#v", film.Genres)
	}
	if film.Likes != 2 {
		t.Fatalf("expected 2 likes, got %d", film.Likes)
	}
	if !film.ReleaseDate.Equal(released) {
		t.Fatalf("expected release date %v, got %v", released, film.ReleaseDate)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAllFilmsEmpty(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY f.id ASC`)).
		WillReturnRows(sqlmock.NewRows(filmColumns))

	films, err := s.AllFilms(context.Background())
	if err != nil {
		t.Fatalf("AllFilms error: %v", err)
	}
	if films == nil || len(films) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", films)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMostPopularFilms(t *testing.T) {
	s, mock := newMockStore(t)

	released := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY likes DESC, f.id ASC LIMIT $1`)).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows(filmColumns).
			AddRow(int64(2), "Second", "", released, 90, nil, nil, 3).
			AddRow(int64(1), "First", "", released, 90, int64(1), "G", 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM film_genres fg`)).
		WithArgs(pq.Array([]int64{2, 1})).
		WillReturnRows(sqlmock.NewRows([]string{"film_id", "id", "name"}))

	films, err := s.MostPopularFilms(context.Background(), 2)
	if err != nil {
		t.Fatalf("MostPopularFilms error: %v", err)
	}
	if len(films) != 2 || films[0].ID != 2 || films[1].ID != 1 {
		t.Fatalf("unexpected order: %#v", films)
	}
	if films[0].Mpa != nil {
		t.Fatalf("expected nil mpa for film without rating, got %#v", films[0].Mpa)
	}
	if films[0].Genres == nil {
		t.Fatalf("expected empty genres slice, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteFilmMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM films WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeleteFilm(context.Background(), 5); !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddLikeUnknownFilm(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO film_likes (film_id, user_id)`)).
		WithArgs(int64(404), int64(1)).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	if err := s.AddLike(context.Background(), 404, 1); !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddLikeDatabaseError(t *testing.T) {
	s, mock := newMockStore(t)

	dbErr := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO film_likes`)).
		WithArgs(int64(1), int64(2)).
		WillReturnError(dbErr)

	err := s.AddLike(context.Background(), 1, 2)
	if !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped database error, got %v", err)
	}
	if errors.Is(err, ErrEmptyResult) {
		t.Fatalf("database error must not be reported as empty result")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteLike(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "existing like", affected: 1},
		{name: "missing like", affected: 0, wantErr: ErrEmptyResult},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newMockStore(t)

			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM film_likes WHERE film_id = $1 AND user_id = $2`)).
				WithArgs(int64(1), int64(2)).
				WillReturnResult(sqlmock.NewResult(0, tc.affected))

			err := s.DeleteLike(context.Background(), 1, 2)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}
