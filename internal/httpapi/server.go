package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"filmorate/internal/app/catalog"
	"filmorate/internal/app/films"
	"filmorate/internal/logging"
	"filmorate/internal/models"
	"filmorate/internal/store"
)

// FilmService captures the film operations needed by the HTTP handlers.
type FilmService interface {
	CreateFilm(ctx context.Context, film models.Film) (models.Film, error)
	UpdateFilm(ctx context.Context, film models.Film) (models.Film, error)
	GetFilmByID(ctx context.Context, id int64) (models.Film, error)
	AllFilms(ctx context.Context) ([]models.Film, error)
	MostPopularFilms(ctx context.Context, count int) ([]models.Film, error)
	AddLike(ctx context.Context, id, userID int64) error
	DeleteLike(ctx context.Context, id, userID int64) error
	DeleteFilm(ctx context.Context, id int64) error
}

// CatalogService describes MPA rating and genre lookups.
type CatalogService interface {
	Ratings(ctx context.Context) ([]models.Mpa, error)
	Rating(ctx context.Context, id int64) (models.Mpa, error)
	Genres(ctx context.Context) ([]models.Genre, error)
	Genre(ctx context.Context, id int64) (models.Genre, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	films   FilmService
	catalog CatalogService
}

// New configures a Server with the given services.
func New(films FilmService, catalog CatalogService) *Server {
	return &Server{
		films:   films,
		catalog: catalog,
	}
}

// DefaultPopularCount is used when /films/popular is called without count.
const DefaultPopularCount = 10

// Routes exposes the HTTP handlers for films and catalogues.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	router.HandleFunc("/films", s.handleListFilms).Methods(http.MethodGet)
	router.HandleFunc("/films", s.handleCreateFilm).Methods(http.MethodPost)
	router.HandleFunc("/films", s.handleUpdateFilm).Methods(http.MethodPut)
	router.HandleFunc("/films/popular", s.handlePopularFilms).Methods(http.MethodGet)
	router.HandleFunc("/films/{id}", s.handleGetFilm).Methods(http.MethodGet)
	router.HandleFunc("/films/{id}", s.handleDeleteFilm).Methods(http.MethodDelete)
	router.HandleFunc("/films/{id}/like/{userId}", s.handleAddLike).Methods(http.MethodPut)
	router.HandleFunc("/films/{id}/like/{userId}", s.handleDeleteLike).Methods(http.MethodDelete)

	router.HandleFunc("/mpa", s.handleRatings).Methods(http.MethodGet)
	router.HandleFunc("/mpa/{id}", s.handleRating).Methods(http.MethodGet)
	router.HandleFunc("/genres", s.handleGenres).Methods(http.MethodGet)
	router.HandleFunc("/genres/{id}", s.handleGenre).Methods(http.MethodGet)

	return router
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, films.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, films.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, store.ErrEmptyResult):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		logging.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil
}
