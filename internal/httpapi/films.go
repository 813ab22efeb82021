package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"filmorate/internal/logging"
	"filmorate/internal/models"
)

func (s *Server) handleListFilms(w http.ResponseWriter, r *http.Request) {
	list, err := s.films.AllFilms(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateFilm(w http.ResponseWriter, r *http.Request) {
	var film models.Film
	if err := json.NewDecoder(r.Body).Decode(&film); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	created, err := s.films.CreateFilm(r.Context(), film)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateFilm(w http.ResponseWriter, r *http.Request) {
	var film models.Film
	if err := json.NewDecoder(r.Body).Decode(&film); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	updated, err := s.films.UpdateFilm(r.Context(), film)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handlePopularFilms(w http.ResponseWriter, r *http.Request) {
	count := DefaultPopularCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid count parameter"})
			return
		}
		count = parsed
	}

	popular, err := s.films.MostPopularFilms(r.Context(), count)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, popular)
}

func (s *Server) handleGetFilm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid film id"})
		return
	}

	film, err := s.films.GetFilmByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, film)
}

func (s *Server) handleDeleteFilm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid film id"})
		return
	}

	if err := s.films.DeleteFilm(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddLike(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := likeIDs(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid film or user id"})
		return
	}
	if !ownsLike(w, r, userID) {
		return
	}

	if err := s.films.AddLike(r.Context(), id, userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteLike(w http.ResponseWriter, r *http.Request) {
	id, userID, ok := likeIDs(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid film or user id"})
		return
	}
	if !ownsLike(w, r, userID) {
		return
	}

	if err := s.films.DeleteLike(r.Context(), id, userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownsLike rejects like changes made on behalf of another user. Requests
// without an authenticated user are left to the auth middleware.
func ownsLike(w http.ResponseWriter, r *http.Request, userID int64) bool {
	authID, ok := logging.UserID(r.Context())
	if !ok || authID == userID {
		return true
	}
	logging.WithContext(r.Context()).Warn().Int64("user_id", userID).Msg("like change for another user rejected")
	writeJSON(w, http.StatusForbidden, errorResponse{Error: "cannot change likes of another user"})
	return false
}

func likeIDs(r *http.Request) (int64, int64, bool) {
	id, ok := pathID(r, "id")
	if !ok {
		return 0, 0, false
	}
	userID, ok := pathID(r, "userId")
	return id, userID, ok
}
