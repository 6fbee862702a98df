package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/studyline/studyline-courses/internal/course"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy onto HTTP statuses:
// not-found -> 404, validation -> 400, anything else -> 500.
func writeError(w http.ResponseWriter, err error) {
	var ve *course.ValidationError
	switch {
	case course.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &ve):
		http.Error(w, ve.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pathUUID(r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	return id, err == nil
}

// userID pulls the free-text user identifier from query or form, falling
// back to the configured default. There is no authentication.
func userID(r *http.Request, def string) string {
	if v := strings.TrimSpace(r.URL.Query().Get("user_id")); v != "" {
		return v
	}
	if v := strings.TrimSpace(r.FormValue("user_id")); v != "" {
		return v
	}
	return def
}
