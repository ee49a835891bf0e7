package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"taskboard-service/logging"
	"taskboard-service/models"
)

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		// Websocket clients cannot set headers; they pass the token
		// as a query parameter instead.
		return r.URL.Query().Get("token")
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the error taxonomy to HTTP statuses. Every failure
// is scoped to the single request that produced it.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		http.Error(w, "authentication required", http.StatusUnauthorized)
	case errors.Is(err, models.ErrDuplicateInvite):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrSelfInvite):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrStoreUnavailable):
		http.Error(w, "store temporarily unavailable", http.StatusServiceUnavailable)
	default:
		logging.Logger.Errorf("Unhandled request error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
