package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/vntrieu/werewolf/internal/auth"
	"github.com/vntrieu/werewolf/internal/games"
	"github.com/vntrieu/werewolf/internal/session"
)

// contextKey type for request context keys (avoids collisions with other packages).
type contextKey string

// SeatClaimsContextKey is the context key for the verified seat token claims (set by the seat middleware).
const SeatClaimsContextKey contextKey = "seat_claims"

// SeatFromRequest returns the seat claims set by the seat middleware, or nil for anonymous requests.
func SeatFromRequest(r *http.Request) *auth.Claims {
	c, _ := r.Context().Value(SeatClaimsContextKey).(*auth.Claims)
	return c
}

// BearerToken returns the token from an "Authorization: Bearer" header, or "".
func BearerToken(r *http.Request) string {
	const prefix = "Bearer "
	v := r.Header.Get("Authorization")
	if !strings.HasPrefix(v, prefix) {
		return ""
	}
	return strings.TrimSpace(v[len(prefix):])
}

// requestID returns the request ID from chi's context for logging.
func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(middleware.RequestIDKey).(string); ok {
		return id
	}
	return ""
}

func writeJSON(w http.ResponseWriter, r *http.Request, log zerolog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Str("request_id", requestID(r)).Msg("encode response")
	}
}

// writeError maps service errors to status codes. Unknown errors are logged and reported as 500.
func writeError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, op string, err error) {
	switch {
	case errors.Is(err, session.ErrGameNotFound):
		http.Error(w, "game not found", http.StatusNotFound)
	case errors.Is(err, session.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, session.ErrNotRunning):
		http.Error(w, "game is not running", http.StatusConflict)
	case errors.Is(err, session.ErrNotFinished):
		http.Error(w, "game is not finished", http.StatusConflict)
	case errors.Is(err, session.ErrInvalidSeat), errors.Is(err, games.ErrInvalidConfig):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Error().Err(err).Str("request_id", requestID(r)).Msg(op)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
