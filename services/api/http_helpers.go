package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Patrick687/Survivor-Fantasy-Game-sub000/services/league"
)

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body required")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	respondJSON(w, status, map[string]any{"error": err.Error()})
}

// statusFor maps a league failure kind onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, league.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, league.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, league.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, league.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, league.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes err with its mapped status. Store failures are
// logged and replaced by a generic message.
func (a *API) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	var typed *league.Error
	if errors.As(err, &typed) && status < http.StatusInternalServerError {
		respondError(w, status, typed)
		return
	}

	a.log.Error().Err(err).Str("path", r.URL.Path).Int("status", status).Msg("request failed")
	respondError(w, status, errors.New(http.StatusText(status)))
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}
