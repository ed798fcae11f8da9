package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"skeletonkey/internal/core"
	applog "skeletonkey/internal/log"
	"skeletonkey/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed encoding response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps ledger errors onto HTTP statuses: missing records
// are 404, validation failures 422, everything else 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			"error", err,
			"url", r.URL.Path,
			"request_id", requestIDFrom(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func isValidationError(err error) bool {
	return errors.Is(err, core.ErrEmptyDescription) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrInvalidDate) ||
		errors.Is(err, core.ErrEmptyCategory)
}

// decodeJSON decodes a request body, rejecting unknown fields so typos in the
// frontend fail loudly instead of silently dropping data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// respondCached serves an analytics response from the LRU cache when present,
// otherwise builds, stores, and writes it. Cache keys include the full query
// string, so differently filtered views never collide.
func (s *Server) respondCached(w http.ResponseWriter, r *http.Request, build func() (any, error)) {
	key := r.URL.RequestURI()

	if body, ok := s.analyticsCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	payload, err := build()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed marshalling analytics response", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.analyticsCache.Set(key, body)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
