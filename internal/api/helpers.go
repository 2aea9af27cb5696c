package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/datalens/catalogd/internal/auth"
	"github.com/datalens/catalogd/internal/repository"
)

// subjectHeader carries the caller's favorites identity when no
// authenticated subject is on the context.
const subjectHeader = "X-Subject-Key"

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

// writeError maps repository sentinels onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func urlUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", param, err)
	}
	return id, nil
}

func queryInt(r *http.Request, param string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(param))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", param)
	}
	return parsed, nil
}

func decodeBody(r *http.Request, into any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

// subjectKey resolves the favorites identity: authenticated subject first,
// then the request header.
func subjectKey(r *http.Request) (string, error) {
	if key, ok := auth.SubjectKeyFromContext(r.Context()); ok {
		return key, nil
	}
	if key := strings.TrimSpace(r.Header.Get(subjectHeader)); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%s header is required", subjectHeader)
}
