package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"parley/internal/logging"
	"parley/internal/store"
	"parley/internal/types"
)

const principalHeader = "X-Parley-Principal"

// Stores groups the persistence layers the API serves from.
type Stores struct {
	Profiles *store.ProfileStore
	Messages *store.MessageStore
	Projects *store.ProjectStore
}

// API serves the backend operation surface. Handlers take the caller's
// opaque principal from a header; registration-only operations reject
// anonymous callers.
type API struct {
	Version  string
	Stores   *Stores
	Shutdown func(context.Context) error
	Log      logging.Logger
}

func (a *API) logger() logging.Logger {
	if a.Log == nil {
		return logging.Nop()
	}
	return a.Log
}

func callerPrincipal(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(principalHeader))
}

// requirePrincipal rejects anonymous callers on registration-only paths.
func (a *API) requirePrincipal(w http.ResponseWriter, r *http.Request) (string, bool) {
	principal := callerPrincipal(r)
	if principal == "" {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "anonymous callers are not allowed"})
		return "", false
	}
	return principal, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if err == store.ErrNotFound {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	msg := err.Error()
	if strings.Contains(msg, "required") || strings.Contains(msg, "invalid") {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	writeError(w, http.StatusInternalServerError, msg)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func parseID(raw string) (uint64, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func validateDisplayName(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	return trimmed, types.ValidDisplayName(trimmed)
}
