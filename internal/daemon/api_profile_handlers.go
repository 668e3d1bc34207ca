package daemon

import (
	"net/http"

	"parley/internal/logging"
	"parley/internal/types"
)

func (a *API) Profile(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		principal := callerPrincipal(r)
		if principal == "" {
			// Anonymous callers simply have no profile.
			writeJSON(w, http.StatusOK, map[string]any{"profile": nil})
			return
		}
		profile, ok, err := a.Stores.Profiles.Get(r.Context(), principal)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"profile": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
	case http.MethodPut:
		principal, ok := a.requirePrincipal(w, r)
		if !ok {
			return
		}
		var req types.UserProfile
		if !decodeBody(w, r, &req) {
			return
		}
		name, valid := validateDisplayName(req.Name)
		if !valid {
			writeError(w, http.StatusBadRequest, "display name must be 2-32 characters")
			return
		}
		if err := a.Stores.Profiles.Put(r.Context(), principal, types.UserProfile{Name: name}); err != nil {
			writeStoreError(w, err)
			return
		}
		a.logger().Info("profile saved", logging.F("principal", principal))
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) Role(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	role, err := a.Stores.Profiles.Role(r.Context(), callerPrincipal(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"role": role})
}

func (a *API) RoleAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	role, err := a.Stores.Profiles.Role(r.Context(), callerPrincipal(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"admin": role == types.UserRoleAdmin})
}

func (a *API) AssignRole(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	callerRole, err := a.Stores.Profiles.Role(r.Context(), principal)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if callerRole != types.UserRoleAdmin {
		writeError(w, http.StatusForbidden, "only admins may assign roles")
		return
	}
	var req struct {
		Principal string         `json:"principal"`
		Role      types.UserRole `json:"role"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := a.Stores.Profiles.SetRole(r.Context(), req.Principal, req.Role); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (a *API) Users(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	users, err := a.Stores.Profiles.List(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
