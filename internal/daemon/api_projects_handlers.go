package daemon

import (
	"net/http"
	"strings"

	"parley/internal/types"
)

func (a *API) Projects(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		projects, err := a.Stores.Projects.ListForOwner(r.Context(), principal)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		project, err := a.Stores.Projects.Create(r.Context(), principal, req.Name)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) ProjectByID(w http.ResponseWriter, r *http.Request) {
	principal, ok := a.requirePrincipal(w, r)
	if !ok {
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/v1/projects/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	id, valid := parseID(parts[0])
	if !valid {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	if len(parts) == 1 {
		a.projectRoot(w, r, principal, id)
		return
	}
	if parts[1] == "workflows" {
		a.projectWorkflows(w, r, principal, id, parts)
		return
	}
	writeError(w, http.StatusNotFound, "not found")
}

func (a *API) projectRoot(w http.ResponseWriter, r *http.Request, principal string, id uint64) {
	switch r.Method {
	case http.MethodGet:
		project, found, err := a.Stores.Projects.Get(r.Context(), principal, id)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "project not found")
			return
		}
		writeJSON(w, http.StatusOK, project)
	case http.MethodPatch:
		var req types.Project
		if !decodeBody(w, r, &req) {
			return
		}
		req.ID = id
		project, err := a.Stores.Projects.Update(r.Context(), principal, req)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	case http.MethodDelete:
		if err := a.Stores.Projects.Delete(r.Context(), principal, id); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) projectWorkflows(w http.ResponseWriter, r *http.Request, principal string, projectID uint64, parts []string) {
	if len(parts) == 2 {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		workflow, err := a.Stores.Projects.AddWorkflow(r.Context(), principal, projectID, req.Name)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, workflow)
		return
	}

	if len(parts) == 4 && parts[3] == "tasks" {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}
		workflowID, valid := parseID(parts[2])
		if !valid {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		var req struct {
			Description string `json:"description"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		task, err := a.Stores.Projects.AddTask(r.Context(), principal, projectID, workflowID, req.Description)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
		return
	}

	writeError(w, http.StatusNotFound, "not found")
}
