package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// EntitiesHandler serves the read-only entity endpoints.
type EntitiesHandler struct {
	deps Dependencies
}

// NewEntitiesHandler creates a new entities handler.
func NewEntitiesHandler(deps Dependencies) *EntitiesHandler {
	return &EntitiesHandler{deps: deps}
}

// HandleList handles GET /api/entities.
func (h *EntitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	names, err := h.deps.ListEntities(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

// HandleEntity handles GET /api/entities/{id}.
func (h *EntitiesHandler) HandleEntity(w http.ResponseWriter, r *http.Request) {
	rec, err := h.deps.Entity(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleMetrics handles GET /api/entities/{id}/metrics.
func (h *EntitiesHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.EntityMetrics(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleTrending handles GET /api/entities/{id}/trending.
func (h *EntitiesHandler) HandleTrending(w http.ResponseWriter, r *http.Request) {
	t, err := h.deps.EntityTrending(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleLastUpdated handles GET /api/last_updated.
func (h *EntitiesHandler) HandleLastUpdated(w http.ResponseWriter, r *http.Request) {
	lu, err := h.deps.LastUpdated(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lu)
}
