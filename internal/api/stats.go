package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/metrics"
	"github.com/joestump/joe-bookmarks/internal/store"
)

type statsAPIHandler struct {
	users *store.UserStore
	rel   *store.RelationshipStore
	log   *zap.Logger
}

func registerStatsRoutes(r chi.Router, users *store.UserStore, rel *store.RelationshipStore, log *zap.Logger) {
	h := &statsAPIHandler{users: users, rel: rel, log: log}
	r.Get("/stats", h.Get)
}

// Get returns user and link totals and refreshes the matching gauges.
// GET /api/stats
func (h *statsAPIHandler) Get(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Count(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	links, err := h.rel.CountLinks(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	metrics.UsersTotal.Set(float64(users))
	metrics.LinksTotal.Set(float64(links))
	writeJSON(w, http.StatusOK, &StatsResponse{Users: users, Links: links})
}
