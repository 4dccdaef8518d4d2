package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/auth"
	"github.com/joestump/joe-bookmarks/internal/service"
	"github.com/joestump/joe-bookmarks/internal/store"
)

// linksAPIHandler provides REST handlers for link management.
type linksAPIHandler struct {
	links   *service.LinkService
	baseURL string
	log     *zap.Logger
}

// registerLinkRoutes registers link routes on r. r must already require
// authentication.
func registerLinkRoutes(r chi.Router, links *service.LinkService, baseURL string, log *zap.Logger) {
	h := &linksAPIHandler{links: links, baseURL: baseURL, log: log}
	r.Get("/links/user/{uid}", h.ListForUser)
	r.Post("/links", h.Create)
	r.Patch("/links/{lid}", h.Update)
	r.Delete("/links/{lid}", h.Delete)
}

// ListForUser returns the links created by a user, oldest first.
// GET /api/links/user/{uid}
func (h *linksAPIHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.ListLinksForUser(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	resp := &LinkListResponse{Links: make([]*LinkResponse, 0, len(links))}
	for _, l := range links {
		resp.Links = append(resp.Links, toLinkResponse(l, h.baseURL))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create creates a link owned by the caller.
// POST /api/links
func (h *linksAPIHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	var req CreateLinkRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	l, err := h.links.CreateLink(r.Context(), user.ID, service.LinkFields{
		Title:       req.Title,
		Description: req.Description,
		OriginalURL: req.OriginalURL,
		Category:    req.Category,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, &LinkEnvelope{Link: toLinkResponse(l, h.baseURL)})
}

// Update changes the title and description of a link the caller owns.
// PATCH /api/links/{lid}
func (h *linksAPIHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	var req UpdateLinkRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	l, err := h.links.UpdateLink(r.Context(), user.ID, chi.URLParam(r, "lid"), store.LinkUpdate{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, &LinkEnvelope{Link: toLinkResponse(l, h.baseURL)})
}

// Delete removes a link the caller owns.
// DELETE /api/links/{lid}
func (h *linksAPIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	if err := h.links.DeleteLink(r.Context(), user.ID, chi.URLParam(r, "lid")); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, &MessageResponse{Message: "Deleted link."})
}
