package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joestump/joe-bookmarks/internal/apperr"
	"github.com/joestump/joe-bookmarks/internal/metrics"
	"github.com/joestump/joe-bookmarks/internal/service"
)

// ResolveHandler handles short code resolution and redirection.
type ResolveHandler struct {
	links *service.LinkService
}

// NewResolveHandler creates a new ResolveHandler.
func NewResolveHandler(links *service.LinkService) *ResolveHandler {
	return &ResolveHandler{links: links}
}

// Resolve looks up a short code and redirects to the original URL.
func (h *ResolveHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	target, err := h.links.ResolveShortCode(r.Context(), code)
	switch {
	case err == nil:
		metrics.RedirectsTotal.WithLabelValues("found").Inc()
		http.Redirect(w, r, target, http.StatusFound)
	case apperr.Is(err, apperr.NotFound):
		metrics.RedirectsTotal.WithLabelValues("not_found").Inc()
		http.Error(w, "short link not found", http.StatusNotFound)
	default:
		metrics.RedirectsTotal.WithLabelValues("error").Inc()
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
