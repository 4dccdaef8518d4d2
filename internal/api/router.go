package api

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/auth"
	"github.com/joestump/joe-bookmarks/internal/service"
	"github.com/joestump/joe-bookmarks/internal/store"
)

// Deps holds all dependencies required to build the API router.
type Deps struct {
	Auth     *auth.Middleware
	Links    *service.LinkService
	Accounts *service.Accounts
	// Sessions is optional. When set, login also binds the user to the
	// session cookie.
	Sessions *scs.SessionManager
	Users    *store.UserStore
	Relation *store.RelationshipStore
	// BaseURL prefixes short codes to form a link's shortUrl.
	BaseURL string
	Log     *zap.Logger
}

// NewAPIRouter creates the chi sub-router mounted at /api.
// Every response is application/json.
func NewAPIRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(jsonContentType)

	log := deps.Log.Named("api")

	registerAccountRoutes(r, deps.Accounts, deps.Sessions, log)

	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.RequireAuth)
		registerLinkRoutes(r, deps.Links, deps.BaseURL, log)
		registerUserRoutes(r)
		registerStatsRoutes(r, deps.Users, deps.Relation, log)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Could not find this route.", "NOT_FOUND")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "METHOD_NOT_ALLOWED")
	})
	return r
}

// jsonContentType is a middleware that sets Content-Type: application/json on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
