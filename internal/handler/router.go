package handler

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/api"
	"github.com/joestump/joe-bookmarks/internal/auth"
	"github.com/joestump/joe-bookmarks/internal/logger"
	"github.com/joestump/joe-bookmarks/internal/service"
	"github.com/joestump/joe-bookmarks/internal/store"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	SessionManager *scs.SessionManager
	AuthMiddleware *auth.Middleware
	Links          *service.LinkService
	Accounts       *service.Accounts
	UserStore      *store.UserStore
	Relation       *store.RelationshipStore
	DB             pinger
	BaseURL        string
	Log            *zap.Logger
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware(deps.Log.Named("http")))
	r.Use(Recoverer(deps.Log.Named("http")))
	r.Use(deps.SessionManager.LoadAndSave)

	r.Get("/healthz", NewHealthHandler(deps.DB).Check)
	r.Handle("/metrics", promhttp.Handler())

	apiRouter := api.NewAPIRouter(api.Deps{
		Auth:     deps.AuthMiddleware,
		Links:    deps.Links,
		Accounts: deps.Accounts,
		Sessions: deps.SessionManager,
		Users:    deps.UserStore,
		Relation: deps.Relation,
		BaseURL:  deps.BaseURL,
		Log:      deps.Log,
	})
	r.Mount("/api", apiRouter)

	// Short links are public.
	resolver := NewResolveHandler(deps.Links)
	r.Get("/s/{code}", resolver.Resolve)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Could not find this route.","code":"NOT_FOUND"}` + "\n"))
	})

	return r
}
