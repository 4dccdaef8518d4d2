package api

import (
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/auth"
	"github.com/joestump/joe-bookmarks/internal/service"
)

// accountsAPIHandler serves the unauthenticated signup and login routes.
type accountsAPIHandler struct {
	accounts *service.Accounts
	sessions *scs.SessionManager
	log      *zap.Logger
}

func registerAccountRoutes(r chi.Router, accounts *service.Accounts, sessions *scs.SessionManager, log *zap.Logger) {
	h := &accountsAPIHandler{accounts: accounts, sessions: sessions, log: log}
	r.Post("/users/signup", h.Signup)
	r.Post("/users/login", h.Login)
}

// Signup registers a user and returns a bearer token.
// POST /api/users/signup
func (h *accountsAPIHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	s, err := h.accounts.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.respond(w, r, http.StatusCreated, s)
}

// Login checks credentials and returns a bearer token.
// POST /api/users/login
func (h *accountsAPIHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	s, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	h.respond(w, r, http.StatusOK, s)
}

func (h *accountsAPIHandler) respond(w http.ResponseWriter, r *http.Request, status int, s *service.Session) {
	if h.sessions != nil {
		if err := auth.StartSession(r.Context(), h.sessions, s.UserID); err != nil {
			h.log.Error("start session", zap.String("user_id", s.UserID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
			return
		}
	}
	writeJSON(w, status, &AuthResponse{UserID: s.UserID, Email: s.Email, Token: s.Token})
}

// usersAPIHandler provides REST handlers for the authenticated caller.
type usersAPIHandler struct{}

// registerUserRoutes registers user routes on r.
func registerUserRoutes(r chi.Router) {
	h := &usersAPIHandler{}
	r.Get("/users/me", h.Me)
}

// Me returns the authenticated caller's profile.
// GET /api/users/me
func (h *usersAPIHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	writeJSON(w, http.StatusOK, &UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}
