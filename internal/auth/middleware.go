package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
	"go.uber.org/zap"

	"github.com/joestump/joe-bookmarks/internal/apperr"
	"github.com/joestump/joe-bookmarks/internal/store"
)

type contextKey string

const UserContextKey contextKey = "user"

type userLookup interface {
	GetByID(ctx context.Context, id string) (*store.User, error)
}

// Middleware authenticates requests by bearer token or, failing that, by
// session cookie.
type Middleware struct {
	sessions *scs.SessionManager
	tokens   *Tokens
	users    userLookup
	log      *zap.Logger
}

// NewMiddleware creates a new auth Middleware. sm may be nil, in which case
// only bearer tokens are accepted.
func NewMiddleware(sm *scs.SessionManager, tokens *Tokens, users userLookup, log *zap.Logger) *Middleware {
	return &Middleware{sessions: sm, tokens: tokens, users: users, log: log.Named("auth")}
}

// RequireAuth responds 401 unless the request carries a valid bearer token
// or a session bound to an existing user. On success the *store.User is put
// on the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, fromSession := m.requesterID(r)
		if userID == "" {
			writeUnauthorized(w, "authentication failed")
			return
		}

		user, err := m.users.GetByID(r.Context(), userID)
		if apperr.Is(err, apperr.NotFound) {
			// Credential references a deleted user.
			if fromSession {
				_ = m.sessions.Destroy(r.Context())
			}
			writeUnauthorized(w, "authentication failed")
			return
		}
		if err != nil {
			m.log.Error("load authenticated user", zap.String("user_id", userID), zap.Error(err))
			writeJSONError(w, http.StatusInternalServerError, "internal error", "INTERNAL_ERROR")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requesterID returns the user id claimed by the request and whether it came
// from the session. A malformed or expired bearer token is not retried
// against the session.
func (m *Middleware) requesterID(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return "", false
		}
		userID, err := m.tokens.Verify(token)
		if err != nil {
			return "", false
		}
		return userID, false
	}
	if m.sessions == nil {
		return "", false
	}
	return m.sessions.GetString(r.Context(), SessionUserIDKey), true
}

// UserFromContext retrieves the authenticated user from the context.
func UserFromContext(ctx context.Context) *store.User {
	u, _ := ctx.Value(UserContextKey).(*store.User)
	return u
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusUnauthorized, msg, "UNAUTHORIZED")
}

// writeJSONError writes the same {"error", "code"} envelope as the API.
func writeJSONError(w http.ResponseWriter, status int, msg, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
