package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/joestump/joe-bookmarks/internal/api"
	"github.com/joestump/joe-bookmarks/internal/auth"
	"github.com/joestump/joe-bookmarks/internal/service"
	"github.com/joestump/joe-bookmarks/internal/store"
	"github.com/joestump/joe-bookmarks/internal/testutil"
)

const testBaseURL = "http://short.test"

// testEnv holds all stores and helpers needed for API integration tests.
type testEnv struct {
	Router    http.Handler
	UserStore *store.UserStore
	Relation  *store.RelationshipStore
	Tokens    *auth.Tokens
}

// newTestEnv creates a SQLite test database, runs migrations, and wires up
// the full API router with real stores and services.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := zaptest.NewLogger(t)

	us := store.NewUserStore(db)
	rel := store.NewRelationshipStore(db, log, store.DefaultTxConfig)
	tokens := auth.NewTokens("test-secret", time.Hour)

	router := api.NewAPIRouter(api.Deps{
		Auth:     auth.NewMiddleware(nil, tokens, us, log),
		Links:    service.NewLinkService(rel, log),
		Accounts: service.NewAccounts(us, tokens, service.TestPasswordCost, log),
		Users:    us,
		Relation: rel,
		BaseURL:  testBaseURL,
		Log:      log,
	})
	return &testEnv{Router: router, UserStore: us, Relation: rel, Tokens: tokens}
}

// seedUser creates a user and returns the user record with a bearer token.
func seedUser(t *testing.T, env *testEnv, email string) (*store.User, string) {
	t.Helper()
	u, err := env.UserStore.Create(context.Background(), "Test User", email, "hash")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	token, err := env.Tokens.Issue(u.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return u, token
}

// do sends a request with an optional JSON body and bearer token.
func do(t *testing.T, env *testEnv, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
