package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/joestump/joe-bookmarks/internal/api"
	"github.com/joestump/joe-bookmarks/internal/auth"
	"github.com/joestump/joe-bookmarks/internal/handler"
	"github.com/joestump/joe-bookmarks/internal/service"
	"github.com/joestump/joe-bookmarks/internal/store"
	"github.com/joestump/joe-bookmarks/internal/testutil"
)

// newServer starts the full application router on a test server, wired the
// same way the serve command wires it.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := testutil.NewTestDB(t)
	log := zaptest.NewLogger(t)

	users := store.NewUserStore(db)
	rel := store.NewRelationshipStore(db, log, store.DefaultTxConfig)
	tokens := auth.NewTokens("e2e-secret", time.Hour)
	sm := auth.NewSessionManager(db, "sqlite3", time.Hour, true)

	srv := httptest.NewServer(handler.NewRouter(handler.Deps{
		SessionManager: sm,
		AuthMiddleware: auth.NewMiddleware(sm, tokens, users, log),
		Links:          service.NewLinkService(rel, log),
		Accounts:       service.NewAccounts(users, tokens, service.TestPasswordCost, log),
		UserStore:      users,
		Relation:       rel,
		DB:             db,
		BaseURL:        "http://short.test",
		Log:            log,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signup(t *testing.T, client *resty.Client, srv *httptest.Server, email string) api.AuthResponse {
	t.Helper()
	var out api.AuthResponse
	resp, err := client.R().
		SetBody(map[string]string{"name": "User", "email": email, "password": "supersecret"}).
		SetResult(&out).
		Post(srv.URL + "/api/users/signup")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	return out
}

func TestEndToEnd_LinkLifecycle(t *testing.T) {
	srv := newServer(t)
	client := resty.New()

	u1 := signup(t, client, srv, "u1@example.com")
	u2 := signup(t, resty.New(), srv, "u2@example.com")

	var created api.LinkEnvelope
	resp, err := client.R().
		SetAuthToken(u1.Token).
		SetBody(map[string]string{
			"title": "Go", "description": "longer than five", "originalUrl": "https://x.io", "category": "tech",
		}).
		SetResult(&created).
		Post(srv.URL + "/api/links")
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode(), resp.String())
	link := created.Link
	assert.Equal(t, u1.UserID, link.Creator)

	var list api.LinkListResponse
	resp, err = client.R().SetAuthToken(u2.Token).SetResult(&list).
		Get(srv.URL + "/api/links/user/" + u1.UserID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	require.Len(t, list.Links, 1)
	assert.Equal(t, link.ID, list.Links[0].ID)

	// The short URL resolves through the public redirect route.
	noFollow := resty.New().SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	code := link.ShortURL[len("http://short.test/s/"):]
	resp, err = noFollow.R().Get(srv.URL + "/s/" + code)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode())
	assert.Equal(t, "https://x.io", resp.Header().Get("Location"))

	resp, err = client.R().SetAuthToken(u2.Token).Delete(srv.URL + "/api/links/" + link.ID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := resty.New().R().SetAuthToken(u1.Token).Delete(srv.URL + "/api/links/" + link.ID)
			if err == nil {
				codes[i] = resp.StatusCode()
			}
		}(i)
	}
	wg.Wait()
	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusNotFound}, codes)

	resp, err = noFollow.R().Get(srv.URL + "/s/" + code)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestEndToEnd_SessionCookieAuth(t *testing.T) {
	srv := newServer(t)
	client := resty.New()

	u := signup(t, client, srv, "cookie@example.com")

	// No bearer token: the session cookie set at signup authenticates.
	var me api.UserResponse
	resp, err := client.R().SetResult(&me).Get(srv.URL + "/api/users/me")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode(), resp.String())
	assert.Equal(t, u.UserID, me.ID)

	resp, err = resty.New().R().Get(srv.URL + "/api/users/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
}

func TestEndToEnd_OperationalRoutes(t *testing.T) {
	srv := newServer(t)
	client := resty.New()

	for _, tc := range []struct {
		path   string
		status int
	}{
		{"/healthz", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/nope", http.StatusNotFound},
		{"/api/nope", http.StatusNotFound},
	} {
		t.Run(fmt.Sprintf("GET %s", tc.path), func(t *testing.T) {
			resp, err := client.R().Get(srv.URL + tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode())
		})
	}
}
