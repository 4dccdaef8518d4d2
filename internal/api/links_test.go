package api_test

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/joe-bookmarks/internal/api"
)

var validLink = map[string]string{
	"title":       "Go",
	"description": "longer than five",
	"originalUrl": "https://x.io",
	"category":    "tech",
}

func createLink(t *testing.T, env *testEnv, token string) *api.LinkResponse {
	t.Helper()
	rec := do(t, env, http.MethodPost, "/links", token, validLink)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[api.LinkEnvelope](t, rec).Link
}

func ownedIDs(t *testing.T, env *testEnv, userID string) []string {
	t.Helper()
	ids, err := env.Relation.OwnedLinkIDs(context.Background(), userID)
	require.NoError(t, err)
	return ids
}

func TestCreateLink(t *testing.T) {
	env := newTestEnv(t)
	u1, token := seedUser(t, env, "u1@example.com")

	link := createLink(t, env, token)
	assert.Equal(t, u1.ID, link.Creator)
	assert.Equal(t, "Go", link.Title)
	assert.Equal(t, "https://x.io", link.OriginalURL)
	assert.True(t, strings.HasPrefix(link.ShortURL, testBaseURL+"/s/"), link.ShortURL)
	assert.Equal(t, []string{link.ID}, ownedIDs(t, env, u1.ID))
}

func TestCreateLink_ValidationFailure(t *testing.T) {
	env := newTestEnv(t)
	u1, token := seedUser(t, env, "u1@example.com")

	tests := []struct {
		name  string
		field string
		value string
	}{
		{"short description", "description", "hi"},
		{"empty title", "title", ""},
		{"short url", "originalUrl", "x.io"},
		{"empty category", "category", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := map[string]string{}
			for k, v := range validLink {
				body[k] = v
			}
			body[tt.field] = tt.value

			rec := do(t, env, http.MethodPost, "/links", token, body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			e := decode[errorResponse](t, rec)
			assert.Equal(t, "VALIDATION_FAILED", e.Code)
			assert.Contains(t, e.Error, tt.field)
		})
	}

	assert.Empty(t, ownedIDs(t, env, u1.ID))
	n, err := env.Relation.CountLinks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateLink_MalformedBody(t *testing.T) {
	env := newTestEnv(t)
	_, token := seedUser(t, env, "u1@example.com")

	rec := do(t, env, http.MethodPost, "/links", token, "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLinkRoutes_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/links/user/someone"},
		{http.MethodPost, "/links"},
		{http.MethodPatch, "/links/x"},
		{http.MethodDelete, "/links/x"},
	} {
		rec := do(t, env, tc.method, tc.path, "", validLink)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestListLinksForUser(t *testing.T) {
	env := newTestEnv(t)
	u1, token := seedUser(t, env, "u1@example.com")
	_, otherToken := seedUser(t, env, "u2@example.com")

	rec := do(t, env, http.MethodGet, "/links/user/"+u1.ID, otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"links":[]}`, strings.TrimSpace(rec.Body.String()))

	first := createLink(t, env, token)
	second := createLink(t, env, token)

	rec = do(t, env, http.MethodGet, "/links/user/"+u1.ID, otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[api.LinkListResponse](t, rec)
	require.Len(t, list.Links, 2)
	assert.Equal(t, first.ID, list.Links[0].ID)
	assert.Equal(t, second.ID, list.Links[1].ID)

	rec = do(t, env, http.MethodGet, "/links/user/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteLink_NotOwner(t *testing.T) {
	env := newTestEnv(t)
	u1, token1 := seedUser(t, env, "u1@example.com")
	_, token2 := seedUser(t, env, "u2@example.com")
	link := createLink(t, env, token1)

	rec := do(t, env, http.MethodDelete, "/links/"+link.ID, token2, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode[errorResponse](t, rec).Code)

	_, err := env.Relation.GetLink(context.Background(), link.ID)
	assert.NoError(t, err)
	assert.Equal(t, []string{link.ID}, ownedIDs(t, env, u1.ID))
}

func TestDeleteLink(t *testing.T) {
	env := newTestEnv(t)
	u1, token := seedUser(t, env, "u1@example.com")
	link := createLink(t, env, token)

	rec := do(t, env, http.MethodDelete, "/links/"+link.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Deleted link.", decode[api.MessageResponse](t, rec).Message)

	_, err := env.Relation.GetLink(context.Background(), link.ID)
	assert.Error(t, err)
	assert.Empty(t, ownedIDs(t, env, u1.ID))

	rec = do(t, env, http.MethodDelete, "/links/"+link.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteLink_Concurrent(t *testing.T) {
	env := newTestEnv(t)
	u1, token := seedUser(t, env, "u1@example.com")
	link := createLink(t, env, token)

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := range codes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = do(t, env, http.MethodDelete, "/links/"+link.ID, token, nil).Code
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusNotFound}, codes)
	assert.Empty(t, ownedIDs(t, env, u1.ID))
	n, err := env.Relation.CountLinks(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateLink(t *testing.T) {
	env := newTestEnv(t)
	_, token := seedUser(t, env, "u1@example.com")
	link := createLink(t, env, token)

	rec := do(t, env, http.MethodPatch, "/links/"+link.ID, token, map[string]string{
		"title":       "Go2",
		"description": "updated description",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[api.LinkEnvelope](t, rec).Link
	assert.Equal(t, "Go2", updated.Title)
	assert.Equal(t, link.ShortURL, updated.ShortURL)
	assert.Equal(t, link.Creator, updated.Creator)
}

func TestUpdateLink_EmptyTitle(t *testing.T) {
	env := newTestEnv(t)
	_, token := seedUser(t, env, "u1@example.com")
	link := createLink(t, env, token)
	before, err := env.Relation.GetLink(context.Background(), link.ID)
	require.NoError(t, err)

	rec := do(t, env, http.MethodPatch, "/links/"+link.ID, token, map[string]string{
		"title":       "",
		"description": "still long enough",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	after, err := env.Relation.GetLink(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestUpdateLink_NotOwnerAndMissing(t *testing.T) {
	env := newTestEnv(t)
	_, token1 := seedUser(t, env, "u1@example.com")
	_, token2 := seedUser(t, env, "u2@example.com")
	link := createLink(t, env, token1)
	before, err := env.Relation.GetLink(context.Background(), link.ID)
	require.NoError(t, err)

	body := map[string]string{"title": "Mine now", "description": "taken over"}
	rec := do(t, env, http.MethodPatch, "/links/"+link.ID, token2, body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	after, err := env.Relation.GetLink(context.Background(), link.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	rec = do(t, env, http.MethodPatch, "/links/missing", token2, body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := do(t, env, http.MethodGet, "/nope", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Could not find this route.", decode[errorResponse](t, rec).Error)
}
