package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-cms/internal/content/posts"
	"github.com/odyssey-erp/odyssey-cms/internal/shared"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
	"github.com/odyssey-erp/odyssey-cms/internal/view"
)

const testCookie = "odyssey_session"

type postsStub struct{}

func (postsStub) List(_ context.Context, q tablestate.ListQuery) (tablestate.Page[posts.Post], error) {
	return tablestate.NewPage([]posts.Post{{ID: 1, Title: "Welcome", Status: posts.StatusPublished}}, q, 1), nil
}

func (postsStub) Delete(context.Context, int64) error { return nil }

func (postsStub) DeleteMany(_ context.Context, ids []int64) (int, error) { return len(ids), nil }

func newTestApp(t *testing.T) (http.Handler, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	engine, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &Config{AppEnv: "test", RateLimit: 1000, AppRequestTimeout: 5 * time.Second, CORSOrigins: []string{"https://site.example.com"}}
	csrf := shared.NewCSRFManager("csrf-secret")

	router := NewRouter(RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: shared.NewSessionManager(client, testCookie, "session-secret", time.Hour, false),
		CSRFManager:    csrf,
		PostsHandler:   posts.NewHandler(logger, posts.NewService(postsStub{}, nil, nil, logger), engine, csrf, nil),
	})
	return router, mr
}

// signIn stores a signed-in session directly in Redis and returns its cookie.
func signIn(t *testing.T, mr *miniredis.Miniredis) *http.Cookie {
	t.Helper()
	require.NoError(t, mr.Set("session:test-session", `{"values":{"csrf_token":"tok"},"user_id":"1"}`))
	return &http.Cookie{Name: testCookie, Value: "test-session"}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestApp(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestAdminRequiresLogin(t *testing.T) {
	router, _ := newTestApp(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/posts?status=draft", nil))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/auth/login?next="+url.QueryEscape("/admin/posts?status=draft"), rr.Header().Get("Location"))
}

func TestAdminListForSignedInUser(t *testing.T) {
	router, mr := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/posts", nil)
	req.AddCookie(signIn(t, mr))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Welcome")
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestTableActionRequiresCSRFToken(t *testing.T) {
	router, mr := newTestApp(t)
	cookie := signIn(t, mr)
	form := url.Values{"op": {"page"}, "page": {"2"}}

	req := httptest.NewRequest(http.MethodPost, "/admin/posts/table", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/admin/posts/table", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRF-Token", "tok")
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Current-URL", "http://cms.test/admin/posts")
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/admin/posts?page=2", rr.Header().Get("HX-Replace-Url"))
}

func TestAPIRequiresSession(t *testing.T) {
	router, _ := newTestApp(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAPIAllowsConfiguredOrigin(t *testing.T) {
	router, mr := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts?status=published", nil)
	req.Header.Set("Origin", "https://site.example.com")
	req.AddCookie(signIn(t, mr))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://site.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, rr.Body.String(), `"title":"Welcome"`)
}

func TestAPIIgnoresUnknownOrigin(t *testing.T) {
	router, mr := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.AddCookie(signIn(t, mr))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestAPICORSWithoutOriginsIsSameOriginOnly(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	for _, cfg := range []*Config{nil, {}} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
		req.Header.Set("Origin", "https://anywhere.example.com")
		rr := httptest.NewRecorder()
		apiCORS(cfg)(ok).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Credentials"))
	}
}

func TestStaticAssetsAreCached(t *testing.T) {
	router, _ := newTestApp(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/css/admin.css", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "public, max-age=3600", rr.Header().Get("Cache-Control"))
}
