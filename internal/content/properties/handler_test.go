package properties

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

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-cms/internal/shared"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
	"github.com/odyssey-erp/odyssey-cms/internal/view"
)

func newTestRouter(t *testing.T, repo *fakeRepo) (http.Handler, *shared.Session) {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo, nil, nil, logger), engine, shared.NewCSRFManager("secret"), nil)

	sessions := shared.NewSessionManager(nil, "odyssey_session", "secret", time.Hour, false)
	sess, err := sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithSession(req.Context(), sess)))
		})
	})
	r.Route(BasePath, handler.MountRoutes)
	return r, sess
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestListShowsTypeChoices(t *testing.T) {
	repo := newFakeRepo(Property{ID: 1, Title: "Harbour View", Status: StatusAvailable, City: "Hobart", CreatedAt: time.Now()})
	router, _ := newTestRouter(t, repo)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/properties?property_type=2", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Harbour View")
	assert.Contains(t, body, `<option value="2" selected>Apartment</option>`)
	assert.Equal(t, tablestate.Num(2), repo.lastList.Filter(FilterType))
}

func TestTypeFilterZeroClearsParameter(t *testing.T) {
	router, _ := newTestRouter(t, newFakeRepo())
	req := postForm("/admin/properties/table", url.Values{"op": {"filter"}, "field": {FilterType}, "value": {"0"}})
	req.Header.Set(httpx.HeaderHXRequest, "true")
	req.Header.Set(httpx.HeaderHXCurrentURL, "http://cms.test/admin/properties?property_type=2&page=3")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "/admin/properties", rr.Header().Get(httpx.HeaderHXReplaceURL))
}

func TestCreateRedirectsToEdit(t *testing.T) {
	repo := newFakeRepo()
	router, sess := newTestRouter(t, repo)
	form := url.Values{
		"title": {"Garden Flat"}, "property_type_id": {"2"}, "status": {StatusDraft},
		"price": {"210000"}, "city": {"Leeds"}, "is_active": {"on"},
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, postForm("/admin/properties", form))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/properties/101/edit", rr.Header().Get("Location"))
	require.Len(t, repo.created, 1)
	assert.Equal(t, "garden-flat", repo.created[0].Slug)
	assert.True(t, repo.created[0].IsActive)
	assert.False(t, repo.created[0].IsFeatured)
	flash := sess.PopFlash()
	require.NotNil(t, flash)
	assert.Equal(t, "Property created successfully", flash.Message)
}

func TestCreateValidationRendersErrors(t *testing.T) {
	repo := newFakeRepo()
	router, _ := newTestRouter(t, repo)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, postForm("/admin/properties", url.Values{"title": {""}, "status": {StatusSold}}))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Title is required")
	assert.Contains(t, body, "City is required")
	assert.Contains(t, body, "Type must be selected")
	assert.Empty(t, repo.created)
}

func TestCreateDuplicateSlug(t *testing.T) {
	repo := newFakeRepo()
	repo.err = httpx.ErrDuplicate
	router, _ := newTestRouter(t, repo)
	form := url.Values{"title": {"Garden Flat"}, "property_type_id": {"2"}, "status": {StatusDraft}, "city": {"Leeds"}}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, postForm("/admin/properties", form))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "Slug is already taken")
}

func TestEditFormNotFound(t *testing.T) {
	router, _ := newTestRouter(t, newFakeRepo())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/properties/44/edit", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestEditFormInvalidID(t *testing.T) {
	router, _ := newTestRouter(t, newFakeRepo())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/properties/abc/edit", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestToggleFeaturedHTMXRendersBadge(t *testing.T) {
	repo := newFakeRepo(Property{ID: 7, Title: "Dockside"})
	router, _ := newTestRouter(t, repo)
	req := postForm("/admin/properties/7/featured", url.Values{})
	req.Header.Set(httpx.HeaderHXRequest, "true")

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `id="featured-7"`)
	assert.Contains(t, body, "★ Featured")
	assert.NotContains(t, body, "<html")
}

func TestToggleFeaturedPlainPostReturnsToList(t *testing.T) {
	repo := newFakeRepo(Property{ID: 7, Title: "Dockside"})
	router, _ := newTestRouter(t, repo)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, postForm("/admin/properties/7/featured", url.Values{"return_to": {"/admin/properties?page=2"}}))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/properties?page=2", rr.Header().Get("Location"))
}
