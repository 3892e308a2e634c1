package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNavigatorReadsRequestURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/properties?page=2", nil)
	nav := NewNavigator(req)
	loc, err := nav.Location()
	require.NoError(t, err)
	assert.Equal(t, "/admin/properties?page=2", loc.String())
}

func TestNavigatorPrefersHTMXCurrentURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/admin/properties/table", nil)
	req.Header.Set(HeaderHXRequest, "true")
	req.Header.Set(HeaderHXCurrentURL, "https://cms.example.com/admin/properties?size=20#top")
	nav := NewNavigator(req)
	loc, err := nav.Location()
	require.NoError(t, err)
	assert.Equal(t, "/admin/properties?size=20", loc.String())
}

func TestCommitSetsReplaceHeaderForHTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/admin/properties/table", nil)
	req.Header.Set(HeaderHXRequest, "true")
	req.Header.Set(HeaderHXCurrentURL, "http://localhost/admin/properties")
	nav := NewNavigator(req)
	require.NoError(t, nav.Replace(&url.URL{Path: "/admin/properties", RawQuery: "page=2"}))

	rr := httptest.NewRecorder()
	assert.False(t, nav.Commit(rr, req))
	assert.Equal(t, "/admin/properties?page=2", rr.Header().Get(HeaderHXReplaceURL))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCommitRedirectsPlainGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/properties?size=20&page=1", nil)
	nav := NewNavigator(req)
	require.NoError(t, nav.Replace(&url.URL{Path: "/admin/properties", RawQuery: "size=20"}))

	rr := httptest.NewRecorder()
	assert.True(t, nav.Commit(rr, req))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/admin/properties?size=20", rr.Header().Get("Location"))
}

func TestCommitWithoutReplaceDoesNothing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/properties", nil)
	nav := NewNavigator(req)
	rr := httptest.NewRecorder()
	assert.False(t, nav.Commit(rr, req))
	assert.Empty(t, rr.Header().Get(HeaderHXReplaceURL))
}
