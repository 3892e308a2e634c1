package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// htmx request and response headers.
const (
	HeaderHXRequest    = "HX-Request"
	HeaderHXCurrentURL = "HX-Current-URL"
	HeaderHXReplaceURL = "HX-Replace-Url"
	HeaderHXReswap     = "HX-Reswap"
	HeaderHXTrigger    = "HX-Trigger"
)

var errNoLocation = errors.New("httpx: request has no location")

// IsHTMX reports whether r was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get(HeaderHXRequest) == "true"
}

// Navigator exposes the browser address bar of the page that issued a request.
// For htmx requests that is the HX-Current-URL header; otherwise it is the
// request URL itself. Only the path and query are kept.
type Navigator struct {
	htmx     bool
	current  *url.URL
	replaced *url.URL
}

// NewNavigator reads the current location from r.
func NewNavigator(r *http.Request) *Navigator {
	nav := &Navigator{htmx: IsHTMX(r)}
	if nav.htmx {
		if raw := strings.TrimSpace(r.Header.Get(HeaderHXCurrentURL)); raw != "" {
			if u, err := url.Parse(raw); err == nil {
				nav.current = &url.URL{Path: u.Path, RawQuery: u.RawQuery}
			}
		}
	}
	if nav.current == nil && r.URL != nil {
		nav.current = &url.URL{Path: r.URL.Path, RawQuery: r.URL.RawQuery}
	}
	return nav
}

// Location implements tablestate.Navigator.
func (n *Navigator) Location() (*url.URL, error) {
	if n == nil || n.current == nil {
		return nil, errNoLocation
	}
	u := *n.current
	return &u, nil
}

// Replace implements tablestate.Navigator. The navigation is recorded and sent
// to the browser by Commit.
func (n *Navigator) Replace(u *url.URL) error {
	if n == nil || u == nil {
		return errNoLocation
	}
	next := *u
	n.current = &next
	n.replaced = &next
	return nil
}

// Replaced returns the URL the browser must switch to, if any.
func (n *Navigator) Replaced() (*url.URL, bool) {
	if n == nil || n.replaced == nil {
		return nil, false
	}
	u := *n.replaced
	return &u, true
}

// Commit tells the browser about a pending replace navigation. htmx swaps the
// address bar through HX-Replace-Url. A plain GET is redirected to the
// canonical URL, which browsers follow without adding a history entry; Commit
// then returns true and the caller must stop writing.
func (n *Navigator) Commit(w http.ResponseWriter, r *http.Request) bool {
	target, ok := n.Replaced()
	if !ok {
		return false
	}
	if n.htmx {
		w.Header().Set(HeaderHXReplaceURL, target.String())
		return false
	}
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		http.Redirect(w, r, target.String(), http.StatusSeeOther)
		return true
	}
	return false
}

// SkipSwap tells htmx to keep the current content.
func SkipSwap(w http.ResponseWriter) {
	w.Header().Set(HeaderHXReswap, "none")
	w.WriteHeader(http.StatusNoContent)
}
