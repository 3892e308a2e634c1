package listing

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-cms/internal/shared"
	"github.com/odyssey-erp/odyssey-cms/internal/view"
)

// FieldReturnTo carries the list URL a row action returns to.
const FieldReturnTo = "return_to"

// Renderer holds what every content handler needs to answer with HTML.
type Renderer struct {
	Logger    *slog.Logger
	Templates *view.Engine
	CSRF      *shared.CSRFManager
	Title     string
}

// Render executes template with the shared layout data.
func (rd Renderer) Render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	var csrfToken string
	var flash *shared.FlashMessage
	if sess != nil {
		csrfToken, _ = rd.CSRF.EnsureToken(r.Context(), sess)
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       rd.Title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := rd.Templates.RenderStatus(w, status, template, viewData); err != nil {
		rd.Logger.Error("render template", slog.Any("error", err), slog.String("template", template))
	}
}

// Flash queues a one-time message on the session.
func (rd Renderer) Flash(r *http.Request, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
}

// RedirectWithFlash queues a flash message and redirects with 303.
func (rd Renderer) RedirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	rd.Flash(r, kind, message)
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// ReturnPath reads the list URL a form posted back. Only locations below base
// are honoured so the field cannot redirect off-site.
func ReturnPath(r *http.Request, base string) string {
	raw := strings.TrimSpace(r.PostFormValue(FieldReturnTo))
	if raw == "" || strings.HasPrefix(raw, "//") {
		return base
	}
	if raw == base || strings.HasPrefix(raw, base+"?") || strings.HasPrefix(raw, base+"/") {
		return raw
	}
	return base
}
