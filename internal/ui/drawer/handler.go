package drawer

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-cms/internal/content/listing"
	"github.com/odyssey-erp/odyssey-cms/internal/content/properties"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-cms/internal/shared"
	"github.com/odyssey-erp/odyssey-cms/internal/view"
)

// PropertyLookup loads the property shown by the preview drawer.
type PropertyLookup interface {
	Get(ctx context.Context, id int64) (properties.Property, error)
}

// Handler opens and closes drawers for htmx requests.
type Handler struct {
	listing.Renderer
	properties PropertyLookup
}

// NewHandler wires the drawer endpoints.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, lookup PropertyLookup) *Handler {
	return &Handler{
		Renderer:   listing.Renderer{Logger: logger, Templates: templates, CSRF: csrf, Title: "Drawer"},
		properties: lookup,
	}
}

// MountRoutes attaches the drawer routes below /admin/ui/drawer.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Show)
	r.Post("/property-preview/{id}", h.OpenPropertyPreview)
	r.Post("/close", h.Close)
}

// Show renders whatever drawer the session has open.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	reg := ForSession(shared.SessionFromContext(r.Context()))
	st := reg.Current()
	if st.ID != PropertyPreview {
		h.Render(w, r, "drawer/closed", nil, http.StatusOK)
		return
	}
	props, err := Props[PreviewProps](st)
	if err != nil {
		reg.Close()
		h.Render(w, r, "drawer/closed", nil, http.StatusOK)
		return
	}
	h.renderPreview(w, r, props.PropertyID)
}

// OpenPropertyPreview opens the quick view of one property.
func (h *Handler) OpenPropertyPreview(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid property ID", http.StatusBadRequest)
		return
	}
	reg := ForSession(shared.SessionFromContext(r.Context()))
	if err := reg.Open(PropertyPreview, PreviewProps{PropertyID: id}); err != nil {
		h.Logger.Error("open drawer", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		return
	}
	h.renderPreview(w, r, id)
}

// Close closes the open drawer.
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	ForSession(shared.SessionFromContext(r.Context())).Close()
	h.Render(w, r, "drawer/closed", nil, http.StatusOK)
}

func (h *Handler) renderPreview(w http.ResponseWriter, r *http.Request, id int64) {
	p, err := h.properties.Get(r.Context(), id)
	if err != nil {
		ForSession(shared.SessionFromContext(r.Context())).Close()
		status := http.StatusInternalServerError
		if errors.Is(err, httpx.ErrNotFound) {
			status = http.StatusNotFound
		} else {
			h.Logger.Error("load property preview", slog.Any("error", err), slog.Int64("id", id))
		}
		h.Render(w, r, "drawer/closed", nil, status)
		return
	}
	h.Render(w, r, "drawer/property-preview", map[string]any{"Property": p}, http.StatusOK)
}
