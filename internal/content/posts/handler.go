package posts

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-cms/internal/content/listing"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-cms/internal/shared"
	"github.com/odyssey-erp/odyssey-cms/internal/view"
)

// BasePath is where the posts admin lives.
const BasePath = "/admin/posts"

// NewService wires the posts table service.
func NewService(source listing.Source[Post], listCache *cache.ListCache, warmer listing.Warmer, logger *slog.Logger) *listing.Service[Post] {
	return listing.NewService[Post](Schema, source, listCache, warmer, logger)
}

// Handler serves the posts admin pages.
type Handler struct {
	table *listing.Controller[Post]
}

// NewHandler wires the handler. metrics may be nil.
func NewHandler(logger *slog.Logger, service *listing.Service[Post], templates *view.Engine, csrf *shared.CSRFManager, metrics listing.Metrics) *Handler {
	return &Handler{table: &listing.Controller[Post]{
		Renderer:      listing.Renderer{Logger: logger, Templates: templates, CSRF: csrf, Title: "Posts"},
		Service:       service,
		View:          listing.ViewOptions{BasePath: BasePath, Columns: columns},
		Metrics:       metrics,
		PageTemplate:  "posts/list",
		TableTemplate: "posts/table",
		Noun:          "post",
	}}
}

// MountRoutes attaches the admin routes below BasePath.
func (h *Handler) MountRoutes(r chi.Router) {
	h.table.Mount(r)
}

// MountAPI attaches the JSON list endpoint.
func (h *Handler) MountAPI(r chi.Router) {
	h.table.MountAPI(r)
}
