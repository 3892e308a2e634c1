package projects

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-cms/internal/content/listing"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-cms/internal/shared"
	"github.com/odyssey-erp/odyssey-cms/internal/view"
)

// BasePath is where the projects admin lives.
const BasePath = "/admin/projects"

// NewService wires the projects table service.
func NewService(source listing.Source[Project], listCache *cache.ListCache, warmer listing.Warmer, logger *slog.Logger) *listing.Service[Project] {
	return listing.NewService[Project](Schema, source, listCache, warmer, logger)
}

// Handler serves the projects admin pages.
type Handler struct {
	table *listing.Controller[Project]
}

// NewHandler wires the handler. metrics may be nil.
func NewHandler(logger *slog.Logger, service *listing.Service[Project], templates *view.Engine, csrf *shared.CSRFManager, metrics listing.Metrics) *Handler {
	return &Handler{table: &listing.Controller[Project]{
		Renderer:      listing.Renderer{Logger: logger, Templates: templates, CSRF: csrf, Title: "Projects"},
		Service:       service,
		View:          listing.ViewOptions{BasePath: BasePath, Columns: columns, Choices: yearChoices()},
		Handlers:      FilterHandlers,
		Metrics:       metrics,
		PageTemplate:  "projects/list",
		TableTemplate: "projects/table",
		Noun:          "project",
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

func yearChoices() map[string][]listing.Option {
	opts := []listing.Option{{Value: "0", Label: "All years"}}
	for y := time.Now().Year(); y >= 2015; y-- {
		v := strconv.Itoa(y)
		opts = append(opts, listing.Option{Value: v, Label: v})
	}
	return map[string][]listing.Option{FilterYear: opts}
}
