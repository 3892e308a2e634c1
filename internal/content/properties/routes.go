package properties

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the admin routes below BasePath.
func (h *Handler) MountRoutes(r chi.Router) {
	h.table.Mount(r)
	r.Get("/new", h.Form)
	r.Post("/", h.Create)
	r.Get("/{id}/edit", h.EditForm)
	r.Post("/{id}/edit", h.Update)
	r.Post("/{id}/featured", h.ToggleFeatured)
}

// MountAPI attaches the JSON list endpoint.
func (h *Handler) MountAPI(r chi.Router) {
	h.table.MountAPI(r)
}
