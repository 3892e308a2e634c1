package properties

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-cms/internal/content/listing"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-cms/internal/shared"
	"github.com/odyssey-erp/odyssey-cms/internal/view"
)

// BasePath is where the properties admin lives.
const BasePath = "/admin/properties"

// Handler serves the properties admin pages.
type Handler struct {
	listing.Renderer
	service *Service
	table   *listing.Controller[Property]
}

// NewHandler wires the handler. metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager, metrics listing.Metrics) *Handler {
	renderer := listing.Renderer{Logger: logger, Templates: templates, CSRF: csrf, Title: "Properties"}
	h := &Handler{Renderer: renderer, service: service}
	h.table = &listing.Controller[Property]{
		Renderer:      renderer,
		Service:       service.Service,
		View:          listing.ViewOptions{BasePath: BasePath, Columns: columns},
		Handlers:      FilterHandlers,
		Metrics:       metrics,
		PageTemplate:  "properties/list",
		TableTemplate: "properties/table",
		Noun:          "property",
		Choices:       h.typeChoices,
	}
	return h
}

// Form renders the empty create form.
func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, 0, PropertyForm{Status: StatusDraft, IsActive: true}, nil, http.StatusOK)
}

// Create stores a new property.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseForm(r)
	created, err := h.service.Create(r.Context(), form)
	if err != nil {
		h.formFailed(w, r, 0, form, err)
		return
	}
	h.RedirectWithFlash(w, r, BasePath+"/"+strconv.FormatInt(created.ID, 10)+"/edit", "success", "Property created successfully")
}

// EditForm renders the edit form of one property.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.Logger.Error("get property failed", slog.Any("error", err), slog.Int64("id", id))
		h.notFound(w, err)
		return
	}
	h.renderForm(w, r, id, FormFromProperty(p), nil, http.StatusOK)
}

// Update overwrites one property.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := parseForm(r)
	if err := h.service.Update(r.Context(), id, form); err != nil {
		h.formFailed(w, r, id, form, err)
		return
	}
	h.RedirectWithFlash(w, r, BasePath, "success", "Property updated successfully")
}

// ToggleFeatured flips the featured flag. htmx requests get the refreshed
// badge; plain posts return to the list.
func (h *Handler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idParam(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	featured, err := h.service.ToggleFeatured(r.Context(), id)
	if err != nil {
		h.Logger.Error("toggle featured failed", slog.Any("error", err), slog.Int64("id", id))
		if httpx.IsHTMX(r) {
			h.notFound(w, err)
			return
		}
		h.RedirectWithFlash(w, r, listing.ReturnPath(r, BasePath), "error", "Failed to update property")
		return
	}
	if httpx.IsHTMX(r) {
		h.Render(w, r, "properties/featured", map[string]any{"ID": id, "IsFeatured": featured}, http.StatusOK)
		return
	}
	h.RedirectWithFlash(w, r, listing.ReturnPath(r, BasePath), "success", "Featured flag updated")
}

func (h *Handler) formFailed(w http.ResponseWriter, r *http.Request, id int64, form PropertyForm, err error) {
	var formErr *FormError
	switch {
	case errors.As(err, &formErr):
		h.renderForm(w, r, id, form, formErr.Fields, http.StatusUnprocessableEntity)
	case errors.Is(err, httpx.ErrDuplicate):
		h.renderForm(w, r, id, form, map[string]string{"slug": "is already taken"}, http.StatusConflict)
	case errors.Is(err, httpx.ErrNotFound):
		h.notFound(w, err)
	default:
		h.Logger.Error("save property failed", slog.Any("error", err), slog.Int64("id", id))
		h.renderForm(w, r, id, form, map[string]string{"general": "Could not save the property"}, http.StatusInternalServerError)
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, id int64, form PropertyForm, errs map[string]string, status int) {
	if errs == nil {
		errs = map[string]string{}
	}
	types, err := h.service.Types(r.Context())
	if err != nil {
		h.Logger.Warn("load property types", slog.Any("error", err))
	}
	h.Render(w, r, "properties/form", map[string]any{
		"ID":       id,
		"Form":     form,
		"Errors":   errs,
		"Types":    types,
		"Statuses": Statuses,
	}, status)
}

func (h *Handler) typeChoices(ctx context.Context) map[string][]listing.Option {
	types, err := h.service.Types(ctx)
	if err != nil {
		h.Logger.Warn("load property types", slog.Any("error", err))
		return nil
	}
	opts := make([]listing.Option, 0, len(types)+1)
	opts = append(opts, listing.Option{Value: "0", Label: "All types"})
	for _, t := range types {
		opts = append(opts, listing.Option{Value: strconv.FormatInt(t.ID, 10), Label: t.Name})
	}
	return map[string][]listing.Option{FilterType: opts}
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "Invalid property ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *Handler) notFound(w http.ResponseWriter, err error) {
	if errors.Is(err, httpx.ErrNotFound) {
		http.Error(w, "Property not found", http.StatusNotFound)
		return
	}
	http.Error(w, "Failed to load property", http.StatusInternalServerError)
}

func parseForm(r *http.Request) PropertyForm {
	typeID, _ := strconv.ParseInt(r.PostFormValue("property_type_id"), 10, 64)
	price, _ := strconv.ParseFloat(r.PostFormValue("price"), 64)
	bedrooms, _ := strconv.Atoi(r.PostFormValue("bedrooms"))
	bathrooms, _ := strconv.Atoi(r.PostFormValue("bathrooms"))
	return PropertyForm{
		Title:          r.PostFormValue("title"),
		Slug:           r.PostFormValue("slug"),
		PropertyTypeID: typeID,
		Status:         r.PostFormValue("status"),
		Price:          price,
		City:           r.PostFormValue("city"),
		State:          r.PostFormValue("state"),
		Bedrooms:       bedrooms,
		Bathrooms:      bathrooms,
		IsActive:       r.PostFormValue("is_active") == "on",
		IsFeatured:     r.PostFormValue("is_featured") == "on",
	}
}
