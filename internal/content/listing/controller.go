package listing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Metrics receives table level counters.
type Metrics interface {
	ReplaceObserver
	StaleDiscarded(table string)
}

// Controller serves the list page, the htmx table partial, the JSON list and
// the delete actions of one table.
type Controller[T any] struct {
	Renderer
	Service       *Service[T]
	View          ViewOptions
	Handlers      map[string]tablestate.CustomHandler
	Metrics       Metrics
	PageTemplate  string
	TableTemplate string
	// Choices supplies select options that come from the data source, such as
	// a type filter backed by a lookup table.
	Choices func(ctx context.Context) map[string][]Option
	// Noun names one row in flash messages.
	Noun string
}

// Mount attaches the list routes below the table's base path.
func (c *Controller[T]) Mount(r chi.Router) {
	r.Get("/", c.List)
	r.Post("/table", c.Table)
	r.Post("/bulk-delete", c.BulkDelete)
	r.Post("/{id}/delete", c.Delete)
}

// MountAPI attaches the JSON list endpoint.
func (c *Controller[T]) MountAPI(r chi.Router) {
	r.Get("/", c.API)
}

// Open opens the table for r.
func (c *Controller[T]) Open(r *http.Request) *Table {
	opts := Options{Handlers: c.Handlers, Logger: c.Logger}
	if c.Metrics != nil {
		opts.Observer = c.Metrics
	}
	return Open(r, c.Service.Schema(), opts)
}

// List renders the full list page for the URL in the address bar.
func (c *Controller[T]) List(w http.ResponseWriter, r *http.Request) {
	t := c.Open(r)
	t.Canonicalize()
	if t.Commit(w, r) {
		return
	}
	page, err := c.Service.Load(r.Context(), ViewKey(r, c.Service.Table()), t.Query())
	if IsStale(err) {
		// A newer request from the same browser is already under way.
		c.staleDiscarded()
		page, err = c.Service.List(r.Context(), t.Query())
	}
	if err != nil {
		c.Logger.Error("list rows", slog.String("table", c.Service.Table()), slog.Any("error", err))
		c.Render(w, r, c.PageTemplate, c.data(r, t, tablestate.NewPage[T](nil, t.Query(), 0), err), http.StatusBadGateway)
		return
	}
	c.Render(w, r, c.PageTemplate, c.data(r, t, page, nil), http.StatusOK)
}

// Table applies one table action and answers with the table partial. The new
// state reaches the address bar through HX-Replace-Url.
func (c *Controller[T]) Table(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	t := c.Open(r)
	if err := t.Apply(r); err != nil {
		if !errors.Is(err, tablestate.ErrUnknownFilter) {
			c.Logger.Warn("apply table action", slog.String("table", c.Service.Table()), slog.Any("error", err))
		}
	}
	c.renderTable(w, r, t)
}

// BulkDelete deletes the selected rows, clears the selection and re-renders
// the table.
func (c *Controller[T]) BulkDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	t := c.Open(r)
	ids := SelectedIDs(t.Store.State())
	n, err := c.Service.DeleteMany(r.Context(), ids)
	switch {
	case errors.Is(err, httpx.ErrValidation):
		c.Flash(r, "error", "Select at least one "+c.Noun+" first")
	case err != nil:
		c.Logger.Error("bulk delete", slog.String("table", c.Service.Table()), slog.Any("error", err))
		c.Flash(r, "error", "Failed to delete the selected rows")
	default:
		t.ClearSelection()
		c.Flash(r, "success", fmt.Sprintf("Deleted %d %s(s)", n, c.Noun))
	}
	c.renderTable(w, r, t)
}

// Delete removes one row and returns to the list it was deleted from.
func (c *Controller[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid "+c.Noun+" ID", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	back := ReturnPath(r, c.View.BasePath)
	if err := c.Service.Delete(r.Context(), id); err != nil {
		c.Logger.Error("delete row", slog.String("table", c.Service.Table()), slog.Int64("id", id), slog.Any("error", err))
		c.RedirectWithFlash(w, r, back, "error", "Failed to delete "+c.Noun)
		return
	}
	c.RedirectWithFlash(w, r, back, "success", "Deleted "+c.Noun+" #"+strconv.FormatInt(id, 10))
}

// API answers the JSON list endpoint. It reads the exact parameter set a
// table sends: search, page, size, order_by, order_desc, filters, date_from
// and date_to.
func (c *Controller[T]) API(w http.ResponseWriter, r *http.Request) {
	q := tablestate.ParseListQuery(c.Service.Schema(), r.URL.Query())
	page, err := c.Service.List(r.Context(), q)
	if err != nil {
		c.Logger.Error("api list", slog.String("table", c.Service.Table()), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (c *Controller[T]) renderTable(w http.ResponseWriter, r *http.Request, t *Table) {
	page, err := c.Service.Load(r.Context(), ViewKey(r, c.Service.Table()), t.Query())
	if IsStale(err) {
		c.staleDiscarded()
		httpx.SkipSwap(w)
		return
	}
	if t.Commit(w, r) {
		return
	}
	if err != nil {
		c.Logger.Error("load table", slog.String("table", c.Service.Table()), slog.Any("error", err))
		page = tablestate.NewPage[T](nil, t.Query(), 0)
	}
	data := c.data(r, t, page, err)
	data["Partial"] = true
	c.Render(w, r, c.TableTemplate, data, http.StatusOK)
}

func (c *Controller[T]) data(r *http.Request, t *Table, page tablestate.Page[T], loadErr error) map[string]any {
	opts := c.View
	if c.Choices != nil {
		opts.Choices = c.Choices(r.Context())
	}
	data := map[string]any{
		"Table": NewView(t, opts, page),
		"Rows":  page.Rows,
	}
	if loadErr != nil {
		data["Error"] = "Could not load " + c.Noun + " list. Try again."
	}
	return data
}

func (c *Controller[T]) staleDiscarded() {
	if c.Metrics != nil {
		c.Metrics.StaleDiscarded(c.Service.Table())
	}
}
