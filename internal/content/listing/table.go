// Package listing wires tablestate into admin list pages: it opens a table
// for a request, applies table actions posted by htmx and builds the view
// model the list templates render.
package listing

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/odyssey-erp/odyssey-cms/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-cms/internal/shared"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Form fields posted by the table controls.
const (
	FieldOp       = "op"
	FieldPage     = "page"
	FieldSize     = "size"
	FieldColumn   = "column"
	FieldField    = "field"
	FieldValue    = "value"
	FieldFrom     = "from"
	FieldTo       = "to"
	FieldSearch   = "search"
	FieldSelected = "selected"
	FieldRow      = "row"
)

// Table actions.
const (
	OpPage       = "page"
	OpSize       = "size"
	OpSort       = "sort"
	OpFilter     = "filter"
	OpSearch     = "search"
	OpSelect     = "select"
	OpSelectAll  = "select-all"
	OpSelectNone = "select-none"
	OpReset      = "reset"
)

// ReplaceObserver is told about every replace navigation of a table.
type ReplaceObserver interface {
	TableReplaced(table string)
}

// Options configure how a table is opened.
type Options struct {
	Handlers map[string]tablestate.CustomHandler
	Logger   *slog.Logger
	Observer ReplaceObserver
}

// Table is the per-request view of one admin table.
type Table struct {
	Schema     tablestate.Schema
	Store      *tablestate.Store
	Dispatcher *tablestate.Dispatcher
	Navigator  *httpx.Navigator
	sync       *tablestate.Synchronizer
}

// Open hydrates the table from the page URL behind r and binds URL sync and
// the selection policy. Row selection is read from the posted "selected"
// checkboxes, since it never lives in the URL.
func Open(r *http.Request, schema tablestate.Schema, opts Options) *Table {
	nav := httpx.NewNavigator(r)
	initial := tablestate.Hydrate(schema, nav)
	if r.Method == http.MethodPost {
		initial.Selection = selectionFromForm(r)
	}
	store := tablestate.NewStore(schema, initial)

	syncOpts := []tablestate.SyncOption{}
	if opts.Logger != nil {
		syncOpts = append(syncOpts, tablestate.WithLogger(opts.Logger))
	}
	if opts.Observer != nil {
		name := schema.Name
		syncOpts = append(syncOpts, tablestate.WithReplaceHook(func(*url.URL) {
			opts.Observer.TableReplaced(name)
		}))
	}
	sync := tablestate.NewSynchronizer(schema, nav, syncOpts...)
	sync.Bind(store)
	tablestate.ClearSelectionOnViewChange(store)

	return &Table{
		Schema:     schema,
		Store:      store,
		Dispatcher: tablestate.NewDispatcher(store, opts.Handlers),
		Navigator:  nav,
		sync:       sync,
	}
}

// Canonicalize replaces a URL that carries malformed or default parameters
// with the canonical form of the hydrated state.
func (t *Table) Canonicalize() {
	t.sync.Sync(t.Store.State())
}

// Apply performs the action posted in r. Unknown actions and unknown filters
// are ignored; the table keeps rendering its current state.
func (t *Table) Apply(r *http.Request) error {
	switch r.PostFormValue(FieldOp) {
	case OpPage:
		page, err := strconv.Atoi(r.PostFormValue(FieldPage))
		if err != nil || page < 1 || page > tablestate.MaxPage {
			return nil
		}
		t.Store.SetPagination(tablestate.Update(func(p tablestate.Pagination) tablestate.Pagination {
			p.PageIndex = page - 1
			return p
		}))
	case OpSize:
		size, err := strconv.Atoi(r.PostFormValue(FieldSize))
		if err != nil {
			return nil
		}
		t.Store.SetPagination(tablestate.Update(func(p tablestate.Pagination) tablestate.Pagination {
			p.PageSize = size
			return p
		}))
	case OpSort:
		t.toggleSort(r.PostFormValue(FieldColumn))
	case OpFilter:
		return t.Dispatcher.HandleFilterChange(r.PostFormValue(FieldField), filterValue(t.Schema, r))
	case OpSearch:
		return t.Dispatcher.HandleFilterChange(tablestate.SearchToken, r.PostFormValue(FieldSearch))
	case OpSelect:
		// The posted checkboxes already are the new selection.
	case OpSelectAll:
		rows := r.PostForm[FieldRow]
		t.Store.SetRowSelection(tablestate.Update(func(prev map[string]bool) map[string]bool {
			if prev == nil {
				prev = map[string]bool{}
			}
			for _, id := range rows {
				prev[id] = true
			}
			return prev
		}))
	case OpSelectNone:
		t.ClearSelection()
	case OpReset:
		t.Dispatcher.Reset()
	}
	return nil
}

// ClearSelection drops every selected row.
func (t *Table) ClearSelection() {
	t.Store.SetRowSelection(tablestate.Set(map[string]bool{}))
}

// Query is the outbound list query for the current state.
func (t *Table) Query() tablestate.ListQuery {
	return tablestate.NewListQuery(t.Schema, t.Store.State())
}

// Commit forwards a pending replace navigation to the browser. It returns true
// when the response has been completed by a redirect.
func (t *Table) Commit(w http.ResponseWriter, r *http.Request) bool {
	return t.Navigator.Commit(w, r)
}

// Location is the page URL the table currently represents.
func (t *Table) Location() string {
	loc, err := t.Navigator.Location()
	if err != nil {
		return ""
	}
	return loc.String()
}

// toggleSort cycles a column through ascending, descending and the default
// ordering. A step that would leave the effective ordering unchanged moves on
// to the next one, so the default sort column can still be reversed.
func (t *Table) toggleSort(column string) {
	if column == "" {
		return
	}
	t.Store.SetSorting(tablestate.Update(func(prev []tablestate.Sort) []tablestate.Sort {
		current := t.effectiveSorting(prev)
		for _, s := range current {
			if s.ColumnID != column {
				continue
			}
			next := []tablestate.Sort{}
			if !s.Desc {
				next = []tablestate.Sort{{ColumnID: column, Desc: true}}
			}
			if slices.Equal(t.effectiveSorting(next), current) {
				return []tablestate.Sort{{ColumnID: column, Desc: !s.Desc}}
			}
			return next
		}
		return []tablestate.Sort{{ColumnID: column}}
	}))
}

func (t *Table) effectiveSorting(sorting []tablestate.Sort) []tablestate.Sort {
	if len(sorting) == 0 {
		return t.Schema.DefaultSorting
	}
	return sorting
}

func filterValue(schema tablestate.Schema, r *http.Request) any {
	field := r.PostFormValue(FieldField)
	def, ok := schema.Filter(field)
	if ok && def.Kind == tablestate.KindDateRange {
		return tablestate.DateRange{From: r.PostFormValue(FieldFrom), To: r.PostFormValue(FieldTo)}
	}
	raw := strings.TrimSpace(r.PostFormValue(FieldValue))
	if raw == "" {
		return nil
	}
	return raw
}

func selectionFromForm(r *http.Request) map[string]bool {
	selection := map[string]bool{}
	for _, id := range r.PostForm[FieldSelected] {
		if id = strings.TrimSpace(id); id != "" {
			selection[id] = true
		}
	}
	return selection
}

// SelectedIDs parses the selected row ids as database ids.
func SelectedIDs(st tablestate.State) []int64 {
	ids := make([]int64, 0, len(st.Selection))
	for _, raw := range st.Selected() {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// ViewKey identifies one browser's view of table for stale response checks.
// Requests without a session share no key and are never considered stale.
func ViewKey(r *http.Request, table string) string {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.ID == "" {
		return ""
	}
	return sess.ID + ":" + table
}
