package listing

import (
	"strconv"

	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Column is one header cell of a list table.
type Column struct {
	ID       string
	Label    string
	Sortable bool
	Sorted   bool
	Desc     bool
}

// Option is one choice of a select control.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// FilterControl is the rendered state of one column filter.
type FilterControl struct {
	Key     string
	Label   string
	Kind    string
	Value   string
	From    string
	To      string
	Options []Option
}

// View is the template model of a table: headers, filter controls, paging and
// selection, everything except the rows themselves.
type View struct {
	Table         string
	BasePath      string
	Location      string
	Search        string
	Columns       []Column
	Filters       []FilterControl
	PageSizes     []Option
	Size          int
	Page          int
	TotalPages    int
	Total         int
	HasPrev       bool
	HasNext       bool
	Selection     map[string]bool
	SelectedCount int
}

// ViewOptions carry the presentation details a schema does not know about.
type ViewOptions struct {
	BasePath string
	Columns  []Column
	// Choices lists the options of number filters rendered as selects.
	Choices map[string][]Option
}

// NewView builds the table model for the current state of t and the loaded page.
func NewView[T any](t *Table, opts ViewOptions, page tablestate.Page[T]) View {
	st := t.Store.State()
	v := View{
		Table:         t.Schema.Name,
		BasePath:      opts.BasePath,
		Location:      t.Location(),
		Search:        st.Search,
		Size:          st.Pagination.PageSize,
		Page:          page.Page,
		TotalPages:    page.TotalPages,
		Total:         page.Total,
		HasPrev:       page.HasPrev(),
		HasNext:       page.HasNext(),
		Selection:     st.Selection,
		SelectedCount: len(st.Selection),
	}
	if v.Location == "" {
		v.Location = opts.BasePath
	}
	if v.Selection == nil {
		v.Selection = map[string]bool{}
	}

	for _, col := range opts.Columns {
		if s, ok := st.SortFor(col.ID); ok && col.Sortable {
			col.Sorted = true
			col.Desc = s.Desc
		}
		v.Columns = append(v.Columns, col)
	}

	for _, size := range t.Schema.PageSizeOptions() {
		raw := strconv.Itoa(size)
		v.PageSizes = append(v.PageSizes, Option{Value: raw, Label: raw, Selected: size == st.Pagination.PageSize})
	}

	for _, def := range t.Schema.Filters {
		v.Filters = append(v.Filters, filterControl(def, st.Filter(def.Key), opts.Choices[def.Key]))
	}
	return v
}

func filterControl(def tablestate.FilterDef, current tablestate.Value, choices []Option) FilterControl {
	fc := FilterControl{Key: def.Key, Label: def.Label, Kind: def.Kind.String()}
	if r, ok := current.(tablestate.DateRange); ok {
		fc.From, fc.To = r.From, r.To
		return fc
	}
	if current != nil {
		fc.Value = tablestate.Format(current)
	}
	switch def.Kind {
	case tablestate.KindBool:
		choices = []Option{{Value: "true", Label: "Yes"}, {Value: "false", Label: "No"}}
	case tablestate.KindEnum:
		choices = make([]Option, 0, len(def.Options))
		for _, o := range def.Options {
			choices = append(choices, Option{Value: o, Label: o})
		}
	}
	if len(choices) > 0 {
		fc.Options = make([]Option, 0, len(choices))
		for _, o := range choices {
			o.Selected = o.Value == fc.Value
			fc.Options = append(fc.Options, o)
		}
	}
	return fc
}
