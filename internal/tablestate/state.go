package tablestate

import (
	"maps"
	"slices"
)

// Pagination addresses one page of a table. PageIndex is 0-based; the URL
// carries it 1-based.
type Pagination struct {
	PageIndex int `json:"page_index"`
	PageSize  int `json:"page_size"`
}

// Sort orders by one column. Position in State.Sorting is the priority.
type Sort struct {
	ColumnID string `json:"id"`
	Desc     bool   `json:"desc"`
}

// State is the complete view of one table instance.
type State struct {
	Pagination Pagination
	Sorting    []Sort
	Search     string
	Filters    map[string]Value
	Selection  map[string]bool
}

// Clone returns a deep copy so callers can mutate the result freely.
func (s State) Clone() State {
	out := State{
		Pagination: s.Pagination,
		Sorting:    slices.Clone(s.Sorting),
		Search:     s.Search,
		Filters:    maps.Clone(s.Filters),
		Selection:  maps.Clone(s.Selection),
	}
	if out.Filters == nil {
		out.Filters = map[string]Value{}
	}
	if out.Selection == nil {
		out.Selection = map[string]bool{}
	}
	return out
}

// Filter returns the applied value for key, or nil.
func (s State) Filter(key string) Value {
	v := s.Filters[key]
	if Absent(v) {
		return nil
	}
	return v
}

// SortFor reports the sort entry for column, if the table is ordered by it.
func (s State) SortFor(column string) (Sort, bool) {
	for _, sort := range s.Sorting {
		if sort.ColumnID == column {
			return sort, true
		}
	}
	return Sort{}, false
}

// Selected returns the selected row ids in a stable order.
func (s State) Selected() []string {
	ids := make([]string, 0, len(s.Selection))
	for id, on := range s.Selection {
		if on {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// SameView reports whether a and b show the same rows in the same order,
// ignoring row selection.
func SameView(a, b State) bool {
	if a.Pagination != b.Pagination || a.Search != b.Search {
		return false
	}
	if !slices.Equal(a.Sorting, b.Sorting) {
		return false
	}
	return sameFilters(a.Filters, b.Filters)
}

func sameFilters(a, b map[string]Value) bool {
	for k, v := range a {
		if !Equal(v, b[k]) {
			return false
		}
	}
	for k, v := range b {
		if !Equal(v, a[k]) {
			return false
		}
	}
	return true
}

// normalize enforces the structural invariants against schema.
func (s State) normalize(schema Schema) State {
	out := s.Clone()
	if out.Pagination.PageIndex < 0 || out.Pagination.PageIndex >= MaxPage {
		out.Pagination.PageIndex = 0
	}
	if !schema.allowsPageSize(out.Pagination.PageSize) {
		out.Pagination.PageSize = schema.defaultPageSize()
	}
	if !schema.MultiSort && len(out.Sorting) > 1 {
		out.Sorting = out.Sorting[:1]
	}
	for k, v := range out.Filters {
		if Absent(v) {
			delete(out.Filters, k)
		}
	}
	for id, on := range out.Selection {
		if !on {
			delete(out.Selection, id)
		}
	}
	return out
}
