package tablestate

import (
	"maps"
	"slices"
	"strings"
)

// Updater either replaces a slice of state or derives it from the previous
// value. Use Set or Update to build one.
type Updater[T any] func(prev T) T

// Set returns an Updater that ignores the previous value.
func Set[T any](v T) Updater[T] {
	return func(T) T { return v }
}

// Update wraps a function of the previous value.
func Update[T any](fn func(prev T) T) Updater[T] {
	return fn
}

// Listener observes committed state transitions.
type Listener func(prev, next State)

// Store owns the state of one table instance. It is not safe for concurrent
// use; each request or page builds its own Store.
type Store struct {
	schema    Schema
	state     State
	listeners []Listener
}

// NewStore seeds a store with initial, normalized against schema.
func NewStore(schema Schema, initial State) *Store {
	return &Store{schema: schema, state: initial.normalize(schema)}
}

// Schema returns the table declaration the store enforces.
func (s *Store) Schema() Schema {
	return s.schema
}

// State returns a copy of the current state.
func (s *Store) State() State {
	return s.state.Clone()
}

// Subscribe registers fn to run after every committed change. Listeners run in
// registration order.
func (s *Store) Subscribe(fn Listener) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

// SetPagination updates paging. A page size change always lands on the first
// page.
func (s *Store) SetPagination(u Updater[Pagination]) {
	next := s.state.Clone()
	next.Pagination = u(s.state.Pagination)
	if next.Pagination.PageSize != s.state.Pagination.PageSize {
		next.Pagination.PageIndex = 0
	}
	s.commit(next)
}

// SetSorting updates ordering. An empty slice means the backend default.
func (s *Store) SetSorting(u Updater[[]Sort]) {
	next := s.state.Clone()
	next.Sorting = u(slices.Clone(s.state.Sorting))
	s.commit(next)
}

// SetClientFilters updates the filter map. Any effective change resets the
// page index to 0.
func (s *Store) SetClientFilters(u Updater[map[string]Value]) {
	next := s.state.Clone()
	next.Filters = u(maps.Clone(s.state.Filters))
	if next.Filters == nil {
		next.Filters = map[string]Value{}
	}
	if !sameFilters(next.Filters, s.state.Filters) {
		next.Pagination.PageIndex = 0
	}
	s.commit(next)
}

// SetSearch updates the free-text search, resetting the page index when the
// text changes.
func (s *Store) SetSearch(u Updater[string]) {
	next := s.state.Clone()
	next.Search = strings.TrimSpace(u(s.state.Search))
	if next.Search != s.state.Search {
		next.Pagination.PageIndex = 0
	}
	s.commit(next)
}

// SetRowSelection replaces the selection map.
func (s *Store) SetRowSelection(u Updater[map[string]bool]) {
	next := s.state.Clone()
	next.Selection = u(maps.Clone(s.state.Selection))
	s.commit(next)
}

// replace swaps the whole state. Used by the dispatcher after decoding an
// edited query.
func (s *Store) replace(next State) {
	s.commit(next)
}

func (s *Store) commit(next State) {
	next = next.normalize(s.schema)
	prev := s.state
	if SameView(prev, next) && maps.Equal(prev.Selection, next.Selection) {
		return
	}
	s.state = next
	for _, fn := range s.listeners {
		fn(prev.Clone(), next.Clone())
	}
}

// ClearSelectionOnViewChange drops the row selection whenever the visible rows
// change: paging, sorting, search or filters. Selection never survives a view
// change.
func ClearSelectionOnViewChange(store *Store) {
	store.Subscribe(func(prev, next State) {
		if SameView(prev, next) || len(next.Selection) == 0 {
			return
		}
		store.SetRowSelection(Set(map[string]bool{}))
	})
}
