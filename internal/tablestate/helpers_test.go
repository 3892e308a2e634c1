package tablestate

import (
	"errors"
	"net/url"
	"testing"
)

func testSchema() Schema {
	return Schema{
		Name:           "properties",
		DefaultSorting: CreatedAtDesc(),
		SortColumns:    []string{"created_at", "title", "price"},
		Filters: []FilterDef{
			{Key: "is_active", Kind: KindBool},
			{Key: "is_featured", Kind: KindBool},
			{Key: "property_type", Kind: KindNumber},
			{Key: "status", Kind: KindEnum, Options: []string{"available", "sold", "rented"}},
			{Key: "city", Kind: KindString},
			{Key: DateRangeKey, Kind: KindDateRange},
		},
	}.MustValidate()
}

type memNavigator struct {
	current  *url.URL
	replaces []string
	broken   bool
}

func newMemNavigator(t *testing.T, raw string) *memNavigator {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	return &memNavigator{current: u}
}

func (n *memNavigator) Location() (*url.URL, error) {
	if n.broken {
		return nil, ErrNoLocation
	}
	u := *n.current
	return &u, nil
}

func (n *memNavigator) Replace(u *url.URL) error {
	if n.broken {
		return errors.New("history unavailable")
	}
	next := *u
	n.current = &next
	n.replaces = append(n.replaces, u.String())
	return nil
}

// newTable wires a store, synchronizer and dispatcher the way list handlers do.
func newTable(t *testing.T, raw string) (*Store, *Dispatcher, *memNavigator) {
	t.Helper()
	nav := newMemNavigator(t, raw)
	schema := testSchema()
	store := NewStore(schema, Hydrate(schema, nav))
	NewSynchronizer(schema, nav).Bind(store)
	ClearSelectionOnViewChange(store)
	dispatcher := NewDispatcher(store, map[string]CustomHandler{
		"property_type": ZeroMeansAll("property_type"),
	})
	return store, dispatcher, nav
}
