package listing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

func TestNewViewReflectsState(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/listings?page=2&size=20&order_by=price&order_desc=true&status=sold&is_active=true&date_from=2024-01-01", nil)
	tbl := Open(r, testSchema, Options{})
	page := tablestate.NewPage([]row{{ID: 1}}, tbl.Query(), 45)

	v := NewView(tbl, ViewOptions{
		BasePath: "/admin/listings",
		Columns: []Column{
			{ID: "title", Label: "Title", Sortable: true},
			{ID: "price", Label: "Price", Sortable: true},
			{ID: "city", Label: "City"},
		},
		Choices: map[string][]Option{
			"property_type": {{Value: "1", Label: "House"}, {Value: "2", Label: "Apartment"}},
		},
	}, page)

	assert.Equal(t, "listings", v.Table)
	assert.Equal(t, 2, v.Page)
	assert.Equal(t, 3, v.TotalPages)
	assert.True(t, v.HasPrev)
	assert.True(t, v.HasNext)
	assert.Equal(t, 20, v.Size)
	assert.Empty(t, v.Selection)

	require.Len(t, v.Columns, 3)
	assert.False(t, v.Columns[0].Sorted)
	assert.True(t, v.Columns[1].Sorted)
	assert.True(t, v.Columns[1].Desc)

	var selectedSize string
	for _, o := range v.PageSizes {
		if o.Selected {
			selectedSize = o.Value
		}
	}
	assert.Equal(t, "20", selectedSize)

	controls := map[string]FilterControl{}
	for _, fc := range v.Filters {
		controls[fc.Key] = fc
	}
	require.Len(t, controls, len(testSchema.Filters))

	active := controls["is_active"]
	assert.Equal(t, "bool", active.Kind)
	assert.Equal(t, "true", active.Value)
	assert.Equal(t, []Option{{Value: "true", Label: "Yes", Selected: true}, {Value: "false", Label: "No"}}, active.Options)

	status := controls["status"]
	assert.Equal(t, "enum", status.Kind)
	assert.Equal(t, []Option{{Value: "available", Label: "available"}, {Value: "sold", Label: "sold", Selected: true}}, status.Options)

	kind := controls["property_type"]
	assert.Equal(t, "number", kind.Kind)
	assert.Empty(t, kind.Value)
	assert.Len(t, kind.Options, 2)

	listed := controls[tablestate.DateRangeKey]
	assert.Equal(t, "date_range", listed.Kind)
	assert.Equal(t, "2024-01-01", listed.From)
	assert.Empty(t, listed.To)
}

func TestNewViewFallsBackToBasePath(t *testing.T) {
	tbl := &Table{Schema: testSchema, Store: tablestate.NewStore(testSchema, testSchema.Defaults())}
	v := NewView(tbl, ViewOptions{BasePath: "/admin/listings"}, tablestate.Page[row]{})
	assert.Equal(t, "/admin/listings", v.Location)
	assert.Equal(t, 0, v.SelectedCount)
}
