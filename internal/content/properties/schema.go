package properties

import (
	"github.com/odyssey-erp/odyssey-cms/internal/content/listing"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/db"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Table is the name of the properties table.
const Table = "properties"

// Filter keys.
const (
	FilterActive   = "is_active"
	FilterFeatured = "is_featured"
	FilterType     = "property_type"
	FilterStatus   = "status"
	FilterCity     = "city"
	FilterState    = "state"
)

// Schema declares the URL state of the properties table.
var Schema = tablestate.Schema{
	Name:           Table,
	DefaultSorting: tablestate.CreatedAtDesc(),
	SortColumns:    []string{"title", "price", "created_at", "city"},
	Filters: []tablestate.FilterDef{
		{Key: FilterActive, Label: "Active", Kind: tablestate.KindBool},
		{Key: FilterFeatured, Label: "Featured", Kind: tablestate.KindBool},
		{Key: FilterType, Label: "Type", Kind: tablestate.KindNumber},
		{Key: FilterStatus, Label: "Status", Kind: tablestate.KindEnum, Options: Statuses},
		{Key: FilterCity, Label: "City", Kind: tablestate.KindString},
		{Key: FilterState, Label: "State", Kind: tablestate.KindString},
		{Key: tablestate.DateRangeKey, Label: "Listed", Kind: tablestate.KindDateRange},
	},
}.MustValidate()

// FilterHandlers holds the filters with custom change handling. Property type
// 0 is the "all types" choice and clears the filter.
var FilterHandlers = map[string]tablestate.CustomHandler{
	FilterType: tablestate.ZeroMeansAll(FilterType),
}

var listSpec = db.ListSpec{
	From:   "properties",
	Select: "id, title, slug, property_type_id, status, price, city, state, bedrooms, bathrooms, is_active, is_featured, created_at, updated_at",
	Sorts: map[string]string{
		"title":      "title",
		"price":      "price",
		"created_at": "created_at",
		"city":       "city",
	},
	DefaultSort: "created_at",
	Filters: map[string]db.FilterColumn{
		FilterActive:   {Column: "is_active"},
		FilterFeatured: {Column: "is_featured"},
		FilterType:     {Column: "property_type_id"},
		FilterStatus:   {Column: "status"},
		FilterCity:     {Column: "city", Match: db.MatchFold},
		FilterState:    {Column: "state", Match: db.MatchFold},
	},
	SearchColumns: []string{"title", "city", "slug"},
	DateColumn:    "created_at",
}

var columns = []listing.Column{
	{ID: "title", Label: "Title", Sortable: true},
	{ID: "property_type", Label: "Type"},
	{ID: "status", Label: "Status"},
	{ID: "price", Label: "Price", Sortable: true},
	{ID: "city", Label: "City", Sortable: true},
	{ID: "is_featured", Label: "Featured"},
	{ID: "created_at", Label: "Listed", Sortable: true},
}
