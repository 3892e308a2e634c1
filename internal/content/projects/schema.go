package projects

import (
	"github.com/odyssey-erp/odyssey-cms/internal/content/listing"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/db"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Table is the name of the projects table.
const Table = "projects"

// Filter keys.
const (
	FilterActive = "is_active"
	FilterYear   = "year"
	FilterClient = "client"
)

// Schema declares the URL state of the projects table. Projects page by 20.
var Schema = tablestate.Schema{
	Name:            Table,
	PageSizes:       []int{20, 50, 100},
	DefaultPageSize: 20,
	DefaultSorting:  tablestate.CreatedAtDesc(),
	SortColumns:     []string{"title", "client", "year", "created_at"},
	Filters: []tablestate.FilterDef{
		{Key: FilterActive, Label: "Active", Kind: tablestate.KindBool},
		{Key: FilterYear, Label: "Year", Kind: tablestate.KindNumber},
		{Key: FilterClient, Label: "Client", Kind: tablestate.KindString},
	},
}.MustValidate()

// FilterHandlers clears the year filter when "all years" (0) is chosen.
var FilterHandlers = map[string]tablestate.CustomHandler{
	FilterYear: tablestate.ZeroMeansAll(FilterYear),
}

var listSpec = db.ListSpec{
	From:   "projects",
	Select: "id, title, client, year, is_active, created_at",
	Sorts: map[string]string{
		"title":      "title",
		"client":     "client",
		"year":       "year",
		"created_at": "created_at",
	},
	DefaultSort: "created_at",
	Filters: map[string]db.FilterColumn{
		FilterActive: {Column: "is_active"},
		FilterYear:   {Column: "year"},
		FilterClient: {Column: "client", Match: db.MatchFold},
	},
	SearchColumns: []string{"title", "client"},
}

var columns = []listing.Column{
	{ID: "title", Label: "Title", Sortable: true},
	{ID: "client", Label: "Client", Sortable: true},
	{ID: "year", Label: "Year", Sortable: true},
	{ID: "is_active", Label: "Active"},
	{ID: "created_at", Label: "Created", Sortable: true},
}
