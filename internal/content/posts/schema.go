package posts

import (
	"github.com/odyssey-erp/odyssey-cms/internal/content/listing"
	"github.com/odyssey-erp/odyssey-cms/internal/platform/db"
	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Table is the name of the posts table.
const Table = "posts"

// Filter keys.
const (
	FilterStatus   = "status"
	FilterCategory = "category"
	FilterFeatured = "is_featured"
)

// Schema declares the URL state of the posts table.
var Schema = tablestate.Schema{
	Name:           Table,
	DefaultSorting: tablestate.CreatedAtDesc(),
	SortColumns:    []string{"title", "category", "published_at", "created_at"},
	Filters: []tablestate.FilterDef{
		{Key: FilterStatus, Label: "Status", Kind: tablestate.KindEnum, Options: Statuses},
		{Key: FilterCategory, Label: "Category", Kind: tablestate.KindString},
		{Key: FilterFeatured, Label: "Featured", Kind: tablestate.KindBool},
		{Key: tablestate.DateRangeKey, Label: "Created", Kind: tablestate.KindDateRange},
	},
}.MustValidate()

var listSpec = db.ListSpec{
	From:   "posts",
	Select: "id, title, slug, category, status, is_featured, published_at, created_at, updated_at",
	Sorts: map[string]string{
		"title":        "title",
		"category":     "category",
		"published_at": "published_at",
		"created_at":   "created_at",
	},
	DefaultSort: "created_at",
	Filters: map[string]db.FilterColumn{
		FilterStatus:   {Column: "status"},
		FilterCategory: {Column: "category", Match: db.MatchFold},
		FilterFeatured: {Column: "is_featured"},
	},
	SearchColumns: []string{"title", "slug"},
	DateColumn:    "created_at",
}

var columns = []listing.Column{
	{ID: "title", Label: "Title", Sortable: true},
	{ID: "category", Label: "Category", Sortable: true},
	{ID: "status", Label: "Status"},
	{ID: "is_featured", Label: "Featured"},
	{ID: "published_at", Label: "Published", Sortable: true},
	{ID: "created_at", Label: "Created", Sortable: true},
}
