package tablestate

import (
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
)

// Default table settings shared by every admin list.
const (
	DefaultPageSize   = 10
	DefaultSortColumn = "created_at"
)

// DefaultPageSizes lists the page sizes offered by the page-size selector.
var DefaultPageSizes = []int{10, 20, 50}

// FilterDef declares one column filter of a table.
type FilterDef struct {
	Key     string   `validate:"required,excludesall=&?#"`
	Label   string
	Kind    Kind     `validate:"min=1,max=5"`
	Options []string `validate:"required_if=Kind 4"`
}

// Schema describes a table: paging limits, default ordering and the filters it
// accepts. Parameters not declared here are ignored when decoding a URL.
type Schema struct {
	Name            string `validate:"required"`
	PageSizes       []int  `validate:"dive,gt=0"`
	DefaultPageSize int    `validate:"gte=0"`
	DefaultSorting  []Sort
	SortColumns     []string
	MultiSort       bool
	Filters         []FilterDef `validate:"dive"`
}

var schemaValidator = validator.New()

// Validate checks the declaration for mistakes that would make URLs ambiguous.
func (s Schema) Validate() error {
	if err := schemaValidator.Struct(s); err != nil {
		return fmt.Errorf("tablestate: schema %q: %w", s.Name, err)
	}
	seen := make(map[string]struct{}, len(s.Filters))
	for _, f := range s.Filters {
		for _, param := range f.params() {
			if isReservedParam(param) {
				return fmt.Errorf("tablestate: schema %q: filter %q collides with reserved parameter %q", s.Name, f.Key, param)
			}
			if _, dup := seen[param]; dup {
				return fmt.Errorf("tablestate: schema %q: duplicate filter parameter %q", s.Name, param)
			}
			seen[param] = struct{}{}
		}
	}
	if size := s.DefaultPageSize; size > 0 && len(s.PageSizes) > 0 && !slices.Contains(s.PageSizes, size) {
		return fmt.Errorf("tablestate: schema %q: default page size %d not in %v", s.Name, size, s.PageSizes)
	}
	return nil
}

// MustValidate panics when the schema is invalid. Intended for package-level
// schema declarations.
func (s Schema) MustValidate() Schema {
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

// Filter returns the declaration for key.
func (s Schema) Filter(key string) (FilterDef, bool) {
	for _, f := range s.Filters {
		if f.Key == key {
			return f, true
		}
	}
	return FilterDef{}, false
}

func (s Schema) pageSizes() []int {
	if len(s.PageSizes) == 0 {
		return DefaultPageSizes
	}
	return s.PageSizes
}

func (s Schema) defaultPageSize() int {
	if s.DefaultPageSize > 0 {
		return s.DefaultPageSize
	}
	sizes := s.pageSizes()
	if slices.Contains(sizes, DefaultPageSize) {
		return DefaultPageSize
	}
	return sizes[0]
}

func (s Schema) allowsPageSize(size int) bool {
	return slices.Contains(s.pageSizes(), size)
}

func (s Schema) sortable(column string) bool {
	if column == "" {
		return false
	}
	if len(s.SortColumns) == 0 {
		return true
	}
	return slices.Contains(s.SortColumns, column)
}

// Defaults returns the state used when no URL is available.
func (s Schema) Defaults() State {
	return State{
		Pagination: Pagination{PageIndex: 0, PageSize: s.defaultPageSize()},
		Sorting:    slices.Clone(s.DefaultSorting),
		Filters:    map[string]Value{},
		Selection:  map[string]bool{},
	}
}

// PageSizeOptions exposes the allowed page sizes for rendering.
func (s Schema) PageSizeOptions() []int {
	return slices.Clone(s.pageSizes())
}

// CreatedAtDesc is the ordering most tables start with.
func CreatedAtDesc() []Sort {
	return []Sort{{ColumnID: DefaultSortColumn, Desc: true}}
}

func (f FilterDef) params() []string {
	if f.Kind == KindDateRange {
		return []string{f.Key + "_from", f.Key + "_to"}
	}
	return []string{f.Key}
}

func (f FilterDef) allows(option string) bool {
	return f.Kind != KindEnum || slices.Contains(f.Options, option)
}
