package tablestate

import (
	"maps"
	"net/url"
	"strconv"
)

// Outbound-only parameters of the created-at range.
const (
	ParamDateFrom = DateRangeKey + "_from"
	ParamDateTo   = DateRangeKey + "_to"
)

// ListQuery is the parameter set a paginated list endpoint expects. Page is
// 1-based; OrderBy is always filled, falling back to the table default.
type ListQuery struct {
	Search    string
	Page      int
	Size      int
	OrderBy   string
	OrderDesc bool
	// Filters holds the column filters except the created-at range, which is
	// carried by DateFrom and DateTo.
	Filters  map[string]Value
	DateFrom string
	DateTo   string
}

// NewListQuery derives the outbound query for st.
func NewListQuery(schema Schema, st State) ListQuery {
	st = st.normalize(schema)
	q := ListQuery{
		Search:  st.Search,
		Page:    st.Pagination.PageIndex + 1,
		Size:    st.Pagination.PageSize,
		Filters: map[string]Value{},
	}
	sorting := st.Sorting
	if len(sorting) == 0 {
		sorting = schema.DefaultSorting
	}
	if len(sorting) > 0 {
		q.OrderBy = sorting[0].ColumnID
		q.OrderDesc = sorting[0].Desc
	}
	for k, v := range st.Filters {
		if r, ok := v.(DateRange); ok && k == DateRangeKey {
			q.DateFrom, q.DateTo = r.From, r.To
			continue
		}
		q.Filters[k] = v
	}
	return q
}

// ParseListQuery is the receiving side of Values: a list endpoint uses it to
// read the query sent by a table.
func ParseListQuery(schema Schema, q url.Values) ListQuery {
	return NewListQuery(schema, Decode(schema, q))
}

// Offset is the number of rows preceding the requested page.
func (q ListQuery) Offset() int {
	if q.Page < 1 || q.Size < 1 {
		return 0
	}
	return (q.Page - 1) * q.Size
}

// Filter returns the value of filter key, or nil.
func (q ListQuery) Filter(key string) Value {
	v := q.Filters[key]
	if Absent(v) {
		return nil
	}
	return v
}

// Values flattens the query into the exact parameter names list endpoints
// read: search, page, size, order_by, order_desc, each filter, date_from and
// date_to. Absent values are omitted.
func (q ListQuery) Values() url.Values {
	out := url.Values{}
	if q.Search != "" {
		out.Set(ParamSearch, q.Search)
	}
	if q.Page > 0 {
		out.Set(ParamPage, strconv.Itoa(q.Page))
	}
	if q.Size > 0 {
		out.Set(ParamSize, strconv.Itoa(q.Size))
	}
	if q.OrderBy != "" {
		out.Set(ParamOrderBy, q.OrderBy)
		out.Set(ParamOrderDesc, strconv.FormatBool(q.OrderDesc))
	}
	for k, v := range q.Filters {
		if Absent(v) {
			continue
		}
		if r, ok := v.(DateRange); ok {
			if r.From != "" {
				out.Set(k+"_from", r.From)
			}
			if r.To != "" {
				out.Set(k+"_to", r.To)
			}
			continue
		}
		out.Set(k, Format(v))
	}
	if q.DateFrom != "" {
		out.Set(ParamDateFrom, q.DateFrom)
	}
	if q.DateTo != "" {
		out.Set(ParamDateTo, q.DateTo)
	}
	return out
}

// Key identifies the query for caching and request collapsing.
func (q ListQuery) Key() string {
	return q.Values().Encode()
}

// WithPage returns a copy of q addressing page.
func (q ListQuery) WithPage(page int) ListQuery {
	out := q
	out.Filters = maps.Clone(q.Filters)
	out.Page = page
	return out
}
