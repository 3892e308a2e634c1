package tablestate

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query parameters owned by the table itself. Filters may not reuse them.
const (
	ParamPage      = "page"
	ParamSize      = "size"
	ParamSearch    = "search"
	ParamOrderBy   = "order_by"
	ParamOrderDesc = "order_desc"
)

// MaxPage is the largest page number a URL may carry. Larger values are
// treated as malformed so the row offset stays within range.
const MaxPage = math.MaxInt32

// DateRangeKey is the conventional key of the created-at range filter, giving
// the date_from and date_to parameters.
const DateRangeKey = "date"

func isReservedParam(name string) bool {
	switch name {
	case ParamPage, ParamSize, ParamSearch, ParamOrderBy, ParamOrderDesc:
		return true
	}
	return false
}

// ParseBool reads key as a strict "true"/"false" literal.
func ParseBool(q url.Values, key string) (bool, bool) {
	switch q.Get(key) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// ParseString reads key when present and not blank.
func ParseString(q url.Values, key string) (string, bool) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return "", false
	}
	return raw, true
}

// ParseInt reads key as a base-10 integer.
func ParseInt(q url.Values, key string) (int64, bool) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseDateRange reads <key>_from and <key>_to. Sides that are missing or not
// ISO dates are left empty.
func ParseDateRange(q url.Values, key string) DateRange {
	return DateRange{
		From: parseDate(q.Get(key + "_from")),
		To:   parseDate(q.Get(key + "_to")),
	}
}

func parseDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, err := time.Parse(time.DateOnly, raw); err == nil {
		return raw
	}
	if _, err := time.Parse(time.RFC3339, raw); err == nil {
		return raw
	}
	return ""
}

// Decode hydrates a State from query parameters. It never fails: malformed or
// unknown values fall back to the schema defaults.
func Decode(schema Schema, q url.Values) State {
	st := schema.Defaults()

	if page, ok := ParseInt(q, ParamPage); ok && page >= 1 && page <= MaxPage {
		st.Pagination.PageIndex = int(page - 1)
	}
	if size, ok := ParseInt(q, ParamSize); ok && schema.allowsPageSize(int(size)) {
		st.Pagination.PageSize = int(size)
	}
	if search, ok := ParseString(q, ParamSearch); ok {
		st.Search = search
	}
	if column, ok := ParseString(q, ParamOrderBy); ok && schema.sortable(column) {
		desc, _ := ParseBool(q, ParamOrderDesc)
		st.Sorting = []Sort{{ColumnID: column, Desc: desc}}
	}

	for _, f := range schema.Filters {
		if v := decodeFilter(f, q); v != nil {
			st.Filters[f.Key] = v
		}
	}
	return st.normalize(schema)
}

func decodeFilter(f FilterDef, q url.Values) Value {
	switch f.Kind {
	case KindBool:
		if b, ok := ParseBool(q, f.Key); ok {
			return Bool(b)
		}
	case KindNumber:
		if n, ok := ParseInt(q, f.Key); ok {
			return Num(n)
		}
	case KindString:
		if s, ok := ParseString(q, f.Key); ok {
			return Str(s)
		}
	case KindEnum:
		if s, ok := ParseString(q, f.Key); ok && f.allows(s) {
			return Str(s)
		}
	case KindDateRange:
		if r := ParseDateRange(q, f.Key); !r.IsZero() {
			return r
		}
	}
	return nil
}

// Encode serializes st into query parameters. Defaults are omitted so the URL
// stays minimal: first page, default page size, default or empty sorting, empty
// search and absent filters produce no parameter at all. Row selection is never
// part of the URL.
func Encode(schema Schema, st State) url.Values {
	st = st.normalize(schema)
	q := url.Values{}

	if st.Pagination.PageIndex > 0 {
		q.Set(ParamPage, strconv.Itoa(st.Pagination.PageIndex+1))
	}
	if st.Pagination.PageSize != schema.defaultPageSize() {
		q.Set(ParamSize, strconv.Itoa(st.Pagination.PageSize))
	}
	if st.Search != "" {
		q.Set(ParamSearch, st.Search)
	}
	if len(st.Sorting) > 0 && !sortingEqual(st.Sorting, schema.DefaultSorting) {
		q.Set(ParamOrderBy, st.Sorting[0].ColumnID)
		q.Set(ParamOrderDesc, strconv.FormatBool(st.Sorting[0].Desc))
	}

	for _, f := range schema.Filters {
		encodeFilter(q, f, st.Filter(f.Key))
	}
	return q
}

func encodeFilter(q url.Values, f FilterDef, v Value) {
	if Absent(v) {
		return
	}
	if r, ok := v.(DateRange); ok {
		if r.From != "" {
			q.Set(f.Key+"_from", r.From)
		}
		if r.To != "" {
			q.Set(f.Key+"_to", r.To)
		}
		return
	}
	q.Set(f.Key, Format(v))
}

func sortingEqual(a, b []Sort) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return a[0] == b[0]
}

// QueryString encodes st in canonical form: keys sorted, defaults omitted.
func QueryString(schema Schema, st State) string {
	return Encode(schema, st).Encode()
}
