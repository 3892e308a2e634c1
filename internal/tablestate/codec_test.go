package tablestate

import (
	"fmt"
	"math/rand"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBool(t *testing.T) {
	q := url.Values{"a": {"true"}, "b": {"false"}, "c": {"TRUE"}, "d": {"1"}, "e": {""}}
	cases := []struct {
		key   string
		value bool
		ok    bool
	}{
		{"a", true, true},
		{"b", false, true},
		{"c", false, false},
		{"d", false, false},
		{"e", false, false},
		{"missing", false, false},
	}
	for _, tc := range cases {
		v, ok := ParseBool(q, tc.key)
		assert.Equal(t, tc.ok, ok, tc.key)
		assert.Equal(t, tc.value, v, tc.key)
	}
}

func TestParseIntRejectsGarbage(t *testing.T) {
	q := url.Values{"n": {"42"}, "neg": {"-3"}, "f": {"1.5"}, "x": {"abc"}, "mixed": {"12abc"}}
	n, ok := ParseInt(q, "n")
	assert.True(t, ok)
	assert.EqualValues(t, 42, n)
	n, ok = ParseInt(q, "neg")
	assert.True(t, ok)
	assert.EqualValues(t, -3, n)
	for _, key := range []string{"f", "x", "mixed", "missing"} {
		_, ok := ParseInt(q, key)
		assert.False(t, ok, key)
	}
}

func TestParseStringAndDateRange(t *testing.T) {
	q := url.Values{"s": {"  Jakarta "}, "blank": {"   "}, "date_from": {"2024-01-05"}, "date_to": {"05/01/2024"}}
	s, ok := ParseString(q, "s")
	assert.True(t, ok)
	assert.Equal(t, "Jakarta", s)
	_, ok = ParseString(q, "blank")
	assert.False(t, ok)

	r := ParseDateRange(q, "date")
	assert.Equal(t, DateRange{From: "2024-01-05"}, r)
	assert.True(t, ParseDateRange(url.Values{}, "date").IsZero())
}

func TestDecodeMalformedInputFallsBackToDefaults(t *testing.T) {
	schema := testSchema()
	q, err := url.ParseQuery("page=abc&size=-1&is_active=maybe&status=demolished&order_by=password&property_type=x1&unknown=1")
	require.NoError(t, err)

	var st State
	require.NotPanics(t, func() { st = Decode(schema, q) })
	assert.Equal(t, Pagination{PageIndex: 0, PageSize: 10}, st.Pagination)
	assert.Equal(t, CreatedAtDesc(), st.Sorting)
	assert.Empty(t, st.Filters)
	assert.Empty(t, st.Search)
}

func TestDecodeOversizedPageFallsBackToFirstPage(t *testing.T) {
	schema := testSchema()
	for _, raw := range []string{"1000000000000000000", "2147483648", "99999999999999999999"} {
		q := url.Values{ParamPage: {raw}, ParamSize: {"50"}}
		st := Decode(schema, q)
		assert.Zero(t, st.Pagination.PageIndex, raw)

		lq := ParseListQuery(schema, q)
		assert.Equal(t, 1, lq.Page, raw)
		assert.Zero(t, lq.Offset(), raw)
	}

	q := url.Values{ParamPage: {"2147483647"}, ParamSize: {"50"}}
	lq := ParseListQuery(schema, q)
	assert.Equal(t, MaxPage, lq.Page)
	assert.Positive(t, lq.Offset())
}

func TestDecodeScenarioPagination(t *testing.T) {
	q, _ := url.ParseQuery("page=3&size=20")
	st := Decode(testSchema(), q)
	assert.Equal(t, Pagination{PageIndex: 2, PageSize: 20}, st.Pagination)
}

func TestDecodeSizeOutsideAllowedSet(t *testing.T) {
	q, _ := url.ParseQuery("size=37&page=0")
	st := Decode(testSchema(), q)
	assert.Equal(t, Pagination{PageIndex: 0, PageSize: 10}, st.Pagination)
}

func TestEncodeOmitsDefaults(t *testing.T) {
	schema := testSchema()
	st := schema.Defaults()
	st.Sorting = nil
	st.Filters = map[string]Value{"is_active": nil, "city": Str(""), "date": DateRange{}}

	q := Encode(schema, st)
	for _, key := range []string{ParamPage, ParamSize, ParamOrderBy, ParamOrderDesc, ParamSearch, "is_active", "city", "date_from", "date_to"} {
		_, present := q[key]
		assert.False(t, present, "parameter %q should be omitted", key)
	}
	assert.Equal(t, "", q.Encode())

	// The default ordering is also implicit.
	assert.Equal(t, "", QueryString(schema, schema.Defaults()))
}

func TestEncodeWritesExplicitValues(t *testing.T) {
	schema := testSchema()
	st := schema.Defaults()
	st.Pagination = Pagination{PageIndex: 3, PageSize: 50}
	st.Sorting = []Sort{{ColumnID: "title", Desc: false}}
	st.Search = "villa"
	st.Filters = map[string]Value{
		"is_featured":   Bool(false),
		"property_type": Num(4),
		"status":        Str("sold"),
		"date":          DateRange{From: "2024-01-01", To: "2024-02-01"},
	}

	assert.Equal(t,
		"date_from=2024-01-01&date_to=2024-02-01&is_featured=false&order_by=title&order_desc=false&page=4&property_type=4&search=villa&size=50&status=sold",
		QueryString(schema, st))
}

func TestRoundTrip(t *testing.T) {
	schema := testSchema()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		st := randomState(rng, schema)
		got := Decode(schema, Encode(schema, st))
		want := st.normalize(schema)
		if len(want.Sorting) == 0 {
			// An empty ordering means the backend default.
			want.Sorting = schema.DefaultSorting
		}
		want.Selection = map[string]bool{}
		require.True(t, SameView(want, got), "iteration %d: %+v != %+v", i, want, got)
	}
}

func randomState(rng *rand.Rand, schema Schema) State {
	st := schema.Defaults()
	sizes := schema.PageSizeOptions()
	st.Pagination = Pagination{PageIndex: rng.Intn(40), PageSize: sizes[rng.Intn(len(sizes))]}
	switch rng.Intn(3) {
	case 0:
		st.Sorting = nil
	case 1:
		st.Sorting = []Sort{{ColumnID: schema.SortColumns[rng.Intn(len(schema.SortColumns))], Desc: rng.Intn(2) == 0}}
	}
	if rng.Intn(2) == 0 {
		st.Search = fmt.Sprintf("term %d&x=%d", rng.Intn(100), rng.Intn(5))
	}
	for _, f := range schema.Filters {
		if rng.Intn(2) == 0 {
			continue
		}
		switch f.Kind {
		case KindBool:
			st.Filters[f.Key] = Bool(rng.Intn(2) == 0)
		case KindNumber:
			st.Filters[f.Key] = Num(rng.Int63n(1000) - 500)
		case KindString:
			st.Filters[f.Key] = Str(fmt.Sprintf("city-%d", rng.Intn(50)))
		case KindEnum:
			st.Filters[f.Key] = Str(f.Options[rng.Intn(len(f.Options))])
		case KindDateRange:
			st.Filters[f.Key] = DateRange{From: fmt.Sprintf("2024-0%d-1%d", 1+rng.Intn(9), rng.Intn(10))}
		}
	}
	st.Selection = map[string]bool{"1": true}
	return st
}
