package tablestate

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// SearchToken addresses the free-text search instead of a column filter.
const SearchToken = "search"

// ErrUnknownFilter reports a filter id the table does not declare.
var ErrUnknownFilter = errors.New("tablestate: unknown filter")

// CommitFunc applies an edit to a copy of the table's query parameters and
// stores the result.
type CommitFunc func(edit func(q url.Values))

// CustomHandler implements a filter whose value needs bespoke treatment before
// it reaches the URL.
type CustomHandler func(raw any, commit CommitFunc)

// Dispatcher applies single filter changes so that every change resets the
// page and leaves state and URL in agreement.
type Dispatcher struct {
	store    *Store
	handlers map[string]CustomHandler
}

// NewDispatcher builds a dispatcher over store. handlers may be nil.
func NewDispatcher(store *Store, handlers map[string]CustomHandler) *Dispatcher {
	return &Dispatcher{store: store, handlers: handlers}
}

// HandleFilterChange sets filter id to raw. raw may be a Value, a DateRange, a
// bool, an integer, a float, a string or nil (clear).
func (d *Dispatcher) HandleFilterChange(id string, raw any) error {
	if id == SearchToken {
		text, _ := raw.(string)
		if v, ok := raw.(Str); ok {
			text = string(v)
		}
		next := d.store.State()
		next.Search = strings.TrimSpace(text)
		next.Pagination.PageIndex = 0
		d.store.replace(next)
		return nil
	}

	if h, ok := d.handlers[id]; ok {
		h(raw, d.commit)
		return nil
	}

	def, ok := d.store.Schema().Filter(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, id)
	}
	value := Coerce(def, raw)
	next := d.store.State()
	if Absent(value) {
		delete(next.Filters, id)
	} else {
		next.Filters[id] = value
	}
	next.Pagination.PageIndex = 0
	d.store.replace(next)
	return nil
}

// Reset clears search and every filter, returning to the first page.
func (d *Dispatcher) Reset() {
	next := d.store.State()
	next.Search = ""
	next.Filters = map[string]Value{}
	next.Pagination.PageIndex = 0
	d.store.replace(next)
}

func (d *Dispatcher) commit(edit func(q url.Values)) {
	schema := d.store.Schema()
	current := d.store.State()
	q := Encode(schema, current)
	edit(q)
	q.Del(ParamPage)
	next := Decode(schema, q)
	next.Selection = current.Selection
	next.Pagination.PageIndex = 0
	d.store.replace(next)
}

// Coerce converts raw into the value type declared by def. Values that cannot
// be represented come back nil, meaning "clear the filter".
func Coerce(def FilterDef, raw any) Value {
	if v, ok := raw.(Value); ok && v != nil {
		raw = unwrap(v)
	}
	switch def.Kind {
	case KindBool:
		switch v := raw.(type) {
		case bool:
			return Bool(v)
		case string:
			switch strings.TrimSpace(v) {
			case "true":
				return Bool(true)
			case "false":
				return Bool(false)
			}
		}
	case KindNumber:
		if n, ok := toInt(raw); ok {
			return Num(n)
		}
	case KindString, KindEnum:
		var s string
		switch v := raw.(type) {
		case string:
			s = strings.TrimSpace(v)
		case int, int64, float64:
			if n, ok := toInt(v); ok {
				s = strconv.FormatInt(n, 10)
			}
		case bool:
			s = strconv.FormatBool(v)
		}
		if s != "" && def.allows(s) {
			return Str(s)
		}
	case KindDateRange:
		switch v := raw.(type) {
		case DateRange:
			r := DateRange{From: parseDate(v.From), To: parseDate(v.To)}
			if !r.IsZero() {
				return r
			}
		case [2]string:
			r := DateRange{From: parseDate(v[0]), To: parseDate(v[1])}
			if !r.IsZero() {
				return r
			}
		}
	}
	return nil
}

func unwrap(v Value) any {
	switch val := v.(type) {
	case Bool:
		return bool(val)
	case Num:
		return int64(val)
	case Str:
		return string(val)
	default:
		return v
	}
}

func toInt(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// ZeroMeansAll is a custom handler for numeric filters where 0, "0", "" and
// nil all mean "no filter" and the parameter must disappear from the URL.
func ZeroMeansAll(key string) CustomHandler {
	return func(raw any, commit CommitFunc) {
		n, ok := toInt(raw)
		if v, isNum := raw.(Num); isNum {
			n, ok = int64(v), true
		}
		commit(func(q url.Values) {
			if !ok || n == 0 {
				q.Del(key)
				return
			}
			q.Set(key, strconv.FormatInt(n, 10))
		})
	}
}
