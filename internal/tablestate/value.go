package tablestate

import (
	"strconv"
	"strings"
)

// Value is a typed filter value. The concrete variants are Bool, Num, Str and
// DateRange; nothing outside this package can add a variant.
type Value interface {
	Kind() Kind
	isValue()
}

// Kind identifies how a filter is parsed, coerced and serialized.
type Kind int

const (
	KindBool Kind = iota + 1
	KindNumber
	KindString
	KindEnum
	KindDateRange
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	case KindDateRange:
		return "date_range"
	default:
		return "unknown"
	}
}

// Bool is a boolean filter value.
type Bool bool

// Num is an integer filter value.
type Num int64

// Str is a free text or enum filter value. The empty string means absent.
type Str string

// DateRange is an inclusive range of ISO dates. Either side may be empty.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func (Bool) Kind() Kind      { return KindBool }
func (Num) Kind() Kind       { return KindNumber }
func (Str) Kind() Kind       { return KindString }
func (DateRange) Kind() Kind { return KindDateRange }

func (Bool) isValue()      {}
func (Num) isValue()       {}
func (Str) isValue()       {}
func (DateRange) isValue() {}

// IsZero reports whether the range has neither bound.
func (d DateRange) IsZero() bool {
	return d.From == "" && d.To == ""
}

// Absent reports whether v carries no filter. nil, an empty Str and an empty
// DateRange are all treated as "not applied".
func Absent(v Value) bool {
	switch val := v.(type) {
	case nil:
		return true
	case Str:
		return strings.TrimSpace(string(val)) == ""
	case DateRange:
		return val.IsZero()
	default:
		return false
	}
}

// Format renders a scalar value as it appears in a query string.
func Format(v Value) string {
	switch val := v.(type) {
	case Bool:
		return strconv.FormatBool(bool(val))
	case Num:
		return strconv.FormatInt(int64(val), 10)
	case Str:
		return string(val)
	default:
		return ""
	}
}

// Equal compares two values, treating every absent value as equal.
func Equal(a, b Value) bool {
	if Absent(a) || Absent(b) {
		return Absent(a) && Absent(b)
	}
	return a == b
}
