package db

import (
	"slices"
	"strconv"
	"strings"

	"github.com/odyssey-erp/odyssey-cms/internal/tablestate"
)

// Match selects how a filter value is compared with its column.
type Match int

const (
	// MatchEqual compares with =.
	MatchEqual Match = iota
	// MatchFold compares text case-insensitively.
	MatchFold
)

// FilterColumn maps a table filter onto a SQL column.
type FilterColumn struct {
	Column string
	Match  Match
}

// ListSpec describes how a table's ListQuery turns into SQL. Only keys present
// in Sorts and Filters reach the statement, so request values never become
// identifiers.
type ListSpec struct {
	From          string
	Select        string
	Sorts         map[string]string
	DefaultSort   string
	Filters       map[string]FilterColumn
	SearchColumns []string
	DateColumn    string
}

// ListStatement is the pair of statements produced for one ListQuery.
type ListStatement struct {
	Query     string
	Count     string
	Args      []any
	CountArgs []any
}

type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// Build renders the paged select and the matching count statement.
func (s ListSpec) Build(q tablestate.ListQuery) ListStatement {
	var w whereBuilder

	for _, key := range sortedKeys(q.Filters) {
		col, ok := s.Filters[key]
		if !ok {
			continue
		}
		v := q.Filter(key)
		if v == nil {
			continue
		}
		if r, isRange := v.(tablestate.DateRange); isRange {
			s.addRange(&w, col.Column, r.From, r.To)
			continue
		}
		switch val := v.(type) {
		case tablestate.Bool:
			w.add(col.Column + " = " + w.arg(bool(val)))
		case tablestate.Num:
			w.add(col.Column + " = " + w.arg(int64(val)))
		case tablestate.Str:
			if col.Match == MatchFold {
				w.add("lower(" + col.Column + ") = lower(" + w.arg(string(val)) + ")")
			} else {
				w.add(col.Column + " = " + w.arg(string(val)))
			}
		}
	}

	if q.Search != "" && len(s.SearchColumns) > 0 {
		placeholder := w.arg("%" + escapeLike(q.Search) + "%")
		ors := make([]string, 0, len(s.SearchColumns))
		for _, col := range s.SearchColumns {
			ors = append(ors, col+" ILIKE "+placeholder)
		}
		w.add("(" + strings.Join(ors, " OR ") + ")")
	}

	if s.DateColumn != "" {
		s.addRange(&w, s.DateColumn, q.DateFrom, q.DateTo)
	}

	where := w.String()
	countArgs := append([]any(nil), w.args...)
	count := "SELECT COUNT(*) FROM " + s.From + where

	query := "SELECT " + s.Select + " FROM " + s.From + where + " ORDER BY " + s.order(q.OrderBy, q.OrderDesc)
	if q.Size > 0 {
		query += " LIMIT " + w.arg(q.Size) + " OFFSET " + w.arg(q.Offset())
	}

	return ListStatement{Query: query, Count: count, Args: w.args, CountArgs: countArgs}
}

func (s ListSpec) addRange(w *whereBuilder, column, from, to string) {
	if from != "" {
		w.add(column + " >= " + w.arg(from) + "::timestamptz")
	}
	if to != "" {
		w.add(column + " < (" + w.arg(to) + "::date + 1)")
	}
}

func (s ListSpec) order(by string, desc bool) string {
	dir := " ASC"
	if desc {
		dir = " DESC"
	}
	expr, ok := s.Sorts[by]
	if !ok {
		expr = s.DefaultSort
	}
	if expr == "" {
		expr = "id"
	}
	return expr + dir + ", id" + dir
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func sortedKeys(m map[string]tablestate.Value) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
