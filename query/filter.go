// Package query provides filter combinators and update builders for
// documents addressed by dotted field paths, as produced by the docmap path
// resolver.
package query

import (
	"reflect"
	"strings"
	"time"
)

// Filter represents a predicate over a document. Filters compose via And,
// Or, and Not to build complex conditions.
type Filter interface {
	// Matches reports whether the document satisfies the filter.
	Matches(doc map[string]any) bool
}

// Lookup navigates a dotted path through nested documents. It returns false
// when any segment is missing or a non-document value is reached before the
// last segment.
func Lookup(doc map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	cur := any(doc)
	segs := strings.Split(path, ".")
	for i, seg := range segs {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		if i == len(segs)-1 {
			return v, true
		}
		cur = v
	}
	return nil, false
}

// --- Comparison filters ---

// ComparisonFilter compares the value at a dotted path against a fixed value.
type ComparisonFilter struct {
	Path  string
	Op    string // "==", "!=", ">", ">=", "<", "<="
	Value any
}

// Matches evaluates the comparison against the document. A missing path
// satisfies only "!=", mirroring document-database semantics.
func (f *ComparisonFilter) Matches(doc map[string]any) bool {
	v, ok := Lookup(doc, f.Path)
	if !ok {
		return f.Op == "!="
	}

	switch f.Op {
	case "==":
		return valuesEqual(v, f.Value)
	case "!=":
		return !valuesEqual(v, f.Value)
	}

	c, ok := compareValues(v, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	}
	return false
}

// Eq creates an equality filter: value at path == value.
func Eq(path string, value any) Filter {
	return &ComparisonFilter{Path: path, Op: "==", Value: value}
}

// Ne creates a not-equal filter: value at path != value. Documents without
// the path match.
func Ne(path string, value any) Filter {
	return &ComparisonFilter{Path: path, Op: "!=", Value: value}
}

// Gt creates a greater-than filter: value at path > value.
func Gt(path string, value any) Filter {
	return &ComparisonFilter{Path: path, Op: ">", Value: value}
}

// Gte creates a greater-or-equal filter: value at path >= value.
func Gte(path string, value any) Filter {
	return &ComparisonFilter{Path: path, Op: ">=", Value: value}
}

// Lt creates a less-than filter: value at path < value.
func Lt(path string, value any) Filter {
	return &ComparisonFilter{Path: path, Op: "<", Value: value}
}

// Lte creates a less-or-equal filter: value at path <= value.
func Lte(path string, value any) Filter {
	return &ComparisonFilter{Path: path, Op: "<=", Value: value}
}

// --- String filters ---

// StringFilter applies substring operations on a string value.
type StringFilter struct {
	Path    string
	Op      string // "contains" or "prefix"
	Pattern string
}

// Matches evaluates the string operation against the document.
func (f *StringFilter) Matches(doc map[string]any) bool {
	v, ok := Lookup(doc, f.Path)
	if !ok {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return false
	}
	s := rv.String()
	switch f.Op {
	case "contains":
		return strings.Contains(s, f.Pattern)
	case "prefix":
		return strings.HasPrefix(s, f.Pattern)
	}
	return false
}

// Contains creates a filter matching string values containing pattern.
func Contains(path string, pattern string) Filter {
	return &StringFilter{Path: path, Op: "contains", Pattern: pattern}
}

// StartsWith creates a filter matching string values with the given prefix.
func StartsWith(path string, prefix string) Filter {
	return &StringFilter{Path: path, Op: "prefix", Pattern: prefix}
}

// --- Set membership filters ---

// MembershipFilter checks whether the value at a path is in a set of values.
type MembershipFilter struct {
	Path    string
	Values  []any
	Negated bool
}

// Matches evaluates set membership. A missing path satisfies only the
// negated form.
func (f *MembershipFilter) Matches(doc map[string]any) bool {
	v, ok := Lookup(doc, f.Path)
	if !ok {
		return f.Negated
	}
	for _, cand := range f.Values {
		if valuesEqual(v, cand) {
			return !f.Negated
		}
	}
	return f.Negated
}

// In creates a filter that checks if the value at path is in a set.
func In(path string, values ...any) Filter {
	return &MembershipFilter{Path: path, Values: values}
}

// NotIn creates a filter that checks if the value at path is NOT in a set.
func NotIn(path string, values ...any) Filter {
	return &MembershipFilter{Path: path, Values: values, Negated: true}
}

// --- Existence filters ---

// ExistsFilter checks whether a path is present in the document.
type ExistsFilter struct {
	Path    string
	Negated bool
}

// Matches evaluates path presence.
func (f *ExistsFilter) Matches(doc map[string]any) bool {
	_, ok := Lookup(doc, f.Path)
	return ok != f.Negated
}

// Exists creates a path presence filter.
func Exists(path string) Filter {
	return &ExistsFilter{Path: path}
}

// NotExists creates a negated path presence filter.
func NotExists(path string) Filter {
	return &ExistsFilter{Path: path, Negated: true}
}

// --- Boolean combinators ---

// AndFilter combines multiple filters with AND (conjunction).
type AndFilter struct {
	Filters []Filter
}

// Matches reports whether every child filter matches. An empty conjunction
// matches everything.
func (f *AndFilter) Matches(doc map[string]any) bool {
	for _, child := range f.Filters {
		if !child.Matches(doc) {
			return false
		}
	}
	return true
}

// And combines filters with logical AND.
func And(filters ...Filter) Filter {
	// Flatten nested ANDs
	var flat []Filter
	for _, f := range filters {
		if a, ok := f.(*AndFilter); ok {
			flat = append(flat, a.Filters...)
		} else {
			flat = append(flat, f)
		}
	}
	return &AndFilter{Filters: flat}
}

// OrFilter combines alternatives with OR (disjunction).
type OrFilter struct {
	Filters []Filter
}

// Matches reports whether any child filter matches. An empty disjunction
// matches nothing.
func (f *OrFilter) Matches(doc map[string]any) bool {
	for _, child := range f.Filters {
		if child.Matches(doc) {
			return true
		}
	}
	return false
}

// Or combines filters with logical OR.
func Or(filters ...Filter) Filter {
	return &OrFilter{Filters: filters}
}

// NotFilter negates a filter expression.
type NotFilter struct {
	Inner Filter
}

// Matches reports whether the inner filter does not match.
func (f *NotFilter) Matches(doc map[string]any) bool {
	return !f.Inner.Matches(doc)
}

// Not negates a filter.
func Not(filter Filter) Filter {
	return &NotFilter{Inner: filter}
}

// --- Helpers ---

// valuesEqual reports loose equality: numeric values compare by magnitude
// across integer and float runtime types, since documents produced by wire
// decoders do not preserve declared widths. Everything else compares deeply.
func valuesEqual(a, b any) bool {
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders two values: numbers by magnitude, strings lexically,
// times chronologically. Incomparable pairs return false.
func compareValues(a, b any) (int, bool) {
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		}
		return 0, true
	}

	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return at.Compare(bt), true
	}

	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() == reflect.String && bv.Kind() == reflect.String {
		return strings.Compare(av.String(), bv.String()), true
	}
	return 0, false
}

// asFloat widens any integer or float value to float64 for comparison.
func asFloat(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}
