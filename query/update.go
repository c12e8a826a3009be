package query

import (
	"fmt"
	"reflect"
	"strings"
)

// Update accumulates field operations addressed by dotted paths. Methods
// chain; the zero value is ready to use. Render the conventional operator
// document with Document, or mutate a document in place with Apply.
type Update struct {
	set   map[string]any
	unset map[string]struct{}
	inc   map[string]int64
}

// NewUpdate creates an empty update builder.
func NewUpdate() *Update {
	return &Update{}
}

// Set records a value to store at path.
func (u *Update) Set(path string, value any) *Update {
	if u.set == nil {
		u.set = make(map[string]any)
	}
	u.set[path] = value
	return u
}

// Unset records a path to remove.
func (u *Update) Unset(path string) *Update {
	if u.unset == nil {
		u.unset = make(map[string]struct{})
	}
	u.unset[path] = struct{}{}
	return u
}

// Inc records an integer delta to add at path. The existing value keeps its
// runtime type; float fields should use Set instead.
func (u *Update) Inc(path string, delta int64) *Update {
	if u.inc == nil {
		u.inc = make(map[string]int64)
	}
	u.inc[path] += delta
	return u
}

// IsEmpty reports whether no operations were recorded.
func (u *Update) IsEmpty() bool {
	return len(u.set) == 0 && len(u.unset) == 0 && len(u.inc) == 0
}

// Document renders the update in the $set/$unset/$inc operator shape.
func (u *Update) Document() map[string]any {
	out := make(map[string]any)
	if len(u.set) > 0 {
		set := make(map[string]any, len(u.set))
		for p, v := range u.set {
			set[p] = v
		}
		out["$set"] = set
	}
	if len(u.unset) > 0 {
		unset := make(map[string]any, len(u.unset))
		for p := range u.unset {
			unset[p] = ""
		}
		out["$unset"] = unset
	}
	if len(u.inc) > 0 {
		inc := make(map[string]any, len(u.inc))
		for p, n := range u.inc {
			inc[p] = n
		}
		out["$inc"] = inc
	}
	return out
}

// Apply mutates doc in place: sets first, then increments, then unsets.
// Set creates intermediate documents for missing path segments.
func (u *Update) Apply(doc map[string]any) error {
	for path, v := range u.set {
		if err := setPath(doc, path, v); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	for path, n := range u.inc {
		if err := incPath(doc, path, n); err != nil {
			return fmt.Errorf("inc %s: %w", path, err)
		}
	}
	for path := range u.unset {
		if err := unsetPath(doc, path); err != nil {
			return fmt.Errorf("unset %s: %w", path, err)
		}
	}
	return nil
}

// setPath stores v at a dotted path, creating intermediate documents for
// missing segments.
func setPath(doc map[string]any, path string, v any) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}

	cur := doc
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg]
		if !ok {
			child := make(map[string]any)
			cur[seg] = child
			cur = child
			continue
		}
		child, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("segment %q holds %T, not a document", seg, next)
		}
		cur = child
	}
	cur[segs[len(segs)-1]] = v
	return nil
}

// unsetPath removes the value at a dotted path. Missing segments are a
// no-op.
func unsetPath(doc map[string]any, path string) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}

	cur := doc
	for _, seg := range segs[:len(segs)-1] {
		child, ok := cur[seg].(map[string]any)
		if !ok {
			return nil
		}
		cur = child
	}
	delete(cur, segs[len(segs)-1])
	return nil
}

// incPath adds delta to the numeric value at a dotted path, preserving the
// value's runtime type. A missing or null path is set to the delta.
func incPath(doc map[string]any, path string, delta int64) error {
	cur, ok := Lookup(doc, path)
	if !ok || cur == nil {
		return setPath(doc, path, delta)
	}

	rv := reflect.ValueOf(cur)
	out := reflect.New(rv.Type()).Elem()
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out.SetInt(rv.Int() + delta)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		out.SetUint(uint64(int64(rv.Uint()) + delta))
	case reflect.Float32, reflect.Float64:
		out.SetFloat(rv.Float() + float64(delta))
	default:
		return fmt.Errorf("value is %T, not numeric", cur)
	}
	return setPath(doc, path, out.Interface())
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	segs := strings.Split(path, ".")
	for _, seg := range segs {
		if seg == "" {
			return nil, fmt.Errorf("path %q has an empty segment", path)
		}
	}
	return segs, nil
}
