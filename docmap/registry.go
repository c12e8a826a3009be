package docmap

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

var globalRegistry = &Registry{
	byType: make(map[reflect.Type]*RecordDescriptor),
	enums:  make(map[reflect.Type]*EnumDescriptor),
}

// Registry caches record descriptors and holds enum registrations. Record
// descriptors are built lazily on first use and reused for every subsequent
// operation on the same type; enums must be registered explicitly before the
// first descriptor of a type using them is built.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*RecordDescriptor
	enums  map[reflect.Type]*EnumDescriptor
}

// typeOf returns the reflect.Type for T without needing an instance.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// DescriptorFor returns the descriptor for a record type, building and
// caching it on first use. Pointer types resolve to their element type.
func DescriptorFor(t reflect.Type) (*RecordDescriptor, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	globalRegistry.mu.RLock()
	rd, ok := globalRegistry.byType[t]
	globalRegistry.mu.RUnlock()
	if ok {
		return rd, nil
	}

	// Build outside the lock; concurrent first uses may race to build the
	// same descriptor, and the first write wins.
	rd, err := buildRecordDescriptor(t)
	if err != nil {
		return nil, fmt.Errorf("describing %s: %w", t.String(), err)
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	if cached, ok := globalRegistry.byType[t]; ok {
		return cached, nil
	}
	globalRegistry.byType[t] = rd
	return rd, nil
}

// DescriptorOf returns the descriptor for the record type T.
func DescriptorOf[T any]() (*RecordDescriptor, error) {
	return DescriptorFor(typeOf[T]())
}

// Register builds and caches the descriptor for T, walking nested records so
// the whole graph is validated up front. The mapping operations build
// descriptors lazily, so calling Register is optional, but it surfaces tag
// mistakes at startup instead of at first use.
func Register[T any]() error {
	return registerType(typeOf[T](), make(map[reflect.Type]struct{}))
}

// MustRegister is a helper that calls Register and panics if an error occurs.
// It is intended for use during application initialization.
func MustRegister[T any]() {
	if err := Register[T](); err != nil {
		panic(err)
	}
}

func registerType(t reflect.Type, visited map[reflect.Type]struct{}) error {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if _, ok := visited[t]; ok {
		return nil
	}
	visited[t] = struct{}{}

	rd, err := DescriptorFor(t)
	if err != nil {
		return err
	}
	for i := range rd.Fields {
		if rd.Fields[i].Kind == KindRecord {
			if err := registerType(rd.Fields[i].ValueType, visited); err != nil {
				return err
			}
		}
	}
	return nil
}

// EnumDescriptor holds the case names of a registered enum in ordinal order.
type EnumDescriptor struct {
	// GoType is the integer-backed named type of the enum.
	GoType reflect.Type
	// Names lists the case names; the name at index i decodes ordinal i.
	Names []string
}

// NameOf returns the case name for a zero-based ordinal.
func (ed *EnumDescriptor) NameOf(ordinal int) (string, bool) {
	if ordinal < 0 || ordinal >= len(ed.Names) {
		return "", false
	}
	return ed.Names[ordinal], true
}

// OrdinalOf returns the zero-based ordinal for a case name.
func (ed *EnumDescriptor) OrdinalOf(name string) (int, bool) {
	for i, n := range ed.Names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// RegisterEnum registers the case names of an integer-backed enum type E.
// Constants are assumed to run 0..len(names)-1 in declaration order, iota
// style, so the name at index i belongs to ordinal i. Registering the same
// type again with identical names is a no-op; conflicting names are an
// error.
func RegisterEnum[E any](names ...string) error {
	t := typeOf[E]()

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return fmt.Errorf("enum %s must have an integer kind, got %s", t.String(), t.Kind())
	}
	// Predeclared types have no package path; registering plain int as an
	// enum would hijack every integer field.
	if t.PkgPath() == "" {
		return fmt.Errorf("enum type must be a defined type, got %s", t.String())
	}
	if len(names) == 0 {
		return fmt.Errorf("enum %s needs at least one case name", t.Name())
	}
	for i, n := range names {
		if n == "" {
			return fmt.Errorf("enum %s: case %d has an empty name", t.Name(), i)
		}
		if slices.Index(names[:i], n) >= 0 {
			return fmt.Errorf("enum %s: duplicate case name %q", t.Name(), n)
		}
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()

	if existing, ok := globalRegistry.enums[t]; ok {
		if !slices.Equal(existing.Names, names) {
			return fmt.Errorf("enum %s already registered with different cases", t.Name())
		}
		return nil
	}
	globalRegistry.enums[t] = &EnumDescriptor{GoType: t, Names: slices.Clone(names)}
	return nil
}

// MustRegisterEnum is a helper that calls RegisterEnum and panics if an
// error occurs.
func MustRegisterEnum[E any](names ...string) {
	if err := RegisterEnum[E](names...); err != nil {
		panic(err)
	}
}

// LookupEnum retrieves the EnumDescriptor registered for a Go type.
func LookupEnum(t reflect.Type) (*EnumDescriptor, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	ed, ok := globalRegistry.enums[t]
	return ed, ok
}

// setEnumOrdinal stores a zero-based ordinal into an enum-typed value.
func setEnumOrdinal(v reflect.Value, ord int) {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(uint64(ord))
	default:
		v.SetInt(int64(ord))
	}
}

// enumOrdinal reads the zero-based ordinal out of an enum-typed value.
func enumOrdinal(v reflect.Value) int {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(v.Uint())
	default:
		return int(v.Int())
	}
}

// ClearRegistry resets the global registry, removing all cached descriptors
// and registered enums. This is primarily used for testing purposes.
func ClearRegistry() {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.byType = make(map[reflect.Type]*RecordDescriptor)
	globalRegistry.enums = make(map[reflect.Type]*EnumDescriptor)
}
