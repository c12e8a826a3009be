package docmap

import (
	"errors"
	"fmt"
	"reflect"
)

// Materialize builds a new instance of the record type T from a document.
// Fields are bound in declaration order and the first failure aborts the
// whole call; the returned error is a *FieldBuildError carrying the fully
// dotted document path of the offending field.
func Materialize[T any](data Document) (*T, error) {
	t := typeOf[T]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("materialize: %s is not a struct type", t)
	}
	rd, err := DescriptorFor(t)
	if err != nil {
		return nil, err
	}

	result := new(T)
	if err := materializeRecord(rd, data, reflect.ValueOf(result).Elem(), "", 0); err != nil {
		return nil, err
	}
	return result, nil
}

// MaterializeValue builds a new instance of an arbitrary record type from a
// document. The returned value is a pointer to the concrete struct.
func MaterializeValue(t reflect.Type, data Document) (any, error) {
	rd, err := DescriptorFor(t)
	if err != nil {
		return nil, err
	}

	ptr := reflect.New(rd.GoType)
	if err := materializeRecord(rd, data, ptr.Elem(), "", 0); err != nil {
		return nil, err
	}
	return ptr.Interface(), nil
}

// materializeRecord binds every mapped field of dst from data. prefix is the
// dotted document path of the enclosing record, used for diagnostics.
func materializeRecord(rd *RecordDescriptor, data map[string]any, dst reflect.Value, prefix string, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("record nesting exceeds %d levels materializing %s", maxDepth, rd.Name)
	}

	for i := range rd.Fields {
		fd := &rd.Fields[i]
		path := prefix + fd.DocName
		field := dst.Field(fd.FieldIndex)

		raw, ok := data[fd.DocName]
		switch {
		case !ok && fd.HasDefault:
			assignValue(field, reflect.ValueOf(fd.Default), fd.IsOptional)
		case !ok && (fd.IsOptional || fd.Kind == KindUnsupported):
			// Absent optional and unmapped fields stay zero
		case !ok:
			return &FieldBuildError{Record: rd.Name, Field: path, Cause: &MissingFieldError{Field: path}}
		case raw == nil:
			// An explicit null binds the zero value for optionals, records,
			// enums, and collections; a required scalar cannot hold it.
			if err := bindNull(fd, path); err != nil {
				return &FieldBuildError{Record: rd.Name, Field: path, Cause: err}
			}
		default:
			if err := setField(fd, field, raw, path, depth); err != nil {
				var fbe *FieldBuildError
				if errors.As(err, &fbe) {
					return err
				}
				return &FieldBuildError{Record: rd.Name, Field: path, Cause: err}
			}
		}
	}
	return nil
}

func bindNull(fd *FieldDescriptor, path string) error {
	if fd.IsOptional {
		return nil
	}
	if fd.Kind == KindScalar {
		return &TypeCastError{Field: path, Expected: fd.ValueType.String(), Actual: "null"}
	}
	return nil
}

func setField(fd *FieldDescriptor, field reflect.Value, raw any, path string, depth int) error {
	switch fd.Kind {
	case KindEnum:
		ev, err := decodeEnum(fd, raw, path)
		if err != nil {
			return err
		}
		assignValue(field, ev, fd.IsOptional)

	case KindRecord:
		m, ok := raw.(map[string]any)
		if !ok {
			return &NestedTypeError{Field: path, Record: fd.ValueType.Name(), Actual: fmt.Sprintf("%T", raw)}
		}
		child, err := DescriptorFor(fd.ValueType)
		if err != nil {
			return err
		}
		nested := reflect.New(fd.ValueType).Elem()
		if err := materializeRecord(child, m, nested, path+".", depth+1); err != nil {
			return err
		}
		assignValue(field, nested, fd.IsOptional)

	case KindSlice:
		sv, err := buildSlice(fd, raw, path)
		if err != nil {
			return err
		}
		assignValue(field, sv, fd.IsOptional)

	case KindMap:
		mv, err := buildMap(fd, raw, path)
		if err != nil {
			return err
		}
		assignValue(field, mv, fd.IsOptional)

	case KindUnsupported:
		return &UnsupportedTypeError{Field: path, Type: fd.FieldType.String()}

	default:
		sv, err := castScalar(fd.ValueType, raw, path)
		if err != nil {
			return err
		}
		assignValue(field, sv, fd.IsOptional)
	}
	return nil
}

// assignValue stores v into field, wrapping it in a fresh pointer for
// optional fields.
func assignValue(field reflect.Value, v reflect.Value, optional bool) {
	if optional {
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		field.Set(ptr)
		return
	}
	field.Set(v)
}

// decodeEnum accepts the exact case name, a zero-based ordinal of any
// integer kind, or a value of the enum type itself.
func decodeEnum(fd *FieldDescriptor, raw any, path string) (reflect.Value, error) {
	if reflect.TypeOf(raw) == fd.ValueType {
		return reflect.ValueOf(raw), nil
	}

	var ord int
	switch v := raw.(type) {
	case string:
		o, ok := fd.Enum.OrdinalOf(v)
		if !ok {
			return reflect.Value{}, &EnumDecodeError{Field: path, Enum: fd.ValueType.Name(), Value: raw}
		}
		ord = o
	default:
		rv := reflect.ValueOf(raw)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			ord = int(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			ord = int(rv.Uint())
		default:
			return reflect.Value{}, &EnumDecodeError{Field: path, Enum: fd.ValueType.Name(), Value: raw}
		}
		if _, ok := fd.Enum.NameOf(ord); !ok {
			return reflect.Value{}, &EnumDecodeError{Field: path, Enum: fd.ValueType.Name(), Value: raw}
		}
	}

	ev := reflect.New(fd.ValueType).Elem()
	setEnumOrdinal(ev, ord)
	return ev, nil
}

// castScalar enforces the strict scalar rule: the value's runtime type must
// be identical to the declared type, or be the predeclared type of the same
// kind when the declared type is a named one. No widening is performed; an
// int is not an int64.
func castScalar(want reflect.Type, raw any, path string) (reflect.Value, error) {
	rt := reflect.TypeOf(raw)
	if rt == want {
		return reflect.ValueOf(raw), nil
	}
	if rt.Kind() == want.Kind() && rt.PkgPath() == "" && want.PkgPath() != "" && isScalarElem(rt) {
		return reflect.ValueOf(raw).Convert(want), nil
	}
	return reflect.Value{}, &TypeCastError{Field: path, Expected: want.String(), Actual: rt.String()}
}

// buildSlice accepts either a slice of the exact declared type or a []any
// whose elements each satisfy the strict scalar rule for the element type.
func buildSlice(fd *FieldDescriptor, raw any, path string) (reflect.Value, error) {
	if reflect.TypeOf(raw) == fd.ValueType {
		return reflect.ValueOf(raw), nil
	}
	arr, ok := raw.([]any)
	if !ok {
		return reflect.Value{}, &TypeCastError{Field: path, Expected: fd.ValueType.String(), Actual: fmt.Sprintf("%T", raw)}
	}

	out := reflect.MakeSlice(fd.ValueType, len(arr), len(arr))
	for i, el := range arr {
		if el == nil {
			return reflect.Value{}, &TypeCastError{Field: path, Expected: fd.ElemType.String(), Actual: "null"}
		}
		ev, err := castScalar(fd.ElemType, el, path)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("index %d: %w", i, err)
		}
		out.Index(i).Set(ev)
	}
	return out, nil
}

// buildMap accepts either a map of the exact declared type or a
// map[string]any whose values each satisfy the strict scalar rule for the
// element type.
func buildMap(fd *FieldDescriptor, raw any, path string) (reflect.Value, error) {
	if reflect.TypeOf(raw) == fd.ValueType {
		return reflect.ValueOf(raw), nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return reflect.Value{}, &TypeCastError{Field: path, Expected: fd.ValueType.String(), Actual: fmt.Sprintf("%T", raw)}
	}

	out := reflect.MakeMapWithSize(fd.ValueType, len(m))
	keyType := fd.ValueType.Key()
	for k, el := range m {
		if el == nil {
			return reflect.Value{}, &TypeCastError{Field: path, Expected: fd.ElemType.String(), Actual: "null"}
		}
		ev, err := castScalar(fd.ElemType, el, path)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("key %q: %w", k, err)
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(keyType), ev)
	}
	return out, nil
}
