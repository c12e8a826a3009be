// Package docmap provides reflection-based mapping between Go record types
// and document field paths.
package docmap

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// FieldKind classifies how the mapper treats a field's declared type.
type FieldKind int

const (
	// KindScalar is a directly storable value: bool, string, the numeric
	// kinds, time.Time, or []byte.
	KindScalar FieldKind = iota
	// KindRecord is a nested struct mapped as a subdocument.
	KindRecord
	// KindEnum is a registered integer-backed enumeration.
	KindEnum
	// KindSlice is a slice of scalar elements.
	KindSlice
	// KindMap is a string-keyed map of scalar elements.
	KindMap
	// KindUnsupported covers everything else, such as collections of records.
	// Such fields survive descriptor construction but are excluded from path
	// extraction and reject any supplied value during materialization.
	KindUnsupported
)

var (
	timeType      = reflect.TypeOf(time.Time{})
	byteSliceType = reflect.TypeOf([]byte(nil))
)

// FieldDescriptor contains metadata about a single field in a record struct,
// mapping it to a document field.
type FieldDescriptor struct {
	// Tag is the parsed 'docmap' struct tag.
	Tag FieldTag
	// FieldName is the name of the field in the Go struct.
	FieldName string
	// DocName is the field's name in the document.
	DocName string
	// FieldIndex is the 0-based index of the field in the Go struct.
	FieldIndex int
	// FieldType is the declared reflection type of the field.
	FieldType reflect.Type
	// IsOptional is true if the field is pointer-wrapped.
	IsOptional bool
	// Kind classifies the field's unwrapped type.
	Kind FieldKind
	// ValueType is the unwrapped type (the pointee for optional fields).
	ValueType reflect.Type
	// ElemType is the element type for slice and map fields.
	ElemType reflect.Type
	// Enum holds the enum metadata for KindEnum fields.
	Enum *EnumDescriptor
	// HasDefault reports whether a typed default value was declared.
	HasDefault bool
	// Default is the typed default value, already converted to ValueType.
	Default any
}

// RecordDescriptor contains comprehensive metadata about a record type,
// including the document name and classification of every mapped field.
// Fields appear in struct declaration order.
type RecordDescriptor struct {
	// GoType is the reflection type of the Go struct representing the record.
	GoType reflect.Type
	// Name is the Go type name of the record.
	Name string
	// Fields is a list of metadata for each mapped field in the record.
	Fields []FieldDescriptor

	idField int // index into Fields, or -1
}

// FieldByName retrieves a FieldDescriptor by the Go struct field name.
func (rd *RecordDescriptor) FieldByName(name string) (*FieldDescriptor, bool) {
	for i := range rd.Fields {
		if rd.Fields[i].FieldName == name {
			return &rd.Fields[i], true
		}
	}
	return nil, false
}

// FieldByDocName retrieves a FieldDescriptor by its document field name.
func (rd *RecordDescriptor) FieldByDocName(name string) (*FieldDescriptor, bool) {
	for i := range rd.Fields {
		if rd.Fields[i].DocName == name {
			return &rd.Fields[i], true
		}
	}
	return nil, false
}

// IDField returns the field marked with the id tag option, if any.
func (rd *RecordDescriptor) IDField() (*FieldDescriptor, bool) {
	if rd.idField < 0 {
		return nil, false
	}
	return &rd.Fields[rd.idField], true
}

// buildRecordDescriptor analyzes a Go struct type and extracts its record
// metadata. Unexported and embedded fields are skipped.
func buildRecordDescriptor(t reflect.Type) (*RecordDescriptor, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %s", t.Kind())
	}

	rd := &RecordDescriptor{
		GoType:  t,
		Name:    t.Name(),
		idField: -1,
	}
	if rd.Name == "" {
		rd.Name = t.String()
	}

	seen := make(map[string]struct{})

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		// Embedded types are not flattened into the document
		if field.Anonymous {
			continue
		}

		tag, err := tagForField(field)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", rd.Name, err)
		}
		if tag.Skip {
			continue
		}

		fd := FieldDescriptor{
			Tag:        tag,
			FieldName:  field.Name,
			FieldIndex: i,
			FieldType:  field.Type,
		}

		fd.DocName = tag.Name
		if fd.DocName == "" {
			fd.DocName = strings.ToLower(field.Name)
		}
		if _, dup := seen[fd.DocName]; dup {
			return nil, &DuplicateNameError{Record: rd.Name, Name: fd.DocName}
		}
		seen[fd.DocName] = struct{}{}

		ft := field.Type
		if ft.Kind() == reflect.Ptr {
			fd.IsOptional = true
			ft = ft.Elem()
		}
		classifyField(&fd, ft)

		if tag.ID {
			if rd.idField >= 0 {
				return nil, fmt.Errorf("record %s: multiple id fields", rd.Name)
			}
			if fd.IsOptional || fd.Kind != KindScalar || ft.Kind() != reflect.String {
				return nil, fmt.Errorf("record %s: id field %s must be a plain string", rd.Name, field.Name)
			}
			rd.idField = len(rd.Fields)
		}

		if tag.HasDefault {
			def, err := parseDefaultLiteral(tag.Default, &fd)
			if err != nil {
				return nil, fmt.Errorf("record %s: field %s: %w", rd.Name, field.Name, err)
			}
			fd.Default = def
			fd.HasDefault = true
		}

		rd.Fields = append(rd.Fields, fd)
	}

	return rd, nil
}

// classifyField fills Kind, ValueType, ElemType, and Enum for the unwrapped
// field type. Enum registration is consulted before the scalar kinds, so
// enums must be registered before the first descriptor of a type using them
// is built.
func classifyField(fd *FieldDescriptor, t reflect.Type) {
	fd.ValueType = t

	if t == timeType || t == byteSliceType {
		fd.Kind = KindScalar
		return
	}
	if ed, ok := LookupEnum(t); ok {
		fd.Kind = KindEnum
		fd.Enum = ed
		return
	}

	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		fd.Kind = KindScalar
	case reflect.Struct:
		fd.Kind = KindRecord
	case reflect.Slice:
		if isScalarElem(t.Elem()) {
			fd.Kind = KindSlice
			fd.ElemType = t.Elem()
		} else {
			fd.Kind = KindUnsupported
		}
	case reflect.Map:
		if t.Key().Kind() == reflect.String && isScalarElem(t.Elem()) {
			fd.Kind = KindMap
			fd.ElemType = t.Elem()
		} else {
			fd.Kind = KindUnsupported
		}
	default:
		fd.Kind = KindUnsupported
	}
}

// isScalarElem reports whether a collection element type is a storable
// scalar. Records, pointers, and nested collections are not.
func isScalarElem(t reflect.Type) bool {
	if t == timeType {
		return true
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// parseDefaultLiteral converts the raw tag literal into a value of the
// field's declared type. Only scalar and enum fields support defaults.
func parseDefaultLiteral(lit string, fd *FieldDescriptor) (any, error) {
	switch fd.Kind {
	case KindEnum:
		ord, ok := fd.Enum.OrdinalOf(lit)
		if !ok {
			return nil, fmt.Errorf("default %q is not a case of enum %s", lit, fd.ValueType.Name())
		}
		ev := reflect.New(fd.ValueType).Elem()
		setEnumOrdinal(ev, ord)
		return ev.Interface(), nil
	case KindScalar:
		return parseScalarLiteral(lit, fd.ValueType)
	default:
		return nil, fmt.Errorf("default values are only supported on scalar and enum fields")
	}
}

// parseScalarLiteral parses lit into a value of scalar type t.
func parseScalarLiteral(lit string, t reflect.Type) (any, error) {
	if t == timeType {
		ts, err := time.Parse(time.RFC3339, lit)
		if err != nil {
			return nil, fmt.Errorf("invalid time default %q: %w", lit, err)
		}
		return ts, nil
	}

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		v.SetString(lit)
	case reflect.Bool:
		b, err := strconv.ParseBool(lit)
		if err != nil {
			return nil, fmt.Errorf("invalid bool default %q: %w", lit, err)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(lit, 10, t.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid integer default %q: %w", lit, err)
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(lit, 10, t.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid unsigned default %q: %w", lit, err)
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(lit, t.Bits())
		if err != nil {
			return nil, fmt.Errorf("invalid float default %q: %w", lit, err)
		}
		v.SetFloat(f)
	default:
		return nil, fmt.Errorf("type %s does not support default literals", t)
	}
	return v.Interface(), nil
}
