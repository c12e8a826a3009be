package docmap

import (
	"fmt"
	"reflect"
)

// Document is an untyped document keyed by document field names, as produced
// by wire decoders and consumed by Materialize.
type Document = map[string]any

type documentConfig struct {
	nullForNil bool
}

// DocumentOption configures ToDocument.
type DocumentOption func(*documentConfig)

// WithNullForNil emits an explicit null for nil optional fields instead of
// omitting them.
func WithNullForNil() DocumentOption {
	return func(cfg *documentConfig) {
		cfg.nullForNil = true
	}
}

// ToDocument converts a record instance to a Document using document field
// names as keys. Nested records become nested documents, enum fields are
// stored under their case names, and nil optional fields are omitted unless
// WithNullForNil is given. This is the inverse of Materialize.
func ToDocument[T any](instance *T, opts ...DocumentOption) (Document, error) {
	cfg := documentConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	t := typeOf[T]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("to document: %s is not a struct type", t)
	}
	rd, err := DescriptorFor(t)
	if err != nil {
		return nil, err
	}
	if instance == nil {
		return nil, fmt.Errorf("to document: nil %s instance", rd.Name)
	}

	return buildDocument(rd, reflect.ValueOf(instance).Elem(), "", 0, cfg)
}

func buildDocument(rd *RecordDescriptor, v reflect.Value, prefix string, depth int, cfg documentConfig) (Document, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("record nesting exceeds %d levels encoding %s", maxDepth, rd.Name)
	}

	out := make(Document, len(rd.Fields))
	for i := range rd.Fields {
		fd := &rd.Fields[i]
		path := prefix + fd.DocName
		field := v.Field(fd.FieldIndex)

		if fd.IsOptional {
			if field.IsNil() {
				if cfg.nullForNil {
					out[fd.DocName] = nil
				}
				continue
			}
			field = field.Elem()
		}

		switch fd.Kind {
		case KindRecord:
			child, err := DescriptorFor(fd.ValueType)
			if err != nil {
				return nil, err
			}
			sub, err := buildDocument(child, field, path+".", depth+1, cfg)
			if err != nil {
				return nil, err
			}
			out[fd.DocName] = sub

		case KindEnum:
			ord := enumOrdinal(field)
			name, ok := fd.Enum.NameOf(ord)
			if !ok {
				return nil, fmt.Errorf("field %q: enum %s has no case for ordinal %d", path, fd.ValueType.Name(), ord)
			}
			out[fd.DocName] = name

		case KindUnsupported:
			// Zero values of unmappable fields are omitted; anything else
			// would be silently lost, so refuse it.
			if !field.IsZero() {
				return nil, &UnsupportedTypeError{Field: path, Type: fd.FieldType.String()}
			}

		default:
			out[fd.DocName] = field.Interface()
		}
	}
	return out, nil
}
