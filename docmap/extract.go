package docmap

import (
	"fmt"
	"reflect"
)

// maxDepth bounds record recursion so self-referential record types fail
// with a clear error instead of overflowing the stack.
const maxDepth = 32

// PathPair maps a source document path to a target document path. Under the
// current policy both strings are always identical; the pair shape exists so
// the result can serve as a rename table if the two ever diverge.
type PathPair struct {
	Source string
	Target string
}

type extractConfig struct {
	plainOptionalPaths bool
}

// ExtractOption configures path extraction.
type ExtractOption func(*extractConfig)

// WithPlainOptionalPaths emits optional leaf fields under their plain
// document name instead of the legacy "<name>.value" form.
func WithPlainOptionalPaths() ExtractOption {
	return func(cfg *extractConfig) {
		cfg.plainOptionalPaths = true
	}
}

// ExtractPaths enumerates every leaf-reachable field path of a record type,
// depth-first in declaration order. Required records contribute a path
// segment and recurse; optional records recurse with no added segment.
// Optional leaf fields are decorated with a ".value" suffix unless
// WithPlainOptionalPaths is given. Fields of unsupported types, such as
// collections of records, are excluded.
func ExtractPaths(t reflect.Type, opts ...ExtractOption) ([]PathPair, error) {
	cfg := extractConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	rd, err := DescriptorFor(t)
	if err != nil {
		return nil, err
	}

	var pairs []PathPair
	if err := extractInto(rd, "", 0, cfg, &pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}

// Paths enumerates the leaf field paths of the record type T.
func Paths[T any](opts ...ExtractOption) ([]PathPair, error) {
	return ExtractPaths(typeOf[T](), opts...)
}

func extractInto(rd *RecordDescriptor, prefix string, depth int, cfg extractConfig, out *[]PathPair) error {
	if depth > maxDepth {
		return fmt.Errorf("record nesting exceeds %d levels extracting %s (recursive record type?)", maxDepth, rd.Name)
	}

	for i := range rd.Fields {
		fd := &rd.Fields[i]
		path := prefix + fd.DocName

		switch {
		case fd.Kind == KindUnsupported:
			// Collections of records have no leaf representation.
			continue
		case fd.Kind == KindRecord:
			child, err := DescriptorFor(fd.ValueType)
			if err != nil {
				return fmt.Errorf("extracting %s: %w", path, err)
			}
			childPrefix := path + "."
			if fd.IsOptional {
				childPrefix = prefix
			}
			if err := extractInto(child, childPrefix, depth+1, cfg, out); err != nil {
				return err
			}
		case fd.IsOptional && !cfg.plainOptionalPaths:
			leaf := path + ".value"
			*out = append(*out, PathPair{Source: leaf, Target: leaf})
		default:
			*out = append(*out, PathPair{Source: path, Target: path})
		}
	}
	return nil
}
