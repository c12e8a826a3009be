package docmap

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mbannour/go-docmap/pathexpr"
)

// ResolvePath resolves a chain of Go field names against a record type and
// returns the dotted document path, one segment per hop. Every hop except
// the last must be record-valued; optional record hops contribute their
// segment like any other, since pointer wrapping never changes a field's
// document name.
func ResolvePath(t reflect.Type, steps []string) (string, error) {
	rd, err := DescriptorFor(t)
	if err != nil {
		return "", err
	}
	if len(steps) == 0 {
		return "", &EmptyPathError{Record: rd.Name}
	}

	var b strings.Builder
	for i, step := range steps {
		fd, ok := rd.FieldByName(step)
		if !ok {
			return "", &UnknownFieldError{Record: rd.Name, Field: step}
		}

		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(fd.DocName)

		if i == len(steps)-1 {
			break
		}
		if fd.Kind != KindRecord {
			return "", &InvalidPathError{Record: rd.Name, Field: step, Path: b.String()}
		}
		rd, err = DescriptorFor(fd.ValueType)
		if err != nil {
			return "", fmt.Errorf("descending into %s: %w", b.String(), err)
		}
	}

	return b.String(), nil
}

// PathOf resolves a chain of Go field names against the record type T.
func PathOf[T any](steps ...string) (string, error) {
	return ResolvePath(typeOf[T](), steps)
}

// Path resolves a dotted path expression such as "Address.ZipCode" against
// the record type T. Segments follow Go field names; segments that are not
// plain identifiers can be double-quoted.
func Path[T any](expr string) (string, error) {
	p, err := pathexpr.Parse(expr)
	if err != nil {
		if strings.TrimSpace(expr) == "" {
			rd, derr := DescriptorOf[T]()
			if derr != nil {
				return "", derr
			}
			return "", &EmptyPathError{Record: rd.Name}
		}
		return "", err
	}
	return ResolvePath(typeOf[T](), p.Steps)
}

// MustPath is a helper that calls Path and panics if an error occurs. It is
// intended for declaring well-known paths as package variables.
func MustPath[T any](expr string) string {
	resolved, err := Path[T](expr)
	if err != nil {
		panic(err)
	}
	return resolved
}
