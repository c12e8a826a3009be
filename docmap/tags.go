package docmap

import (
	"fmt"
	"reflect"
	"strings"
)

// FieldTag contains the structured representation of a parsed `docmap` struct tag.
type FieldTag struct {
	// Name is the document field name.
	Name string
	// ID marks the field as the document identifier.
	ID bool
	// Default is the raw default literal, applied when the field is absent.
	Default string
	// HasDefault reports whether a default literal was declared.
	HasDefault bool
	// Skip indicates the field should be ignored by the mapper.
	Skip bool
}

// ParseTag parses the content of a `docmap` struct tag into a FieldTag
// structure. It supports a leading name override plus the options id and
// default=<literal>. A tag of "-" skips the field entirely.
func ParseTag(tag string) (FieldTag, error) {
	if tag == "" || tag == "-" {
		return FieldTag{Skip: tag == "-"}, nil
	}

	parts := strings.Split(tag, ",")
	ft := FieldTag{}

	for i, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if i == 0 && !strings.Contains(part, "=") && part != "id" && part != "-" {
			ft.Name = part
			continue
		}

		switch {
		case part == "id":
			ft.ID = true
		case part == "-":
			ft.Skip = true
		case strings.HasPrefix(part, "default="):
			ft.Default = strings.TrimPrefix(part, "default=")
			ft.HasDefault = true
		default:
			if i == 0 {
				ft.Name = part
			} else {
				return FieldTag{}, fmt.Errorf("unknown tag option: %q", part)
			}
		}
	}

	return ft, nil
}

// tagForField resolves the tag for a struct field. The `docmap` tag wins when
// present; otherwise the name part of a `bson` tag is honored so types shared
// with the MongoDB driver keep their wire names. With no tag at all the
// document name defaults to the lowercased Go field name.
func tagForField(f reflect.StructField) (FieldTag, error) {
	if tag, ok := f.Tag.Lookup("docmap"); ok {
		ft, err := ParseTag(tag)
		if err != nil {
			return FieldTag{}, fmt.Errorf("field %s: %w", f.Name, err)
		}
		return ft, nil
	}

	if tag, ok := f.Tag.Lookup("bson"); ok {
		name, _, _ := strings.Cut(tag, ",")
		name = strings.TrimSpace(name)
		if name == "-" {
			return FieldTag{Skip: true}, nil
		}
		return FieldTag{Name: name}, nil
	}

	return FieldTag{}, nil
}
