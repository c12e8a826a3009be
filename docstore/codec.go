package docstore

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mbannour/go-docmap/docmap"
)

var byteSliceType = reflect.TypeOf([]byte(nil))

// encodeBody serializes a document to its stored MessagePack form.
func encodeBody(doc docmap.Document) ([]byte, error) {
	body, err := msgpack.Marshal(map[string]any(doc))
	if err != nil {
		return nil, fmt.Errorf("docstore: encode body: %w", err)
	}
	return body, nil
}

// decodeBody deserializes a stored body back into a document. Interface
// decoding is loose, so every integer arrives as int64 or uint64 and binary
// data as string regardless of the width it was written with.
func decodeBody(body []byte) (docmap.Document, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(body))
	dec.UseLooseInterfaceDecoding(true)
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("docstore: decode body: %w", err)
	}
	return doc, nil
}

// reviveDocument walks a decoded document alongside its record descriptor
// and restores the declared scalar types that loose decoding collapsed.
// Keys without a matching field pass through untouched; materialization
// ignores them.
func reviveDocument(rd *docmap.RecordDescriptor, doc map[string]any) error {
	for name, raw := range doc {
		fd, ok := rd.FieldByDocName(name)
		if !ok || raw == nil {
			continue
		}
		revived, err := reviveField(fd, raw)
		if err != nil {
			return err
		}
		doc[name] = revived
	}
	return nil
}

func reviveField(fd *docmap.FieldDescriptor, raw any) (any, error) {
	switch fd.Kind {
	case docmap.KindScalar:
		return reviveScalar(fd.ValueType, raw), nil
	case docmap.KindRecord:
		sub, ok := raw.(map[string]any)
		if !ok {
			// Leave the mismatch for materialization to report
			return raw, nil
		}
		nested, err := docmap.DescriptorFor(fd.ValueType)
		if err != nil {
			return nil, err
		}
		if err := reviveDocument(nested, sub); err != nil {
			return nil, err
		}
		return sub, nil
	case docmap.KindSlice:
		list, ok := raw.([]any)
		if !ok {
			return raw, nil
		}
		for i, elem := range list {
			if elem != nil {
				list[i] = reviveScalar(fd.ElemType, elem)
			}
		}
		return list, nil
	case docmap.KindMap:
		m, ok := raw.(map[string]any)
		if !ok {
			return raw, nil
		}
		for k, v := range m {
			if v != nil {
				m[k] = reviveScalar(fd.ElemType, v)
			}
		}
		return m, nil
	default:
		// Enum ordinals and names are accepted as decoded
		return raw, nil
	}
}

// reviveScalar converts a loosely decoded value back to the declared scalar
// type. Values this package did not write, or that already carry the right
// type, are returned as is.
func reviveScalar(want reflect.Type, raw any) any {
	if want == byteSliceType {
		if s, ok := raw.(string); ok {
			return []byte(s)
		}
		return raw
	}
	rv := reflect.ValueOf(raw)
	if rv.Type() == want {
		return raw
	}
	switch rv.Kind() {
	case reflect.Int64, reflect.Uint64, reflect.Float64:
		if isNumeric(want.Kind()) && rv.CanConvert(want) {
			return rv.Convert(want).Interface()
		}
	case reflect.String:
		if want.Kind() == reflect.String {
			return rv.Convert(want).Interface()
		}
	}
	return raw
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
