package docstore

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// encodeDocument assembles one JSON object from the field values of an entity.
// Every value is encoded with registry, so unregistered types fail here with *criteria.UnsupportedTypeError.
func encodeDocument(registry criteria.CodecRegistry, fields []FieldValue) ([]byte, error) {
	root := make(map[string]any)

	for _, field := range fields {
		encoded, err := registry.Encode(field.Path, field.Value)
		if err != nil {
			return nil, err
		}

		if err = place(root, field.Path, jsoniter.RawMessage(encoded)); err != nil {
			return nil, err
		}
	}

	document, err := json.Marshal(root)
	if err != nil {
		return nil, errors.Join(ErrEncodingDocumentFailed, err)
	}

	return document, nil
}

// place stores raw at path inside root, creating intermediate objects.
func place(root map[string]any, path criteria.Path, raw jsoniter.RawMessage) error {
	segments := path.Segments()
	if len(segments) == 0 {
		return errors.Join(ErrEncodingDocumentFailed, criteria.ErrInvalidPath)
	}

	node := root

	for _, segment := range segments[:len(segments)-1] {
		switch child := node[segment].(type) {
		case nil:
			next := make(map[string]any)
			node[segment] = next
			node = next
		case map[string]any:
			node = child
		default:
			return errors.Join(ErrEncodingDocumentFailed, fmt.Errorf("path %q crosses the scalar at %q", path, segment))
		}
	}

	leaf := segments[len(segments)-1]
	if _, taken := node[leaf]; taken {
		return errors.Join(ErrEncodingDocumentFailed, fmt.Errorf("path %q is set twice", path))
	}

	node[leaf] = raw

	return nil
}

// decodeDocument splits a stored document along the mapped attributes and decodes every present field.
func decodeDocument(registry criteria.CodecRegistry, fields []criteria.Attribute, document []byte) (Values, error) {
	var root map[string]jsoniter.RawMessage
	if err := json.Unmarshal(document, &root); err != nil {
		return Values{}, errors.Join(ErrDecodingDocumentFailed, err)
	}

	values := Values{byPath: make(map[string]criteria.Constant, len(fields))}

	for _, field := range fields {
		raw, found := lookup(root, field.Path())
		if !found {
			continue
		}

		var decoded criteria.Constant
		var err error
		if field.Repeated() {
			decoded, err = registry.DecodeList(field.Path(), field.Type(), raw)
		} else {
			decoded, err = registry.Decode(field.Path(), field.Type(), raw)
		}

		if err != nil {
			return Values{}, errors.Join(ErrDecodingDocumentFailed, err)
		}

		values.byPath[field.Path().String()] = decoded
	}

	return values, nil
}

// lookup walks root along path. A segment below a non-object value counts as missing.
func lookup(root map[string]jsoniter.RawMessage, path criteria.Path) (jsoniter.RawMessage, bool) {
	segments := path.Segments()
	node := root

	for i, segment := range segments {
		raw, ok := node[segment]
		if !ok {
			return nil, false
		}

		if i == len(segments)-1 {
			return raw, true
		}

		var next map[string]jsoniter.RawMessage
		if err := json.Unmarshal(raw, &next); err != nil || next == nil {
			return nil, false
		}

		node = next
	}

	return nil, false
}
