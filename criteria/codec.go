package criteria

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

// DateLayout is the fixed width UTC layout dates are encoded with.
// Encoded dates sort lexicographically in chronological order.
const DateLayout = "2006-01-02T15:04:05.000000000Z"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var jsonNull = []byte("null")

// EncodeFunc encodes a scalar constant into a JSON literal.
type EncodeFunc func(value Constant) ([]byte, error)

// DecodeFunc decodes a JSON literal into a scalar constant.
type DecodeFunc func(raw []byte) (Constant, error)

// Codec is the encode/decode pair registered for one semantic type.
type Codec struct {
	Encode EncodeFunc
	Decode DecodeFunc
}

// CodecRegistry maps semantic types to codecs. It is immutable after Finalize
// and safe to share between goroutines.
type CodecRegistry struct {
	codecs map[SemanticType]Codec
}

// CodecRegistryBuilder collects codecs. Every method returns a new builder.
type CodecRegistryBuilder struct {
	codecs map[SemanticType]Codec
}

// BuildCodecRegistry starts an empty registry.
func BuildCodecRegistry() CodecRegistryBuilder {
	return CodecRegistryBuilder{codecs: make(map[SemanticType]Codec)}
}

// DefaultCodecRegistry returns a registry with codecs for all built-in scalar types.
func DefaultCodecRegistry() CodecRegistry {
	return BuildCodecRegistry().WithDefaults().Finalize()
}

// WithDefaults registers the codecs of the built-in scalar types.
func (b CodecRegistryBuilder) WithDefaults() CodecRegistryBuilder {
	next := b
	for t, codec := range defaultCodecs() {
		next = next.Register(t, codec)
	}

	return next
}

// Register adds or replaces the codec for t.
func (b CodecRegistryBuilder) Register(t SemanticType, codec Codec) CodecRegistryBuilder {
	codecs := make(map[SemanticType]Codec, len(b.codecs)+1)
	for k, v := range b.codecs {
		codecs[k] = v
	}

	codecs[t] = codec

	return CodecRegistryBuilder{codecs: codecs}
}

// Finalize returns the immutable registry.
func (b CodecRegistryBuilder) Finalize() CodecRegistry {
	codecs := make(map[SemanticType]Codec, len(b.codecs))
	for k, v := range b.codecs {
		codecs[k] = v
	}

	return CodecRegistry{codecs: codecs}
}

// Lookup returns the codec registered for t.
func (r CodecRegistry) Lookup(t SemanticType) (Codec, bool) {
	codec, ok := r.codecs[t]
	if !ok || codec.Encode == nil || codec.Decode == nil {
		return Codec{}, false
	}

	return codec, true
}

// Types returns the registered semantic types, sorted.
func (r CodecRegistry) Types() []SemanticType {
	types := make([]SemanticType, 0, len(r.codecs))
	for t := range r.codecs {
		types = append(types, t)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}

// Encode renders value as JSON. Lists are encoded item by item, so the item type needs a codec.
// Objects are encoded by the codec registered for TypeObject, see ObjectCodec.
// It fails with *UnsupportedTypeError naming path when a codec is missing.
func (r CodecRegistry) Encode(path Path, value Constant) ([]byte, error) {
	switch value.Shape() {
	case ShapeList:
		if _, ok := r.Lookup(value.Type()); !ok {
			return nil, &UnsupportedTypeError{Type: value.Type(), Path: path}
		}

		var buf bytes.Buffer
		buf.WriteByte('[')

		for i, item := range value.Items() {
			if i > 0 {
				buf.WriteByte(',')
			}

			encoded, err := r.Encode(path, item)
			if err != nil {
				return nil, err
			}

			buf.Write(encoded)
		}

		buf.WriteByte(']')

		return buf.Bytes(), nil

	case ShapeObject:
		codec, ok := r.Lookup(TypeObject)
		if !ok {
			return nil, &UnsupportedTypeError{Type: TypeObject, Path: path}
		}

		encoded, err := codec.Encode(value)
		if err != nil {
			var typeErr *UnsupportedTypeError
			if errors.As(err, &typeErr) {
				memberPath, pathErr := path.Child(typeErr.Path.String())
				if pathErr != nil {
					return nil, pathErr
				}

				return nil, &UnsupportedTypeError{Type: typeErr.Type, Path: memberPath}
			}

			return nil, errors.Join(ErrCodecFailed, fmt.Errorf("encode object at %q: %w", path.String(), err))
		}

		return encoded, nil

	default:
		codec, ok := r.Lookup(value.Type())
		if !ok {
			return nil, &UnsupportedTypeError{Type: value.Type(), Path: path}
		}

		encoded, err := codec.Encode(value)
		if err != nil {
			return nil, errors.Join(ErrCodecFailed, fmt.Errorf("encode %s at %q: %w", value.Type(), path.String(), err))
		}

		return encoded, nil
	}
}

// Decode turns a JSON literal back into a scalar constant of type t.
// JSON null always decodes to Null().
func (r CodecRegistry) Decode(path Path, t SemanticType, raw []byte) (Constant, error) {
	codec, ok := r.Lookup(t)
	if !ok {
		return Constant{}, &UnsupportedTypeError{Type: t, Path: path}
	}

	if isJSONNull(raw) {
		return Null(), nil
	}

	value, err := codec.Decode(raw)
	if err != nil {
		return Constant{}, errors.Join(ErrCodecFailed, fmt.Errorf("decode %s at %q: %w", t, path.String(), err))
	}

	return value, nil
}

// DecodeList turns a JSON array into a list constant with items of type elem.
func (r CodecRegistry) DecodeList(path Path, elem SemanticType, raw []byte) (Constant, error) {
	if _, ok := r.Lookup(elem); !ok {
		return Constant{}, &UnsupportedTypeError{Type: elem, Path: path}
	}

	if isJSONNull(raw) {
		return Null(), nil
	}

	var rawItems []jsoniter.RawMessage
	if err := json.Unmarshal(raw, &rawItems); err != nil {
		return Constant{}, errors.Join(ErrCodecFailed, fmt.Errorf("decode list of %s at %q: %w", elem, path.String(), err))
	}

	items := make([]Constant, 0, len(rawItems))
	for _, rawItem := range rawItems {
		item, err := r.Decode(path, elem, rawItem)
		if err != nil {
			return Constant{}, err
		}

		items = append(items, item)
	}

	return ListOf(elem, items...), nil
}

// ObjectCodec encodes object constants member by member through registry, in member order.
// Decoding keeps the stored member order and decodes each member with its type from schema;
// a member schema does not name fails. Nested objects are not supported.
func ObjectCodec(registry CodecRegistry, schema map[string]SemanticType) Codec {
	return Codec{
		Encode: func(value Constant) ([]byte, error) {
			if value.Shape() != ShapeObject {
				return nil, fmt.Errorf("%s value is not an object", value.Type())
			}

			var buf bytes.Buffer
			buf.WriteByte('{')

			for i, member := range value.Members() {
				memberPath, err := ParsePath(member.Name)
				if err != nil {
					return nil, err
				}

				encoded, err := registry.Encode(memberPath, member.Value)
				if err != nil {
					return nil, err
				}

				name, err := json.Marshal(member.Name)
				if err != nil {
					return nil, err
				}

				if i > 0 {
					buf.WriteByte(',')
				}

				buf.Write(name)
				buf.WriteByte(':')
				buf.Write(encoded)
			}

			buf.WriteByte('}')

			return buf.Bytes(), nil
		},
		Decode: func(raw []byte) (Constant, error) {
			iter := json.BorrowIterator(raw)
			defer json.ReturnIterator(iter)

			var members []Member
			var memberErr error

			iter.ReadObjectCB(func(iter *jsoniter.Iterator, name string) bool {
				memberRaw := append([]byte(nil), iter.SkipAndReturnBytes()...)

				memberType, ok := schema[name]
				if !ok {
					memberErr = fmt.Errorf("unknown object member %q", name)
					return false
				}

				memberPath, err := ParsePath(name)
				if err != nil {
					memberErr = err
					return false
				}

				var decoded Constant
				if bytes.HasPrefix(bytes.TrimSpace(memberRaw), []byte("[")) {
					decoded, err = registry.DecodeList(memberPath, memberType, memberRaw)
				} else {
					decoded, err = registry.Decode(memberPath, memberType, memberRaw)
				}

				if err != nil {
					memberErr = err
					return false
				}

				members = append(members, Member{Name: name, Value: decoded})

				return true
			})

			if memberErr != nil {
				return Constant{}, memberErr
			}

			if iter.Error != nil {
				return Constant{}, iter.Error
			}

			return Object(members...), nil
		},
	}
}

func isJSONNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

func defaultCodecs() map[SemanticType]Codec {
	return map[SemanticType]Codec{
		TypeString: {
			Encode: encodeText,
			Decode: decodeScalar(String),
		},
		TypeInteger: {
			Encode: encodeScalar[int64],
			Decode: decodeScalar(Int),
		},
		TypeNumber: {
			Encode: encodeScalar[float64],
			Decode: decodeScalar(Float),
		},
		TypeBoolean: {
			Encode: encodeScalar[bool],
			Decode: decodeScalar(Bool),
		},
		TypeEnum: {
			Encode: encodeText,
			Decode: decodeScalar(Enum),
		},
		TypeDate: {
			Encode: func(value Constant) ([]byte, error) {
				t, err := scalarAs[time.Time](value)
				if err != nil {
					return nil, err
				}

				return json.Marshal(t.UTC().Format(DateLayout))
			},
			Decode: func(raw []byte) (Constant, error) {
				var s string
				if err := json.Unmarshal(raw, &s); err != nil {
					return Constant{}, err
				}

				t, err := time.Parse(time.RFC3339Nano, s)
				if err != nil {
					return Constant{}, err
				}

				return Date(t), nil
			},
		},
		TypeIdentifier: {
			Encode: func(value Constant) ([]byte, error) {
				id, err := scalarAs[uuid.UUID](value)
				if err != nil {
					return nil, err
				}

				return json.Marshal(id.String())
			},
			Decode: func(raw []byte) (Constant, error) {
				var s string
				if err := json.Unmarshal(raw, &s); err != nil {
					return Constant{}, err
				}

				id, err := uuid.Parse(s)
				if err != nil {
					return Constant{}, err
				}

				return ID(id), nil
			},
		},
		TypeBinary: {
			Encode: func(value Constant) ([]byte, error) {
				b, err := scalarAs[[]byte](value)
				if err != nil {
					return nil, err
				}

				return json.Marshal(base64.StdEncoding.EncodeToString(b))
			},
			Decode: func(raw []byte) (Constant, error) {
				var s string
				if err := json.Unmarshal(raw, &s); err != nil {
					return Constant{}, err
				}

				b, err := base64.StdEncoding.DecodeString(s)
				if err != nil {
					return Constant{}, err
				}

				return Binary(b), nil
			},
		},
		TypeNull: {
			Encode: func(Constant) ([]byte, error) {
				return []byte("null"), nil
			},
			Decode: func(raw []byte) (Constant, error) {
				if !isJSONNull(raw) {
					return Constant{}, fmt.Errorf("expected null, got %s", raw)
				}

				return Null(), nil
			},
		},
	}
}

func encodeScalar[V any](value Constant) ([]byte, error) {
	v, err := scalarAs[V](value)
	if err != nil {
		return nil, err
	}

	return json.Marshal(v)
}

// encodeText rejects invalid UTF-8, which JSON would otherwise replace with U+FFFD.
func encodeText(value Constant) ([]byte, error) {
	s, err := scalarAs[string](value)
	if err != nil {
		return nil, err
	}

	if !utf8.ValidString(s) {
		return nil, fmt.Errorf("%s value is not valid UTF-8: %q", value.Type(), s)
	}

	return json.Marshal(s)
}

func decodeScalar[V any](wrap func(V) Constant) DecodeFunc {
	return func(raw []byte) (Constant, error) {
		var v V
		if err := json.Unmarshal(raw, &v); err != nil {
			return Constant{}, err
		}

		return wrap(v), nil
	}
}

func scalarAs[V any](value Constant) (V, error) {
	v, ok := value.Value().(V)
	if !ok {
		var zero V
		return zero, fmt.Errorf("%s value has Go type %T, want %T", value.Type(), value.Value(), zero)
	}

	return v, nil
}
