package docstore

import (
	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
)

// Mapper converts between an entity and the field values stored in its document.
// Fields lists every attribute FromDocument may read; its paths must not overlap.
type Mapper[T any] interface {
	Fields() []criteria.Attribute
	ToValues(entity T) []FieldValue
	FromDocument(values Values) (T, error)
}

// FieldValue is one stored field of an entity.
type FieldValue struct {
	Path  criteria.Path
	Value criteria.Constant
}

// Set is a shorthand for building a FieldValue from a dotted path.
func Set(path string, value criteria.Constant) FieldValue {
	return FieldValue{Path: criteria.MustPath(path), Value: value}
}

// Values holds the decoded fields of one stored document keyed by their dotted path.
// Fields missing from the document are absent, fields stored as JSON null hold criteria.Null().
type Values struct {
	byPath map[string]criteria.Constant
}

// Get returns the constant stored at path.
func (v Values) Get(path string) (criteria.Constant, bool) {
	c, ok := v.byPath[path]
	return c, ok
}

// Len returns the number of decoded fields.
func (v Values) Len() int {
	return len(v.byPath)
}

// ValueAs returns the Go value of the scalar at path. It reports false when the field is
// missing, null or holds a different Go type.
func ValueAs[V any](values Values, path string) (V, bool) {
	var zero V

	c, ok := values.Get(path)
	if !ok || c.IsNull() || c.Shape() != criteria.ShapeScalar {
		return zero, false
	}

	value, ok := c.Value().(V)
	if !ok {
		return zero, false
	}

	return value, true
}

// ListAs returns the Go values of the list at path.
func ListAs[V any](values Values, path string) ([]V, bool) {
	c, ok := values.Get(path)
	if !ok || c.Shape() != criteria.ShapeList {
		return nil, false
	}

	items := c.Items()
	result := make([]V, 0, len(items))

	for _, item := range items {
		value, ok := item.Value().(V)
		if !ok {
			return nil, false
		}

		result = append(result, value)
	}

	return result, true
}
