package criteria

// Field is a typed attribute of entity type T.
// Generated entity layers declare one Field per document field.
type Field[T any] struct {
	attribute Attribute
}

// NewField declares a single valued field. It panics on an invalid path.
func NewField[T any](path string, t SemanticType) Field[T] {
	return Field[T]{attribute: NewAttribute(MustPath(path), t)}
}

// NewRepeatedField declares a list field with elements of type elem. It panics on an invalid path.
func NewRepeatedField[T any](path string, elem SemanticType) Field[T] {
	return Field[T]{attribute: NewRepeatedAttribute(MustPath(path), elem)}
}

func (f Field[T]) Attribute() Attribute {
	return f.attribute
}

func (f Field[T]) Path() Path {
	return f.attribute.Path()
}

// Condition is the pending comparison started by Where.
type Condition[T any] struct {
	attribute Attribute
}

// Where starts a comparison on field.
func Where[T any](field Field[T]) Condition[T] {
	return Condition[T]{attribute: field.attribute}
}

// IsEqualTo matches when the field equals value. For repeated fields value is a list.
func (c Condition[T]) IsEqualTo(value Constant) (Criteria[T], error) {
	return c.compare(OpEqual, value)
}

// IsNotEqualTo matches when the field differs from value, including when it is missing.
func (c Condition[T]) IsNotEqualTo(value Constant) (Criteria[T], error) {
	return c.compare(OpNotEqual, value)
}

func (c Condition[T]) IsGreaterThan(value Constant) (Criteria[T], error) {
	return c.compare(OpGreater, value)
}

func (c Condition[T]) IsGreaterThanOrEqualTo(value Constant) (Criteria[T], error) {
	return c.compare(OpGreaterOrEqual, value)
}

func (c Condition[T]) IsLessThan(value Constant) (Criteria[T], error) {
	return c.compare(OpLess, value)
}

func (c Condition[T]) IsLessThanOrEqualTo(value Constant) (Criteria[T], error) {
	return c.compare(OpLessOrEqual, value)
}

// IsIn matches when the field equals one of values. At least one value is required.
func (c Condition[T]) IsIn(values ...Constant) (Criteria[T], error) {
	return c.compare(OpIn, ListOf(c.attribute.Type(), values...))
}

// IsNotIn matches when the field equals none of values, including when it is missing.
func (c Condition[T]) IsNotIn(values ...Constant) (Criteria[T], error) {
	return c.compare(OpNotIn, ListOf(c.attribute.Type(), values...))
}

// Contains matches repeated fields holding value, or string fields containing value as a substring.
func (c Condition[T]) Contains(value Constant) (Criteria[T], error) {
	return c.compare(OpContains, value)
}

// Matches matches string fields against a regular expression. The pattern must compile in Go
// and stay within the syntax PostgreSQL shares with it: no named groups, no inline flags
// other than a leading (?i), and no \z, \C, \p, \P, \Q or \E escapes.
func (c Condition[T]) Matches(pattern string) (Criteria[T], error) {
	return c.compare(OpMatches, String(pattern))
}

func (c Condition[T]) IsNull() (Criteria[T], error) {
	return c.compare(OpEqual, Null())
}

func (c Condition[T]) IsNotNull() (Criteria[T], error) {
	return c.compare(OpNotEqual, Null())
}

func (c Condition[T]) compare(op Operator, value Constant) (Criteria[T], error) {
	comparison, err := Compare(op, c.attribute, value)
	if err != nil {
		return Criteria[T]{}, err
	}

	return Criteria[T]{root: comparison}, nil
}
