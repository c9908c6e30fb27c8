package criteria

// Criteria is an immutable predicate over the fields of entity type T.
// The zero value matches every entity.
type Criteria[T any] struct {
	root Expression
}

// All returns the Criteria matching every entity.
func All[T any]() Criteria[T] {
	return Criteria[T]{}
}

// Must panics if err is not nil and returns c otherwise.
func Must[T any](c Criteria[T], err error) Criteria[T] {
	if err != nil {
		panic(err)
	}

	return c
}

// Expression returns the root of the predicate tree.
func (c Criteria[T]) Expression() Expression {
	if c.root == nil {
		return True{}
	}

	return c.root
}

// MatchesAll reports whether the root is True.
func (c Criteria[T]) MatchesAll() bool {
	_, ok := c.Expression().(True)
	return ok
}

// And returns the conjunction of c and other.
// If either side matches all, the other side is returned unchanged.
func (c Criteria[T]) And(other Criteria[T]) Criteria[T] {
	return combine(OpAnd, c, other)
}

// Or returns the disjunction of c and other.
// If either side matches all, the other side is returned unchanged.
func (c Criteria[T]) Or(other Criteria[T]) Criteria[T] {
	return combine(OpOr, c, other)
}

// Not returns the negation of c. Negations are never simplified.
func (c Criteria[T]) Not() Criteria[T] {
	return Criteria[T]{root: NewNot(c.Expression())}
}

// Equal reports structural equality.
func (c Criteria[T]) Equal(other Criteria[T]) bool {
	return c.Expression().Equal(other.Expression())
}

func (c Criteria[T]) String() string {
	return c.Expression().String()
}

// Fingerprint returns a stable hash of c. Structurally equal criteria have equal fingerprints,
// criteria that differ in a path, an attribute type or a value have different ones.
func (c Criteria[T]) Fingerprint() string {
	return fingerprintOf(c.Expression())
}

// And folds all criteria into one conjunction.
func And[T any](all ...Criteria[T]) Criteria[T] {
	result := All[T]()
	for _, c := range all {
		result = result.And(c)
	}

	return result
}

// Or folds all criteria into one disjunction.
func Or[T any](all ...Criteria[T]) Criteria[T] {
	result := All[T]()
	for _, c := range all {
		result = result.Or(c)
	}

	return result
}

// Negate negates c. It is the package level form of c.Not().
func Negate[T any](c Criteria[T]) Criteria[T] {
	return c.Not()
}

func combine[T any](op LogicalOperator, left, right Criteria[T]) Criteria[T] {
	if left.MatchesAll() {
		return right
	}

	if right.MatchesAll() {
		return left
	}

	children := append(junctionChildren(op, left.Expression()), junctionChildren(op, right.Expression())...)

	return Criteria[T]{root: Logical{operator: op, children: children}}
}

// junctionChildren flattens chains of the same operator, keeping build order.
func junctionChildren(op LogicalOperator, e Expression) []Expression {
	if logical, ok := e.(Logical); ok && logical.operator == op {
		return logical.Children()
	}

	return []Expression{e}
}
