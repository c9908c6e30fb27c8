package criteria

import (
	"errors"
	"fmt"
	"strings"
)

// Operator is a comparison operator of a Comparison node.
type Operator string

// Comparison operators.
const (
	OpEqual          Operator = "EQUAL"
	OpNotEqual       Operator = "NOT_EQUAL"
	OpGreater        Operator = "GREATER"
	OpGreaterOrEqual Operator = "GREATER_OR_EQUAL"
	OpLess           Operator = "LESS"
	OpLessOrEqual    Operator = "LESS_OR_EQUAL"
	OpIn             Operator = "IN"
	OpNotIn          Operator = "NOT_IN"
	OpContains       Operator = "CONTAINS"
	OpMatches        Operator = "MATCHES"
)

// Operators returns every comparison operator in declaration order.
func Operators() []Operator {
	return []Operator{
		OpEqual, OpNotEqual,
		OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual,
		OpIn, OpNotIn,
		OpContains, OpMatches,
	}
}

func (o Operator) String() string {
	return string(o)
}

func (o Operator) isKnown() bool {
	for _, known := range Operators() {
		if o == known {
			return true
		}
	}

	return false
}

func (o Operator) isOrdering() bool {
	switch o {
	case OpGreater, OpGreaterOrEqual, OpLess, OpLessOrEqual:
		return true
	default:
		return false
	}
}

// LogicalOperator joins the children of a Logical node.
type LogicalOperator string

// Logical operators.
const (
	OpAnd LogicalOperator = "AND"
	OpOr  LogicalOperator = "OR"
)

func (o LogicalOperator) String() string {
	return string(o)
}

// Attribute describes a typed field: its path, the semantic type of its value
// (of its elements, for repeated fields) and whether it holds a list.
type Attribute struct {
	path         Path
	semanticType SemanticType
	repeated     bool
}

// NewAttribute describes a single valued field.
func NewAttribute(path Path, t SemanticType) Attribute {
	return Attribute{path: path, semanticType: t}
}

// NewRepeatedAttribute describes a list field with elements of type elem.
func NewRepeatedAttribute(path Path, elem SemanticType) Attribute {
	return Attribute{path: path, semanticType: elem, repeated: true}
}

func (a Attribute) Path() Path {
	return a.path
}

func (a Attribute) Type() SemanticType {
	return a.semanticType
}

func (a Attribute) Repeated() bool {
	return a.repeated
}

func (a Attribute) String() string {
	if a.repeated {
		return a.path.String() + "[]"
	}

	return a.path.String()
}

// Expression is a node of a predicate tree. The set of implementations is closed:
// Comparison, Logical, Not and True.
type Expression interface {
	fmt.Stringer
	Equal(other Expression) bool
	expression()
}

// Visitor handles one method per Expression variant.
type Visitor[R any] interface {
	VisitComparison(node Comparison) (R, error)
	VisitLogical(node Logical) (R, error)
	VisitNot(node Not) (R, error)
	VisitTrue(node True) (R, error)
}

// Accept dispatches e to the matching Visitor method. A nil expression is visited as True.
func Accept[R any](e Expression, v Visitor[R]) (R, error) {
	switch node := e.(type) {
	case nil:
		return v.VisitTrue(True{})
	case Comparison:
		return v.VisitComparison(node)
	case Logical:
		return v.VisitLogical(node)
	case Not:
		return v.VisitNot(node)
	case True:
		return v.VisitTrue(node)
	default:
		var zero R
		return zero, errors.Join(ErrInvalidExpression, fmt.Errorf("unexpected node %T", e))
	}
}

// Comparison compares the value at a field with a constant.
type Comparison struct {
	operator  Operator
	attribute Attribute
	value     Constant
}

// Compare builds a validated Comparison.
// It fails with *InvalidPredicateError when op is not applicable to the attribute or value type.
func Compare(op Operator, attribute Attribute, value Constant) (Comparison, error) {
	if err := validateComparison(op, attribute, value); err != nil {
		return Comparison{}, err
	}

	return Comparison{operator: op, attribute: attribute, value: value}, nil
}

func (c Comparison) Operator() Operator {
	return c.operator
}

func (c Comparison) Attribute() Attribute {
	return c.attribute
}

func (c Comparison) Path() Path {
	return c.attribute.path
}

func (c Comparison) Value() Constant {
	return c.value
}

func (c Comparison) Equal(other Expression) bool {
	o, ok := other.(Comparison)

	return ok &&
		c.operator == o.operator &&
		c.attribute == o.attribute &&
		c.value.Equal(o.value)
}

func (c Comparison) String() string {
	return c.attribute.String() + " " + c.operator.String() + " " + c.value.String()
}

func (Comparison) expression() {}

// Logical joins at least one child with AND or OR. Children keep their build order.
type Logical struct {
	operator LogicalOperator
	children []Expression
}

// NewLogical builds a junction. It fails with ErrInvalidExpression for no children,
// nil children or an unknown operator.
func NewLogical(op LogicalOperator, children ...Expression) (Logical, error) {
	if op != OpAnd && op != OpOr {
		return Logical{}, errors.Join(ErrInvalidExpression, fmt.Errorf("unknown logical operator %q", op))
	}

	if len(children) == 0 {
		return Logical{}, errors.Join(ErrInvalidExpression, fmt.Errorf("%s without children", op))
	}

	for i, child := range children {
		if child == nil {
			return Logical{}, errors.Join(ErrInvalidExpression, fmt.Errorf("%s child %d is nil", op, i))
		}
	}

	return Logical{operator: op, children: append([]Expression(nil), children...)}, nil
}

func (l Logical) Operator() LogicalOperator {
	return l.operator
}

// Children returns a copy of the child expressions.
func (l Logical) Children() []Expression {
	return append([]Expression(nil), l.children...)
}

func (l Logical) Equal(other Expression) bool {
	o, ok := other.(Logical)
	if !ok || l.operator != o.operator || len(l.children) != len(o.children) {
		return false
	}

	for i := range l.children {
		if !l.children[i].Equal(o.children[i]) {
			return false
		}
	}

	return true
}

func (l Logical) String() string {
	parts := make([]string, 0, len(l.children))
	for _, child := range l.children {
		parts = append(parts, child.String())
	}

	return "(" + strings.Join(parts, " "+l.operator.String()+" ") + ")"
}

func (Logical) expression() {}

// Not negates its child.
type Not struct {
	child Expression
}

// NewNot negates child. A nil child is treated as True.
func NewNot(child Expression) Not {
	if child == nil {
		child = True{}
	}

	return Not{child: child}
}

// Child returns the negated expression.
func (n Not) Child() Expression {
	if n.child == nil {
		return True{}
	}

	return n.child
}

func (n Not) Equal(other Expression) bool {
	o, ok := other.(Not)

	return ok && n.Child().Equal(o.Child())
}

func (n Not) String() string {
	return "NOT (" + n.Child().String() + ")"
}

func (Not) expression() {}

// True matches every document.
type True struct{}

func (True) Equal(other Expression) bool {
	_, ok := other.(True)
	return ok
}

func (True) String() string {
	return "TRUE"
}

func (True) expression() {}
