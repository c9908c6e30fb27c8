package sqlfilter

import (
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
)

const literalTrue = "TRUE"

// Filter is the translated, store native form of a predicate.
// The zero value matches every document.
type Filter struct {
	dialect    string
	expression exp.Expression
}

// MatchAll returns the filter without any condition.
func MatchAll() Filter {
	return Filter{}
}

// IsMatchAll reports whether the filter has no condition, i.e. renders without a WHERE clause.
func (f Filter) IsMatchAll() bool {
	return f.expression == nil
}

// Expression returns the goqu expression of the filter, nil for MatchAll.
func (f Filter) Expression() exp.Expression {
	return f.expression
}

// Translator compiles criteria expressions into Filters for one dialect and document column.
// It holds no mutable state and is safe for concurrent use.
type Translator struct {
	dialect  Dialect
	registry criteria.CodecRegistry
	column   string
}

// NewTranslator creates a Translator rendering paths against documentColumn.
func NewTranslator(dialect Dialect, registry criteria.CodecRegistry, documentColumn string) Translator {
	return Translator{
		dialect:  dialect,
		registry: registry,
		column:   documentColumn,
	}
}

// Dialect returns the dialect the translator renders for.
func (t Translator) Dialect() Dialect {
	return t.dialect
}

// Translate compiles e. It fails with *criteria.UnsupportedTypeError when a constant has no codec
// and with *criteria.UnsupportedOperatorError when the store lacks an operator.
func (t Translator) Translate(e criteria.Expression) (Filter, error) {
	if _, ok := e.(criteria.True); ok || e == nil {
		return MatchAll(), nil
	}

	expression, err := criteria.Accept[exp.Expression](e, expressionVisitor{translator: t})
	if err != nil {
		return Filter{}, err
	}

	return Filter{dialect: t.dialect.name, expression: expression}, nil
}

// TranslateCriteria compiles the root expression of c.
func TranslateCriteria[T any](t Translator, c criteria.Criteria[T]) (Filter, error) {
	return t.Translate(c.Expression())
}

type expressionVisitor struct {
	translator Translator
}

func (v expressionVisitor) VisitTrue(criteria.True) (exp.Expression, error) {
	return goqu.L(literalTrue), nil
}

func (v expressionVisitor) VisitNot(node criteria.Not) (exp.Expression, error) {
	child, err := criteria.Accept[exp.Expression](node.Child(), v)
	if err != nil {
		return nil, err
	}

	return goqu.L("NOT ?", child), nil
}

func (v expressionVisitor) VisitLogical(node criteria.Logical) (exp.Expression, error) {
	children := node.Children()
	translated := make([]exp.Expression, 0, len(children))

	for _, child := range children {
		expression, err := criteria.Accept[exp.Expression](child, v)
		if err != nil {
			return nil, err
		}

		translated = append(translated, expression)
	}

	if len(translated) == 1 {
		return translated[0], nil
	}

	switch node.Operator() {
	case criteria.OpAnd:
		return goqu.And(translated...), nil
	case criteria.OpOr:
		return goqu.Or(translated...), nil
	default:
		return nil, errors.Join(criteria.ErrInvalidExpression, fmt.Errorf("unknown logical operator %q", node.Operator()))
	}
}

func (v expressionVisitor) VisitComparison(node criteria.Comparison) (exp.Expression, error) {
	t := v.translator
	path := node.Path()

	encoded, err := t.registry.Encode(path, node.Value())
	if err != nil {
		return nil, err
	}

	compare, ok := t.dialect.comparators[node.Operator()]
	if !ok {
		return nil, &criteria.UnsupportedOperatorError{Operator: node.Operator(), Path: path, Store: t.dialect.name}
	}

	o := operand{
		column:   t.column,
		path:     path,
		repeated: node.Attribute().Repeated(),
		constant: node.Value(),
		encoded:  encoded,
		value:    t.dialect.valueAt(t.column, path),
		text:     t.dialect.textAt(t.column, path),
		literal:  t.dialect.literal(encoded),
	}

	if node.Value().Shape() == criteria.ShapeList {
		for _, item := range node.Value().Items() {
			encodedItem, itemErr := t.registry.Encode(path, item)
			if itemErr != nil {
				return nil, itemErr
			}

			o.items = append(o.items, t.dialect.literal(encodedItem))
		}
	}

	return compare(o), nil
}
