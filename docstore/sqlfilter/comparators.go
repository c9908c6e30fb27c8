package sqlfilter

import (
	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
)

// operand carries everything a comparator needs to render one Comparison.
type operand struct {
	column   string
	path     criteria.Path
	repeated bool
	constant criteria.Constant
	encoded  []byte
	value    exp.LiteralExpression // JSON value at path
	text     exp.LiteralExpression // text value at path
	literal  exp.LiteralExpression // encoded constant
	items    []any                 // encoded list items
}

// plain returns the raw string of a string constant, used by the text operators.
func (o operand) plain() string {
	s, _ := o.constant.Value().(string)
	return s
}

type comparator func(o operand) exp.Expression

// orderedJSONB compares only values of the literal's JSON type.
// jsonb orders across types and sorts null below everything else.
func orderedJSONB(operator string) comparator {
	return func(o operand) exp.Expression {
		return goqu.L("(jsonb_typeof(?) = jsonb_typeof(?) AND ? "+operator+" ?)", o.value, o.literal, o.value, o.literal)
	}
}

var postgresComparators = map[criteria.Operator]comparator{
	criteria.OpEqual: func(o operand) exp.Expression {
		if o.constant.IsNull() {
			return goqu.Or(o.value.IsNull(), o.value.Eq(o.literal))
		}

		return o.value.Eq(o.literal)
	},
	criteria.OpNotEqual: func(o operand) exp.Expression {
		if o.constant.IsNull() {
			return goqu.And(o.value.IsNotNull(), o.value.Neq(o.literal))
		}

		return goqu.L("(? IS DISTINCT FROM ?)", o.value, o.literal)
	},
	criteria.OpGreater:        orderedJSONB(">"),
	criteria.OpGreaterOrEqual: orderedJSONB(">="),
	criteria.OpLess:           orderedJSONB("<"),
	criteria.OpLessOrEqual:    orderedJSONB("<="),
	criteria.OpIn: func(o operand) exp.Expression {
		return o.value.In(o.items...)
	},
	criteria.OpNotIn: func(o operand) exp.Expression {
		return goqu.Or(o.value.IsNull(), o.value.NotIn(o.items...))
	},
	criteria.OpContains: func(o operand) exp.Expression {
		if o.repeated {
			return goqu.L("(? @> ?)", o.value, goqu.L(castJsonb, "["+string(o.encoded)+"]"))
		}

		return goqu.L("(strpos(?, ?) > 0)", o.text, o.plain())
	},
	criteria.OpMatches: func(o operand) exp.Expression {
		return goqu.L("(? ~ ?)", o.text, o.plain())
	},
}

var sqliteComparators = map[criteria.Operator]comparator{
	criteria.OpEqual: func(o operand) exp.Expression {
		if o.constant.IsNull() {
			return o.value.IsNull()
		}

		return o.value.Eq(o.literal)
	},
	criteria.OpNotEqual: func(o operand) exp.Expression {
		if o.constant.IsNull() {
			return o.value.IsNotNull()
		}

		return goqu.L("(? IS NOT ?)", o.value, o.literal)
	},
	criteria.OpGreater: func(o operand) exp.Expression {
		return o.value.Gt(o.literal)
	},
	criteria.OpGreaterOrEqual: func(o operand) exp.Expression {
		return o.value.Gte(o.literal)
	},
	criteria.OpLess: func(o operand) exp.Expression {
		return o.value.Lt(o.literal)
	},
	criteria.OpLessOrEqual: func(o operand) exp.Expression {
		return o.value.Lte(o.literal)
	},
	criteria.OpIn: func(o operand) exp.Expression {
		return o.value.In(o.items...)
	},
	criteria.OpNotIn: func(o operand) exp.Expression {
		return goqu.Or(o.value.IsNull(), o.value.NotIn(o.items...))
	},
	criteria.OpContains: func(o operand) exp.Expression {
		if o.repeated {
			return goqu.L(
				"EXISTS (SELECT 1 FROM json_each(?, ?) WHERE json_each.value = ?)",
				goqu.I(o.column), sqlitePath(o.path), o.literal,
			)
		}

		return goqu.L("(instr(?, ?) > 0)", o.text, o.plain())
	},
}
