package criteria

import (
	"regexp"
	"strings"
)

const (
	reasonEmptyPath          = "path is empty"
	reasonUnknownOperator    = "unknown operator"
	reasonNullNotEquality    = "null can only be compared with EQUAL or NOT_EQUAL"
	reasonTypeMismatch       = "value type does not match field type"
	reasonNotScalar          = "value must be a single value"
	reasonNotList            = "value must be a list"
	reasonEmptyList          = "list must not be empty"
	reasonNotOrderable       = "type has no ordering"
	reasonRepeatedField      = "not applicable to a repeated field"
	reasonNotContainable     = "field is neither repeated nor a string"
	reasonNotString          = "field is not a string"
	reasonInvalidPattern     = "pattern does not compile: "
	reasonNonPortablePattern = "pattern uses syntax PostgreSQL regular expressions lack: "
	reasonListItemIsNull     = "list items must not be null"
	reasonListItemMismatched = "list item type does not match field type"
)

func validateComparison(op Operator, attribute Attribute, value Constant) error {
	fail := func(t SemanticType, reason string) error {
		return &InvalidPredicateError{Path: attribute.Path(), Operator: op, Type: t, Reason: reason}
	}

	if attribute.Path().IsZero() {
		return fail(attribute.Type(), reasonEmptyPath)
	}

	if !op.isKnown() {
		return fail(value.Type(), reasonUnknownOperator)
	}

	if value.IsNull() {
		if op != OpEqual && op != OpNotEqual {
			return fail(TypeNull, reasonNullNotEquality)
		}

		return nil
	}

	switch {
	case op == OpEqual || op == OpNotEqual:
		if attribute.Repeated() {
			return validateList(attribute, value, true, fail)
		}

		return validateSingle(attribute, value, fail)

	case op.isOrdering():
		if attribute.Repeated() {
			return fail(attribute.Type(), reasonRepeatedField)
		}

		if !attribute.Type().IsOrderable() {
			return fail(attribute.Type(), reasonNotOrderable)
		}

		return validateSingle(attribute, value, fail)

	case op == OpIn || op == OpNotIn:
		if attribute.Repeated() {
			return fail(attribute.Type(), reasonRepeatedField)
		}

		return validateList(attribute, value, false, fail)

	case op == OpContains:
		if attribute.Repeated() {
			return validateSingle(attribute, value, fail)
		}

		if attribute.Type() != TypeString {
			return fail(attribute.Type(), reasonNotContainable)
		}

		return validateSingle(attribute, value, fail)

	default: // OpMatches
		if attribute.Repeated() {
			return fail(attribute.Type(), reasonRepeatedField)
		}

		if attribute.Type() != TypeString {
			return fail(attribute.Type(), reasonNotString)
		}

		if err := validateSingle(attribute, value, fail); err != nil {
			return err
		}

		pattern, _ := value.Value().(string)
		if _, err := regexp.Compile(pattern); err != nil {
			return fail(value.Type(), reasonInvalidPattern+err.Error())
		}

		if construct := nonPortableConstruct(pattern); construct != "" {
			return fail(value.Type(), reasonNonPortablePattern+construct)
		}

		return nil
	}
}

func validateSingle(attribute Attribute, value Constant, fail func(SemanticType, string) error) error {
	if value.Shape() == ShapeList {
		return fail(value.Type(), reasonNotScalar)
	}

	if value.Type() != attribute.Type() {
		return fail(value.Type(), reasonTypeMismatch)
	}

	return nil
}

func validateList(
	attribute Attribute,
	value Constant,
	allowEmpty bool,
	fail func(SemanticType, string) error,
) error {

	if value.Shape() != ShapeList {
		return fail(value.Type(), reasonNotList)
	}

	if value.Type() != attribute.Type() {
		return fail(value.Type(), reasonTypeMismatch)
	}

	items := value.Items()
	if len(items) == 0 && !allowEmpty {
		return fail(value.Type(), reasonEmptyList)
	}

	for _, item := range items {
		if item.IsNull() {
			return fail(TypeNull, reasonListItemIsNull)
		}

		if item.Shape() == ShapeList || item.Type() != attribute.Type() {
			return fail(item.Type(), reasonListItemMismatched)
		}
	}

	return nil
}

// nonPortableConstruct returns the first construct of pattern that Go accepts but PostgreSQL
// advanced regular expressions reject or read differently, or "" if there is none.
// Groups may only be (?:...) and the only flag is a leading (?i).
func nonPortableConstruct(pattern string) string {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			if i+1 < len(pattern) && strings.IndexByte("zCpPQE", pattern[i+1]) >= 0 {
				return pattern[i : i+2]
			}

			i++

		case '(':
			rest := pattern[i:]
			if !strings.HasPrefix(rest, "(?") || strings.HasPrefix(rest, "(?:") || (i == 0 && strings.HasPrefix(rest, "(?i)")) {
				continue
			}

			end := strings.IndexAny(rest, ":)")
			if end < 0 {
				return rest
			}

			return rest[:end+1]
		}
	}

	return ""
}
