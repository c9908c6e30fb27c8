package criteria

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is returned when a path is empty or has an empty segment.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidExpression is returned when an expression node is structurally broken.
	ErrInvalidExpression = errors.New("invalid expression")

	// ErrInvalidPredicate is the sentinel matched by every *InvalidPredicateError.
	ErrInvalidPredicate = errors.New("invalid predicate")

	// ErrUnsupportedType is the sentinel matched by every *UnsupportedTypeError.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnsupportedOperator is the sentinel matched by every *UnsupportedOperatorError.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrCodecFailed is returned when a registered codec cannot encode or decode a value.
	ErrCodecFailed = errors.New("value codec failed")
)

// InvalidPredicateError reports an operator that is not applicable to the type of a value or field.
// It is raised while building a Criteria and never reaches translation.
type InvalidPredicateError struct {
	Path     Path
	Operator Operator
	Type     SemanticType
	Reason   string
}

func (e *InvalidPredicateError) Error() string {
	return fmt.Sprintf(
		"invalid predicate on path %q: operator %s with type %s: %s",
		e.Path.String(), e.Operator, e.Type, e.Reason,
	)
}

// Is makes errors.Is(err, ErrInvalidPredicate) work.
func (e *InvalidPredicateError) Is(target error) bool {
	return target == ErrInvalidPredicate
}

// UnsupportedTypeError reports a semantic type without a registered codec.
type UnsupportedTypeError struct {
	Type SemanticType
	Path Path
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported type %s on path %q: no codec registered", e.Type, e.Path.String())
}

// Is makes errors.Is(err, ErrUnsupportedType) work.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// UnsupportedOperatorError reports an operator the target store has no native equivalent for.
type UnsupportedOperatorError struct {
	Operator Operator
	Path     Path
	Store    string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator %s on path %q: not available in %s", e.Operator, e.Path.String(), e.Store)
}

// Is makes errors.Is(err, ErrUnsupportedOperator) work.
func (e *UnsupportedOperatorError) Is(target error) bool {
	return target == ErrUnsupportedOperator
}
