package criteria

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Shape distinguishes scalar, list and object constants.
type Shape int

// Constant shapes.
const (
	ShapeScalar Shape = iota
	ShapeList
	ShapeObject
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapeList:
		return "list"
	case ShapeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Constant is an immutable typed literal.
// Lists carry the semantic type of their items, objects carry TypeObject.
type Constant struct {
	semanticType SemanticType
	shape        Shape
	value        any
	items        []Constant
	members      []Member
}

// Member is one named field of an object constant.
type Member struct {
	Name  string
	Value Constant
}

// String returns a string constant.
func String(v string) Constant {
	return scalar(TypeString, v)
}

// Int returns an integer constant.
func Int(v int64) Constant {
	return scalar(TypeInteger, v)
}

// Float returns a number constant.
func Float(v float64) Constant {
	return scalar(TypeNumber, v)
}

// Bool returns a boolean constant.
func Bool(v bool) Constant {
	return scalar(TypeBoolean, v)
}

// Date returns a date constant normalized to UTC.
func Date(v time.Time) Constant {
	return scalar(TypeDate, v.UTC())
}

// ID returns an identifier constant.
func ID(v uuid.UUID) Constant {
	return scalar(TypeIdentifier, v)
}

// Enum returns an enum constant holding the symbolic name.
func Enum(v string) Constant {
	return scalar(TypeEnum, v)
}

// Binary returns a binary constant. The input is copied.
func Binary(v []byte) Constant {
	return scalar(TypeBinary, bytes.Clone(v))
}

// Null returns the null constant.
func Null() Constant {
	return scalar(TypeNull, nil)
}

// Value returns a scalar constant of a user-defined semantic type.
// The codec registered for t decides which Go values it accepts.
func Value(t SemanticType, v any) Constant {
	return scalar(t, v)
}

// ListOf returns a list constant with items of the given type.
func ListOf(t SemanticType, items ...Constant) Constant {
	return Constant{
		semanticType: t,
		shape:        ShapeList,
		items:        append([]Constant(nil), items...),
	}
}

// Strings returns a list of string constants.
func Strings(vs ...string) Constant {
	items := make([]Constant, 0, len(vs))
	for _, v := range vs {
		items = append(items, String(v))
	}

	return ListOf(TypeString, items...)
}

// Ints returns a list of integer constants.
func Ints(vs ...int64) Constant {
	items := make([]Constant, 0, len(vs))
	for _, v := range vs {
		items = append(items, Int(v))
	}

	return ListOf(TypeInteger, items...)
}

// Object returns an object constant. Members keep their given order.
func Object(members ...Member) Constant {
	return Constant{
		semanticType: TypeObject,
		shape:        ShapeObject,
		members:      append([]Member(nil), members...),
	}
}

func scalar(t SemanticType, v any) Constant {
	return Constant{semanticType: t, shape: ShapeScalar, value: v}
}

// Type returns the semantic type. For lists this is the item type.
func (c Constant) Type() SemanticType {
	return c.semanticType
}

// Shape returns whether the constant is a scalar, list or object.
func (c Constant) Shape() Shape {
	return c.shape
}

// Value returns the Go value of a scalar constant.
func (c Constant) Value() any {
	if v, ok := c.value.([]byte); ok {
		return bytes.Clone(v)
	}

	return c.value
}

// Items returns a copy of the items of a list constant.
func (c Constant) Items() []Constant {
	return append([]Constant(nil), c.items...)
}

// Members returns a copy of the members of an object constant.
func (c Constant) Members() []Member {
	return append([]Member(nil), c.members...)
}

// IsNull reports whether the constant is the null literal.
func (c Constant) IsNull() bool {
	return c.shape == ShapeScalar && c.semanticType == TypeNull
}

// Equal compares two constants structurally.
func (c Constant) Equal(other Constant) bool {
	if c.semanticType != other.semanticType || c.shape != other.shape {
		return false
	}

	switch c.shape {
	case ShapeList:
		if len(c.items) != len(other.items) {
			return false
		}

		for i := range c.items {
			if !c.items[i].Equal(other.items[i]) {
				return false
			}
		}

		return true

	case ShapeObject:
		if len(c.members) != len(other.members) {
			return false
		}

		for i := range c.members {
			if c.members[i].Name != other.members[i].Name || !c.members[i].Value.Equal(other.members[i].Value) {
				return false
			}
		}

		return true

	default:
		return scalarEqual(c.value, other.value)
	}
}

func scalarEqual(a, b any) bool {
	switch av := a.(type) {
	case []byte:
		bv, ok := b.([]byte)
		return ok && bytes.Equal(av, bv)
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// String renders the canonical form used for equality-sensitive output like fingerprints.
func (c Constant) String() string {
	switch c.shape {
	case ShapeList:
		parts := make([]string, 0, len(c.items))
		for _, item := range c.items {
			parts = append(parts, item.String())
		}

		return "[" + strings.Join(parts, ", ") + "]"

	case ShapeObject:
		parts := make([]string, 0, len(c.members))
		for _, member := range c.members {
			parts = append(parts, strconv.Quote(member.Name)+": "+member.Value.String())
		}

		return "{" + strings.Join(parts, ", ") + "}"

	default:
		return c.scalarString()
	}
}

func (c Constant) scalarString() string {
	switch v := c.value.(type) {
	case nil:
		return "null"
	case string:
		if c.semanticType == TypeString {
			return strconv.Quote(v)
		}
		return fmt.Sprintf("%s(%s)", c.semanticType, strconv.Quote(v))
	case int64:
		if c.semanticType == TypeInteger {
			return strconv.FormatInt(v, 10)
		}
	case float64:
		if c.semanticType == TypeNumber {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
	case bool:
		if c.semanticType == TypeBoolean {
			return strconv.FormatBool(v)
		}
	case time.Time:
		return fmt.Sprintf("%s(%q)", c.semanticType, v.Format(time.RFC3339Nano))
	case uuid.UUID:
		return fmt.Sprintf("%s(%q)", c.semanticType, v.String())
	case []byte:
		return fmt.Sprintf("%s(%q)", c.semanticType, base64.StdEncoding.EncodeToString(v))
	}

	return fmt.Sprintf("%s(%v)", c.semanticType, c.value)
}
