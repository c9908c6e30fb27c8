package criteria

// SemanticType tags the meaning of a value independent of its Go representation.
// Any string can be used as a user-defined type, as long as a codec is registered for it.
type SemanticType string

// Built-in semantic types.
const (
	TypeString     SemanticType = "string"
	TypeInteger    SemanticType = "integer"
	TypeNumber     SemanticType = "number"
	TypeBoolean    SemanticType = "boolean"
	TypeDate       SemanticType = "date"
	TypeIdentifier SemanticType = "identifier"
	TypeEnum       SemanticType = "enum"
	TypeBinary     SemanticType = "binary"
	TypeNull       SemanticType = "null"
	TypeObject     SemanticType = "object"
)

func (t SemanticType) String() string {
	return string(t)
}

// IsOrderable reports whether values of this type support GREATER/LESS comparisons.
func (t SemanticType) IsOrderable() bool {
	switch t {
	case TypeBoolean, TypeBinary, TypeNull, TypeObject:
		return false
	default:
		return true
	}
}
