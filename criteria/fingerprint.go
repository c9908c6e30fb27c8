package criteria

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// fingerprintVisitor renders an unambiguous key for an expression. Names are quoted and
// comparisons carry the attribute type, its repetition and the Go type of each scalar.
type fingerprintVisitor struct{}

func fingerprintOf(e Expression) string {
	key, _ := Accept[string](e, fingerprintVisitor{})
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}

func (fingerprintVisitor) VisitTrue(True) (string, error) {
	return "T", nil
}

func (v fingerprintVisitor) VisitNot(node Not) (string, error) {
	child, err := Accept[string](node.Child(), v)

	return "N(" + child + ")", err
}

func (v fingerprintVisitor) VisitLogical(node Logical) (string, error) {
	children := node.Children()
	parts := make([]string, 0, len(children))

	for _, child := range children {
		part, err := Accept[string](child, v)
		if err != nil {
			return "", err
		}

		parts = append(parts, part)
	}

	return "L" + strconv.Quote(string(node.Operator())) + "(" + strings.Join(parts, ";") + ")", nil
}

func (fingerprintVisitor) VisitComparison(node Comparison) (string, error) {
	attribute := node.Attribute()

	return fmt.Sprintf(
		"C(%s,%t,%s,%s,%s)",
		strconv.Quote(attribute.Path().String()),
		attribute.Repeated(),
		strconv.Quote(string(attribute.Type())),
		strconv.Quote(string(node.Operator())),
		constantKey(node.Value()),
	), nil
}

func constantKey(c Constant) string {
	switch c.Shape() {
	case ShapeList:
		items := c.Items()
		parts := make([]string, 0, len(items))

		for _, item := range items {
			parts = append(parts, constantKey(item))
		}

		return "[" + strconv.Quote(string(c.Type())) + ":" + strings.Join(parts, ";") + "]"

	case ShapeObject:
		members := c.Members()
		parts := make([]string, 0, len(members))

		for _, member := range members {
			parts = append(parts, strconv.Quote(member.Name)+":"+constantKey(member.Value))
		}

		return "{" + strings.Join(parts, ";") + "}"

	default:
		return "S(" + strconv.Quote(string(c.Type())) + "," + scalarKey(c.Value()) + ")"
	}
}

func scalarKey(value any) string {
	var text string

	switch v := value.(type) {
	case nil:
		return "nil"
	case []byte:
		text = base64.StdEncoding.EncodeToString(v)
	case time.Time:
		text = v.UTC().Format(time.RFC3339Nano)
	case uuid.UUID:
		text = v.String()
	default:
		text = fmt.Sprintf("%#v", v)
	}

	return strconv.Quote(fmt.Sprintf("%T", value)) + ":" + strconv.Quote(text)
}
