package sqlfilter

import (
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/criteria"
)

const (
	storePostgres        = "postgres"
	storeSQLite          = "sqlite"
	goquDialectPostgres  = "postgres"
	goquDialectSQLite    = "sqlite3"
	castJsonb            = "?::jsonb"
	jsonExtract          = "json_extract(?, ?)"
	jsonLiteral          = "json_extract(?, '$')"
	jsonDocument         = "json(?)"
	postgresValueAtPath  = "? #> ?"
	postgresTextAtPath   = "? #>> ?"
	postgresDocumentType = "JSONB"
	postgresKeyType      = "BIGSERIAL PRIMARY KEY"
	sqliteDocumentType   = "TEXT"
	sqliteKeyType        = "INTEGER PRIMARY KEY AUTOINCREMENT"
	postgresQuote        = `"`
	sqliteQuote          = "`"
)

// Dialect describes how one store addresses JSON documents and which comparisons it supports.
// The available dialects are Postgres and SQLite.
type Dialect struct {
	name         string
	goquDialect  string
	documentType string
	keyType      string
	quoteChar    string
	valueAt      func(column string, path criteria.Path) exp.LiteralExpression
	textAt       func(column string, path criteria.Path) exp.LiteralExpression
	literal      func(encoded []byte) exp.LiteralExpression
	document     func(encoded []byte) exp.LiteralExpression
	comparators  map[criteria.Operator]comparator
}

// Postgres stores documents in a JSONB column.
var Postgres = Dialect{
	name:         storePostgres,
	goquDialect:  goquDialectPostgres,
	documentType: postgresDocumentType,
	keyType:      postgresKeyType,
	quoteChar:    postgresQuote,
	valueAt: func(column string, path criteria.Path) exp.LiteralExpression {
		return goqu.L(postgresValueAtPath, goqu.I(column), postgresPath(path))
	},
	textAt: func(column string, path criteria.Path) exp.LiteralExpression {
		return goqu.L(postgresTextAtPath, goqu.I(column), postgresPath(path))
	},
	literal: func(encoded []byte) exp.LiteralExpression {
		return goqu.L(castJsonb, string(encoded))
	},
	document: func(encoded []byte) exp.LiteralExpression {
		return goqu.L(castJsonb, string(encoded))
	},
	comparators: postgresComparators,
}

// SQLite stores documents as JSON text and queries them with the JSON1 functions.
// It has no regular expression support, so MATCHES is not available.
var SQLite = Dialect{
	name:         storeSQLite,
	goquDialect:  goquDialectSQLite,
	documentType: sqliteDocumentType,
	keyType:      sqliteKeyType,
	quoteChar:    sqliteQuote,
	valueAt: func(column string, path criteria.Path) exp.LiteralExpression {
		return goqu.L(jsonExtract, goqu.I(column), sqlitePath(path))
	},
	textAt: func(column string, path criteria.Path) exp.LiteralExpression {
		return goqu.L(jsonExtract, goqu.I(column), sqlitePath(path))
	},
	literal: func(encoded []byte) exp.LiteralExpression {
		return goqu.L(jsonLiteral, string(encoded))
	},
	document: func(encoded []byte) exp.LiteralExpression {
		return goqu.L(jsonDocument, string(encoded))
	},
	comparators: sqliteComparators,
}

// Name identifies the store, e.g. in *criteria.UnsupportedOperatorError.
func (d Dialect) Name() string {
	return d.name
}

// Supports reports whether the store has a native equivalent for op.
func (d Dialect) Supports(op criteria.Operator) bool {
	_, ok := d.comparators[op]
	return ok
}

// quote renders an identifier the way goqu quotes it for this dialect.
func (d Dialect) quote(identifier string) string {
	return d.quoteChar + strings.ReplaceAll(identifier, d.quoteChar, d.quoteChar+d.quoteChar) + d.quoteChar
}

// postgresPath renders a text array literal like {"address","city"} for the #> operators.
func postgresPath(path criteria.Path) string {
	segments := path.Segments()
	quoted := make([]string, 0, len(segments))

	for _, segment := range segments {
		escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(segment)
		quoted = append(quoted, `"`+escaped+`"`)
	}

	return "{" + strings.Join(quoted, ",") + "}"
}

// sqlitePath renders a JSON path like $."address"."city".
// SQLite ends a quoted label at the next double quote and has no escape for it, so a segment
// containing one is written as a bare label, which ends only at "." or "[".
func sqlitePath(path criteria.Path) string {
	var b strings.Builder
	b.WriteString("$")

	for _, segment := range path.Segments() {
		b.WriteString(".")

		if strings.Contains(segment, `"`) {
			b.WriteString(segment)
			continue
		}

		b.WriteString(`"`)
		b.WriteString(segment)
		b.WriteString(`"`)
	}

	return b.String()
}
