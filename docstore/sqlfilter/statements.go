package sqlfilter

import (
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
)

const (
	createTableTemplate = "CREATE TABLE IF NOT EXISTS %s (%s %s, %s %s NOT NULL)"
)

// ErrBuildingStatementFailed is returned when goqu cannot render a statement.
var ErrBuildingStatementFailed = errors.New("building sql statement failed")

// ErrDialectMismatch is returned when a Filter translated for one dialect is rendered for another.
var ErrDialectMismatch = errors.New("filter was translated for a different dialect")

// Statements renders the SQL a document table needs: select by filter, insert and table creation.
type Statements struct {
	dialect        Dialect
	table          string
	documentColumn string
	keyColumn      string
}

// NewStatements creates Statements for one table.
func NewStatements(dialect Dialect, table, documentColumn, keyColumn string) Statements {
	return Statements{
		dialect:        dialect,
		table:          table,
		documentColumn: documentColumn,
		keyColumn:      keyColumn,
	}
}

// Select renders a query returning the document column of every row matching filter,
// ordered by insertion key. A MatchAll filter renders without a WHERE clause.
func (s Statements) Select(filter Filter) (string, error) {
	if !filter.IsMatchAll() && filter.dialect != s.dialect.name {
		return "", errors.Join(
			ErrBuildingStatementFailed,
			ErrDialectMismatch,
			fmt.Errorf("filter: %s, statement: %s", filter.dialect, s.dialect.name),
		)
	}

	selectStmt := goqu.Dialect(s.dialect.goquDialect).
		From(s.table).
		Select(goqu.I(s.documentColumn)).
		Order(goqu.I(s.keyColumn).Asc())

	if !filter.IsMatchAll() {
		selectStmt = selectStmt.Where(filter.expression)
	}

	sqlQuery, _, err := selectStmt.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingStatementFailed, err)
	}

	return sqlQuery, nil
}

// Insert renders a statement storing one encoded document.
func (s Statements) Insert(document []byte) (string, error) {
	insertStmt := goqu.Dialect(s.dialect.goquDialect).
		Insert(s.table).
		Cols(s.documentColumn).
		Vals(goqu.Vals{s.dialect.document(document)})

	sqlQuery, _, err := insertStmt.ToSQL()
	if err != nil {
		return "", errors.Join(ErrBuildingStatementFailed, err)
	}

	return sqlQuery, nil
}

// CreateTable renders an idempotent DDL statement for the document table.
func (s Statements) CreateTable() string {
	return fmt.Sprintf(
		createTableTemplate,
		s.dialect.quote(s.table),
		s.dialect.quote(s.keyColumn), s.dialect.keyType,
		s.dialect.quote(s.documentColumn), s.dialect.documentType,
	)
}
