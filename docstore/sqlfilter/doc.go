// Package sqlfilter translates criteria expressions into SQL filters over JSON documents.
//
// A Translator walks an Expression through the criteria Visitor contract and renders each
// Comparison with the operator table of its Dialect. Constants are encoded with the same
// CodecRegistry that encodes stored documents, so a filter literal and a stored value of the
// same semantic type compare in the same representation.
//
// Two dialects are available:
//
//	Postgres: documents live in a JSONB column, paths use the #> and #>> operators.
//	SQLite:   documents live in a TEXT column, paths use json_extract from the JSON1 extension.
//
// Statements renders complete SELECT, INSERT and CREATE TABLE statements with goqu.
package sqlfilter
