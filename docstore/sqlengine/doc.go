// Package sqlengine stores JSON documents in a single SQL table and implements docstore.Driver.
//
// Postgres keeps documents in a JSONB column and is reachable through pgx pools (optionally with a
// read replica), database/sql or sqlx. SQLite keeps documents as TEXT and evaluates filters with the
// JSON1 functions. Find and Insert are instrumented with optional logging, metrics and tracing.
package sqlengine
