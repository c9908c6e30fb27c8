// Package adapters provides the database adapters of the SQL engine.
//
// pgxpool.Pool, sql.DB and sqlx.DB are wrapped behind the common DBAdapter interface, so the
// engine runs the same statements on every supported connection type. sql.DB also carries the
// SQLite driver.
package adapters
