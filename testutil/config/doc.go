// Package config provides database configuration for document store tests.
//
// Postgres connections are built for every supported adapter (pgx.Pool, sql.DB, sqlx.DB) from
// the DSN in DOCSTORE_TEST_POSTGRES_DSN; DOCSTORE_TEST_POSTGRES_REPLICA_DSN adds a replica.
// SQLite databases are in-memory and need no setup.
package config
