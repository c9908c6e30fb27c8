package config

import "os"

const (
	envPostgresDSN        = "DOCSTORE_TEST_POSTGRES_DSN"
	envPostgresReplicaDSN = "DOCSTORE_TEST_POSTGRES_REPLICA_DSN"
)

// PostgresDSN returns the DSN of the test database and whether one is configured.
func PostgresDSN() (string, bool) {
	dsn := os.Getenv(envPostgresDSN)
	return dsn, dsn != ""
}

// PostgresReplicaDSN returns the DSN of the replica test database and whether one is configured.
func PostgresReplicaDSN() (string, bool) {
	dsn := os.Getenv(envPostgresReplicaDSN)
	return dsn, dsn != ""
}
