package config

import (
	"database/sql"

	_ "modernc.org/sqlite" // sqlite driver with JSON1
)

const sqliteDriverName = "sqlite"

// SQLiteInMemory opens a private in-memory SQLite database.
// Every connection of an in-memory database sees its own data, so the pool is limited to one
// connection: a Stream must be drained or cancelled before the next statement can run.
func SQLiteInMemory() (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, ":memory:")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	return db, nil
}
