package grid

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// openBacking opens the SQLite database backing a local compute
// session. Sessions are ephemeral, so the default DSN is an in-memory
// database that vanishes with the connection.
//
// The database is configured with:
//   - NORMAL synchronous mode (sessions are throwaway test state)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// SQLite only supports one writer at a time, so the pool is pinned to
// a single connection. For in-memory databases this is also what keeps
// every statement on the same database instance.
func openBacking(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to session database: %w", err)
	}

	db.SetMaxOpenConns(1) // Single writer to avoid SQLITE_BUSY errors
	db.SetMaxIdleConns(1) // Keep one connection ready

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	return db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
