// Package sqlite3 provides the session store for SQLite databases.
package sqlite3

import (
	"database/sql"
	"fmt"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// NewSessionStore creates the sessions table if necessary. Expired sessions are removed every five minutes.
func NewSessionStore(db *sql.DB) (scs.Store, error) {

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);

		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, fmt.Errorf("creating sessions table: %w", err)
	}

	return sqlite3store.New(db), nil
}
