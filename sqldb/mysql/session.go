// Package mysql provides the session store for MySQL databases.
package mysql

import (
	"database/sql"
	"fmt"

	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/v2"
)

// NewSessionStore creates the sessions table if necessary. Expired sessions are removed every five minutes.
func NewSessionStore(db *sql.DB) (scs.Store, error) {

	// MySQL has no CREATE INDEX IF NOT EXISTS, so the index is part of the table definition
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			token CHAR(43) PRIMARY KEY,
			data BLOB NOT NULL,
			expiry TIMESTAMP(6) NOT NULL,
			INDEX sessions_expiry_idx (expiry)
		)`)
	if err != nil {
		return nil, fmt.Errorf("creating sessions table: %w", err)
	}

	return mysqlstore.New(db), nil
}
