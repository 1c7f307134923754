// Package sqldb implements the storage interfaces of package core on top of database/sql.
// Queries are written for SQLite and MySQL.
package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wansing/newsroom/core"
)

// CreateSchema creates all tables which don't exist yet. The driver name decides about the primary key syntax.
func CreateSchema(db *sql.DB, driver string) error {

	var pk = "INTEGER PRIMARY KEY" // SQLite: alias for rowid
	if driver == "mysql" {
		pk = "INTEGER PRIMARY KEY AUTO_INCREMENT"
	}

	var statements = []string{
		`CREATE TABLE IF NOT EXISTS redactor (
			id ` + pk + `,
			username varchar(150) NOT NULL,
			password varchar(128) NOT NULL,
			first_name varchar(150) NOT NULL DEFAULT '',
			last_name varchar(150) NOT NULL DEFAULT '',
			years_of_experience int(11) NOT NULL DEFAULT 0,
			UNIQUE(username)
		)`,
		`CREATE TABLE IF NOT EXISTS topic (
			id ` + pk + `,
			name varchar(255) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS newspaper (
			id ` + pk + `,
			title varchar(255) NOT NULL,
			content TEXT NOT NULL,
			published_date varchar(10) NOT NULL -- YYYY-MM-DD
		)`,
		`CREATE TABLE IF NOT EXISTS newspaper_topic (
			newspaper int(11) NOT NULL,
			topic int(11) NOT NULL,
			PRIMARY KEY (newspaper, topic)
		)`,
		`CREATE TABLE IF NOT EXISTS newspaper_publisher (
			newspaper int(11) NOT NULL,
			redactor int(11) NOT NULL,
			PRIMARY KEY (newspaper, redactor)
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

func mustPrepare(db *sql.DB, query string) *sql.Stmt {
	stmt, err := db.Prepare(query)
	if err != nil {
		panic(fmt.Sprintf("preparing %q: %v", query, err))
	}
	return stmt
}

// notFound translates sql.ErrNoRows into core.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

// placeholders returns "?, ?, ?" for n = 3.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// deleteWithLinks removes the link rows and the record itself in one transaction.
// If no record was deleted, it rolls back and returns core.ErrNotFound.
func deleteWithLinks(db *sql.DB, unlink, del *sql.Stmt, id int) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if _, err = tx.Stmt(unlink).Exec(id); err != nil {
		tx.Rollback()
		return err
	}

	res, err := tx.Stmt(del).Exec(id)
	if err != nil {
		tx.Rollback()
		return err
	}

	if n, err := res.RowsAffected(); err != nil || n == 0 {
		tx.Rollback()
		if err != nil {
			return err
		}
		return core.ErrNotFound
	}

	return tx.Commit()
}

// search is the WHERE condition of all substring searches. Its arguments are the search term, twice.
const search = "(? = '' OR INSTR(LOWER(%s), LOWER(?)) > 0)"
