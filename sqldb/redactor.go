package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wansing/newsroom/core"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is used for new password hashes. Tests may lower it.
var BcryptCost = bcrypt.DefaultCost

const redactorColumns = "id, username, first_name, last_name, years_of_experience"

type RedactorDB struct {
	*sql.DB
	count       *sql.Stmt
	delete      *sql.Stmt
	get         *sql.Stmt
	getAll      *sql.Stmt
	getByName   *sql.Stmt
	insert      *sql.Stmt
	login       *sql.Stmt
	search      *sql.Stmt
	setPassword *sql.Stmt
	setYears    *sql.Stmt
	unlink      *sql.Stmt
}

func NewRedactorDB(db *sql.DB) *RedactorDB {
	var redactorDB = &RedactorDB{}
	redactorDB.DB = db
	redactorDB.count = mustPrepare(db, "SELECT COUNT(*) FROM redactor WHERE "+fmt.Sprintf(search, "username"))
	redactorDB.delete = mustPrepare(db, "DELETE FROM redactor WHERE id = ?")
	redactorDB.get = mustPrepare(db, "SELECT "+redactorColumns+" FROM redactor WHERE id = ? LIMIT 1")
	redactorDB.getAll = mustPrepare(db, "SELECT "+redactorColumns+" FROM redactor ORDER BY id")
	redactorDB.getByName = mustPrepare(db, "SELECT "+redactorColumns+" FROM redactor WHERE username = ? LIMIT 1")
	redactorDB.insert = mustPrepare(db, "INSERT INTO redactor (username, password, first_name, last_name, years_of_experience) VALUES (?, ?, ?, ?, ?)")
	redactorDB.login = mustPrepare(db, "SELECT id, password FROM redactor WHERE username = ?")
	redactorDB.search = mustPrepare(db, "SELECT "+redactorColumns+" FROM redactor WHERE "+fmt.Sprintf(search, "username")+" ORDER BY id LIMIT ? OFFSET ?")
	redactorDB.setPassword = mustPrepare(db, "UPDATE redactor SET password = ? WHERE id = ?")
	redactorDB.setYears = mustPrepare(db, "UPDATE redactor SET years_of_experience = ? WHERE id = ?")
	redactorDB.unlink = mustPrepare(db, "DELETE FROM newspaper_publisher WHERE redactor = ?")
	return redactorDB
}

func (db *RedactorDB) AllRedactors() ([]*core.Redactor, error) {
	return db.getMultiple(db.getAll)
}

func (db *RedactorDB) CountRedactors(username string) (int, error) {
	var count int
	return count, db.count.QueryRow(username, username).Scan(&count)
}

// DeleteRedactor removes the redactor from the publishers of all newspapers and deletes it.
func (db *RedactorDB) DeleteRedactor(id int) error {
	return deleteWithLinks(db.DB, db.unlink, db.delete, id)
}

func (db *RedactorDB) GetRedactor(id int) (*core.Redactor, error) {
	return scanRedactor(db.get.QueryRow(id))
}

func (db *RedactorDB) GetRedactorByUsername(username string) (*core.Redactor, error) {
	return scanRedactor(db.getByName.QueryRow(strings.TrimSpace(username)))
}

func (db *RedactorDB) InsertRedactor(r *core.Redactor, password string) error {

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	res, err := db.insert.Exec(strings.TrimSpace(r.Username), hash, r.FirstName, r.LastName, r.YearsOfExperience)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	r.ID = int(id)
	return nil
}

// LoginRedactor returns core.ErrAuth if the username is unknown or the password is wrong.
func (db *RedactorDB) LoginRedactor(username, password string) (*core.Redactor, error) {

	var id int
	var hash string

	err := db.login.QueryRow(strings.TrimSpace(username)).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrAuth // user not found
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, core.ErrAuth // wrong password
	}

	return db.GetRedactor(id)
}

func (db *RedactorDB) SearchRedactors(username string, limit, offset int) ([]*core.Redactor, error) {
	return db.getMultiple(db.search, username, username, limit, offset)
}

func (db *RedactorDB) SetPassword(id int, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	_, err = db.setPassword.Exec(hash, id)
	return err
}

func (db *RedactorDB) SetYearsOfExperience(id int, years int) error {
	_, err := db.setYears.Exec(years, id)
	return err
}

func (db *RedactorDB) getMultiple(stmt *sql.Stmt, args ...interface{}) ([]*core.Redactor, error) {

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var redactors = []*core.Redactor{}

	for rows.Next() {
		var r = &core.Redactor{}
		if err = rows.Scan(&r.ID, &r.Username, &r.FirstName, &r.LastName, &r.YearsOfExperience); err != nil {
			return nil, err
		}
		redactors = append(redactors, r)
	}

	return redactors, rows.Err()
}

func hashPassword(password string) (string, error) {
	if password == "" {
		return "", core.ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func scanRedactor(row *sql.Row) (*core.Redactor, error) {
	var r = &core.Redactor{}
	if err := row.Scan(&r.ID, &r.Username, &r.FirstName, &r.LastName, &r.YearsOfExperience); err != nil {
		return nil, notFound(err)
	}
	return r, nil
}
