package sqldb

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/wansing/newsroom/core"
)

const dateLayout = "2006-01-02"

type NewspaperDB struct {
	*sql.DB
	count            *sql.Stmt
	delete           *sql.Stmt
	get              *sql.Stmt
	insert           *sql.Stmt
	insertPublisher  *sql.Stmt
	insertTopic      *sql.Stmt
	isPublisher      *sql.Stmt
	of               *sql.Stmt
	publishers       *sql.Stmt
	removePublisher  *sql.Stmt
	removePublishers *sql.Stmt
	removeTopics     *sql.Stmt
	search           *sql.Stmt
	topics           *sql.Stmt
	update           *sql.Stmt
}

func NewNewspaperDB(db *sql.DB) *NewspaperDB {
	var newspaperDB = &NewspaperDB{}
	newspaperDB.DB = db
	newspaperDB.count = mustPrepare(db, "SELECT COUNT(*) FROM newspaper WHERE "+fmt.Sprintf(search, "title"))
	newspaperDB.delete = mustPrepare(db, "DELETE FROM newspaper WHERE id = ?")
	newspaperDB.get = mustPrepare(db, "SELECT title, content, published_date FROM newspaper WHERE id = ? LIMIT 1")
	newspaperDB.insert = mustPrepare(db, "INSERT INTO newspaper (title, content, published_date) VALUES (?, ?, ?)")
	newspaperDB.insertPublisher = mustPrepare(db, "INSERT INTO newspaper_publisher (newspaper, redactor) VALUES (?, ?)")
	newspaperDB.insertTopic = mustPrepare(db, "INSERT INTO newspaper_topic (newspaper, topic) VALUES (?, ?)")
	newspaperDB.isPublisher = mustPrepare(db, "SELECT COUNT(*) FROM newspaper_publisher WHERE newspaper = ? AND redactor = ?")
	newspaperDB.of = mustPrepare(db, "SELECT newspaper.id, newspaper.title, newspaper.content, newspaper.published_date FROM newspaper, newspaper_publisher WHERE newspaper.id = newspaper_publisher.newspaper AND newspaper_publisher.redactor = ? ORDER BY newspaper.id")
	newspaperDB.publishers = mustPrepare(db, "SELECT redactor.id, redactor.username, redactor.first_name, redactor.last_name, redactor.years_of_experience FROM redactor, newspaper_publisher WHERE redactor.id = newspaper_publisher.redactor AND newspaper_publisher.newspaper = ? ORDER BY redactor.id")
	newspaperDB.removePublisher = mustPrepare(db, "DELETE FROM newspaper_publisher WHERE newspaper = ? AND redactor = ?")
	newspaperDB.removePublishers = mustPrepare(db, "DELETE FROM newspaper_publisher WHERE newspaper = ?")
	newspaperDB.removeTopics = mustPrepare(db, "DELETE FROM newspaper_topic WHERE newspaper = ?")
	newspaperDB.search = mustPrepare(db, "SELECT id, title, content, published_date FROM newspaper WHERE "+fmt.Sprintf(search, "title")+" ORDER BY id LIMIT ? OFFSET ?")
	newspaperDB.topics = mustPrepare(db, "SELECT topic.id, topic.name FROM topic, newspaper_topic WHERE topic.id = newspaper_topic.topic AND newspaper_topic.newspaper = ? ORDER BY topic.id")
	newspaperDB.update = mustPrepare(db, "UPDATE newspaper SET title = ?, content = ? WHERE id = ?")
	return newspaperDB
}

func (db *NewspaperDB) CountNewspapers(title string) (int, error) {
	var count int
	return count, db.count.QueryRow(title, title).Scan(&count)
}

// DeleteNewspaper deletes the newspaper and its topic and publisher links.
func (db *NewspaperDB) DeleteNewspaper(id int) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	for _, stmt := range []*sql.Stmt{db.removeTopics, db.removePublishers} {
		if _, err = tx.Stmt(stmt).Exec(id); err != nil {
			tx.Rollback()
			return err
		}
	}

	res, err := tx.Stmt(db.delete).Exec(id)
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

func (db *NewspaperDB) GetNewspaper(id int) (*core.Newspaper, error) {

	var n = &core.Newspaper{
		ID: id,
	}
	var published string
	if err := db.get.QueryRow(id).Scan(&n.Title, &n.Content, &published); err != nil {
		return nil, notFound(err)
	}

	var err error
	if n.PublishedDate, err = time.Parse(dateLayout, published); err != nil {
		return nil, err
	}

	if n.Topics, err = db.topicsOf(id); err != nil {
		return nil, err
	}

	if n.Publishers, err = db.publishersOf(id); err != nil {
		return nil, err
	}

	return n, nil
}

// InsertNewspaper inserts the newspaper and links its topics and publishers in one transaction.
func (db *NewspaperDB) InsertNewspaper(n *core.Newspaper) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	res, err := tx.Stmt(db.insert).Exec(n.Title, n.Content, n.PublishedDate.Format(dateLayout))
	if err != nil {
		tx.Rollback()
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return err
	}

	if err = db.link(tx, int(id), n); err != nil {
		tx.Rollback()
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	n.ID = int(id)
	return nil
}

// NewspapersOf returns the newspapers which the given redactor publishes, including their topics.
func (db *NewspaperDB) NewspapersOf(redactorID int) ([]*core.Newspaper, error) {
	return db.getMultiple(db.of, redactorID)
}

func (db *NewspaperDB) SearchNewspapers(title string, limit, offset int) ([]*core.Newspaper, error) {
	return db.getMultiple(db.search, title, title, limit, offset)
}

// ToggleAssignment removes the redactor from the publishers of the newspaper if it is one of them, else adds it.
// It returns whether the redactor is a publisher afterwards.
func (db *NewspaperDB) ToggleAssignment(newspaperID, redactorID int) (bool, error) {

	tx, err := db.Begin()
	if err != nil {
		return false, err
	}

	var title string
	if err = tx.Stmt(db.get).QueryRow(newspaperID).Scan(&title, new(string), new(string)); err != nil {
		tx.Rollback()
		return false, notFound(err)
	}

	var count int
	if err = tx.Stmt(db.isPublisher).QueryRow(newspaperID, redactorID).Scan(&count); err != nil {
		tx.Rollback()
		return false, err
	}

	var assigned = count == 0
	if assigned {
		_, err = tx.Stmt(db.insertPublisher).Exec(newspaperID, redactorID)
	} else {
		_, err = tx.Stmt(db.removePublisher).Exec(newspaperID, redactorID)
	}
	if err != nil {
		tx.Rollback()
		return false, err
	}

	return assigned, tx.Commit()
}

// UpdateNewspaper updates title and content and replaces the topic and publisher links. The published date is left alone.
func (db *NewspaperDB) UpdateNewspaper(n *core.Newspaper) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if _, err = tx.Stmt(db.update).Exec(n.Title, n.Content, n.ID); err != nil {
		tx.Rollback()
		return err
	}

	for _, stmt := range []*sql.Stmt{db.removeTopics, db.removePublishers} {
		if _, err = tx.Stmt(stmt).Exec(n.ID); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err = db.link(tx, n.ID, n); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (db *NewspaperDB) link(tx *sql.Tx, id int, n *core.Newspaper) error {
	var insertTopic = tx.Stmt(db.insertTopic)
	for _, t := range n.Topics {
		if _, err := insertTopic.Exec(id, t.ID); err != nil {
			return err
		}
	}
	var insertPublisher = tx.Stmt(db.insertPublisher)
	for _, p := range n.Publishers {
		if _, err := insertPublisher.Exec(id, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// getMultiple scans newspapers and loads the topics of all of them with one additional query.
func (db *NewspaperDB) getMultiple(stmt *sql.Stmt, args ...interface{}) ([]*core.Newspaper, error) {

	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var newspapers = []*core.Newspaper{}
	var byID = make(map[int]*core.Newspaper)

	for rows.Next() {
		var n = &core.Newspaper{
			Topics: []*core.Topic{},
		}
		var published string
		if err = rows.Scan(&n.ID, &n.Title, &n.Content, &published); err != nil {
			return nil, err
		}
		if n.PublishedDate, err = time.Parse(dateLayout, published); err != nil {
			return nil, err
		}
		newspapers = append(newspapers, n)
		byID[n.ID] = n
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if len(newspapers) == 0 {
		return newspapers, nil
	}

	var ids = make([]interface{}, len(newspapers))
	for i, n := range newspapers {
		ids[i] = n.ID
	}

	topicRows, err := db.Query("SELECT newspaper_topic.newspaper, topic.id, topic.name FROM topic, newspaper_topic WHERE topic.id = newspaper_topic.topic AND newspaper_topic.newspaper IN ("+placeholders(len(ids))+") ORDER BY topic.id", ids...)
	if err != nil {
		return nil, err
	}
	defer topicRows.Close()

	for topicRows.Next() {
		var newspaperID int
		var t = &core.Topic{}
		if err = topicRows.Scan(&newspaperID, &t.ID, &t.Name); err != nil {
			return nil, err
		}
		if n, ok := byID[newspaperID]; ok {
			n.Topics = append(n.Topics, t)
		}
	}

	return newspapers, topicRows.Err()
}

func (db *NewspaperDB) topicsOf(newspaperID int) ([]*core.Topic, error) {

	rows, err := db.topics.Query(newspaperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics = []*core.Topic{}
	for rows.Next() {
		var t = &core.Topic{}
		if err = rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (db *NewspaperDB) publishersOf(newspaperID int) ([]*core.Redactor, error) {

	rows, err := db.publishers.Query(newspaperID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var publishers = []*core.Redactor{}
	for rows.Next() {
		var r = &core.Redactor{}
		if err = rows.Scan(&r.ID, &r.Username, &r.FirstName, &r.LastName, &r.YearsOfExperience); err != nil {
			return nil, err
		}
		publishers = append(publishers, r)
	}
	return publishers, rows.Err()
}
