package sqldb

import (
	"database/sql"
	"fmt"

	"github.com/wansing/newsroom/core"
)

type TopicDB struct {
	*sql.DB
	count  *sql.Stmt
	delete *sql.Stmt
	get    *sql.Stmt
	getAll *sql.Stmt
	insert *sql.Stmt
	search *sql.Stmt
	unlink *sql.Stmt
	update *sql.Stmt
}

func NewTopicDB(db *sql.DB) *TopicDB {
	var topicDB = &TopicDB{}
	topicDB.DB = db
	topicDB.count = mustPrepare(db, "SELECT COUNT(*) FROM topic WHERE "+fmt.Sprintf(search, "name"))
	topicDB.delete = mustPrepare(db, "DELETE FROM topic WHERE id = ?")
	topicDB.get = mustPrepare(db, "SELECT name FROM topic WHERE id = ? LIMIT 1")
	topicDB.getAll = mustPrepare(db, "SELECT id, name FROM topic ORDER BY id")
	topicDB.insert = mustPrepare(db, "INSERT INTO topic (name) VALUES (?)")
	topicDB.search = mustPrepare(db, "SELECT id, name FROM topic WHERE "+fmt.Sprintf(search, "name")+" ORDER BY id LIMIT ? OFFSET ?")
	topicDB.unlink = mustPrepare(db, "DELETE FROM newspaper_topic WHERE topic = ?")
	topicDB.update = mustPrepare(db, "UPDATE topic SET name = ? WHERE id = ?")
	return topicDB
}

func (db *TopicDB) AllTopics() ([]*core.Topic, error) {
	return db.getMultiple(db.getAll)
}

func (db *TopicDB) CountTopics(name string) (int, error) {
	var count int
	return count, db.count.QueryRow(name, name).Scan(&count)
}

// DeleteTopic removes the topic from all newspapers and deletes it.
func (db *TopicDB) DeleteTopic(id int) error {
	return deleteWithLinks(db.DB, db.unlink, db.delete, id)
}

func (db *TopicDB) GetTopic(id int) (*core.Topic, error) {
	var t = &core.Topic{
		ID: id,
	}
	if err := db.get.QueryRow(id).Scan(&t.Name); err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (db *TopicDB) InsertTopic(t *core.Topic) error {
	res, err := db.insert.Exec(t.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = int(id)
	return nil
}

func (db *TopicDB) SearchTopics(name string, limit, offset int) ([]*core.Topic, error) {
	return db.getMultiple(db.search, name, name, limit, offset)
}

func (db *TopicDB) UpdateTopic(t *core.Topic) error {
	_, err := db.update.Exec(t.Name, t.ID)
	return err
}

func (db *TopicDB) getMultiple(stmt *sql.Stmt, args ...interface{}) ([]*core.Topic, error) {

	rows, err := stmt.Query(args...)
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
