package core

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
)

type NewspaperDB interface {
	CountNewspapers(title string) (int, error) // empty title counts all
	DeleteNewspaper(id int) error
	GetNewspaper(id int) (*Newspaper, error) // including topics and publishers
	InsertNewspaper(n *Newspaper) error      // sets n.ID, links n.Topics and n.Publishers by id
	NewspapersOf(redactorID int) ([]*Newspaper, error)
	SearchNewspapers(title string, limit, offset int) ([]*Newspaper, error) // including topics
	ToggleAssignment(newspaperID, redactorID int) (bool, error)
	UpdateNewspaper(n *Newspaper) error // does not touch the published date
}

type RedactorDB interface {
	AllRedactors() ([]*Redactor, error)
	CountRedactors(username string) (int, error)
	DeleteRedactor(id int) error
	GetRedactor(id int) (*Redactor, error)
	GetRedactorByUsername(username string) (*Redactor, error)
	InsertRedactor(r *Redactor, password string) error // hashes the password, sets r.ID
	LoginRedactor(username, password string) (*Redactor, error)
	SearchRedactors(username string, limit, offset int) ([]*Redactor, error)
	SetYearsOfExperience(id int, years int) error
}

type TopicDB interface {
	AllTopics() ([]*Topic, error)
	CountTopics(name string) (int, error)
	DeleteTopic(id int) error
	GetTopic(id int) (*Topic, error)
	InsertTopic(t *Topic) error
	SearchTopics(name string, limit, offset int) ([]*Topic, error)
	UpdateTopic(t *Topic) error
}

type CoreDB struct {
	NewspaperDB
	RedactorDB
	TopicDB
	SessionManager *scs.SessionManager
	Now            func() time.Time // defaults to time.Now
}

var ErrEmptyPassword = errors.New("refusing to set empty password")

func (c *CoreDB) Init(sessionStore scs.Store, cookiePath string, idleTimeout, lifetime time.Duration) {
	c.SessionManager = scs.New()
	c.SessionManager.Store = sessionStore
	c.SessionManager.Cookie.Name = "newsroom_session"
	c.SessionManager.Cookie.Path = cookiePath + "/"
	c.SessionManager.Cookie.Persist = false                 // the visit counter must end with the browser session
	c.SessionManager.Cookie.SameSite = http.SameSiteLaxMode // GET requests don't modify anything
	c.SessionManager.Cookie.Secure = false                  // else running on localhost or behind a http proxy fails
	c.SessionManager.IdleTimeout = idleTimeout
	c.SessionManager.Lifetime = lifetime
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Counts are shown on the landing page.
type Counts struct {
	Redactors  int
	Newspapers int
	Topics     int
}

func (c *CoreDB) Counts() (Counts, error) {
	var counts Counts
	var err error
	if counts.Redactors, err = c.CountRedactors(""); err != nil {
		return counts, err
	}
	if counts.Newspapers, err = c.CountNewspapers(""); err != nil {
		return counts, err
	}
	if counts.Topics, err = c.CountTopics(""); err != nil {
		return counts, err
	}
	return counts, nil
}

// ListTopics returns a page of topics whose name contains the given string, ignoring case.
func (c *CoreDB) ListTopics(name, page string) (*Page[*Topic], error) {
	name = strings.TrimSpace(name)
	return paginate(
		page,
		func() (int, error) { return c.CountTopics(name) },
		func(limit, offset int) ([]*Topic, error) { return c.SearchTopics(name, limit, offset) },
	)
}

// ListNewspapers returns a page of newspapers whose title contains the given string, ignoring case.
func (c *CoreDB) ListNewspapers(title, page string) (*Page[*Newspaper], error) {
	title = strings.TrimSpace(title)
	return paginate(
		page,
		func() (int, error) { return c.CountNewspapers(title) },
		func(limit, offset int) ([]*Newspaper, error) { return c.SearchNewspapers(title, limit, offset) },
	)
}

// ListRedactors returns a page of redactors whose username contains the given string, ignoring case.
func (c *CoreDB) ListRedactors(username, page string) (*Page[*Redactor], error) {
	username = strings.TrimSpace(username)
	return paginate(
		page,
		func() (int, error) { return c.CountRedactors(username) },
		func(limit, offset int) ([]*Redactor, error) { return c.SearchRedactors(username, limit, offset) },
	)
}

// CreateNewspaper sets the published date to today and inserts the newspaper.
func (c *CoreDB) CreateNewspaper(n *Newspaper) error {
	var now = c.Now()
	n.PublishedDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return c.InsertNewspaper(n)
}

// CreateRedactor shadows RedactorDB.InsertRedactor.
func (c *CoreDB) CreateRedactor(r *Redactor, password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if _, err := ValidateYearsOfExperience(r.YearsOfExperience); err != nil {
		return err
	}
	return c.InsertRedactor(r, password)
}

// GetRedactorWithNewspapers returns a redactor together with its newspapers and their topics.
func (c *CoreDB) GetRedactorWithNewspapers(id int) (*Redactor, error) {
	r, err := c.GetRedactor(id)
	if err != nil {
		return nil, err
	}
	r.Newspapers, err = c.NewspapersOf(id)
	if err != nil {
		return nil, err
	}
	return r, nil
}
