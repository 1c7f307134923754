package core

import (
	"fmt"
	"time"
)

// A Redactor is a staff member who can log in and publish newspapers.
type Redactor struct {
	ID                int
	Username          string
	FirstName         string
	LastName          string
	YearsOfExperience int

	// Newspapers is only populated by CoreDB.GetRedactorWithNewspapers.
	Newspapers []*Newspaper
}

func (r *Redactor) String() string {
	return fmt.Sprintf("%s (%s %s)", r.Username, r.FirstName, r.LastName)
}

type Topic struct {
	ID   int
	Name string
}

func (t *Topic) String() string {
	return t.Name
}

// A Newspaper has a set of topics and a set of publishing redactors.
// PublishedDate is set once when the newspaper is created.
type Newspaper struct {
	ID            int
	Title         string
	Content       string
	PublishedDate time.Time
	Topics        []*Topic
	Publishers    []*Redactor
}

func (n *Newspaper) String() string {
	return n.Title
}

// HasPublisher returns whether the redactor with the given id is a publisher of the newspaper.
func (n *Newspaper) HasPublisher(redactorID int) bool {
	for _, p := range n.Publishers {
		if p.ID == redactorID {
			return true
		}
	}
	return false
}

func (n *Newspaper) TopicIDs() []int {
	var ids = make([]int, len(n.Topics))
	for i, t := range n.Topics {
		ids[i] = t.ID
	}
	return ids
}

func (n *Newspaper) PublisherIDs() []int {
	var ids = make([]int, len(n.Publishers))
	for i, p := range n.Publishers {
		ids[i] = p.ID
	}
	return ids
}
