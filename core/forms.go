package core

import (
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// A Form binds and validates submitted values. Field errors are returned as FieldErrors,
// any other error means that validation could not be completed.
type Form interface {
	Bind(values url.Values, c *CoreDB) (FieldErrors, error)
}

type TopicForm struct {
	Name string
}

func (f *TopicForm) Bind(values url.Values, _ *CoreDB) (FieldErrors, error) {
	var errs = FieldErrors{}
	f.Name = strings.TrimSpace(values.Get("name"))
	requireText("name", f.Name, MaxNameLength, errs)
	return errs, nil
}

// NewspaperForm edits everything except the published date.
type NewspaperForm struct {
	Title        string
	Content      string
	TopicIDs     []int
	PublisherIDs []int

	TopicChoices     []*Topic
	PublisherChoices []*Redactor
}

// NewspaperFormOf returns a form which is filled with the values of n.
func NewspaperFormOf(n *Newspaper) *NewspaperForm {
	return &NewspaperForm{
		Title:        n.Title,
		Content:      n.Content,
		TopicIDs:     n.TopicIDs(),
		PublisherIDs: n.PublisherIDs(),
	}
}

// LoadChoices loads all topics and redactors which can be selected.
func (f *NewspaperForm) LoadChoices(c *CoreDB) error {
	var err error
	if f.TopicChoices, err = c.AllTopics(); err != nil {
		return err
	}
	if f.PublisherChoices, err = c.AllRedactors(); err != nil {
		return err
	}
	return nil
}

func (f *NewspaperForm) Bind(values url.Values, c *CoreDB) (FieldErrors, error) {

	if f.TopicChoices == nil || f.PublisherChoices == nil {
		if err := f.LoadChoices(c); err != nil {
			return nil, err
		}
	}

	var errs = FieldErrors{}

	f.Title = strings.TrimSpace(values.Get("title"))
	requireText("title", f.Title, MaxNameLength, errs)

	f.Content = values.Get("content")
	requireText("content", f.Content, 0, errs)

	var topicIDs = make(map[int]bool, len(f.TopicChoices))
	for _, t := range f.TopicChoices {
		topicIDs[t.ID] = true
	}
	f.TopicIDs = parseChoices("topics", values["topics"], topicIDs, errs)

	var publisherIDs = make(map[int]bool, len(f.PublisherChoices))
	for _, p := range f.PublisherChoices {
		publisherIDs[p.ID] = true
	}
	f.PublisherIDs = parseChoices("publishers", values["publishers"], publisherIDs, errs)

	return errs, nil
}

// Apply copies the form values into n. Topics and publishers are referenced by id only.
func (f *NewspaperForm) Apply(n *Newspaper) {
	n.Title = f.Title
	n.Content = f.Content
	n.Topics = make([]*Topic, len(f.TopicIDs))
	for i, id := range f.TopicIDs {
		n.Topics[i] = &Topic{ID: id}
	}
	n.Publishers = make([]*Redactor, len(f.PublisherIDs))
	for i, id := range f.PublisherIDs {
		n.Publishers[i] = &Redactor{ID: id}
	}
}

func (f *NewspaperForm) HasTopic(id int) bool {
	return containsInt(f.TopicIDs, id)
}

func (f *NewspaperForm) HasPublisher(id int) bool {
	return containsInt(f.PublisherIDs, id)
}

// parseChoices returns the sorted, deduplicated ids. Unknown or malformed ids are field errors.
func parseChoices(field string, raw []string, valid map[int]bool, errs FieldErrors) []int {
	var seen = make(map[int]bool, len(raw))
	var ids = make([]int, 0, len(raw))
	for _, r := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(r))
		if err != nil || !valid[id] {
			errs.Add(field, msgChoice)
			continue
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

func containsInt(ids []int, id int) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

// RedactorCreateForm registers a redactor with credentials and profile fields.
type RedactorCreateForm struct {
	Username          string
	FirstName         string
	LastName          string
	Years             string // raw input
	YearsOfExperience int

	password string
}

func (f *RedactorCreateForm) Bind(values url.Values, c *CoreDB) (FieldErrors, error) {

	var errs = FieldErrors{}

	f.Username = strings.TrimSpace(values.Get("username"))
	requireText("username", f.Username, MaxUsernameLength, errs)
	if f.Username != "" && !validUsername(f.Username) {
		errs.Add("username", "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.")
	}

	f.FirstName = strings.TrimSpace(values.Get("first_name"))
	maxText("first_name", f.FirstName, MaxUsernameLength, errs)

	f.LastName = strings.TrimSpace(values.Get("last_name"))
	maxText("last_name", f.LastName, MaxUsernameLength, errs)

	f.Years = values.Get("years_of_experience")
	f.YearsOfExperience = parseYears(f.Years, errs)

	var password1 = values.Get("password1")
	var password2 = values.Get("password2")
	switch {
	case password1 == "":
		errs.Add("password1", msgRequired)
	case password2 == "":
		errs.Add("password2", msgRequired)
	case password1 != password2:
		errs.Add("password2", "The two password fields didn't match.")
	default:
		validatePassword(f.Username, password2, errs)
	}
	f.password = password1

	if errs.Get("username") == nil {
		_, err := c.GetRedactorByUsername(f.Username)
		switch {
		case err == nil:
			errs.Add("username", "A user with that username already exists.")
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}

	return errs, nil
}

// Redactor returns the new redactor. Its password is available through Password.
func (f *RedactorCreateForm) Redactor() *Redactor {
	return &Redactor{
		Username:          f.Username,
		FirstName:         f.FirstName,
		LastName:          f.LastName,
		YearsOfExperience: f.YearsOfExperience,
	}
}

func (f *RedactorCreateForm) Password() string {
	return f.password
}

// RedactorUpdateForm can only change the years of experience.
type RedactorUpdateForm struct {
	Username          string // display only
	Years             string // raw input
	YearsOfExperience int
}

func RedactorUpdateFormOf(r *Redactor) *RedactorUpdateForm {
	return &RedactorUpdateForm{
		Username:          r.Username,
		Years:             strconv.Itoa(r.YearsOfExperience),
		YearsOfExperience: r.YearsOfExperience,
	}
}

func (f *RedactorUpdateForm) Bind(values url.Values, _ *CoreDB) (FieldErrors, error) {
	var errs = FieldErrors{}
	f.Years = values.Get("years_of_experience")
	f.YearsOfExperience = parseYears(f.Years, errs)
	return errs, nil
}
