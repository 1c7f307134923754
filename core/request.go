package core

import (
	"encoding/gob"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/text/language"
)

// session keys
const (
	sessionNotifications = "notifications"
	sessionUserID        = "uid"
	sessionVisits        = "num_visits"
)

type Notification struct {
	Message string
	Style   string
}

func init() {
	gob.Register([]Notification{}) // required for storing Notifications in a session
}

var langMatcher = language.NewMatcher([]language.Tag{
	language.AmericanEnglish, // default
	language.German,
})

var monthNamesDe = strings.NewReplacer(
	"January", "Januar",
	"February", "Februar",
	"March", "März",
	"May", "Mai",
	"June", "Juni",
	"July", "Juli",
	"October", "Oktober",
	"December", "Dezember",
)

// A Request is created by CoreDB.NewRequest.
type Request struct {
	db   *CoreDB // unexported, so it can't be accessed in templates
	User *Redactor

	// http
	writer  http.ResponseWriter
	request *http.Request

	statusWritten bool
	language      language.Tag
}

// NewRequest creates a Request with the given http.ResponseWriter and http.Request.
// If a redactor is logged in, it sets Request.User.
func (c *CoreDB) NewRequest(w http.ResponseWriter, httpreq *http.Request) *Request {

	var req = &Request{
		db:      c,
		writer:  w,
		request: httpreq,
	}

	req.language, _ = language.MatchStrings(langMatcher, httpreq.Header.Get("Accept-Language"))

	if uid := c.SessionManager.GetInt(httpreq.Context(), sessionUserID); uid != 0 {
		if u, err := c.GetRedactor(uid); err == nil {
			req.User = u
		}
		// ignore errors, the redactor might have been deleted
	}

	return req
}

// Danger adds a "danger" notification to the session.
func (req *Request) Danger(err error) {
	req.addNotification(err.Error(), "danger")
}

// Success adds a "success" notification to the session.
func (req *Request) Success(format string, args ...interface{}) {
	req.addNotification(fmt.Sprintf(format, args...), "success")
}

// style should be a bootstrap alert style without the leading "alert-"
func (req *Request) addNotification(message, style string) {
	notifications, _ := req.db.SessionManager.Get(req.request.Context(), sessionNotifications).([]Notification)
	notifications = append(notifications, Notification{message, style})
	req.db.SessionManager.Put(req.request.Context(), sessionNotifications, notifications)
}

// RenderNotifications removes all notifications from the session
// and renders them into an HTML string.
// If the HTTP status had already been written, it does nothing.
func (req *Request) RenderNotifications() template.HTML {
	var b strings.Builder
	if !req.statusWritten {
		notifications, _ := req.db.SessionManager.Pop(req.request.Context(), sessionNotifications).([]Notification)
		for _, n := range notifications {
			b.WriteString(`<div class="alert alert-` + n.Style + `" role="alert">` + template.HTMLEscapeString(n.Message) + `</div>`)
		}
	}
	return template.HTML(b.String())
}

// Cleanup destroys the session (which means re-setting the cookie with zero lifetime) if the session has been modified and is empty now.
func (req *Request) Cleanup() {
	sessMan := req.db.SessionManager
	if sessMan.Status(req.request.Context()) == scs.Modified && len(sessMan.Keys(req.request.Context())) == 0 {
		_ = sessMan.Destroy(req.request.Context())
	}
}

// SeeOther sets the HTTP header to redirect to an URL.
func (req *Request) SeeOther(format string, args ...interface{}) {
	if req.statusWritten {
		return
	}
	var url = fmt.Sprintf(format, args...)
	http.Redirect(req.writer, req.request, url, http.StatusSeeOther)
	req.statusWritten = true
}

// StatusWritten returns whether SeeOther has been called.
func (req *Request) StatusWritten() bool {
	return req.statusWritten
}

// Login tries to log in a redactor. On success, the session token is renewed and the redactor id is stored in the session.
func (req *Request) Login(username, enteredPass string) error {
	if req.LoggedIn() {
		return nil
	}
	u, err := req.db.LoginRedactor(username, enteredPass)
	if err != nil {
		return err // is ErrAuth if username or enteredPass is wrong
	}
	if err := req.db.SessionManager.RenewToken(req.request.Context()); err != nil {
		return err
	}
	req.User = u
	req.db.SessionManager.Put(req.request.Context(), sessionUserID, u.ID)
	req.Success("Welcome %s!", u.Username)
	return nil
}

func (req *Request) LoggedIn() bool {
	return req.User != nil
}

// Logout removes the redactor id from the session and calls req.Cleanup().
func (req *Request) Logout() {
	if req.LoggedIn() {
		req.db.SessionManager.Remove(req.request.Context(), sessionUserID)
		req.User = nil
	}
	req.Cleanup()
}

// Visit increments the visit counter of the session and returns the new value.
// The counter starts at zero in every new session.
func (req *Request) Visit() int {
	var visits = req.db.SessionManager.GetInt(req.request.Context(), sessionVisits) + 1
	req.db.SessionManager.Put(req.request.Context(), sessionVisits, visits)
	return visits
}

// FormatDate formats a date in the preferred language of the client.
func (req *Request) FormatDate(t time.Time) string {
	b, _ := req.language.Base()
	switch b.String() {
	case "de":
		return monthNamesDe.Replace(t.Format("2. January 2006"))
	default:
		return t.Format("January 2, 2006")
	}
}
