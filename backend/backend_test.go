package backend

import (
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wansing/newsroom/core"
	"github.com/wansing/newsroom/metrics"
	"github.com/wansing/newsroom/sqldb"
	"github.com/wansing/newsroom/sqldb/sqlite3"
	"github.com/wansing/newsroom/util"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

func init() {
	sqldb.BcryptCost = bcrypt.MinCost
}

const (
	testUser     = "alice"
	testPassword = "s3cret-pass"
)

type testClient struct {
	t      *testing.T
	db     *core.CoreDB
	server *httptest.Server
	client *http.Client
	alice  *core.Redactor
}

func newTestClient(t *testing.T, opts Options) *testClient {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.sqlite3")+"?_busy_timeout=10000")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, sqldb.CreateSchema(sqlDB, "sqlite3"))

	store, err := sqlite3.NewSessionStore(sqlDB)
	require.NoError(t, err)

	var db = &core.CoreDB{
		NewspaperDB: sqldb.NewNewspaperDB(sqlDB),
		RedactorDB:  sqldb.NewRedactorDB(sqlDB),
		TopicDB:     sqldb.NewTopicDB(sqlDB),
	}
	db.Init(store, opts.Prefix, time.Hour, time.Hour)

	var alice = &core.Redactor{Username: testUser, FirstName: "Alice", LastName: "Smith", YearsOfExperience: 5}
	require.NoError(t, db.CreateRedactor(alice, testPassword))

	var mux = http.NewServeMux()
	util.HandlePrefix(mux, opts.Prefix, NewBackendRouter(db, opts))

	var server = httptest.NewServer(db.SessionManager.LoadAndSave(mux))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testClient{
		t:      t,
		db:     db,
		server: server,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		alice: alice,
	}
}

func defaultOptions() Options {
	return Options{
		PublicRedactors: true,
		LoginRate:       100,
		LoginBurst:      100,
	}
}

// do returns the response status, the Location header and the body.
func (c *testClient) do(req *http.Request) (int, string, string) {
	c.t.Helper()
	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func (c *testClient) get(path string) (int, string, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.server.URL+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

func (c *testClient) post(path string, values url.Values) (int, string, string) {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.server.URL+path, strings.NewReader(values.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *testClient) login() {
	c.t.Helper()
	status, location, _ := c.post("/login", url.Values{"username": {testUser}, "password": {testPassword}})
	require.Equal(c.t, http.StatusSeeOther, status)
	require.Equal(c.t, "/", location)
}

func TestGatedRoutesRedirectToLogin(t *testing.T) {
	c := newTestClient(t, defaultOptions())

	for _, path := range []string{"/", "/topics/", "/topics/create/", "/newspapers/", "/newspapers/1/", "/redactors/create/", "/redactors/1/update/"} {
		status, location, _ := c.get(path)
		assert.Equal(t, http.StatusSeeOther, status, path)
		assert.Equal(t, "/login?next="+url.QueryEscape(path), location, path)
	}

	// a POST-only route can't be the next page
	status, location, _ := c.post("/newspapers/1/toggle-assign/", nil)
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)

	// public by default
	status, _, body := c.get("/redactors/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, testUser)

	status, _, _ = c.get("/redactors/" + strconv.Itoa(c.alice.ID) + "/")
	assert.Equal(t, http.StatusOK, status)
}

func TestPrivateRedactors(t *testing.T) {
	opts := defaultOptions()
	opts.PublicRedactors = false
	c := newTestClient(t, opts)

	status, location, _ := c.get("/redactors/")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login?next=%2Fredactors%2F", location)
}

func TestPrefix(t *testing.T) {
	opts := defaultOptions()
	opts.Prefix = "/news"
	c := newTestClient(t, opts)

	status, location, _ := c.get("/news/topics/")
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/news/login?next=%2Ftopics%2F", location)

	status, location, _ = c.post("/news/login", url.Values{"username": {testUser}, "password": {testPassword}, "next": {"/topics/"}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/news/topics/", location)

	status, _, body := c.get("/news/topics/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `<base href="/news/">`)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, defaultOptions())

	status, _, body := c.get("/login")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `name="password"`)

	before := testutil.ToFloat64(metrics.LoginAttempts.WithLabelValues("failure"))
	status, _, body = c.post("/login", url.Values{"username": {testUser}, "password": {"wrong-pass"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, core.ErrAuth.Error())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.LoginAttempts.WithLabelValues("failure")))

	// external next is ignored
	status, location, _ := c.post("/login", url.Values{"username": {testUser}, "password": {testPassword}, "next": {"//example.com/"}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/", location)

	status, _, body = c.get("/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Welcome alice!")

	// GET doesn't log out
	status, _, _ = c.get("/logout")
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	status, _, _ = c.get("/topics/")
	assert.Equal(t, http.StatusOK, status)

	status, location, _ = c.post("/logout", nil)
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/login", location)

	status, _, _ = c.get("/topics/")
	assert.Equal(t, http.StatusSeeOther, status)
}

func TestLoginNext(t *testing.T) {
	c := newTestClient(t, defaultOptions())

	status, location, _ := c.post("/login", url.Values{"username": {testUser}, "password": {testPassword}, "next": {"/topics/?name=a"}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/topics/?name=a", location)
}

func TestLoginRateLimit(t *testing.T) {
	opts := defaultOptions()
	opts.LoginRate = rate.Every(time.Hour)
	opts.LoginBurst = 1
	c := newTestClient(t, opts)

	before := testutil.ToFloat64(metrics.LoginAttempts.WithLabelValues("limited"))

	status, _, _ := c.post("/login", url.Values{"username": {testUser}, "password": {"wrong-pass"}})
	assert.Equal(t, http.StatusOK, status)

	status, _, body := c.post("/login", url.Values{"username": {testUser}, "password": {testPassword}})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, body, errTooManyAttempts.Error())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.LoginAttempts.WithLabelValues("limited")))
}

func TestIndexCountsVisits(t *testing.T) {
	c := newTestClient(t, defaultOptions())
	c.login()

	status, _, body := c.get("/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "1 redactors")
	assert.Contains(t, body, "0 newspapers")
	assert.Contains(t, body, "You have visited this page 1 time.")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Records.WithLabelValues("redactor")))

	_, _, body = c.get("/")
	assert.Contains(t, body, "You have visited this page 2 times.")
}

func TestNotFound(t *testing.T) {
	c := newTestClient(t, defaultOptions())
	c.login()

	for _, path := range []string{"/topics/999/", "/topics/abc/", "/topics/0/update/", "/topics/?page=2", "/topics/?page=x", "/newspapers/999/delete/", "/redactors/999/"} {
		status, _, body := c.get(path)
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.Contains(t, body, "Not found", path)
	}

	status, _, _ := c.post("/topics/999/delete/", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = c.post("/newspapers/999/toggle-assign/", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _, _ = c.get("/topics/?page=last")
	assert.Equal(t, http.StatusOK, status)
}

func TestTopicCRUD(t *testing.T) {
	c := newTestClient(t, defaultOptions())
	c.login()

	status, _, body := c.post("/topics/create/", url.Values{"name": {""}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "This field is required.")
	count, err := c.db.CountTopics("")
	require.NoError(t, err)
	assert.Zero(t, count)

	status, location, _ := c.post("/topics/create/", url.Values{"name": {"Sports"}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/topics/", location)

	topics, err := c.db.SearchTopics("Sports", 1, 0)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	var id = strconv.Itoa(topics[0].ID)

	_, _, body = c.get("/topics/")
	assert.Contains(t, body, "The topic Sports has been saved.")
	assert.Contains(t, body, "Sports")

	_, _, body = c.get("/topics/?name=SPO")
	assert.Contains(t, body, "topics/"+id+"/")
	_, _, body = c.get("/topics/?name=xyz")
	assert.Contains(t, body, "There are no topics.")

	status, _, body = c.get("/topics/" + id + "/update/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `value="Sports"`)

	status, location, _ = c.post("/topics/"+id+"/update/", url.Values{"name": {"Football"}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/topics/", location)

	_, _, body = c.get("/topics/" + id + "/")
	assert.Contains(t, body, "Football")

	status, _, body = c.get("/topics/" + id + "/delete/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Are you sure")

	status, location, _ = c.post("/topics/"+id+"/delete/", nil)
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/topics/", location)

	status, _, _ = c.get("/topics/" + id + "/")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRedactorCreate(t *testing.T) {
	c := newTestClient(t, defaultOptions())
	c.login()

	var values = url.Values{
		"username":            {"bob"},
		"first_name":          {"Bob"},
		"last_name":           {"Jones"},
		"years_of_experience": {"12"},
		"password1":           {"another-pass"},
		"password2":           {"another-pass"},
	}

	values.Set("years_of_experience", "150")
	status, _, body := c.post("/redactors/create/", values)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Years of experience must be less than 100")
	_, err := c.db.GetRedactorByUsername("bob")
	assert.ErrorIs(t, err, core.ErrNotFound)

	values.Set("years_of_experience", "12")
	values.Set("password1", strings.Repeat("x", 80))
	values.Set("password2", strings.Repeat("x", 80))
	status, _, body = c.post("/redactors/create/", values)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "This password is too long. It must contain at most 72 bytes.")
	_, err = c.db.GetRedactorByUsername("bob")
	assert.ErrorIs(t, err, core.ErrNotFound)

	values.Set("password1", "another-pass")
	values.Set("password2", "another-pass")
	status, location, _ := c.post("/redactors/create/", values)
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/redactors/", location)

	bob, err := c.db.LoginRedactor("bob", "another-pass")
	require.NoError(t, err)
	assert.Equal(t, 12, bob.YearsOfExperience)

	// same username again
	status, _, body = c.post("/redactors/create/", values)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "A user with that username already exists.")

	status, location, _ = c.post("/redactors/"+strconv.Itoa(bob.ID)+"/delete/", nil)
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/redactors/", location)
	_, err = c.db.GetRedactor(bob.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

// TestSportsDaily walks through a typical session: a topic and a newspaper are created,
// years of experience are validated and the logged-in redactor assigns itself as publisher.
func TestSportsDaily(t *testing.T) {
	c := newTestClient(t, defaultOptions())
	c.login()

	status, _, _ := c.post("/topics/create/", url.Values{"name": {"Sports"}})
	require.Equal(t, http.StatusSeeOther, status)
	topics, err := c.db.AllTopics()
	require.NoError(t, err)
	require.Len(t, topics, 1)

	status, _, body := c.get("/newspapers/create/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Sports")

	status, location, _ := c.post("/newspapers/create/", url.Values{
		"title":   {"Daily"},
		"content": {"Today in *sports*"},
		"topics":  {strconv.Itoa(topics[0].ID)},
	})
	require.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/newspapers/", location)

	newspapers, err := c.db.SearchNewspapers("daily", 10, 0)
	require.NoError(t, err)
	require.Len(t, newspapers, 1)
	var daily = newspapers[0]
	assert.Equal(t, []int{topics[0].ID}, daily.TopicIDs())
	var dailyPath = "/newspapers/" + strconv.Itoa(daily.ID) + "/"

	_, _, body = c.get("/newspapers/")
	assert.Contains(t, body, "Daily")
	assert.Contains(t, body, "Today in sports")

	// years of experience must be less than 100
	var alicePath = "/redactors/" + strconv.Itoa(c.alice.ID) + "/"
	status, _, body = c.post(alicePath+"update/", url.Values{"years_of_experience": {"150"}})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Years of experience must be less than 100")
	alice, err := c.db.GetRedactor(c.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, alice.YearsOfExperience)

	status, location, _ = c.post(alicePath+"update/", url.Values{"years_of_experience": {"99"}})
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, "/redactors/", location)
	alice, err = c.db.GetRedactor(c.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 99, alice.YearsOfExperience)

	// toggle
	before := testutil.ToFloat64(metrics.AssignmentToggles.WithLabelValues("assign"))
	status, location, _ = c.post(dailyPath+"toggle-assign/", nil)
	assert.Equal(t, http.StatusSeeOther, status)
	assert.Equal(t, dailyPath, location)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AssignmentToggles.WithLabelValues("assign")))

	_, _, body = c.get(dailyPath)
	assert.Contains(t, body, "Remove me from publishers")
	assert.Contains(t, body, "<em>sports</em>")

	_, _, body = c.get(alicePath)
	assert.Contains(t, body, "Daily")
	assert.Contains(t, body, "Sports")

	status, _, _ = c.post(dailyPath+"toggle-assign/", nil)
	assert.Equal(t, http.StatusSeeOther, status)
	n, err := c.db.GetNewspaper(daily.ID)
	require.NoError(t, err)
	assert.False(t, n.HasPublisher(c.alice.ID))

	// update keeps the published date
	status, _, _ = c.post(dailyPath+"update/", url.Values{
		"title":      {"Daily News"},
		"content":    {"Updated"},
		"publishers": {strconv.Itoa(c.alice.ID)},
	})
	assert.Equal(t, http.StatusSeeOther, status)
	n, err = c.db.GetNewspaper(daily.ID)
	require.NoError(t, err)
	assert.Equal(t, "Daily News", n.Title)
	assert.Equal(t, daily.PublishedDate, n.PublishedDate)
	assert.Empty(t, n.Topics)
	assert.True(t, n.HasPublisher(c.alice.ID))
}

func TestPolicy(t *testing.T) {
	var public = NewPolicy(true)
	assert.Equal(t, Public, public.Access("login"))
	assert.Equal(t, Public, public.Access("redactor-list"))
	assert.Equal(t, Login, public.Access("redactor-create"))
	assert.Equal(t, Login, public.Access("unknown"))

	var private = NewPolicy(false)
	assert.Equal(t, Login, private.Access("redactor-detail"))
	assert.Equal(t, "public", Public.String())
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/topics/", safeNext("/topics/"))
	assert.Equal(t, "/", safeNext(""))
	assert.Equal(t, "/", safeNext("https://example.com/"))
	assert.Equal(t, "/", safeNext("//example.com/"))
	assert.Equal(t, "/", safeNext("/\\example.com"))
}

func TestLoginLimiter(t *testing.T) {
	var limiter = newLoginLimiter(rate.Every(time.Hour), 2)
	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))

	var disabled *loginLimiter = newLoginLimiter(0, 0)
	assert.Nil(t, disabled)
	assert.True(t, disabled.Allow("a"))
}

func TestFailingTemplateRendersErrorPage(t *testing.T) {
	c := newTestClient(t, defaultOptions())

	var brokenTmpl = tmpl(`<p>before</p>{{ .Missing }}`)
	var handle = middleware(c.db, "", "broken", Public, listHandler(brokenTmpl, "topics/", "name", (*core.CoreDB).ListTopics))
	var h = c.db.SessionManager.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		handle(w, req, nil)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/broken", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server error")
	assert.NotContains(t, rec.Body.String(), "<p>before</p>")
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "<!DOCTYPE html>"))
}
