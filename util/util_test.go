package util

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPages(t *testing.T) {
	assert.Equal(t, []int{1}, Pages(1, 1))
	assert.Equal(t, []int{1, 2, 3}, Pages(1, 3))
	assert.Equal(t, []int{1, 2, 3, 5, 9, 10}, Pages(1, 10))
	assert.Equal(t, []int{1, 3, 4, 5, 6, 7, 9, 10}, Pages(5, 10))
}

func TestPageLinks(t *testing.T) {
	var href = func(page int) string {
		return "topics/?name=a&page=" + strconv.Itoa(page)
	}

	assert.Nil(t, PageLinks(1, 1, href))

	links := PageLinks(2, 3, href)
	require.Len(t, links, 5) // previous, 1, 2, 3, next
	assert.Contains(t, string(links[0]), `href="topics/?name=a&amp;page=1"`)
	assert.Contains(t, string(links[2]), `active`)
	assert.Contains(t, string(links[4]), `page=3`)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "Hello world", Excerpt("# Hello\n\n*world*", 200))
	assert.Equal(t, "abc…", Excerpt("abcdef", 3))
}

func TestMarkdown(t *testing.T) {
	assert.Contains(t, string(Markdown("*news*")), "<em>news</em>")
	assert.NotContains(t, string(Markdown("<script>alert(1)</script>")), "<script>")
}

func TestTrunc(t *testing.T) {
	assert.Equal(t, "äöü", Trunc("äöüß", 3))
	assert.Equal(t, "ab", Trunc(" ab ", 5))
	assert.Equal(t, "a", Trunc("a bc", 2))
}

func TestHandlePrefix(t *testing.T) {
	var handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login?next="+r.URL.Path, http.StatusSeeOther)
	})

	var mux = http.NewServeMux()
	HandlePrefix(mux, "/news/", handler)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/news/topics/", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/news/login?next=/topics/", rec.Header().Get("Location"))

	mux = http.NewServeMux()
	HandlePrefix(mux, "", handler)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/topics/", nil))
	assert.Equal(t, "/login?next=/topics/", rec.Header().Get("Location"))
}

func TestStatusRecorder(t *testing.T) {
	rec := NewStatusRecorder(httptest.NewRecorder())
	assert.Equal(t, http.StatusOK, rec.Status)
	rec.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, rec.Status)
	assert.True(t, strings.HasPrefix(http.StatusText(rec.Status), "I'm"))
}
