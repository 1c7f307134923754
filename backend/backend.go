package backend

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/newsroom/core"
	"github.com/wansing/newsroom/logging"
	"github.com/wansing/newsroom/metrics"
	"github.com/wansing/newsroom/util"
	"golang.org/x/time/rate"
)

// we need the CoreDB in the backend
type context struct {
	*core.Request
	Prefix string // with trailing slash
	db     *core.CoreDB
}

type handlerFunc func(http.ResponseWriter, *http.Request, *context, httprouter.Params) error

// Options configure the backend router.
type Options struct {
	Prefix          string // without trailing slash
	PublicRedactors bool
	LoginRate       rate.Limit
	LoginBurst      int
}

func middleware(db *core.CoreDB, prefix string, route string, access Access, f handlerFunc) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {

		var start = time.Now()
		var rec = util.NewStatusRecorder(w)
		defer func() {
			metrics.ObserveRequest(route, req.Method, rec.Status, time.Since(start))
		}()

		var ctx = &context{
			Prefix:  prefix + "/",
			Request: db.NewRequest(rec, req),
			db:      db,
		}
		defer ctx.Cleanup()

		if access == Login && !ctx.LoggedIn() {
			redirectToLogin(ctx, req)
			return
		}

		if err := f(rec, req, ctx, params); err != nil {
			handleError(rec, req, ctx, route, err)
		}
	}
}

// redirectToLogin passes the requested page as next, unless it can't be revisited with GET.
func redirectToLogin(ctx *context, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		ctx.SeeOther("/login")
		return
	}
	ctx.SeeOther("/login?next=%s", url.QueryEscape(req.URL.RequestURI()))
}

// render executes t into a buffer, so a failing template doesn't leave a half-written page.
func render(w http.ResponseWriter, t *template.Template, data any) error {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

var errorTmpl = tmpl(`
	<h1>{{ .Title }}</h1>
	<div class="alert alert-danger" role="alert">
		{{ .Message }}
	</div>`)

type errorData struct {
	*context
	Title   string
	Message string
}

// handleError maps errors to responses. Handlers render into a buffer, so nothing has been written yet.
func handleError(w http.ResponseWriter, req *http.Request, ctx *context, route string, err error) {

	if ctx.StatusWritten() {
		return
	}

	var status = http.StatusInternalServerError
	var data = &errorData{
		context: ctx,
		Title:   "Server error",
		Message: "The request could not be processed.",
	}

	switch {
	case errors.Is(err, core.ErrUnauthorized):
		redirectToLogin(ctx, req)
		return
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
		data.Title = "Not found"
		data.Message = "The requested page does not exist."
	default:
		logging.FromContext(req.Context()).Error("handling request", "route", route, "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = errorTmpl.Execute(w, data)
}

// parseID returns core.ErrNotFound if the id parameter is not a positive number.
func parseID(params httprouter.Params) (int, error) {
	id, err := strconv.Atoi(params.ByName("id"))
	if err != nil || id < 1 {
		return 0, core.ErrNotFound
	}
	return id, nil
}

// safeNext returns next if it is a local path, else "/".
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func NewBackendRouter(db *core.CoreDB, opts Options) http.Handler {

	var router = httprouter.New()
	var policy = NewPolicy(opts.PublicRedactors)

	var route = func(name string, f handlerFunc) httprouter.Handle {
		return middleware(db, opts.Prefix, name, policy.Access(name), f)
	}

	var GETAndPOST = func(path string, handle httprouter.Handle) {
		router.GET(path, handle)
		router.POST(path, handle)
	}

	// httprouter can't have the static segment "create" next to the ":id" wildcard, so they share a route
	var createOrDetail = func(path string, create, detail httprouter.Handle) {
		router.GET(path, func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
			if params.ByName("id") == "create" {
				create(w, req, params)
			} else {
				detail(w, req, params)
			}
		})
		router.POST(path, func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
			if params.ByName("id") == "create" {
				create(w, req, params)
			} else {
				http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			}
		})
	}

	var limiter = newLoginLimiter(opts.LoginRate, opts.LoginBurst)

	router.GET("/", route("index", index))
	GETAndPOST("/login", route("login", loginHandler(limiter)))
	router.POST("/logout", route("logout", logout))

	router.GET("/topics/", route("topic-list", topicList))
	createOrDetail("/topics/:id/", route("topic-create", topicCreate), route("topic-detail", topicDetail))
	GETAndPOST("/topics/:id/update/", route("topic-update", topicUpdate))
	GETAndPOST("/topics/:id/delete/", route("topic-delete", topicDelete))

	router.GET("/newspapers/", route("newspaper-list", newspaperList))
	createOrDetail("/newspapers/:id/", route("newspaper-create", newspaperCreate), route("newspaper-detail", newspaperDetail))
	GETAndPOST("/newspapers/:id/update/", route("newspaper-update", newspaperUpdate))
	GETAndPOST("/newspapers/:id/delete/", route("newspaper-delete", newspaperDelete))
	router.POST("/newspapers/:id/toggle-assign/", route("newspaper-toggle-assign", toggleAssign))

	router.GET("/redactors/", route("redactor-list", redactorList))
	createOrDetail("/redactors/:id/", route("redactor-create", redactorCreate), route("redactor-detail", redactorDetail))
	GETAndPOST("/redactors/:id/update/", route("redactor-update", redactorUpdate))
	GETAndPOST("/redactors/:id/delete/", route("redactor-delete", redactorDelete))

	return router
}

var funcs = template.FuncMap{
	"Excerpt": func(content string) string {
		return util.Excerpt(content, 200)
	},
	"FieldErrors": func(errs core.FieldErrors, field string) template.HTML {
		var b strings.Builder
		for _, msg := range errs.Get(field) {
			b.WriteString(`<div class="invalid-feedback d-block">` + template.HTMLEscapeString(msg) + `</div>`)
		}
		return template.HTML(b.String())
	},
	"Invalid": func(errs core.FieldErrors, field string) string {
		if len(errs.Get(field)) > 0 {
			return "is-invalid"
		}
		return ""
	},
	"Markdown": util.Markdown,
}

func tmpl(text string) *template.Template {
	t := template.Must(backendTmpl.Clone())
	t = template.Must(t.Parse(`{{ define "content" }}` + text + `{{ end }}`))
	return t
}

var backendTmpl = template.Must(template.New("backend").Funcs(funcs).Parse(`
<!DOCTYPE html>
<html>
	<head>
		<base href="{{ .Prefix }}">
		<meta charset="utf-8">
		<meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no">
		<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@4.4.1/dist/css/bootstrap.min.css">
		<title>Newsroom</title>
		<style>
			body {
				padding-bottom: 1rem;
			}
			h1 {
				font-size: 1.5rem !important;
				margin: 1rem 0 0.7rem !important;
			}
			h2 {
				font-size: 1.3rem !important;
				margin: 0.2rem 0 0.5rem !important;
			}
			.inline-form {
				display: inline;
			}
		</style>
	</head>
	<body>

		<nav class="navbar navbar-expand-md bg-light">
			<a class="navbar-brand" href="">Newsroom</a>
			<ul class="navbar-nav">
				{{ if .LoggedIn }}
					<li class="nav-item"><a class="nav-link" href="topics/">Topics</a></li>
					<li class="nav-item"><a class="nav-link" href="newspapers/">Newspapers</a></li>
				{{ end }}
				<li class="nav-item"><a class="nav-link" href="redactors/">Redactors</a></li>
				{{ if .LoggedIn }}
					<li class="nav-item"><a class="nav-link" href="redactors/{{ .User.ID }}/">{{ .User.Username }}</a></li>
					<li class="nav-item">
						<form class="inline-form" method="post" action="logout">
							<button type="submit" class="btn btn-link nav-link">Logout</button>
						</form>
					</li>
				{{ else }}
					<li class="nav-item"><a class="nav-link" href="login">Login</a></li>
				{{ end }}
			</ul>
		</nav>

		<div class="container pt-3">
			{{ .RenderNotifications }}
			{{ template "content" . }}
		</div>

	</body>
</html>`))
