package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/newsroom/core"
	"github.com/wansing/newsroom/metrics"
)

var newspaperListTmpl = tmpl(`
	<h1>Newspapers</h1>
	<form class="form-inline mb-3" method="get" action="newspapers/">
		<input type="text" class="form-control mr-2" name="title" value="{{ .Search }}" placeholder="Search by title">
		<button type="submit" class="btn btn-secondary">Search</button>
		<a class="btn btn-primary ml-auto" href="newspapers/create/">Create newspaper</a>
	</form>
	{{ with .Page.Items }}
		{{ range . }}
			<div class="card mb-2">
				<div class="card-body">
					<h2><a href="newspapers/{{ .ID }}/">{{ .Title }}</a></h2>
					<p class="text-muted mb-1">
						{{ $.FormatDate .PublishedDate }}
						{{ range .Topics }}<span class="badge badge-info ml-1">{{ .Name }}</span>{{ end }}
					</p>
					<p class="mb-0">{{ Excerpt .Content }}</p>
				</div>
			</div>
		{{ end }}
	{{ else }}
		<p>There are no newspapers.</p>
	{{ end }}
	{{ with .PageLinks }}
		<ul class="pagination mt-3">
			{{ range . }}{{ . }}{{ end }}
		</ul>
	{{ end }}`)

var newspaperDetailTmpl = tmpl(`
	{{ with .Object }}
		<h1>{{ .Title }}</h1>
		<p class="text-muted">
			Published on {{ $.FormatDate .PublishedDate }}
			{{ range .Topics }}<span class="badge badge-info ml-1">{{ .Name }}</span>{{ end }}
		</p>
		<div class="mb-3">{{ Markdown .Content }}</div>
		<h2>Publishers</h2>
		{{ with .Publishers }}
			<ul>
				{{ range . }}<li><a href="redactors/{{ .ID }}/">{{ . }}</a></li>{{ end }}
			</ul>
		{{ else }}
			<p>This newspaper has no publishers.</p>
		{{ end }}
		<form class="inline-form" method="post" action="newspapers/{{ .ID }}/toggle-assign/">
			{{ if .HasPublisher $.User.ID }}
				<button type="submit" class="btn btn-warning">Remove me from publishers</button>
			{{ else }}
				<button type="submit" class="btn btn-success">Assign me as publisher</button>
			{{ end }}
		</form>
		<a class="btn btn-secondary" href="newspapers/{{ .ID }}/update/">Update</a>
		<a class="btn btn-danger" href="newspapers/{{ .ID }}/delete/">Delete</a>
	{{ end }}`)

var newspaperFormTmpl = tmpl(`
	<h1>{{ if .ID }}Update newspaper{{ else }}Create newspaper{{ end }}</h1>
	<form method="post">
		<div class="form-group">
			<label for="title">Title</label>
			<input type="text" class="form-control {{ Invalid .Errors "title" }}" id="title" name="title" value="{{ .Form.Title }}" maxlength="255" required autofocus>
			{{ FieldErrors .Errors "title" }}
		</div>
		<div class="form-group">
			<label for="content">Content (Markdown)</label>
			<textarea class="form-control {{ Invalid .Errors "content" }}" id="content" name="content" rows="10" required>{{ .Form.Content }}</textarea>
			{{ FieldErrors .Errors "content" }}
		</div>
		<div class="form-group">
			<label for="topics">Topics</label>
			<select multiple class="form-control {{ Invalid .Errors "topics" }}" id="topics" name="topics">
				{{ range .Form.TopicChoices }}
					<option value="{{ .ID }}" {{ if $.Form.HasTopic .ID }}selected{{ end }}>{{ .Name }}</option>
				{{ end }}
			</select>
			{{ FieldErrors .Errors "topics" }}
		</div>
		<div class="form-group">
			<label for="publishers">Publishers</label>
			<select multiple class="form-control {{ Invalid .Errors "publishers" }}" id="publishers" name="publishers">
				{{ range .Form.PublisherChoices }}
					<option value="{{ .ID }}" {{ if $.Form.HasPublisher .ID }}selected{{ end }}>{{ . }}</option>
				{{ end }}
			</select>
			{{ FieldErrors .Errors "publishers" }}
		</div>
		<button type="submit" class="btn btn-primary">Submit</button>
	</form>`)

var newspaperList = listHandler(newspaperListTmpl, "newspapers/", "title", (*core.CoreDB).ListNewspapers)

var newspaperDetail = detailHandler(newspaperDetailTmpl, func(db *core.CoreDB, id int) (*core.Newspaper, error) {
	return db.GetNewspaper(id)
})

var newspaperForm = formConfig[*core.NewspaperForm]{
	tmpl: newspaperFormTmpl,
	load: func(db *core.CoreDB, id int) (*core.NewspaperForm, error) {
		var form = &core.NewspaperForm{}
		if id != 0 {
			n, err := db.GetNewspaper(id)
			if err != nil {
				return nil, err
			}
			form = core.NewspaperFormOf(n)
		}
		return form, form.LoadChoices(db)
	},
	save: func(db *core.CoreDB, id int, form *core.NewspaperForm) error {
		var n = &core.Newspaper{
			ID: id,
		}
		form.Apply(n)
		if id == 0 {
			return db.CreateNewspaper(n)
		}
		return db.UpdateNewspaper(n)
	},
	message: func(form *core.NewspaperForm) string {
		return "The newspaper " + form.Title + " has been saved."
	},
	redirect: "/newspapers/",
}

var newspaperCreate = createHandler(newspaperForm)

var newspaperUpdate = updateHandler(newspaperForm)

var newspaperDelete = deleteHandler("newspaper", "newspapers/",
	func(db *core.CoreDB, id int) (*core.Newspaper, error) {
		return db.GetNewspaper(id)
	},
	func(db *core.CoreDB, id int) error {
		return db.DeleteNewspaper(id)
	},
)

// toggleAssign adds the logged-in redactor to the publishers of the newspaper or removes it.
func toggleAssign(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	id, err := parseID(params)
	if err != nil {
		return err
	}

	if !ctx.LoggedIn() {
		return core.ErrUnauthorized
	}

	assigned, err := ctx.db.ToggleAssignment(id, ctx.User.ID)
	if err != nil {
		return err
	}
	metrics.RecordToggle(assigned)

	if assigned {
		ctx.Success("You have been assigned as publisher.")
	} else {
		ctx.Success("You have been removed from the publishers.")
	}
	ctx.SeeOther("/newspapers/%d/", id)
	return nil
}
