package backend

import (
	"github.com/wansing/newsroom/core"
)

var topicListTmpl = tmpl(`
	<h1>Topics</h1>
	<form class="form-inline mb-3" method="get" action="topics/">
		<input type="text" class="form-control mr-2" name="name" value="{{ .Search }}" placeholder="Search by name">
		<button type="submit" class="btn btn-secondary">Search</button>
		<a class="btn btn-primary ml-auto" href="topics/create/">Create topic</a>
	</form>
	{{ with .Page.Items }}
		<ul class="list-group mb-3">
			{{ range . }}
				<li class="list-group-item"><a href="topics/{{ .ID }}/">{{ .Name }}</a></li>
			{{ end }}
		</ul>
	{{ else }}
		<p>There are no topics.</p>
	{{ end }}
	{{ with .PageLinks }}
		<ul class="pagination">
			{{ range . }}{{ . }}{{ end }}
		</ul>
	{{ end }}`)

var topicDetailTmpl = tmpl(`
	<h1>{{ .Object.Name }}</h1>
	<a class="btn btn-secondary" href="topics/{{ .Object.ID }}/update/">Update</a>
	<a class="btn btn-danger" href="topics/{{ .Object.ID }}/delete/">Delete</a>`)

var topicFormTmpl = tmpl(`
	<h1>{{ if .ID }}Update topic{{ else }}Create topic{{ end }}</h1>
	<form method="post">
		<div class="form-group">
			<label for="name">Name</label>
			<input type="text" class="form-control {{ Invalid .Errors "name" }}" id="name" name="name" value="{{ .Form.Name }}" maxlength="255" required autofocus>
			{{ FieldErrors .Errors "name" }}
		</div>
		<button type="submit" class="btn btn-primary">Submit</button>
	</form>`)

var topicList = listHandler(topicListTmpl, "topics/", "name", (*core.CoreDB).ListTopics)

var topicDetail = detailHandler(topicDetailTmpl, func(db *core.CoreDB, id int) (*core.Topic, error) {
	return db.GetTopic(id)
})

var topicForm = formConfig[*core.TopicForm]{
	tmpl: topicFormTmpl,
	load: func(db *core.CoreDB, id int) (*core.TopicForm, error) {
		if id == 0 {
			return &core.TopicForm{}, nil
		}
		t, err := db.GetTopic(id)
		if err != nil {
			return nil, err
		}
		return &core.TopicForm{Name: t.Name}, nil
	},
	save: func(db *core.CoreDB, id int, form *core.TopicForm) error {
		var t = &core.Topic{
			ID:   id,
			Name: form.Name,
		}
		if id == 0 {
			return db.InsertTopic(t)
		}
		return db.UpdateTopic(t)
	},
	message: func(form *core.TopicForm) string {
		return "The topic " + form.Name + " has been saved."
	},
	redirect: "/topics/",
}

var topicCreate = createHandler(topicForm)

var topicUpdate = updateHandler(topicForm)

var topicDelete = deleteHandler("topic", "topics/",
	func(db *core.CoreDB, id int) (*core.Topic, error) {
		return db.GetTopic(id)
	},
	func(db *core.CoreDB, id int) error {
		return db.DeleteTopic(id)
	},
)
