package backend

import (
	"github.com/wansing/newsroom/core"
)

var redactorListTmpl = tmpl(`
	<h1>Redactors</h1>
	<form class="form-inline mb-3" method="get" action="redactors/">
		<input type="text" class="form-control mr-2" name="username" value="{{ .Search }}" placeholder="Search by username">
		<button type="submit" class="btn btn-secondary">Search</button>
		{{ if .LoggedIn }}
			<a class="btn btn-primary ml-auto" href="redactors/create/">Create redactor</a>
		{{ end }}
	</form>
	{{ with .Page.Items }}
		<table class="table">
			<thead>
				<tr>
					<th>Username</th>
					<th>Name</th>
					<th>Years of experience</th>
				</tr>
			</thead>
			<tbody>
				{{ range . }}
					<tr>
						<td><a href="redactors/{{ .ID }}/">{{ .Username }}</a></td>
						<td>{{ .FirstName }} {{ .LastName }}</td>
						<td>{{ .YearsOfExperience }}</td>
					</tr>
				{{ end }}
			</tbody>
		</table>
	{{ else }}
		<p>There are no redactors.</p>
	{{ end }}
	{{ with .PageLinks }}
		<ul class="pagination">
			{{ range . }}{{ . }}{{ end }}
		</ul>
	{{ end }}`)

var redactorDetailTmpl = tmpl(`
	{{ with .Object }}
		<h1>{{ .Username }}</h1>
		<dl class="row">
			<dt class="col-sm-3">Name</dt>
			<dd class="col-sm-9">{{ .FirstName }} {{ .LastName }}</dd>
			<dt class="col-sm-3">Years of experience</dt>
			<dd class="col-sm-9">{{ .YearsOfExperience }}</dd>
		</dl>
		<h2>Newspapers</h2>
		{{ with .Newspapers }}
			<ul>
				{{ range . }}
					<li>
						{{ if $.LoggedIn }}<a href="newspapers/{{ .ID }}/">{{ .Title }}</a>{{ else }}{{ .Title }}{{ end }}
						{{ range .Topics }}<span class="badge badge-info ml-1">{{ .Name }}</span>{{ end }}
					</li>
				{{ end }}
			</ul>
		{{ else }}
			<p>This redactor publishes no newspapers.</p>
		{{ end }}
		{{ if $.LoggedIn }}
			<a class="btn btn-secondary" href="redactors/{{ .ID }}/update/">Update</a>
			<a class="btn btn-danger" href="redactors/{{ .ID }}/delete/">Delete</a>
		{{ end }}
	{{ end }}`)

var redactorCreateTmpl = tmpl(`
	<h1>Create redactor</h1>
	<form method="post">
		<div class="form-group">
			<label for="username">Username</label>
			<input type="text" class="form-control {{ Invalid .Errors "username" }}" id="username" name="username" value="{{ .Form.Username }}" maxlength="150" required autofocus>
			<small class="form-text text-muted">Letters, digits and @/./+/-/_ only.</small>
			{{ FieldErrors .Errors "username" }}
		</div>
		<div class="form-group">
			<label for="first_name">First name</label>
			<input type="text" class="form-control {{ Invalid .Errors "first_name" }}" id="first_name" name="first_name" value="{{ .Form.FirstName }}" maxlength="150">
			{{ FieldErrors .Errors "first_name" }}
		</div>
		<div class="form-group">
			<label for="last_name">Last name</label>
			<input type="text" class="form-control {{ Invalid .Errors "last_name" }}" id="last_name" name="last_name" value="{{ .Form.LastName }}" maxlength="150">
			{{ FieldErrors .Errors "last_name" }}
		</div>
		<div class="form-group">
			<label for="years_of_experience">Years of experience</label>
			<input type="number" class="form-control {{ Invalid .Errors "years_of_experience" }}" id="years_of_experience" name="years_of_experience" value="{{ .Form.Years }}" min="0" max="99" required>
			{{ FieldErrors .Errors "years_of_experience" }}
		</div>
		<div class="form-group">
			<label for="password1">Password</label>
			<input type="password" class="form-control {{ Invalid .Errors "password1" }}" id="password1" name="password1" required>
			{{ FieldErrors .Errors "password1" }}
		</div>
		<div class="form-group">
			<label for="password2">Password confirmation</label>
			<input type="password" class="form-control {{ Invalid .Errors "password2" }}" id="password2" name="password2" required>
			{{ FieldErrors .Errors "password2" }}
		</div>
		<button type="submit" class="btn btn-primary">Submit</button>
	</form>`)

var redactorUpdateTmpl = tmpl(`
	<h1>Update {{ .Form.Username }}</h1>
	<form method="post">
		<div class="form-group">
			<label for="years_of_experience">Years of experience</label>
			<input type="number" class="form-control {{ Invalid .Errors "years_of_experience" }}" id="years_of_experience" name="years_of_experience" value="{{ .Form.Years }}" min="0" max="99" required autofocus>
			{{ FieldErrors .Errors "years_of_experience" }}
		</div>
		<button type="submit" class="btn btn-primary">Submit</button>
	</form>`)

var redactorList = listHandler(redactorListTmpl, "redactors/", "username", (*core.CoreDB).ListRedactors)

var redactorDetail = detailHandler(redactorDetailTmpl, (*core.CoreDB).GetRedactorWithNewspapers)

var redactorCreate = createHandler(formConfig[*core.RedactorCreateForm]{
	tmpl: redactorCreateTmpl,
	load: func(db *core.CoreDB, id int) (*core.RedactorCreateForm, error) {
		return &core.RedactorCreateForm{}, nil
	},
	save: func(db *core.CoreDB, id int, form *core.RedactorCreateForm) error {
		return db.CreateRedactor(form.Redactor(), form.Password())
	},
	message: func(form *core.RedactorCreateForm) string {
		return "The redactor " + form.Username + " has been created."
	},
	redirect: "/redactors/",
})

var redactorUpdate = updateHandler(formConfig[*core.RedactorUpdateForm]{
	tmpl: redactorUpdateTmpl,
	load: func(db *core.CoreDB, id int) (*core.RedactorUpdateForm, error) {
		r, err := db.GetRedactor(id)
		if err != nil {
			return nil, err
		}
		return core.RedactorUpdateFormOf(r), nil
	},
	save: func(db *core.CoreDB, id int, form *core.RedactorUpdateForm) error {
		return db.SetYearsOfExperience(id, form.YearsOfExperience)
	},
	message: func(form *core.RedactorUpdateForm) string {
		return "The redactor " + form.Username + " has been updated."
	},
	redirect: "/redactors/",
})

var redactorDelete = deleteHandler("redactor", "redactors/",
	func(db *core.CoreDB, id int) (*core.Redactor, error) {
		return db.GetRedactor(id)
	},
	func(db *core.CoreDB, id int) error {
		return db.DeleteRedactor(id)
	},
)
