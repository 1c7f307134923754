package backend

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/newsroom/core"
	"github.com/wansing/newsroom/metrics"
)

var indexTmpl = tmpl(`
	<h1>Newsroom</h1>
	<p>The newsroom has:</p>
	<ul>
		<li><a href="redactors/">{{ .Counts.Redactors }} redactors</a></li>
		<li><a href="newspapers/">{{ .Counts.Newspapers }} newspapers</a></li>
		<li><a href="topics/">{{ .Counts.Topics }} topics</a></li>
	</ul>
	<p>You have visited this page {{ .Visits }} {{ if eq .Visits 1 }}time{{ else }}times{{ end }}.</p>`)

type indexData struct {
	*context
	Counts core.Counts
	Visits int
}

func index(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

	counts, err := ctx.db.Counts()
	if err != nil {
		return err
	}
	metrics.SetRecords(counts.Redactors, counts.Newspapers, counts.Topics)

	return render(w, indexTmpl, &indexData{
		context: ctx,
		Counts:  counts,
		Visits:  ctx.Visit(),
	})
}
