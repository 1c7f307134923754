package backend

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/newsroom/core"
	"github.com/wansing/newsroom/util"
)

type listData[T any] struct {
	*context
	Page   *core.Page[T]
	Param  string // name of the search parameter
	Search string
	path   string
}

// PageLinks keeps the search term in the links.
func (data *listData[T]) PageLinks() []template.HTML {
	return util.PageLinks(data.Page.Number, data.Page.NumPages, func(page int) string {
		var values = url.Values{}
		if data.Search != "" {
			values.Set(data.Param, data.Search)
		}
		values.Set("page", strconv.Itoa(page))
		return data.path + "?" + values.Encode()
	})
}

// listHandler renders a page of a filtered collection. path is relative to the base href.
func listHandler[T any](t *template.Template, path, param string, list func(db *core.CoreDB, search, page string) (*core.Page[T], error)) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
		var search = req.URL.Query().Get(param)
		page, err := list(ctx.db, search, req.URL.Query().Get("page"))
		if err != nil {
			return err
		}
		return render(w, t, &listData[T]{
			context: ctx,
			Page:    page,
			Param:   param,
			Search:  search,
			path:    path,
		})
	}
}

type detailData[T any] struct {
	*context
	Object T
}

func detailHandler[T any](t *template.Template, get func(db *core.CoreDB, id int) (T, error)) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
		id, err := parseID(params)
		if err != nil {
			return err
		}
		obj, err := get(ctx.db, id)
		if err != nil {
			return err
		}
		return render(w, t, &detailData[T]{
			context: ctx,
			Object:  obj,
		})
	}
}

// A formConfig describes a create or update form. On create, load and save get id zero.
type formConfig[F core.Form] struct {
	tmpl     *template.Template
	load     func(db *core.CoreDB, id int) (F, error)
	save     func(db *core.CoreDB, id int, form F) error
	message  func(form F) string // success notification
	redirect string
}

type formData[F core.Form] struct {
	*context
	Form   F
	Errors core.FieldErrors
	ID     int // zero on create
}

func createHandler[F core.Form](fc formConfig[F]) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
		return fc.handle(w, req, ctx, 0)
	}
}

func updateHandler[F core.Form](fc formConfig[F]) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
		id, err := parseID(params)
		if err != nil {
			return err
		}
		return fc.handle(w, req, ctx, id)
	}
}

func (fc formConfig[F]) handle(w http.ResponseWriter, req *http.Request, ctx *context, id int) error {

	form, err := fc.load(ctx.db, id)
	if err != nil {
		return err
	}

	var errs core.FieldErrors

	if req.Method == http.MethodPost {
		if err := req.ParseForm(); err != nil {
			return fmt.Errorf("parsing form: %w", err)
		}
		errs, err = form.Bind(req.PostForm, ctx.db)
		if err != nil {
			return err
		}
		if errs.Empty() {
			if err := fc.save(ctx.db, id, form); err != nil {
				return err
			}
			ctx.Success("%s", fc.message(form))
			ctx.SeeOther("%s", fc.redirect)
			return nil
		}
		// keep POST data, render errors
	}

	return render(w, fc.tmpl, &formData[F]{
		context: ctx,
		Form:    form,
		Errors:  errs,
		ID:      id,
	})
}

var deleteTmpl = tmpl(`
	<h1>Delete {{ .Kind }}</h1>
	<p>Are you sure you want to delete the {{ .Kind }} "{{ .Name }}"?</p>
	<form method="post">
		<button type="submit" class="btn btn-danger">Yes, delete</button>
		<a class="btn btn-secondary" href="{{ .Cancel }}">Cancel</a>
	</form>`)

type deleteData struct {
	*context
	Kind   string
	Name   string
	Cancel string
}

// deleteHandler shows a confirmation page on GET and deletes on POST. kind is lower case.
func deleteHandler[T fmt.Stringer](kind, listPath string, get func(db *core.CoreDB, id int) (T, error), del func(db *core.CoreDB, id int) error) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

		id, err := parseID(params)
		if err != nil {
			return err
		}

		obj, err := get(ctx.db, id)
		if err != nil {
			return err
		}

		if req.Method == http.MethodPost {
			if err := del(ctx.db, id); err != nil {
				return err
			}
			ctx.Success("The %s %s has been deleted.", kind, obj)
			ctx.SeeOther("/%s", listPath)
			return nil
		}

		return render(w, deleteTmpl, &deleteData{
			context: ctx,
			Kind:    kind,
			Name:    obj.String(),
			Cancel:  fmt.Sprintf("%s%d/", listPath, id),
		})
	}
}
