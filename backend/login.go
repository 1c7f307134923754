package backend

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/wansing/newsroom/core"
	"github.com/wansing/newsroom/metrics"
)

var errTooManyAttempts = errors.New("too many login attempts, please try again later")

var loginTmpl = tmpl(`<h1>Login</h1>
	<form method="post" action="login" style="max-width: 20rem; margin: auto;">
		<input type="hidden" name="next" value="{{ .Next }}">
		<div class="form-group">
			<label for="username">Username</label>
			<input type="text" class="form-control" id="username" name="username" value="{{ .Username }}" required autofocus>
		</div>
		<div class="form-group">
			<label for="password">Password</label>
			<input type="password" class="form-control" id="password" name="password" required>
		</div>
		<div class="form-group">
			<button type="submit" class="btn btn-primary" name="login">Login</button>
		</div>
	</form>`)

type loginData struct {
	*context
	Next     string
	Username string
}

func loginHandler(limiter *loginLimiter) handlerFunc {
	return func(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {

		var next = safeNext(req.FormValue("next"))

		if ctx.LoggedIn() {
			ctx.SeeOther("%s", next)
			return nil
		}

		var data = &loginData{
			context: ctx,
			Next:    next,
		}

		if req.Method == http.MethodPost {

			data.Username = req.PostFormValue("username") // keep POST data for username field

			if !limiter.Allow(clientIP(req)) {
				metrics.RecordLogin("limited")
				ctx.Danger(errTooManyAttempts)
				w.WriteHeader(http.StatusTooManyRequests)
				return render(w, loginTmpl, data)
			}

			err := ctx.Login(data.Username, req.PostFormValue("password"))
			switch {
			case err == nil:
				metrics.RecordLogin("success")
				ctx.SeeOther("%s", next)
				return nil
			case errors.Is(err, core.ErrAuth):
				metrics.RecordLogin("failure")
				ctx.Danger(err)
			default:
				return err
			}
		}

		return render(w, loginTmpl, data)
	}
}

func logout(w http.ResponseWriter, req *http.Request, ctx *context, params httprouter.Params) error {
	ctx.Logout()
	ctx.Success("Goodbye")
	ctx.SeeOther("/login")
	return nil
}
