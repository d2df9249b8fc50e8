package app

import (
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/roach88/seqharness/internal/session"
	"github.com/roach88/seqharness/internal/ui"
)

// Login form selectors.
const (
	LoginForm     = "#account-login-form"
	LoginEmail    = "#account-login-email"
	LoginPassword = "#account-login-password"
)

var loginTmpl = template.Must(template.New("login").Parse(`
<div id="account-login">
  {{- if .Alert}}<div class="alert alert-danger">{{.Alert}}</div>{{end}}
  <form id="account-login-form">
    <input id="account-login-email" type="email" value="{{.Email}}">
    <input id="account-login-password" type="password" value="{{.Password}}">
    <button type="submit" class="btn btn-primary"{{if .Submitting}} disabled{{end}}>Log in</button>
  </form>
</div>`))

// LoginView authenticates in two steps: create a session, then fetch the
// user it belongs to.
type LoginView struct {
	inst       *ui.Instance
	next       string
	Email      string
	Password   string
	Submitting bool
	Alert      string
}

func newLoginView(inst *ui.Instance, to ui.Location) ui.Component {
	next := to.Query.Get("next")
	if next == "" {
		next = PathProjects
	}
	return &LoginView{inst: inst, next: next}
}

// Render implements ui.Component.
func (v *LoginView) Render(w io.Writer) error {
	return loginTmpl.Execute(w, v)
}

// Listeners implements ui.Listening.
func (v *LoginView) Listeners() []ui.Listener {
	return []ui.Listener{
		{Event: "input", Selector: LoginEmail, Handle: func(ev *ui.Event) {
			v.Email = ui.Attr(ev.Target, "value")
		}},
		{Event: "input", Selector: LoginPassword, Handle: func(ev *ui.Event) {
			v.Password = ui.Attr(ev.Target, "value")
		}},
		{Event: "submit", Selector: LoginForm, Handle: func(*ui.Event) { v.submit() }},
	}
}

func (v *LoginView) submit() {
	if v.Submitting {
		return
	}
	v.Submitting = true
	v.Alert = ""
	v.inst.Invalidate()

	creds := map[string]string{"email": v.Email, "password": v.Password}
	var sess session.Session
	call(v.inst, http.MethodPost, "/v1/sessions", creds, "", &sess, func(err error) {
		if err != nil {
			v.fail(err)
			return
		}
		var user session.User
		call(v.inst, http.MethodGet, "/v1/users/current", nil, sess.Token, &user, func(err error) {
			if err != nil {
				v.fail(err)
				return
			}
			v.inst.Session().LogIn(sess, user)
			v.Submitting = false
			v.inst.Invalidate()
			v.inst.Router().Push(v.next)
		})
	})
}

func (v *LoginView) fail(err error) {
	v.inst.Logger().Info("login failed", "error", err)
	v.Submitting = false
	v.Alert = loginAlert(err)
	v.inst.Invalidate()
}

func loginAlert(err error) string {
	var p *Problem
	if errors.As(err, &p) && p.Status == http.StatusUnauthorized {
		return "Incorrect email address and/or password."
	}
	return alertText(err)
}
