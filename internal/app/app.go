package app

import (
	"bytes"
	"html/template"
	"io"
	"net/http"
	"net/url"

	"github.com/roach88/seqharness/internal/ui"
)

// Paths served by the router.
const (
	PathLogin    = "/login"
	PathProjects = "/"
	PathUsers    = "/users"
)

var layoutTmpl = template.Must(template.New("layout").Parse(`
{{- if .LoggedIn}}
<nav class="navbar">
  <a class="nav-link nav-projects" href="/">Projects</a>
  <a class="nav-link nav-users" href="/users">Users</a>
  <span class="nav-user">{{.Email}}</span>
  <a class="nav-logout" href="#">Log out</a>
</nav>
{{- end}}
<main class="view">{{.View}}</main>`))

// App is the root component. It renders the nav bar and the router's view.
type App struct {
	inst *ui.Instance
}

// New creates the root component.
func New() *App {
	return &App{}
}

// NewRouter creates a router over the application's routes, guarded so that
// everything except the login view requires a session.
func NewRouter() *ui.Router {
	return ui.NewRouter([]ui.Route{
		{Path: PathLogin, Name: "login", View: newLoginView},
		{Path: PathProjects, Name: "projects", View: newProjectList},
		{Path: PathUsers, Name: "users", View: newUserList},
	}, requireLogin)
}

func requireLogin(inst *ui.Instance, to ui.Location) string {
	loggedIn := inst.Session().LoggedIn()
	if to.Path == PathLogin {
		if loggedIn {
			return PathProjects
		}
		return ""
	}
	if !loggedIn {
		return PathLogin + "?" + url.Values{"next": {to.String()}}.Encode()
	}
	return ""
}

// Mounted implements ui.MountHook.
func (a *App) Mounted(inst *ui.Instance) {
	a.inst = inst
}

// Render implements ui.Component.
func (a *App) Render(w io.Writer) error {
	data := struct {
		LoggedIn bool
		Email    string
		View     template.HTML
	}{}
	if a.inst != nil {
		data.LoggedIn = a.inst.Session().LoggedIn()
		if u, ok := a.inst.Session().User(); ok {
			data.Email = u.Email
		}
		if r := a.inst.Router(); r != nil && r.View() != nil {
			var buf bytes.Buffer
			if err := r.View().Render(&buf); err != nil {
				return err
			}
			data.View = template.HTML(buf.String())
		}
	}
	return layoutTmpl.Execute(w, data)
}

// Listeners implements ui.Listening. Nav listeners come first, then the
// current view's.
func (a *App) Listeners() []ui.Listener {
	listeners := []ui.Listener{
		{Event: "click", Selector: "nav.navbar a.nav-link", Handle: a.navigate},
		{Event: "click", Selector: "nav.navbar a.nav-logout", Handle: a.logOut},
	}
	if a.inst == nil || a.inst.Router() == nil {
		return listeners
	}
	if v, ok := a.inst.Router().View().(ui.Listening); ok {
		listeners = append(listeners, v.Listeners()...)
	}
	return listeners
}

func (a *App) navigate(ev *ui.Event) {
	if r := a.inst.Router(); r != nil {
		r.Push(ui.Attr(ev.Current, "href"))
	}
}

func (a *App) logOut(ev *ui.Event) {
	inst := a.inst
	call(inst, http.MethodDelete, "/v1/sessions/current", nil, token(inst), nil, func(err error) {
		if err != nil {
			inst.Logger().Warn("log out request failed", "error", err)
		}
		inst.Session().Reset()
		inst.Invalidate()
		if r := inst.Router(); r != nil {
			r.Push(PathLogin)
		}
	})
}
