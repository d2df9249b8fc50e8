package app

import (
	"html/template"
	"io"
	"net/http"

	"github.com/roach88/seqharness/internal/session"
	"github.com/roach88/seqharness/internal/ui"
)

// Project is a row of the project list.
type Project struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Forms int    `json:"forms"`
}

// Load states of a list.
const (
	stateLoading = "loading"
	stateLoaded  = "loaded"
	stateFailed  = "failed"
)

var projectListTmpl = template.Must(template.New("projects").Parse(`
<div id="project-list">
  {{- if .Alert}}<div class="alert alert-danger">{{.Alert}}</div>{{end}}
  {{- if eq .ProjectsState "loading"}}<div class="loading">Loading projects</div>
  {{- else if eq .ProjectsState "loaded"}}
    {{- if .Projects}}
  <table id="project-list-table">
    <thead><tr><th>Name</th><th>Forms</th></tr></thead>
    <tbody>{{range .Projects}}<tr><td class="project-name">{{.Name}}</td><td class="project-forms">{{.Forms}}</td></tr>{{end}}</tbody>
  </table>
    {{- else}}
  <p class="empty-table-message">There are no projects to show.</p>
    {{- end}}
  {{- end}}
  <h2>Administrators</h2>
  {{- if eq .AdminsState "loaded"}}
  <ul id="administrator-list">{{range .Admins}}<li>{{.Email}}</li>{{end}}</ul>
  {{- end}}
</div>`))

// ProjectList loads projects, then administrators. Both requests are issued
// when the view is created, in that order.
type ProjectList struct {
	inst          *ui.Instance
	Projects      []Project
	Admins        []session.User
	ProjectsState string
	AdminsState   string
	Alert         string
}

func newProjectList(inst *ui.Instance, _ ui.Location) ui.Component {
	v := &ProjectList{inst: inst, ProjectsState: stateLoading, AdminsState: stateLoading}
	call(inst, http.MethodGet, "/v1/projects", nil, token(inst), &v.Projects, func(err error) {
		v.ProjectsState = settle(inst, err, &v.Alert)
	})
	call(inst, http.MethodGet, "/v1/users?role=admin", nil, token(inst), &v.Admins, func(err error) {
		v.AdminsState = settle(inst, err, &v.Alert)
	})
	return v
}

// Render implements ui.Component.
func (v *ProjectList) Render(w io.Writer) error {
	return projectListTmpl.Execute(w, v)
}

var userListTmpl = template.Must(template.New("users").Parse(`
<div id="user-list">
  {{- if .Alert}}<div class="alert alert-danger">{{.Alert}}</div>{{end}}
  {{- if eq .State "loading"}}<div class="loading">Loading users</div>{{end}}
  {{- if eq .State "loaded"}}
  <table id="user-list-table">
    <thead><tr><th>Email</th></tr></thead>
    <tbody>{{range .Users}}<tr><td class="user-email">{{.Email}}</td></tr>{{end}}</tbody>
  </table>
  {{- end}}
</div>`))

// UserList loads every user.
type UserList struct {
	inst  *ui.Instance
	Users []session.User
	State string
	Alert string
}

func newUserList(inst *ui.Instance, _ ui.Location) ui.Component {
	v := &UserList{inst: inst, State: stateLoading}
	call(inst, http.MethodGet, "/v1/users", nil, token(inst), &v.Users, func(err error) {
		v.State = settle(inst, err, &v.Alert)
	})
	return v
}

// Render implements ui.Component.
func (v *UserList) Render(w io.Writer) error {
	return userListTmpl.Execute(w, v)
}

// settle records a request outcome and schedules a re-render.
func settle(inst *ui.Instance, err error, alert *string) string {
	inst.Invalidate()
	if err != nil {
		inst.Logger().Info("list request failed", "error", err)
		*alert = alertText(err)
		return stateFailed
	}
	return stateLoaded
}
