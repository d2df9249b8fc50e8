package app

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqharness/internal/session"
	"github.com/roach88/seqharness/internal/testutil"
	"github.com/roach88/seqharness/internal/ui"
)

func TestRequireLogin(t *testing.T) {
	sess := session.NewStore()
	inst := mountBlank(t, &scripted{}, sess)

	loc := func(path string) ui.Location { return ui.Location{Path: path} }

	assert.Equal(t, "/login?next=%2Fusers", requireLogin(inst, loc(PathUsers)))
	assert.Empty(t, requireLogin(inst, loc(PathLogin)))

	testutil.MockLogin(sess)
	assert.Empty(t, requireLogin(inst, loc(PathUsers)))
	assert.Equal(t, PathProjects, requireLogin(inst, loc(PathLogin)))
}

func TestApp_LoginFlowWithScriptedClient(t *testing.T) {
	s := &scripted{replies: []reply{
		{status: 201, body: `{"token":"` + testutil.MockSession().Token + `","expiresAt":"2030-01-01T00:00:00Z"}`},
		{status: 200, body: `{"id":1,"email":"user@test.com"}`},
		{status: 200, body: `[]`},
	}}
	sess := session.NewStore()
	loop := ui.NewLoop()
	inst, err := ui.Mount(New(), ui.MountOptions{
		Router:  ui.NewRouter([]ui.Route{{Path: PathLogin, View: newLoginView}, {Path: PathUsers, View: newUserList}}, requireLogin),
		Route:   "/users",
		Loop:    loop,
		HTTP:    s.client(loop),
		Session: sess,
	})
	require.NoError(t, err)
	loop.Tick()
	require.Equal(t, PathLogin, inst.CurrentPath())

	require.NoError(t, ui.FillForm(inst,
		ui.Field{Selector: LoginEmail, Value: "user@test.com"},
		ui.Field{Selector: LoginPassword, Value: "secret"},
	))
	require.NoError(t, ui.Submit(inst, LoginForm))
	loop.Tick()

	require.Len(t, s.seen, 3)
	assert.Equal(t, http.MethodPost, s.seen[0].Method)
	assert.Equal(t, "/v1/users/current", s.seen[1].URL.Path)
	assert.Equal(t, "Bearer "+testutil.MockSession().Token, s.seen[1].Header.Get("Authorization"))
	assert.Equal(t, "/v1/users", s.seen[2].URL.Path)

	assert.True(t, sess.LoggedIn())
	assert.Equal(t, PathUsers, inst.CurrentPath())
	assert.Equal(t, 0, inst.Count("#user-list-table tbody tr"))
	assert.True(t, inst.Exists("nav.navbar"))
}
