package apptest

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqharness/internal/app"
	"github.com/roach88/seqharness/internal/harness"
	"github.com/roach88/seqharness/internal/session"
	"github.com/roach88/seqharness/internal/testutil"
	"github.com/roach88/seqharness/internal/trace"
	"github.com/roach88/seqharness/internal/ui"
)

func requestPaths(r *trace.Result) []string {
	var out []string
	for _, ev := range r.Requests() {
		out = append(out, ev.Method+" "+ev.Path)
	}
	return out
}

func TestAnonymousRedirect(t *testing.T) {
	sess := session.NewStore()
	testutil.MockLogin(sess)

	inst, err := harness.New(harness.WithSession(sess)).
		RestoreSession(false).
		Mount(app.New(), ui.MountOptions{Router: app.NewRouter(), Route: "/"}).
		Complete(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/login", inst.CurrentPath())
	assert.Equal(t, "/", inst.Router().Current().Query.Get("next"))
	assert.True(t, inst.Exists("#account-login-form"))
	assert.False(t, inst.Exists("nav.navbar"))
}

func TestMockRouteThroughLogin_RoundTrip(t *testing.T) {
	sess := session.NewStore()

	h, err := MockRouteThroughLogin(sess, "/", ui.MountOptions{})
	require.NoError(t, err)

	inst, err := h.
		RespondWithData(harness.Data(Projects(2))).
		RespondWithData(harness.Data(Administrators(1))).
		Complete(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/", inst.CurrentPath())
	assert.True(t, sess.LoggedIn())
	user, _ := sess.User()
	assert.Equal(t, testutil.MockUser(), user)

	assert.Equal(t, 2, inst.Count("#project-list-table tbody tr"))
	assert.Equal(t, 1, inst.Count("#administrator-list li"))
	assert.Equal(t, "user@test.com", inst.Text("nav.navbar .nav-user"))

	assert.Equal(t, []string{
		"POST /v1/sessions",
		"GET /v1/users/current",
		"GET /v1/projects",
		"GET /v1/users?role=admin",
	}, requestPaths(h.Trace()))
}

func TestMockRouteThroughLogin_FollowsNext(t *testing.T) {
	sess := session.NewStore()

	h, err := MockRouteThroughLogin(sess, "/users", ui.MountOptions{AttachToDocument: true})
	require.NoError(t, err)

	inst, err := h.RespondWithData(harness.Data(Users(3))).Complete(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/users", inst.CurrentPath())
	assert.Equal(t, 3, inst.Count("#user-list-table tbody tr"))
	assert.True(t, inst.Visible("#user-list-table"))
}

func TestMockRouteThroughLogin_RequiresLoggedOut(t *testing.T) {
	sess := session.NewStore()
	testutil.MockLogin(sess)

	h, err := MockRouteThroughLogin(sess, "/", ui.MountOptions{})
	assert.Nil(t, h)
	require.Error(t, err)
	assert.True(t, harness.IsPrecondition(err))
}

func TestMockRouteThroughLogin_MissingDestinationResponses(t *testing.T) {
	h, err := MockRouteThroughLogin(session.NewStore(), "/", ui.MountOptions{})
	require.NoError(t, err)

	_, err = h.Complete(context.Background())
	require.Error(t, err)
	assert.True(t, harness.IsUnmatchedRequest(err))

	var se *harness.SequenceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{"GET /v1/projects", "GET /v1/users?role=admin"}, se.Outstanding)
}

func TestSubmitLoginForm_IncorrectPassword(t *testing.T) {
	sess := session.NewStore()

	inst, err := harness.New(harness.WithSession(sess)).
		Mount(app.New(), ui.MountOptions{Router: app.NewRouter(), Route: app.PathLogin}).
		Request(SubmitLoginForm).
		RespondWithProblem(http.StatusUnauthorized, "invalid credentials").
		Complete(context.Background())
	require.NoError(t, err)

	assert.Equal(t, app.PathLogin, inst.CurrentPath())
	assert.False(t, sess.LoggedIn())
	assert.Equal(t, "Incorrect email address and/or password.", inst.Text(".alert-danger"))
}

func TestSubmitLoginForm_NotOnLoginView(t *testing.T) {
	sess := session.NewStore()
	testutil.MockLogin(sess)

	_, err := harness.New(harness.WithSession(sess)).
		Mount(app.New(), ui.MountOptions{Router: app.NewRouter(), Route: app.PathUsers}).
		RespondWithData(harness.Data(Users(1))).
		Request(SubmitLoginForm).
		Complete(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ui.ErrNoMatch)
}
