package app

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seqharness/internal/session"
	"github.com/roach88/seqharness/internal/testutil"
	"github.com/roach88/seqharness/internal/ui"
)

// scripted answers each request with the next canned reply and records it.
type scripted struct {
	replies []reply
	seen    []*http.Request
}

type reply struct {
	status int
	body   string
	err    error
}

func (s *scripted) client(loop *ui.Loop) ui.Client {
	return ui.ClientFunc(func(req *http.Request, done func(*http.Response, error)) {
		s.seen = append(s.seen, req)
		r := s.replies[0]
		s.replies = s.replies[1:]
		loop.Queue(func() {
			if r.err != nil {
				done(nil, &url.Error{Op: req.Method, URL: req.URL.String(), Err: r.err})
				return
			}
			done(&http.Response{
				StatusCode: r.status,
				Body:       io.NopCloser(strings.NewReader(r.body)),
			}, nil)
		})
	})
}

type blank struct{}

func (blank) Render(io.Writer) error { return nil }

func mountBlank(t *testing.T, s *scripted, sess *session.Store) *ui.Instance {
	t.Helper()
	loop := ui.NewLoop()
	inst, err := ui.Mount(blank{}, ui.MountOptions{Loop: loop, HTTP: s.client(loop), Session: sess})
	require.NoError(t, err)
	return inst
}

func TestNewRequest_Headers(t *testing.T) {
	req, err := newRequest(http.MethodPost, "/v1/sessions", map[string]string{"email": "a@b.c"}, "tok")
	require.NoError(t, err)

	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))

	body, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"email":"a@b.c"}`, string(body))
}

func TestNewRequest_NoBodyNoToken(t *testing.T) {
	req, err := newRequest(http.MethodGet, "/v1/users", nil, "")
	require.NoError(t, err)

	assert.Empty(t, req.Header.Get("Content-Type"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestCall_DecodesSuccess(t *testing.T) {
	s := &scripted{replies: []reply{{status: 200, body: `[{"id":7,"name":"Seven","forms":2}]`}}}
	inst := mountBlank(t, s, nil)

	var out []Project
	var got error
	called := false
	call(inst, http.MethodGet, "/v1/projects", nil, "", &out, func(err error) {
		called = true
		got = err
	})
	inst.Loop().Tick()

	require.True(t, called)
	require.NoError(t, got)
	assert.Equal(t, []Project{{ID: 7, Name: "Seven", Forms: 2}}, out)
}

func TestCall_Problem(t *testing.T) {
	tests := []struct {
		name    string
		reply   reply
		message string
	}{
		{"json body", reply{status: 403, body: `{"code":40300,"message":"forbidden here"}`}, "forbidden here"},
		{"no body", reply{status: 502, body: ``}, "Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &scripted{replies: []reply{tt.reply}}
			inst := mountBlank(t, s, nil)

			var got error
			call(inst, http.MethodGet, "/v1/x", nil, "", nil, func(err error) { got = err })
			inst.Loop().Tick()

			var p *Problem
			require.True(t, errors.As(got, &p))
			assert.Equal(t, tt.reply.status, p.Status)
			assert.Equal(t, tt.message, p.Message)
		})
	}
}

func TestCall_TransportFailure(t *testing.T) {
	s := &scripted{replies: []reply{{err: errors.New("reset")}}}
	inst := mountBlank(t, s, nil)

	var got error
	call(inst, http.MethodGet, "/v1/x", nil, "", nil, func(err error) { got = err })
	inst.Loop().Tick()

	var ue *url.Error
	require.True(t, errors.As(got, &ue))
	assert.Equal(t, "Something went wrong: the server could not be reached.", alertText(got))
}

func TestToken(t *testing.T) {
	sess := session.NewStore()
	inst := mountBlank(t, &scripted{}, sess)
	assert.Empty(t, token(inst))

	testutil.MockLogin(sess)
	assert.Equal(t, testutil.MockSession().Token, token(inst))
}

func TestLoginAlert(t *testing.T) {
	assert.Equal(t, "Incorrect email address and/or password.",
		loginAlert(&Problem{Status: http.StatusUnauthorized, Message: "nope"}))
	assert.Equal(t, "Something went wrong: nope",
		loginAlert(&Problem{Status: http.StatusInternalServerError, Message: "nope"}))
}
