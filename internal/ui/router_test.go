package ui

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct{ name string }

func (p *page) Render(w io.Writer) error {
	_, err := io.WriteString(w, `<h1 class="page">`+p.name+`</h1>`)
	return err
}

type shell struct{ router *Router }

func (s *shell) Render(w io.Writer) error {
	if v := s.router.View(); v != nil {
		return v.Render(w)
	}
	return nil
}

func newTestRouter(created *[]string) *Router {
	view := func(name string) func(*Instance, Location) Component {
		return func(*Instance, Location) Component {
			*created = append(*created, name)
			return &page{name: name}
		}
	}
	return NewRouter([]Route{
		{Path: "/", Name: "home", View: view("home")},
		{Path: "/login", Name: "login", View: view("login")},
		{Path: "/private", Name: "private", View: view("private")},
	})
}

func mountRouted(t *testing.T, r *Router, route string) *Instance {
	t.Helper()
	inst, err := Mount(&shell{router: r}, MountOptions{Router: r, Route: route})
	require.NoError(t, err)
	return inst
}

func TestRouter_InitialNavigationResolvesOnTick(t *testing.T) {
	var created []string
	r := newTestRouter(&created)
	inst := mountRouted(t, r, "/login")

	assert.Equal(t, "", inst.CurrentPath())
	inst.Loop().Tick()

	assert.Equal(t, "/login", inst.CurrentPath())
	assert.Equal(t, "login", inst.Text(".page"))
	assert.Equal(t, []string{"login"}, created)
}

func TestRouter_DefaultsToRoot(t *testing.T) {
	var created []string
	inst := mountRouted(t, newTestRouter(&created), "")
	inst.Loop().Tick()
	assert.Equal(t, "/", inst.CurrentPath())
}

func TestRouter_GuardRedirects(t *testing.T) {
	var created []string
	r := newTestRouter(&created)
	r.BeforeEach(func(_ *Instance, to Location) string {
		if to.Path == "/private" {
			return "/login?next=%2Fprivate"
		}
		return ""
	})
	inst := mountRouted(t, r, "/private")
	inst.Loop().Tick()

	assert.Equal(t, "/login", inst.CurrentPath())
	assert.Equal(t, "/private", r.Current().Query.Get("next"))
	assert.Equal(t, []string{"login"}, created)
}

func TestRouter_RedirectLoopFails(t *testing.T) {
	var created []string
	r := newTestRouter(&created)
	r.BeforeEach(func(_ *Instance, to Location) string {
		if to.Path == "/" {
			return "/login"
		}
		return "/"
	})
	inst := mountRouted(t, r, "/")
	inst.Loop().Tick()

	assert.ErrorContains(t, inst.Err(), "redirects")
	assert.Empty(t, created)
}

func TestRouter_UnknownPath(t *testing.T) {
	var created []string
	inst := mountRouted(t, newTestRouter(&created), "/nowhere")
	inst.Loop().Tick()

	assert.ErrorIs(t, inst.Err(), ErrNoRoute)
}

func TestRouter_Fallback(t *testing.T) {
	r := NewRouter([]Route{
		{Path: "*", Name: "not-found", View: func(*Instance, Location) Component { return &page{name: "404"} }},
	})
	inst := mountRouted(t, r, "/nowhere")
	inst.Loop().Tick()

	assert.Equal(t, "/nowhere", inst.CurrentPath())
	assert.Equal(t, "404", inst.Text(".page"))
}

func TestRouter_DuplicateNavigationIsNoop(t *testing.T) {
	var created []string
	r := newTestRouter(&created)
	inst := mountRouted(t, r, "/")
	inst.Loop().Tick()

	r.Push("/")
	inst.Loop().Tick()
	r.Push("/login")
	inst.Loop().Tick()

	assert.Equal(t, []string{"home", "login"}, created)
	require.Len(t, r.History(), 2)
	assert.Equal(t, "/login", r.History()[1].Path)
}

func TestRouter_BindsOnce(t *testing.T) {
	var created []string
	r := newTestRouter(&created)
	mountRouted(t, r, "/")

	_, err := Mount(&shell{router: r}, MountOptions{Router: r})
	assert.Error(t, err)
}
