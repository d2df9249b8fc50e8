package ui

import (
	"errors"
	"fmt"
	"net/url"
)

// maxRedirects bounds guard redirect chains.
const maxRedirects = 10

// Location is a resolved router location.
type Location struct {
	Path  string
	Query url.Values
}

// String returns the location as a path with an encoded query.
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// Route maps a path to a view constructor. The constructor runs once per
// navigation, so views may issue their initial requests from it.
// A Route with Path "*" matches any otherwise unknown path.
type Route struct {
	Path string
	Name string
	View func(inst *Instance, to Location) Component
}

// Guard inspects a navigation before it resolves. It returns "" to allow the
// navigation or a location to redirect to.
type Guard func(inst *Instance, to Location) string

// ErrNoRoute is reported when a location matches no route.
var ErrNoRoute = errors.New("no route matches location")

// Router resolves locations to views.
type Router struct {
	routes  []Route
	guards  []Guard
	inst    *Instance
	current Location
	view    Component
	history []Location
}

// NewRouter creates a router over routes.
func NewRouter(routes []Route, guards ...Guard) *Router {
	return &Router{routes: routes, guards: guards}
}

// BeforeEach appends a navigation guard.
func (r *Router) BeforeEach(g Guard) {
	r.guards = append(r.guards, g)
}

// Push schedules navigation to target on the instance loop. Like a browser
// router, navigation resolves asynchronously: the new view is in place after
// the next tick.
func (r *Router) Push(target string) {
	if r.inst == nil {
		return
	}
	r.inst.loop.Queue(func() {
		if err := r.navigate(target); err != nil {
			r.inst.Fail(err)
		}
	})
}

// Current returns the resolved location.
func (r *Router) Current() Location {
	return r.current
}

// View returns the component for the current location, nil before the first
// navigation resolves.
func (r *Router) View() Component {
	return r.view
}

// History returns every resolved location in order.
func (r *Router) History() []Location {
	out := make([]Location, len(r.history))
	copy(out, r.history)
	return out
}

func (r *Router) bind(inst *Instance) error {
	if r.inst != nil && r.inst != inst {
		return errors.New("router is already bound to another instance")
	}
	r.inst = inst
	return nil
}

func (r *Router) navigate(target string) error {
	for hops := 0; hops <= maxRedirects; hops++ {
		to, err := parseLocation(target)
		if err != nil {
			return err
		}
		redirect := ""
		for _, g := range r.guards {
			if redirect = g(r.inst, to); redirect != "" {
				break
			}
		}
		if redirect != "" {
			r.inst.logger.Debug("navigation redirected", "from", to.String(), "to", redirect)
			target = redirect
			continue
		}

		if r.view != nil && to.String() == r.current.String() {
			return nil
		}
		route, ok := r.match(to.Path)
		if !ok {
			return fmt.Errorf("navigate %s: %w", to.Path, ErrNoRoute)
		}
		r.current = to
		r.history = append(r.history, to)
		r.view = route.View(r.inst, to)
		r.inst.logger.Debug("navigated", "path", to.Path, "route", route.Name)
		r.inst.Invalidate()
		return nil
	}
	return fmt.Errorf("navigate %s: more than %d redirects", target, maxRedirects)
}

func (r *Router) match(path string) (Route, bool) {
	var fallback *Route
	for idx := range r.routes {
		if r.routes[idx].Path == path {
			return r.routes[idx], true
		}
		if r.routes[idx].Path == "*" {
			fallback = &r.routes[idx]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Route{}, false
}

func parseLocation(target string) (Location, error) {
	u, err := url.Parse(target)
	if err != nil {
		return Location{}, fmt.Errorf("parse location %q: %w", target, err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return Location{Path: path, Query: u.Query()}, nil
}
