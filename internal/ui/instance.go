package ui

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/roach88/seqharness/internal/session"
)

// Component renders markup for a mounted instance.
type Component interface {
	Render(w io.Writer) error
}

// Listening components receive dispatched events.
type Listening interface {
	Listeners() []Listener
}

// MountHook components are called once, after binding and before the first
// render.
type MountHook interface {
	Mounted(inst *Instance)
}

// Listener binds a handler to an event on elements matching Selector.
type Listener struct {
	Event    string
	Selector string
	Handle   func(ev *Event)
}

// Event is a dispatched interaction.
type Event struct {
	Type     string
	Target   *html.Node
	Current  *html.Node
	Instance *Instance
	stopped  bool
}

// StopPropagation prevents the event from reaching ancestors of Current.
func (e *Event) StopPropagation() { e.stopped = true }

// MountOptions configures Mount. Zero values select the documented defaults.
type MountOptions struct {
	// Router enables routing. Nil mounts the component without one.
	Router *Router

	// Route is the initial location when Router is set. Defaults to "/".
	Route string

	// AttachToDocument renders the instance inside a full document body.
	// Detached instances still support queries, but Visible always reports
	// false for them.
	AttachToDocument bool

	// Session is the session context. Defaults to a new logged-out store.
	Session *session.Store

	// HTTP is the outbound client. Defaults to one that fails every request.
	HTTP Client

	// Loop is the scheduler. Defaults to a new loop.
	Loop *Loop

	// Logger defaults to a discarding logger.
	Logger *slog.Logger
}

// Instance is a mounted component.
type Instance struct {
	component Component
	router    *Router
	loop      *Loop
	client    Client
	session   *session.Store
	logger    *slog.Logger
	attached  bool

	root      *html.Node
	dirty     bool
	errs      []error
	selectors map[string]cascadia.Selector
}

// Mount binds c to a new instance and renders it once. A router, when given,
// starts navigating to opts.Route on the next flush.
func Mount(c Component, opts MountOptions) (*Instance, error) {
	if c == nil {
		return nil, errors.New("mount: component is nil")
	}
	if opts.Loop == nil {
		opts.Loop = NewLoop()
	}
	if opts.Session == nil {
		opts.Session = session.NewStore()
	}
	if opts.HTTP == nil {
		opts.HTTP = offlineClient(opts.Loop)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	inst := &Instance{
		component: c,
		router:    opts.Router,
		loop:      opts.Loop,
		client:    opts.HTTP,
		session:   opts.Session,
		logger:    opts.Logger,
		attached:  opts.AttachToDocument,
		selectors: make(map[string]cascadia.Selector),
	}
	opts.Loop.OnFlush(inst.flush)

	if inst.router != nil {
		if err := inst.router.bind(inst); err != nil {
			return nil, fmt.Errorf("mount: %w", err)
		}
	}
	if hook, ok := c.(MountHook); ok {
		hook.Mounted(inst)
	}
	if inst.router != nil {
		route := opts.Route
		if route == "" {
			route = "/"
		}
		inst.router.Push(route)
	}

	if err := inst.render(); err != nil {
		return nil, fmt.Errorf("mount: %w", err)
	}
	return inst, nil
}

// Component returns the mounted root component.
func (i *Instance) Component() Component { return i.component }

// Router returns the bound router, nil if mounted without one.
func (i *Instance) Router() *Router { return i.router }

// Loop returns the scheduler driving the instance.
func (i *Instance) Loop() *Loop { return i.loop }

// HTTP returns the outbound client.
func (i *Instance) HTTP() Client { return i.client }

// Session returns the injected session context.
func (i *Instance) Session() *session.Store { return i.session }

// Logger returns the instance logger.
func (i *Instance) Logger() *slog.Logger { return i.logger }

// Attached reports whether the instance lives in a full document.
func (i *Instance) Attached() bool { return i.attached }

// CurrentPath returns the router's current path, "" without a router.
func (i *Instance) CurrentPath() string {
	if i.router == nil {
		return ""
	}
	return i.router.Current().Path
}

// Invalidate marks the instance for re-render on the next flush.
func (i *Instance) Invalidate() {
	i.dirty = true
}

// Fail records an error raised while the instance was running outside a
// caller's stack, such as a failed render or an unresolvable navigation.
func (i *Instance) Fail(err error) {
	i.logger.Error("instance error", "error", err)
	i.errs = append(i.errs, err)
}

// Err returns the recorded errors joined, nil if there were none.
func (i *Instance) Err() error {
	return errors.Join(i.errs...)
}

func (i *Instance) flush() {
	if !i.dirty {
		return
	}
	if err := i.render(); err != nil {
		i.Fail(err)
	}
}

func (i *Instance) render() error {
	i.dirty = false

	var buf bytes.Buffer
	if err := i.component.Render(&buf); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if i.attached {
		doc, err := html.Parse(strings.NewReader(`<!DOCTYPE html><html><body><div id="app">` + buf.String() + `</div></body></html>`))
		if err != nil {
			return fmt.Errorf("render: parse document: %w", err)
		}
		i.root = doc
		return nil
	}

	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(&buf, container)
	if err != nil {
		return fmt.Errorf("render: parse fragment: %w", err)
	}
	root := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr:     []html.Attribute{{Key: "id", Val: "app"}},
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	i.root = root
	return nil
}

func (i *Instance) selector(s string) (cascadia.Selector, error) {
	if sel, ok := i.selectors[s]; ok {
		return sel, nil
	}
	sel, err := cascadia.Compile(s)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", s, err)
	}
	i.selectors[s] = sel
	return sel, nil
}

// Find returns every element matching selector in document order.
func (i *Instance) Find(selector string) ([]*html.Node, error) {
	sel, err := i.selector(selector)
	if err != nil {
		return nil, err
	}
	return sel.MatchAll(i.root), nil
}

// First returns the first element matching selector, or an error wrapping
// ErrNoMatch.
func (i *Instance) First(selector string) (*html.Node, error) {
	sel, err := i.selector(selector)
	if err != nil {
		return nil, err
	}
	n := sel.MatchFirst(i.root)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}
	return n, nil
}

// Count returns the number of elements matching selector. Invalid selectors
// match nothing.
func (i *Instance) Count(selector string) int {
	nodes, err := i.Find(selector)
	if err != nil {
		return 0
	}
	return len(nodes)
}

// Exists reports whether selector matches at least one element.
func (i *Instance) Exists(selector string) bool {
	return i.Count(selector) > 0
}

// Text returns the whitespace-collapsed text of the first match, "" if none.
func (i *Instance) Text(selector string) string {
	n, err := i.First(selector)
	if err != nil {
		return ""
	}
	return TextContent(n)
}

// Visible reports whether the first match is rendered without a hidden
// attribute or display:none on itself or an ancestor. Detached instances have
// no layout, so nothing in them is visible.
func (i *Instance) Visible(selector string) bool {
	if !i.attached {
		return false
	}
	n, err := i.First(selector)
	if err != nil {
		return false
	}
	for ; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if HasAttr(n, "hidden") {
			return false
		}
		style := strings.ReplaceAll(Attr(n, "style"), " ", "")
		if strings.Contains(style, "display:none") {
			return false
		}
	}
	return true
}

// HTML renders the current document.
func (i *Instance) HTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, i.root); err != nil {
		return ""
	}
	return buf.String()
}

// Dispatch delivers event to listeners matching target or its ancestors,
// innermost first. It does not tick the loop; use Trigger for that.
func (i *Instance) Dispatch(event string, target *html.Node) error {
	listening, ok := i.component.(Listening)
	if !ok {
		return nil
	}
	listeners := listening.Listeners()
	ev := &Event{Type: event, Target: target, Instance: i}

	for n := target; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		for _, l := range listeners {
			if l.Event != event {
				continue
			}
			sel, err := i.selector(l.Selector)
			if err != nil {
				return fmt.Errorf("dispatch %s: %w", event, err)
			}
			if sel.Match(n) {
				ev.Current = n
				l.Handle(ev)
			}
		}
		if ev.stopped {
			break
		}
	}
	return nil
}

// Attr returns the value of key on n, "" when absent.
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether n carries key.
func HasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets key on n, adding the attribute when absent.
func SetAttr(n *html.Node, key, val string) {
	for idx, a := range n.Attr {
		if a.Key == key {
			n.Attr[idx].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// TextContent returns the text below n with runs of whitespace collapsed.
func TextContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
