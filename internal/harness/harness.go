package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/seqharness/internal/session"
	"github.com/roach88/seqharness/internal/testutil"
	"github.com/roach88/seqharness/internal/trace"
	"github.com/roach88/seqharness/internal/ui"
)

// DefaultTimerHorizon bounds how far virtual time advances while settling.
const DefaultTimerHorizon = time.Minute

// Action is a user-side step run against the mounted instance.
type Action func(*ui.Instance) error

type stepKind int

const (
	stepMount stepKind = iota + 1
	stepRequest
	stepRespond
)

type step struct {
	kind     stepKind
	action   Action
	response DeclaredResponse
}

// Harness is a single-use chain. Builder methods only record; nothing runs
// until Complete.
type Harness struct {
	id      string
	session *session.Store
	logger  *slog.Logger
	horizon time.Duration

	restore   bool
	component ui.Component
	mountOpts ui.MountOptions
	mounted   bool
	steps     []step
	err       error
	completed bool

	loop     *ui.Loop
	queue    *Queue
	app      *ui.Instance
	requests *testutil.Sequence
	events   *testutil.Sequence
	result   *trace.Result
}

// Option configures a Harness.
type Option func(*Harness)

// WithSession sets the session store shared with the mounted instance.
func WithSession(s *session.Store) Option {
	return func(h *Harness) { h.session = s }
}

// WithLogger sets the logger for chain events.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) { h.logger = l }
}

// WithTimerHorizon sets how far virtual time may advance per settle.
func WithTimerHorizon(d time.Duration) Option {
	return func(h *Harness) { h.horizon = d }
}

// New creates an empty chain. Without WithSession it gets a fresh logged-out
// store.
func New(opts ...Option) *Harness {
	h := &Harness{
		id:       uuid.NewString(),
		restore:  true,
		horizon:  DefaultTimerHorizon,
		queue:    NewQueue(),
		requests: testutil.NewSequence(),
		events:   testutil.NewSequence(),
		result:   trace.NewResult(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.session == nil {
		h.session = session.NewStore()
	}
	if h.logger == nil {
		h.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return h
}

// ID returns the chain identifier used in log records.
func (h *Harness) ID() string { return h.id }

// Session returns the session store the chain mounts with.
func (h *Harness) Session() *session.Store { return h.session }

// RestoreSession controls whether the current session survives into the
// mounted instance. Passing false logs out before mounting. The default is
// true.
func (h *Harness) RestoreSession(restore bool) *Harness {
	h.restore = restore
	return h
}

// Mount records the component to mount. opts.Session, opts.HTTP and
// opts.Loop are supplied by the harness and must be left unset.
func (h *Harness) Mount(c ui.Component, opts ui.MountOptions) *Harness {
	if h.mounted {
		h.misuse(newMisuseError(ErrCodeAlreadyMounted, "mount called more than once"))
		return h
	}
	if opts.Session != nil || opts.HTTP != nil || opts.Loop != nil {
		h.misuse(fmt.Errorf("mount: session, HTTP and loop are supplied by the harness"))
		return h
	}
	h.mounted = true
	h.component = c
	h.mountOpts = opts
	h.steps = append(h.steps, step{kind: stepMount})
	return h
}

// Request records a user action. The requests it causes join the pending
// queue in issue order.
func (h *Harness) Request(fn Action) *Harness {
	if !h.mounted {
		h.misuse(newMisuseError(ErrCodeNotMounted, "request declared before mount"))
		return h
	}
	h.steps = append(h.steps, step{kind: stepRequest, action: fn})
	return h
}

// RespondWithData records a 200 response whose body is p's value.
func (h *Harness) RespondWithData(p Producer) *Harness {
	if p == nil {
		h.misuse(errors.New("respond with data: nil producer"))
		return h
	}
	h.steps = append(h.steps, step{kind: stepRespond, response: DeclaredResponse{Producer: p}})
	return h
}

// RespondWithProblem records a non-2xx response carrying a JSON problem.
func (h *Harness) RespondWithProblem(status int, message string) *Harness {
	if status >= 200 && status < 300 {
		h.misuse(fmt.Errorf("respond with problem: status %d is a success", status))
		return h
	}
	body := map[string]any{"code": status * 100, "message": message}
	h.steps = append(h.steps, step{
		kind:     stepRespond,
		response: DeclaredResponse{Producer: Data(body), Status: status},
	})
	return h
}

// misuse keeps the first builder error for Complete to report.
func (h *Harness) misuse(err error) {
	if h.err == nil {
		h.err = err
	}
}

// Complete runs the chain and returns the settled instance.
//
// The instance is returned whenever mounting succeeded, even alongside an
// error, so callers can inspect what rendered.
func (h *Harness) Complete(ctx context.Context) (*ui.Instance, error) {
	if h.completed {
		return h.app, newMisuseError(ErrCodeAlreadyCompleted, "complete called more than once")
	}
	h.completed = true

	err := h.run(ctx)
	if err != nil {
		h.result.AddError(err.Error())
		h.logger.Info("chain failed", "chain", h.id, "error", err)
		return h.app, err
	}
	stats := h.queue.Stats()
	h.logger.Info("chain completed",
		"chain", h.id,
		"requests", stats.Issued,
		"responses", stats.Consumed,
		"path", h.app.CurrentPath(),
	)
	return h.app, nil
}

func (h *Harness) run(ctx context.Context) error {
	if h.err != nil {
		return h.err
	}
	if !h.mounted {
		return h.sequenceError(ErrCodeNotMounted, "chain has no mount")
	}
	if !h.restore {
		h.session.Reset()
	}
	h.loop = ui.NewLoop()

	for i, st := range h.steps {
		var err error
		switch st.kind {
		case stepMount:
			err = h.mount(ctx)
		case stepRequest:
			err = h.perform(ctx, i, st.action)
		case stepRespond:
			h.queue.Declare(st.response)
			err = h.pump(ctx)
		}
		if err != nil {
			return err
		}
	}
	return h.reconcile()
}

func (h *Harness) mount(ctx context.Context) error {
	opts := h.mountOpts
	opts.Session = h.session
	opts.HTTP = &transport{h: h}
	opts.Loop = h.loop
	if opts.Logger == nil {
		opts.Logger = h.logger
	}

	detail := fmt.Sprintf("%T", h.component)
	if opts.Router != nil {
		route := opts.Route
		if route == "" {
			route = "/"
		}
		detail += " " + route
	}
	h.record(trace.Event{Type: trace.TypeMount, Detail: detail})

	app, err := ui.Mount(h.component, opts)
	if err != nil {
		return err
	}
	h.app = app
	return h.pump(ctx)
}

func (h *Harness) perform(ctx context.Context, index int, fn Action) error {
	h.record(trace.Event{Type: trace.TypeAction, Detail: fmt.Sprintf("step %d", index+1)})
	if err := fn(h.app); err != nil {
		return fmt.Errorf("request step %d: %w", index+1, err)
	}
	return h.pump(ctx)
}

// pump settles the loop and pairs queue heads until one queue is empty.
func (h *Harness) pump(ctx context.Context) error {
	for {
		if err := h.settle(ctx); err != nil {
			return err
		}
		p, r, ok := h.queue.Next()
		if !ok {
			return nil
		}
		if err := h.resolve(p, r); err != nil {
			return err
		}
	}
}

func (h *Harness) settle(ctx context.Context) error {
	if h.app == nil {
		return nil
	}
	if err := h.loop.Settle(ctx, h.horizon); err != nil {
		return fmt.Errorf("settle: %w", err)
	}
	if err := h.app.Err(); err != nil {
		return fmt.Errorf("component: %w", err)
	}
	return nil
}

// reconcile checks both queues are drained once every step has run.
func (h *Harness) reconcile() error {
	if n := h.queue.Unused(); n > 0 {
		return h.sequenceError(ErrCodeUnusedResponse,
			fmt.Sprintf("%d declared response(s) never consumed", n))
	}
	if out := h.queue.Outstanding(); len(out) > 0 {
		se := h.sequenceError(ErrCodeUnmatchedRequest,
			fmt.Sprintf("%d request(s) never answered", len(out)))
		for _, p := range out {
			se.Outstanding = append(se.Outstanding, p.Request.Method+" "+p.Request.URL.RequestURI())
		}
		return se
	}
	return nil
}

func (h *Harness) sequenceError(code ErrorCode, message string) *SequenceError {
	stats := h.queue.Stats()
	return &SequenceError{
		Code:     code,
		Message:  message,
		Issued:   stats.Issued,
		Declared: stats.Declared,
		Consumed: stats.Consumed,
	}
}

func (h *Harness) record(ev trace.Event) {
	ev.Seq = h.events.Next()
	h.result.Add(ev)
}

// AfterResponse completes the chain then runs fn against the instance.
func (h *Harness) AfterResponse(ctx context.Context, fn func(*ui.Instance) error) error {
	app, err := h.Complete(ctx)
	if err != nil {
		return err
	}
	return fn(app)
}

// AfterResponses is AfterResponse for chains with several responses.
func (h *Harness) AfterResponses(ctx context.Context, fn func(*ui.Instance) error) error {
	return h.AfterResponse(ctx, fn)
}

// Trace returns the events recorded so far.
func (h *Harness) Trace() *trace.Result { return h.result }

// Stats returns the queue counters.
func (h *Harness) Stats() Stats { return h.queue.Stats() }

// Pending returns the unanswered requests.
func (h *Harness) Pending() []*http.Request {
	out := h.queue.Outstanding()
	reqs := make([]*http.Request, len(out))
	for i, p := range out {
		reqs[i] = p.Request
	}
	return reqs
}
