package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/seqharness/internal/app"
	"github.com/roach88/seqharness/internal/apptest"
	"github.com/roach88/seqharness/internal/harness"
	"github.com/roach88/seqharness/internal/session"
	"github.com/roach88/seqharness/internal/testutil"
	"github.com/roach88/seqharness/internal/trace"
	"github.com/roach88/seqharness/internal/ui"
)

// Epoch is the session clock scenarios run against.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Result is the outcome of one scenario.
type Result struct {
	Name     string
	Path     string
	Trace    *trace.Result
	Failures []*AssertionError

	// Err is the chain's error, expected or not.
	Err error
}

// Pass reports whether every expectation held.
func (r *Result) Pass() bool { return len(r.Failures) == 0 }

// Errors returns the failure messages.
func (r *Result) Errors() []string {
	out := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		out[i] = f.Error()
	}
	return out
}

// Snapshot encodes the chain's trace for golden comparison.
func (r *Result) Snapshot() ([]byte, error) {
	return trace.Encode(r.Name, r.Trace)
}

// Run executes s as one harness chain against the demo app.
//
// Chain failures are results, not errors: they are checked against
// s.Expect.Error. An error is returned only when s cannot be turned into a
// chain.
func Run(ctx context.Context, s *Scenario, opts ...harness.Option) (*Result, error) {
	sess := session.NewStore(session.WithClock(func() time.Time { return Epoch }))
	if s.Login {
		testutil.MockLogin(sess)
	}

	h, err := build(s, sess, opts)
	if err != nil {
		if harness.IsSequenceError(err) {
			res := &Result{Name: s.Name, Trace: trace.NewResult(), Err: err}
			res.Trace.AddError(err.Error())
			res.Failures = check(s, nil, err)
			return res, nil
		}
		return nil, err
	}

	for i, st := range s.Steps {
		if err := declare(h, st); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	inst, chainErr := h.Complete(ctx)
	res := &Result{Name: s.Name, Trace: h.Trace(), Err: chainErr}
	if inst != nil {
		res.Path = inst.CurrentPath()
	}
	res.Failures = check(s, inst, chainErr)
	return res, nil
}

func build(s *Scenario, sess *session.Store, opts []harness.Option) (*harness.Harness, error) {
	if s.ThroughLogin != "" {
		return apptest.MockRouteThroughLogin(sess, s.ThroughLogin, ui.MountOptions{}, opts...)
	}

	route := s.Route
	if route == "" {
		route = app.PathProjects
	}
	h := harness.New(append([]harness.Option{harness.WithSession(sess)}, opts...)...)
	if s.RestoreSession != nil {
		h.RestoreSession(*s.RestoreSession)
	}
	h.Mount(app.New(), ui.MountOptions{Router: app.NewRouter(), Route: route})
	return h, nil
}

func declare(h *harness.Harness, st Step) error {
	switch {
	case st.Respond != nil:
		r := st.Respond
		switch {
		case r.Fixture != "":
			name, count := r.Fixture, r.Count
			h.RespondWithData(func() (any, error) { return apptest.Fixture(name, count) })
		case r.Error != "":
			h.RespondWithData(harness.Fail(errors.New(r.Error)))
		case r.Status != 0:
			h.RespondWithProblem(r.Status, r.Message)
		default:
			h.RespondWithData(harness.Data(r.Data))
		}
	case st.Click != "":
		sel := st.Click
		h.Request(func(inst *ui.Instance) error { return ui.Click(inst, sel) })
	case st.Push != "":
		to := st.Push
		h.Request(func(inst *ui.Instance) error {
			inst.Router().Push(to)
			return nil
		})
	case len(st.Fill) > 0:
		fields := make([]ui.Field, 0, len(st.Fill))
		for _, f := range st.Fill {
			fields = append(fields, ui.Field{Selector: f.Selector, Value: f.Value})
		}
		h.Request(func(inst *ui.Instance) error { return ui.FillForm(inst, fields...) })
	case st.Submit != "":
		sel := st.Submit
		h.Request(func(inst *ui.Instance) error { return ui.Submit(inst, sel) })
	default:
		return errors.New("empty step")
	}
	return nil
}
