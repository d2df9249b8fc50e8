package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/roach88/seqharness/internal/trace"
)

// transport is the ui.Client injected into the mounted instance. It never
// answers directly: every request is parked in the queue until a declared
// response is paired with it.
type transport struct {
	h *Harness
}

func (t *transport) Do(req *http.Request, done func(*http.Response, error)) {
	h := t.h
	p := &PendingRequest{Seq: h.requests.Next(), Request: req, deliver: done}
	h.queue.Issue(p)
	h.record(trace.Event{
		Type:   trace.TypeRequest,
		Method: req.Method,
		Path:   req.URL.RequestURI(),
	})
	h.logger.Debug("request issued",
		"chain", h.id,
		"request", p.Seq,
		"method", req.Method,
		"path", req.URL.RequestURI(),
	)
}

// resolve runs the producer of r and delivers the outcome to p on the loop.
func (h *Harness) resolve(p *PendingRequest, r DeclaredResponse) error {
	req := p.Request
	ev := trace.Event{Type: trace.TypeResponse, Request: p.Seq}

	value, err := r.Producer()
	if err != nil {
		ev.Outcome = trace.OutcomeError
		ev.Body = err.Error()
		h.record(ev)
		h.logger.Debug("request rejected", "chain", h.id, "request", p.Seq, "error", err)
		cause := &url.Error{Op: req.Method, URL: req.URL.String(), Err: err}
		h.loop.Queue(func() { p.deliver(nil, cause) })
		return nil
	}

	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode response %d: %w", r.Index, err)
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	ev.Status = status
	ev.Body = string(body)
	if status >= 200 && status < 300 {
		ev.Outcome = trace.OutcomeData
	} else {
		ev.Outcome = trace.OutcomeProblem
	}
	h.record(ev)
	h.logger.Debug("response delivered", "chain", h.id, "request", p.Seq, "status", status)

	res := &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"application/json"}},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
	h.loop.Queue(func() { p.deliver(res, nil) })
	return nil
}
