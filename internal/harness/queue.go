package harness

import (
	"net/http"
	"sync"
)

// Producer supplies the body of a declared response. It is called when the
// response is paired with a request. A returned error rejects the request.
type Producer func() (any, error)

// Data returns a producer for a literal value.
func Data(v any) Producer {
	return func() (any, error) { return v, nil }
}

// Fail returns a producer that rejects its request with err.
func Fail(err error) Producer {
	return func() (any, error) { return nil, err }
}

// PendingRequest is a request the component issued and nobody answered yet.
type PendingRequest struct {
	Seq     int64
	Request *http.Request
	deliver func(*http.Response, error)
}

// DeclaredResponse is a response the test declared and nobody consumed yet.
type DeclaredResponse struct {
	// Index is the 1-based declaration position.
	Index    int
	Producer Producer

	// Status is the HTTP status of a successful produce; 0 means 200.
	Status int
}

// Stats are the queue counters.
type Stats struct {
	Issued   int
	Declared int
	Consumed int
}

// Queue pairs pending requests with declared responses, oldest first.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex,
// though a harness chain only touches its queue from one goroutine.
type Queue struct {
	mu       sync.Mutex
	pending  []*PendingRequest
	declared []DeclaredResponse
	stats    Stats
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Issue appends a pending request.
func (q *Queue) Issue(p *PendingRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, p)
	q.stats.Issued++
}

// Declare appends a declared response and returns its 1-based index.
func (q *Queue) Declare(r DeclaredResponse) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stats.Declared++
	r.Index = q.stats.Declared
	q.declared = append(q.declared, r)
	return r.Index
}

// Next pops the oldest pending request together with the oldest declared
// response. It reports false, popping nothing, unless both exist.
func (q *Queue) Next() (*PendingRequest, DeclaredResponse, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 || len(q.declared) == 0 {
		return nil, DeclaredResponse{}, false
	}
	p := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	r := q.declared[0]
	q.declared[0] = DeclaredResponse{}
	q.declared = q.declared[1:]
	q.stats.Consumed++
	return p, r, true
}

// Outstanding returns the unanswered requests in issue order.
func (q *Queue) Outstanding() []*PendingRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*PendingRequest, len(q.pending))
	copy(out, q.pending)
	return out
}

// Unused returns how many declared responses wait for a request.
func (q *Queue) Unused() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.declared)
}

// Stats returns a snapshot of the counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}
