package trace

// Event types.
const (
	TypeMount    = "mount"
	TypeAction   = "action"
	TypeRequest  = "request"
	TypeResponse = "response"
)

// Response outcomes.
const (
	OutcomeData    = "data"
	OutcomeError   = "error"
	OutcomeProblem = "problem"
)

// Event is one entry of a chain's trace.
type Event struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"`

	// Request events: the issued call.
	Method string `json:"method,omitempty"`
	Path   string `json:"path,omitempty"`

	// Response events: the request answered, how, and with what.
	Request int64  `json:"request,omitempty"`
	Outcome string `json:"outcome,omitempty"`
	Status  int    `json:"status,omitempty"`
	Body    string `json:"body,omitempty"`

	// Mount and action events: a short description.
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of a chain.
type Result struct {
	Pass   bool     `json:"pass"`
	Events []Event  `json:"events"`
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result with no events.
func NewResult() *Result {
	return &Result{Pass: true, Events: []Event{}, Errors: []string{}}
}

// Add appends an event.
func (r *Result) Add(ev Event) {
	r.Events = append(r.Events, ev)
}

// AddError records an error and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Count returns how many events have type typ.
func (r *Result) Count(typ string) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

// Requests returns the request events in issue order.
func (r *Result) Requests() []Event {
	return r.filter(TypeRequest)
}

// Responses returns the response events in match order.
func (r *Result) Responses() []Event {
	return r.filter(TypeResponse)
}

func (r *Result) filter(typ string) []Event {
	out := []Event{}
	for _, ev := range r.Events {
		if ev.Type == typ {
			out = append(out, ev)
		}
	}
	return out
}
