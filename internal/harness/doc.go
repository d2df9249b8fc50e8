// Package harness sequences simulated HTTP traffic for mounted components.
//
// A Harness is a builder. Each declarative call records a step; Complete
// executes the recorded steps in order against a deterministic ui.Loop:
//
//	app, err := harness.New(harness.WithSession(sess)).
//	    Mount(app.New(), ui.MountOptions{Router: app.NewRouter(), Route: "/users"}).
//	    RespondWithData(harness.Data(users)).
//	    Request(func(a *ui.Instance) error { return ui.Click(a, ".nav-projects") }).
//	    RespondWithData(harness.Data(projects)).
//	    RespondWithData(harness.Data(admins)).
//	    Complete(ctx)
//
// # Ordering
//
// Requests the mounted component issues are queued in issue order. Declared
// responses are queued in declaration order. Whenever both queues are
// non-empty the heads are paired: the Nth declared response always answers the
// Nth issued request, whichever step caused it. A response declared while
// nothing is pending waits for the next request.
//
// Producers are called when their response is paired, not when declared, so
// fixtures see state as of the match. A producer error rejects the request the
// way a failed network call would; the component handles it and the chain
// carries on.
//
// # Failures
//
// Complete reports misuse of the harness as a *SequenceError, which is never
// a component assertion failure:
//
//   - UNUSED_RESPONSE: more responses were declared than requests were issued.
//   - UNMATCHED_REQUEST: the loop went idle with requests still unanswered.
//     The loop is single-threaded, so idleness is final and this is reported
//     immediately instead of waiting for a test timeout.
//   - ALREADY_MOUNTED, NOT_MOUNTED, ALREADY_COMPLETED: builder misuse.
//   - PRECONDITION: a composite helper was called in the wrong session state.
//
// A cancelled or expired context stops settling and is returned wrapped.
package harness
