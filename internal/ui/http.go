package ui

import (
	"errors"
	"net/http"
	"net/url"
)

// Client is the outbound HTTP capability of a mounted instance.
//
// Do must not block. It delivers exactly one result through done, later, on
// the instance's loop: a response, or an error when the call failed before a
// response arrived.
type Client interface {
	Do(req *http.Request, done func(*http.Response, error))
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(req *http.Request, done func(*http.Response, error))

// Do calls f(req, done).
func (f ClientFunc) Do(req *http.Request, done func(*http.Response, error)) {
	f(req, done)
}

// ErrOffline is the cause reported for requests made without a client.
var ErrOffline = errors.New("no HTTP client configured")

// offlineClient fails every request on the next flush.
func offlineClient(loop *Loop) Client {
	return ClientFunc(func(req *http.Request, done func(*http.Response, error)) {
		loop.Queue(func() {
			done(nil, &url.Error{Op: req.Method, URL: req.URL.String(), Err: ErrOffline})
		})
	})
}
