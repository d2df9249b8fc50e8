package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/roach88/seqharness/internal/ui"
)

// Problem is a non-2xx backend response.
type Problem struct {
	Status  int    `json:"-"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("http %d: %s", p.Status, p.Message)
}

func newRequest(method, path string, body any, token string) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, r)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// call sends a request and decodes a 2xx JSON body into out. Transport
// failures and non-2xx responses both reach done as errors.
func call(inst *ui.Instance, method, path string, body any, token string, out any, done func(error)) {
	req, err := newRequest(method, path, body, token)
	if err != nil {
		inst.Loop().Queue(func() { done(err) })
		return
	}
	inst.Logger().Debug("api request", "method", method, "path", path)
	inst.HTTP().Do(req, func(res *http.Response, err error) {
		if err != nil {
			done(err)
			return
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || res.StatusCode > 299 {
			p := &Problem{Status: res.StatusCode}
			if err := json.NewDecoder(res.Body).Decode(p); err != nil || p.Message == "" {
				p.Message = http.StatusText(res.StatusCode)
			}
			done(p)
			return
		}
		if out == nil {
			done(nil)
			return
		}
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			done(fmt.Errorf("decode %s %s: %w", method, path, err))
			return
		}
		done(nil)
	})
}

// token returns the current session token, "" when logged out.
func token(inst *ui.Instance) string {
	if s, ok := inst.Session().Session(); ok {
		return s.Token
	}
	return ""
}

// alertText turns a request failure into the message views display.
func alertText(err error) string {
	var p *Problem
	if errors.As(err, &p) {
		return "Something went wrong: " + p.Message
	}
	return "Something went wrong: the server could not be reached."
}
