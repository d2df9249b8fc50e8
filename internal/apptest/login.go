package apptest

import (
	"fmt"

	"github.com/roach88/seqharness/internal/app"
	"github.com/roach88/seqharness/internal/harness"
	"github.com/roach88/seqharness/internal/session"
	"github.com/roach88/seqharness/internal/testutil"
	"github.com/roach88/seqharness/internal/ui"
)

// MockPassword is the password SubmitLoginForm types.
const MockPassword = "password"

// MockRouteThroughLogin prepares a chain that navigates to location while
// logged out, lands on the login form, submits it, and answers the session
// and current-user requests with a mock session and MockUser. The session
// expiry follows sess's clock.
//
// The returned harness is not completed. Callers declare the responses the
// destination view needs and then complete it. opts.Router defaults to
// app.NewRouter().
func MockRouteThroughLogin(sess *session.Store, location string, opts ui.MountOptions, hopts ...harness.Option) (*harness.Harness, error) {
	if sess == nil {
		return nil, harness.NewPreconditionError("route through login: session store is nil")
	}
	if sess.LoggedIn() {
		return nil, harness.NewPreconditionError("route through login: already logged in")
	}
	if opts.Router == nil {
		opts.Router = app.NewRouter()
	}

	hopts = append([]harness.Option{harness.WithSession(sess)}, hopts...)
	h := harness.New(hopts...).
		Mount(app.New(), opts).
		Request(func(inst *ui.Instance) error {
			inst.Router().Push(location)
			inst.Loop().NextTick(func() {
				if err := SubmitLoginForm(inst); err != nil {
					inst.Fail(fmt.Errorf("route through login: %w", err))
				}
			})
			return nil
		}).
		RespondWithData(harness.Data(testutil.MockSessionAt(sess.Now()))).
		RespondWithData(harness.Data(testutil.MockUser()))
	return h, nil
}

// SubmitLoginForm fills the login form with the mock user's credentials and
// submits it.
func SubmitLoginForm(inst *ui.Instance) error {
	err := ui.FillForm(inst,
		ui.Field{Selector: app.LoginEmail, Value: testutil.MockUser().Email},
		ui.Field{Selector: app.LoginPassword, Value: MockPassword},
	)
	if err != nil {
		return err
	}
	return ui.Submit(inst, app.LoginForm)
}
