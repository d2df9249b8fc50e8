package testutil

import (
	"strings"
	"time"

	"github.com/roach88/seqharness/internal/session"
)

// MockTokenLength is the length of every mock session token.
const MockTokenLength = 64

// MockSession returns a session that expires one day from now.
func MockSession() session.Session {
	return MockSessionAt(time.Now())
}

// MockSessionAt returns a session that expires one day after now. The expiry is
// truncated to whole seconds in UTC, matching what the backend serialises.
func MockSessionAt(now time.Time) session.Session {
	return session.Session{
		Token:     strings.Repeat("a", MockTokenLength),
		ExpiresAt: now.Add(24 * time.Hour).UTC().Truncate(time.Second),
	}
}

// MockUser returns the fixed account used by logged-in tests.
func MockUser() session.User {
	return session.User{ID: 1, Email: "user@test.com"}
}

// MockLogin installs a mock session, against s's clock, and MockUser into s.
// Every instance mounted against s afterwards sees a logged-in user.
func MockLogin(s *session.Store) {
	s.LogIn(MockSessionAt(s.Now()), MockUser())
}
