package session

import (
	"sync"
	"time"
)

// Session is an authentication credential issued by the backend.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// User is the account a session belongs to.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Store is the session context injected into mounted instances.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	mu      sync.RWMutex
	session *Session
	user    *User
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty, logged-out store.
func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// LogIn installs a session and its user, replacing any previous pair.
func (s *Store) LogIn(sess Session, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &sess
	s.user = &user
}

// Reset clears the session and user.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.user = nil
}

// LoggedIn reports whether an unexpired session is installed.
func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil && !s.session.Expired(s.now())
}

// Session returns the installed session, if any.
func (s *Store) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// User returns the installed user, if any.
func (s *Store) User() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}
