package client

import (
	"sync"

	"todo-planner/internal/model"
)

// Session holds the bearer token and signed-in user of one frontend context.
// It is passed explicitly to the client that performs API calls.
type Session struct {
	mu             sync.RWMutex
	token          string
	user           *model.User
	onUnauthorized func(*Error)
}

// NewSession returns a session, optionally restored from a saved token.
func NewSession(token string) *Session {
	return &Session{token: token}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user when known.
func (s *Session) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Set stores the result of a sign-up or login.
func (s *Session) Set(result model.AuthResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := result.User
	s.token = result.Token
	s.user = &user
}

func (s *Session) SetUser(user model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
}

// Clear signs the session out locally.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

// OnUnauthorized registers the hook run after any 401 response. The session
// is already cleared when the hook runs.
func (s *Session) OnUnauthorized(fn func(*Error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnauthorized = fn
}

func (s *Session) unauthorized(err *Error) {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	hook := s.onUnauthorized
	s.mu.Unlock()

	if hook != nil {
		hook(err)
	}
}
