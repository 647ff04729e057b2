package app

import (
	"sync"

	"lnct-quiz-console/internal/domain"
)

// AdminCredential is the fixed administrator username/password pair.
type AdminCredential struct {
	Username string
	Password string
}

// CredentialFinder resolves student credentials.
type CredentialFinder interface {
	FindByCredentials(username, password string) (domain.Principal, bool)
}

// SessionManager holds the single active session.
type SessionManager struct {
	admin      AdminCredential
	principals CredentialFinder

	mu    sync.RWMutex
	state domain.Session
}

func NewSessionManager(admin AdminCredential, principals CredentialFinder) *SessionManager {
	return &SessionManager{
		admin:      admin,
		principals: principals,
		state:      domain.Session{Kind: domain.LoggedOut},
	}
}

// Login authenticates and opens a session. The admin credential is checked first.
func (m *SessionManager) Login(username, password string) (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Kind != domain.LoggedOut {
		return m.state, domain.ErrAlreadyLoggedIn
	}
	if m.admin.Username != "" && username == m.admin.Username && password == m.admin.Password {
		m.state = domain.Session{Kind: domain.LoggedInAdmin}
		return m.state, nil
	}
	if p, ok := m.principals.FindByCredentials(username, password); ok {
		m.state = domain.Session{Kind: domain.LoggedInStudent, RegistrationID: p.RegistrationID}
		return m.state, nil
	}
	return m.state, domain.ErrInvalidCredentials
}

// Logout clears the session and returns the one that was closed.
func (m *SessionManager) Logout() (domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Kind == domain.LoggedOut {
		return m.state, domain.ErrNotLoggedIn
	}
	previous := m.state
	m.state = domain.Session{Kind: domain.LoggedOut}
	return previous, nil
}

// Current returns the session state without side effects.
func (m *SessionManager) Current() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// RequireStudent returns the logged-in student's registration id.
func (m *SessionManager) RequireStudent() (string, error) {
	s := m.Current()
	switch s.Kind {
	case domain.LoggedInStudent:
		return s.RegistrationID, nil
	case domain.LoggedInAdmin:
		return "", domain.ErrAdminNotAllowed
	default:
		return "", domain.ErrNotLoggedIn
	}
}

// RequireAny fails only when no one is logged in.
func (m *SessionManager) RequireAny() (domain.Session, error) {
	s := m.Current()
	if s.Kind == domain.LoggedOut {
		return s, domain.ErrNotLoggedIn
	}
	return s, nil
}
