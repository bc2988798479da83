package api

import "sync"

// User is the record resolved from the bearer token. CompanyID is the
// tenancy key attached to all chat and task operations; LeadID is the
// fallback chat context when no project is selected.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id"`
	LeadID    string `json:"lead_id"`
}

// Session is the process-wide auth context. It is created once,
// initialized on login, and cleared on logout; components that need the
// token or tenancy ids receive the session explicitly rather than
// reading ambient globals.
type Session struct {
	mu    sync.RWMutex
	token string
	user  User
}

// NewSession returns an unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// Init installs the bearer token and resolved user after login.
func (s *Session) Init(token string, user User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

// Clear wipes the session on logout.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = User{}
}

// Token returns the bearer token, empty when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the logged-in user record.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a login has completed.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// ContextID returns the chat/task context id for an optional project:
// the project id when given, else the user's lead id.
func (s *Session) ContextID(projectID string) string {
	if projectID != "" {
		return projectID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.LeadID
}
