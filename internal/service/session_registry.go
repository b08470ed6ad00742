package service

import "sync"

// SessionRegistry hands out one SalesManager per cashier session, so the
// "current ticket" stays session-scoped instead of process-wide.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*SalesManager
	deps     Dependencies
}

// NewSessionRegistry creates an empty registry over shared dependencies.
func NewSessionRegistry(deps Dependencies) *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*SalesManager),
		deps:     deps,
	}
}

// Manager returns the session's manager, creating it on first use. The
// cashier ID is bound at creation and ignored afterwards.
func (r *SessionRegistry) Manager(sessionID string, cashierID *string) *SalesManager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if manager, ok := r.sessions[sessionID]; ok {
		return manager
	}
	manager := NewSalesManager(sessionID, cashierID, r.deps)
	r.sessions[sessionID] = manager
	return manager
}

// Drop forgets a session, e.g. when a cashier station signs off.
func (r *SessionRegistry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}
