package arena

import "sync"

// Registry maps authenticated identities to their live connection and to the
// session they are bound to. A user has at most one live connection; a fresh
// register displaces the previous one. Session bindings outlive the
// connection so a reconnecting user can be routed back to their session
// during the disconnect grace window.
type Registry struct {
	mu           sync.RWMutex
	conns        map[string]Conn   // userID -> live conn
	connSessions map[string]string // connID -> sessionID
	userSessions map[string]string // userID -> sessionID
}

func NewRegistry() *Registry {
	return &Registry{
		conns:        make(map[string]Conn),
		connSessions: make(map[string]string),
		userSessions: make(map[string]string),
	}
}

// Register records conn as the user's live connection and returns the
// connection it displaced, if any. The caller decides what to do with the
// stale one (typically close it).
func (r *Registry) Register(userID string, conn Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.conns[userID]
	r.conns[userID] = conn
	if sid, ok := r.userSessions[userID]; ok {
		r.connSessions[conn.ConnID()] = sid
	}
	return prev
}

// Unregister drops the user's live connection, but only if connID still names
// it. A stale unregister from a displaced connection is a no-op.
func (r *Registry) Unregister(userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.conns[userID]
	if !ok || cur.ConnID() != connID {
		return false
	}
	delete(r.conns, userID)
	delete(r.connSessions, connID)
	return true
}

func (r *Registry) Conn(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[userID]
	return c, ok
}

// BindSession ties the user (and their live connection, if any) to a session.
func (r *Registry) BindSession(userID, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userSessions[userID] = sessionID
	if c, ok := r.conns[userID]; ok {
		r.connSessions[c.ConnID()] = sessionID
	}
}

func (r *Registry) UnbindSession(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.userSessions, userID)
	if c, ok := r.conns[userID]; ok {
		delete(r.connSessions, c.ConnID())
	}
}

func (r *Registry) SessionByUser(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.userSessions[userID]
	return sid, ok
}

func (r *Registry) SessionByConn(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.connSessions[connID]
	return sid, ok
}
