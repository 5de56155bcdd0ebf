package realtime

import "sync"

// Registry owns the set of live client sessions keyed by userId and
// dedups on re-login: adding a connection supersedes and closes any
// prior one for that user, since only one live connection per user is
// allowed.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]*Connection
}

func NewRegistry() *Registry {
	return &Registry{connections: make(map[string]*Connection)}
}

// Add installs conn under userID, superseding and closing any existing
// connection for that user.
func (r *Registry) Add(userID string, conn *Connection) (evicted *Connection) {
	r.mu.Lock()
	existing := r.connections[userID]
	r.connections[userID] = conn
	r.mu.Unlock()

	if existing != nil {
		existing.MarkSuperseded()
		existing.CloseWithCode(CloseSupersededSession, "superseded")
	}
	return existing
}

// Remove deletes userID's registration iff it still points at conn
// (guards against a stale close racing a newer login's Add).
func (r *Registry) Remove(userID string, conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.connections[userID]; ok && cur == conn {
		delete(r.connections, userID)
	}
}

// Drop unconditionally removes userID's registration, used when the
// caller (heartbeat loss, backpressure eviction) knows the connection is
// dead but doesn't hold a reference to compare against.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, userID)
}

// Get returns the live connection for userID, if any.
func (r *Registry) Get(userID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.connections[userID]
	return c, ok
}

// All returns a snapshot of every live connection, for toAll broadcasts.
func (r *Registry) All() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Connection, 0, len(r.connections))
	for _, c := range r.connections {
		out = append(out, c)
	}
	return out
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}
