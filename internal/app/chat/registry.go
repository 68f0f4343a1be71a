package chat

import "sync"

// Identity is the connection-scoped copy of a resolved user, established at
// join time and never refreshed until reconnect.
type Identity struct {
	UserID   string
	Username string
}

// Registry maps live connection IDs to resolved identities. It is the side
// table that decouples identity lifecycle from the transport object itself:
// a connection has an entry only between a successful join and its disconnect.
type Registry struct {
	mu       sync.RWMutex
	bindings map[string]Identity
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		bindings: make(map[string]Identity),
	}
}

// Bind records the connection-to-identity binding, replacing any previous
// binding for the same connection.
func (r *Registry) Bind(connID, userID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings[connID] = Identity{UserID: userID, Username: username}
}

// Unbind removes the binding for connID, returning the identity that was
// bound and whether one existed.
func (r *Registry) Unbind(connID string) (Identity, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ident, ok := r.bindings[connID]
	if ok {
		delete(r.bindings, connID)
	}
	return ident, ok
}

// Lookup returns the identity bound to connID, if any. A connection that has
// not completed a join has no entry and reports unjoined.
func (r *Registry) Lookup(connID string) (Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ident, ok := r.bindings[connID]
	return ident, ok
}

// UsernameActive reports whether any live connection is currently bound to
// the given username.
func (r *Registry) UsernameActive(username string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ident := range r.bindings {
		if ident.Username == username {
			return true
		}
	}
	return false
}

// Len returns the number of active bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.bindings)
}
