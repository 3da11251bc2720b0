/*
Package presence contains the real-time presence and message relay layer.

This file defines the Registry, the in-memory bookkeeping for live
connections: which user each connection belongs to, the reverse index from
user to connections, and the community channels each connection subscribes to.
The registry is owned by the Hub rather than living as a process-wide global
so it can be exercised directly in tests.
*/
package presence

import "sync"

// Conn is the write side of one live client connection as seen by the
// registry and the hub. The websocket Client implements it; tests supply
// in-memory fakes.
type Conn interface {
	// ID returns the opaque connection identifier.
	ID() string

	// Deliver enqueues an outbound frame without blocking. It reports false
	// when the connection's send queue is full or closed.
	Deliver(frame []byte) bool
}

// Registry tracks live connections. All maps are guarded by mu; entries are
// ephemeral and lost on process restart by design (a stale "online" user
// record is overwritten by the next login).
type Registry struct {
	mu sync.RWMutex

	// conns maps connection ID to its live connection.
	conns map[string]Conn

	// users maps connection ID to the authenticated user ID.
	users map[string]string

	// byUser is the reverse index: user ID to the set of connection IDs.
	byUser map[string]map[string]struct{}

	// channels maps community channel ID to subscribed connection IDs.
	channels map[string]map[string]struct{}

	// byConn maps connection ID to the channel IDs it subscribes to,
	// so a disconnect can drop all subscriptions in one pass.
	byConn map[string]map[string]struct{}
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[string]Conn),
		users:    make(map[string]string),
		byUser:   make(map[string]map[string]struct{}),
		channels: make(map[string]map[string]struct{}),
		byConn:   make(map[string]map[string]struct{}),
	}
}

// Register inserts (or overwrites) the mapping from conn to userID.
// It reports whether this is the user's first live connection, which is the
// online transition the presence broadcaster acts on.
func (r *Registry) Register(conn Conn, userID string) (first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	connID := conn.ID()

	// Re-login on the same connection under a different user: detach the
	// old user mapping first.
	if prev, ok := r.users[connID]; ok && prev != userID {
		r.detachUserLocked(connID, prev)
	}

	r.conns[connID] = conn
	r.users[connID] = userID

	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[string]struct{})
		r.byUser[userID] = set
		first = true
	}
	set[connID] = struct{}{}

	return first
}

// Unregister removes the connection and all its channel subscriptions.
// It returns the user the connection belonged to and whether that was the
// user's last live connection. Unknown connections are a no-op, not an error.
func (r *Registry) Unregister(connID string) (userID string, last bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok = r.users[connID]

	delete(r.conns, connID)
	delete(r.users, connID)

	for channelID := range r.byConn[connID] {
		r.leaveLocked(connID, channelID)
	}
	delete(r.byConn, connID)

	if !ok {
		return "", false, false
	}

	last = r.detachUserLocked(connID, userID)
	return userID, last, true
}

// detachUserLocked removes connID from the user's connection set and reports
// whether the set became empty. Caller holds mu.
func (r *Registry) detachUserLocked(connID, userID string) bool {
	set, ok := r.byUser[userID]
	if !ok {
		return false
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(r.byUser, userID)
		return true
	}
	return false
}

// UserConns returns every live connection registered for the given user.
// The slice is empty when the user is offline.
func (r *Registry) UserConns(userID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.byUser[userID]
	conns := make([]Conn, 0, len(set))
	for connID := range set {
		if conn, ok := r.conns[connID]; ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

// UserOnline reports whether the user has at least one live connection.
func (r *Registry) UserOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byUser[userID]) > 0
}

// Join subscribes a connection to a community channel. Unknown connections
// are ignored so a race with disconnect cannot resurrect state.
func (r *Registry) Join(connID, channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[connID]; !ok {
		return
	}

	set, ok := r.channels[channelID]
	if !ok {
		set = make(map[string]struct{})
		r.channels[channelID] = set
	}
	set[connID] = struct{}{}

	subs, ok := r.byConn[connID]
	if !ok {
		subs = make(map[string]struct{})
		r.byConn[connID] = subs
	}
	subs[channelID] = struct{}{}
}

// Leave unsubscribes a connection from a community channel.
func (r *Registry) Leave(connID, channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveLocked(connID, channelID)
	if subs, ok := r.byConn[connID]; ok {
		delete(subs, channelID)
	}
}

// leaveLocked removes connID from a channel set. Caller holds mu.
func (r *Registry) leaveLocked(connID, channelID string) {
	set, ok := r.channels[channelID]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(r.channels, channelID)
	}
}

// ChannelConns returns every connection subscribed to the given channel.
func (r *Registry) ChannelConns(channelID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.channels[channelID]
	conns := make([]Conn, 0, len(set))
	for connID := range set {
		if conn, ok := r.conns[connID]; ok {
			conns = append(conns, conn)
		}
	}
	return conns
}

// AllConns returns every live connection, used for status-change broadcasts.
func (r *Registry) AllConns() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.conns))
	for _, conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}

// LookupUser returns the user registered for a connection, if any.
func (r *Registry) LookupUser(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	userID, ok := r.users[connID]
	return userID, ok
}
