// Package realtime tracks live per-user connections and multiplexes
// best-effort delivery across them, independent of which transport carries
// the connection.
package realtime

import (
	"log"
	"sync"
)

// Connection is one live bidirectional channel. Implementations should bound
// their write time (deadline or buffer) so a stalled peer fails the write
// instead of blocking it.
type Connection interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Registry owns every registered connection for its lifetime. A connection
// registered with an empty user id is a legacy anonymous subscription: it
// receives broadcasts only, never targeted sends.
type Registry struct {
	mu     sync.Mutex
	conns  map[Connection]string
	byUser map[string]map[Connection]struct{}
	closed bool
}

func NewRegistry() *Registry {
	return &Registry{
		conns:  make(map[Connection]string),
		byUser: make(map[string]map[Connection]struct{}),
	}
}

// Register adds conn under userID ("" for anonymous). Registering on a
// closed registry closes the connection immediately.
func (r *Registry) Register(userID string, conn Connection) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		conn.Close()
		return
	}
	r.conns[conn] = userID
	if userID != "" {
		set, ok := r.byUser[userID]
		if !ok {
			set = make(map[Connection]struct{})
			r.byUser[userID] = set
		}
		set[conn] = struct{}{}
	}
	r.mu.Unlock()
}

// Unregister removes conn. It does not close it; the transport owns the
// close on its side of the lifecycle.
func (r *Registry) Unregister(conn Connection) {
	r.mu.Lock()
	r.removeLocked(conn)
	r.mu.Unlock()
}

func (r *Registry) removeLocked(conn Connection) {
	userID, ok := r.conns[conn]
	if !ok {
		return
	}
	delete(r.conns, conn)
	if userID != "" {
		if set, ok := r.byUser[userID]; ok {
			delete(set, conn)
			if len(set) == 0 {
				delete(r.byUser, userID)
			}
		}
	}
}

// SendToUser delivers payload to every connection registered for userID.
// Delivery is best-effort: a failing connection is closed and pruned without
// affecting the others.
func (r *Registry) SendToUser(userID string, payload interface{}) {
	if userID == "" {
		return
	}
	r.mu.Lock()
	targets := make([]Connection, 0, len(r.byUser[userID]))
	for conn := range r.byUser[userID] {
		targets = append(targets, conn)
	}
	r.mu.Unlock()

	r.deliver(targets, payload)
}

// Broadcast delivers payload to every registered connection, anonymous ones
// included, with the same pruning rule as SendToUser.
func (r *Registry) Broadcast(payload interface{}) {
	r.mu.Lock()
	targets := make([]Connection, 0, len(r.conns))
	for conn := range r.conns {
		targets = append(targets, conn)
	}
	r.mu.Unlock()

	r.deliver(targets, payload)
}

func (r *Registry) deliver(targets []Connection, payload interface{}) {
	for _, conn := range targets {
		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("realtime: dropping connection after failed send: %v", err)
			conn.Close()
			r.mu.Lock()
			r.removeLocked(conn)
			r.mu.Unlock()
		}
	}
}

// Close shuts the registry down, closing and dropping every connection.
// Subsequent sends are no-ops.
func (r *Registry) Close() {
	r.mu.Lock()
	conns := make([]Connection, 0, len(r.conns))
	for conn := range r.conns {
		conns = append(conns, conn)
	}
	r.conns = make(map[Connection]string)
	r.byUser = make(map[string]map[Connection]struct{})
	r.closed = true
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
