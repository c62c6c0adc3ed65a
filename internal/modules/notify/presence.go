// README: Presence registry mapping live connection ids to user ids.
package notify

import (
	"sync"

	"stackshack/internal/types"
)

// Presence tracks which user each connected client belongs to. A user may
// hold several simultaneous connections; deliveries fan out to all of them.
type Presence struct {
	mu    sync.RWMutex
	conns map[types.ID]types.ID // connID -> userID
}

func NewPresence() *Presence {
	return &Presence{conns: make(map[types.ID]types.ID)}
}

// Register binds a connection to a user, overwriting any previous binding
// for that connection.
func (p *Presence) Register(connID, userID types.ID) {
	p.mu.Lock()
	p.conns[connID] = userID
	p.mu.Unlock()
}

// Deregister removes a connection. Unknown ids are a no-op.
func (p *Presence) Deregister(connID types.ID) {
	p.mu.Lock()
	delete(p.conns, connID)
	p.mu.Unlock()
}

// UserFor resolves the user bound to a connection.
func (p *Presence) UserFor(connID types.ID) (types.ID, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	uid, ok := p.conns[connID]
	return uid, ok
}

// ConnectionsFor returns every live connection registered to the user.
func (p *Presence) ConnectionsFor(userID types.ID) []types.ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []types.ID
	for conn, uid := range p.conns {
		if uid == userID {
			out = append(out, conn)
		}
	}
	return out
}

// ConnectedUserIDs returns the distinct users currently holding at least
// one connection.
func (p *Presence) ConnectedUserIDs() []types.ID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	seen := make(map[types.ID]bool, len(p.conns))
	out := make([]types.ID, 0, len(p.conns))
	for _, uid := range p.conns {
		if !seen[uid] {
			seen[uid] = true
			out = append(out, uid)
		}
	}
	return out
}

// Size returns the number of live connections.
func (p *Presence) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.conns)
}
