package matrix

import "sync"

// Group fans commands out to every attached module so callers can treat the
// pair (or quad) of matrices as one surface. Queries go to the first module.
type Group struct {
	mu          sync.RWMutex
	controllers []*Controller
}

// NewGroup wraps a set of controllers.
func NewGroup(controllers ...*Controller) *Group {
	return &Group{controllers: controllers}
}

// Controllers returns a snapshot of the member controllers.
func (g *Group) Controllers() []*Controller {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Controller, len(g.controllers))
	copy(out, g.controllers)
	return out
}

// Send queues the payload on every member. The first enqueue error wins.
func (g *Group) Send(payload []byte) error {
	var firstErr error
	for _, c := range g.Controllers() {
		if err := c.Send(payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Request queries the first member; without members it reports ErrNotConnected.
func (g *Group) Request(payload []byte) ([]byte, error) {
	cs := g.Controllers()
	if len(cs) == 0 {
		return nil, ErrNotConnected
	}
	return cs[0].Request(payload)
}
