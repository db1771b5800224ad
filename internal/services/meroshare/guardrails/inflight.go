package guardrails

import (
	"sync"
)

// Inflight admits at most one holder per key inside this process
type Inflight struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewInflight returns an empty guard
func NewInflight() *Inflight {
	return &Inflight{held: map[string]struct{}{}}
}

// TryAcquire claims key. When ok is false someone else holds it and release is nil.
// release is idempotent
func (g *Inflight) TryAcquire(key string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.held[key]; busy {
		return nil, false
	}
	g.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, key)
			g.mu.Unlock()
		})
	}, true
}

// Len reports how many keys are held
func (g *Inflight) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.held)
}
