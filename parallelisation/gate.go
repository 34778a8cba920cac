package parallelisation

import (
	"context"

	"github.com/sasha-s/go-deadlock"
)

// Gate is a cooperative suspension point. An open gate lets waiters through
// immediately; a closed gate blocks them until it is reopened or their context
// ends. It never preempts work already in flight.
type Gate struct {
	mu   deadlock.RWMutex
	open chan struct{}
}

// NewGate returns an open gate.
func NewGate() *Gate {
	g := &Gate{open: make(chan struct{})}
	close(g.open)
	return g
}

// Close closes the gate so that subsequent waiters block.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		g.open = make(chan struct{})
	default:
	}
}

// Open reopens the gate and releases all waiters.
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
	default:
		close(g.open)
	}
}

// IsClosed reports whether the gate is currently closed.
func (g *Gate) IsClosed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	select {
	case <-g.open:
		return false
	default:
		return true
	}
}

// Wait blocks while the gate is closed. It returns the context error if ctx
// ends first.
func (g *Gate) Wait(ctx context.Context) error {
	for {
		if err := DetermineContextError(ctx); err != nil {
			return err
		}
		g.mu.RLock()
		ch := g.open
		g.mu.RUnlock()
		select {
		case <-ch:
			g.mu.RLock()
			stillOpen := ch == g.open
			g.mu.RUnlock()
			if stillOpen {
				return nil
			}
		case <-ctx.Done():
			return DetermineContextError(ctx)
		}
	}
}
