// Package stream interleaves enrichment of several spreadsheets into one
// event stream with a pause/resume gate.
package stream

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
)

// ErrStopped is returned by a gate wait after Stop.
var ErrStopped = eris.New("stream: stopped")

// Gate is the continuation signal of one stream. A waiting scheduler
// resumes on Continue and gives up on Stop.
type Gate struct {
	resume   chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewGate creates an open, unsignalled gate.
func NewGate() *Gate {
	return &Gate{
		resume:  make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// Arm discards any continue signal raised before the next pause.
func (g *Gate) Arm() {
	select {
	case <-g.resume:
	default:
	}
}

// Continue releases a pending or future Wait. Repeated calls before the
// wait collapse into one signal.
func (g *Gate) Continue() {
	select {
	case g.resume <- struct{}{}:
	default:
	}
}

// Stop ends the stream; current and future waits return ErrStopped.
func (g *Gate) Stop() {
	g.stopOnce.Do(func() { close(g.stopped) })
}

// Stopped reports whether Stop was called.
func (g *Gate) Stopped() bool {
	select {
	case <-g.stopped:
		return true
	default:
		return false
	}
}

// Wait blocks until Continue, Stop or ctx cancellation.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.stopped:
		return ErrStopped
	default:
	}
	select {
	case <-g.resume:
		return nil
	case <-g.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
