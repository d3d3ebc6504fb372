package browser

import (
	"context"
	"sync"
	"time"
)

// networkIdle counts in-flight requests. The page is idle once at most
// MaxInflight requests have been pending for a whole QuietPeriod; the window
// restarts only when the count climbs above MaxInflight and falls back.
type networkIdle struct {
	max   int
	quiet time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
	drops    int // times the count fell from above max to max or below
	changed  chan struct{}
}

func newNetworkIdle(wait WaitCondition) *networkIdle {
	return &networkIdle{
		max:      wait.MaxInflight,
		quiet:    wait.QuietPeriod,
		inflight: make(map[string]struct{}),
		changed:  make(chan struct{}, 1),
	}
}

func (n *networkIdle) started(id string) {
	n.mu.Lock()
	n.inflight[id] = struct{}{}
	n.mu.Unlock()
	n.notify()
}

func (n *networkIdle) finished(id string) {
	n.mu.Lock()
	before := len(n.inflight)
	delete(n.inflight, id)
	if before > n.max && len(n.inflight) <= n.max {
		n.drops++
	}
	n.mu.Unlock()
	n.notify()
}

func (n *networkIdle) notify() {
	select {
	case n.changed <- struct{}{}:
	default:
	}
}

func (n *networkIdle) state() (pending, drops int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.inflight), n.drops
}

// wait blocks until the page is idle or ctx ends.
func (n *networkIdle) wait(ctx context.Context) error {
	timer := time.NewTimer(n.quiet)
	defer timer.Stop()

	pending, seen := n.state()
	if pending > n.max {
		timer.Stop()
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-n.changed:
			pending, drops := n.state()
			switch {
			case pending > n.max:
				timer.Stop()
			case drops != seen:
				timer.Reset(n.quiet)
			}
			seen = drops
		case <-timer.C:
			if pending, _ := n.state(); pending <= n.max {
				return nil
			}
		}
	}
}
