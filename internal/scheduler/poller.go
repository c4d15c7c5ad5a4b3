package scheduler

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval matches the dashboard auto-refresh cadence.
const DefaultInterval = 15 * time.Second

// Poller runs a function on a fixed interval. Only one loop runs at a time:
// Start cancels any loop started earlier.
type Poller struct {
	Interval  time.Duration
	Immediate bool // run once before the first tick

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (p *Poller) Start(ctx context.Context, fn func(context.Context)) {
	p.Stop()

	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go func() {
		defer close(done)

		if p.Immediate {
			fn(loopCtx)
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				fn(loopCtx)
			}
		}
	}()
}

// Stop cancels the running loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether a loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == nil {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}
