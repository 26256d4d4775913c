package service

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is the ambient refresh cadence.
const DefaultPollInterval = 30 * time.Second

// TickerFunc starts a ticker and returns its channel and a stop function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Poller calls tick on a fixed cadence until stopped. Ticks never overlap:
// a slow tick makes the ticker drop the ones it missed.
type Poller struct {
	interval  time.Duration
	newTicker TickerFunc
	tick      func(ctx context.Context)

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a stopped Poller. A nil newTicker uses time.NewTicker.
func NewPoller(interval time.Duration, newTicker TickerFunc, tick func(ctx context.Context)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if newTicker == nil {
		newTicker = realTicker
	}
	return &Poller{interval: interval, newTicker: newTicker, tick: tick}
}

// Start launches the loop. It runs until Stop is called or ctx is done.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	ticks, stop := p.newTicker(p.interval)

	go func() {
		defer close(p.done)
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				p.tick(ctx)
			}
		}
	}()
}

// Stop ends the loop and waits for an in-progress tick to return. Safe to
// call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel == nil {
			return
		}
		p.cancel()
		<-p.done
	})
}
