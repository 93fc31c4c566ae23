// Package feed keeps the message list fresh by polling the server.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
)

const DefaultInterval = 5 * time.Second

type Source interface {
	Messages(ctx context.Context) ([]models.Message, error)
}

// Sink receives the full chronological list and its newest message (nil for
// an empty list) after every successful refresh. It runs with the poller's
// lock held and must not call Start or Stop.
type Sink func(list []models.Message, newest *models.Message)

type Poller struct {
	src      Source
	sink     Sink
	interval time.Duration
	log      logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	gen    uint64
}

func NewPoller(src Source, interval time.Duration, sink Sink, log logging.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{src: src, sink: sink, interval: interval, log: log.With("module", "feed")}
}

// Start refreshes immediately and then on every tick until Stop or ctx
// cancellation. Starting a running poller does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.gen++
	go p.loop(ctx, p.gen, p.done)
}

// Stop cancels the timer and any request in flight and waits for the loop
// to exit. No sink call happens after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.cancel = nil
	p.gen++
	done := p.done
	p.mu.Unlock()

	<-done
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)
	defer p.exited(gen)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	p.refresh(ctx, gen)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.refresh(ctx, gen)
		}
	}
}

// exited marks the poller stopped when its loop ends on parent ctx
// cancellation, so Running reports false and Start works again.
func (p *Poller) exited(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || p.cancel == nil {
		return
	}
	p.cancel()
	p.cancel = nil
	p.gen++
}

func (p *Poller) refresh(ctx context.Context, gen uint64) {
	list, err := p.src.Messages(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn(ctx, "message refresh failed", "error", err)
		}
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// stale: stopped or restarted while the request was in flight
	if gen != p.gen || ctx.Err() != nil {
		return
	}

	var newest *models.Message
	if len(list) > 0 {
		newest = &list[len(list)-1]
	}
	p.sink(list, newest)
}
