package notify

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/sovereign-client/internal/dependencies/clock"
	"github.com/mcoot/sovereign-client/internal/storage"
)

// DefaultInterval is the unread-count polling period
const DefaultInterval = 20 * time.Second

// UnreadFetcher fetches the server-computed unread count
type UnreadFetcher interface {
	UnreadCount(ctx context.Context) (int, error)
}

// Config holds poller settings
type Config struct {
	Interval time.Duration
	// FetchTimeout bounds a single fetch. Zero means the interval.
	FetchTimeout time.Duration
}

// Poller keeps a best-effort unread count fresh while a session exists.
// A running poller is one goroutine bound to a cancellable context; Stop
// cancels it and waits, so nothing fetches after Stop returns.
type Poller struct {
	fetcher UnreadFetcher
	store   storage.TokenStore
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	countMu     sync.Mutex
	unread      int
	generation  uint64
	started     uint64
	applied     uint64
	subscribers []chan int
}

// New creates a stopped Poller
func New(fetcher UnreadFetcher, store storage.TokenStore, clk clock.Clock, cfg Config, logger *slog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = cfg.Interval
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Poller{
		fetcher: fetcher,
		store:   store,
		clock:   clk,
		cfg:     cfg,
		logger:  logger,
	}
}

// Start begins polling with an immediate fetch. Calling Start on a running
// poller, or with no stored token, does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}
	if !storage.HasToken(context.Background(), p.store) {
		p.logger.Debug("poller not started: no session")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	ticker := p.clock.NewTicker(p.cfg.Interval)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go p.run(ctx, ticker, done)
	p.logger.Debug("poller started", "interval", p.cfg.Interval)
}

// Stop cancels polling and waits for the loop to exit. The held count is
// cleared. Stopping a stopped poller is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		p.logger.Debug("poller stopped")
	}

	p.countMu.Lock()
	p.generation++
	p.unread = 0
	p.publishLocked(0)
	p.countMu.Unlock()
}

// Running reports whether the polling loop is active
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Unread returns the last fetched count
func (p *Poller) Unread() int {
	p.countMu.Lock()
	defer p.countMu.Unlock()
	return p.unread
}

// Subscribe returns a channel receiving the latest count after each change.
// Slow receivers only ever see the newest value.
func (p *Poller) Subscribe() <-chan int {
	ch := make(chan int, 1)
	p.countMu.Lock()
	p.subscribers = append(p.subscribers, ch)
	p.countMu.Unlock()
	return ch
}

// Refresh performs one out-of-band fetch. Failures are logged and swallowed.
// Without a stored token it does nothing.
func (p *Poller) Refresh(ctx context.Context) {
	if !storage.HasToken(ctx, p.store) {
		return
	}

	p.countMu.Lock()
	gen := p.generation
	p.started++
	seq := p.started
	p.countMu.Unlock()

	fetchCtx, cancel := context.WithTimeout(ctx, p.cfg.FetchTimeout)
	defer cancel()

	n, err := p.fetcher.UnreadCount(fetchCtx)
	if err != nil {
		p.logger.Debug("unread count fetch failed", "error", err)
		return
	}

	p.countMu.Lock()
	// A Stop during the fetch, or a later fetch finishing first, wins over
	// this result
	if gen != p.generation || seq < p.applied {
		p.countMu.Unlock()
		return
	}
	p.applied = seq
	if p.unread != n {
		p.unread = n
		p.publishLocked(n)
	}
	p.countMu.Unlock()
}

func (p *Poller) run(ctx context.Context, ticker clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	p.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			p.Refresh(ctx)
		}
	}
}

// publishLocked hands n to every subscriber. The caller holds countMu, so
// subscribers see counts in the order they were stored.
func (p *Poller) publishLocked(n int) {
	for _, ch := range p.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- n:
		default:
		}
	}
}
