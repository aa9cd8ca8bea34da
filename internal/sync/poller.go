package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/rs/zerolog"
)

// refreshTimeout is the maximum time allowed for a single refresh.
const refreshTimeout = 30 * time.Second

// RefreshFunc reloads the board. Its results reach the UI through the
// board's view, so only the error is of interest here.
type RefreshFunc func(ctx context.Context) error

// Poller reloads the board on a fixed interval.
type Poller struct {
	refresh  RefreshFunc
	interval time.Duration
	logger   zerolog.Logger
	stopCh   chan struct{}
	mu       gosync.Mutex
	running  bool
}

// NewPoller creates a Poller. A non-positive interval yields a poller
// whose Start is a no-op.
func NewPoller(refresh RefreshFunc, interval time.Duration, logger zerolog.Logger) *Poller {
	return &Poller{
		refresh:  refresh,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Logger(),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the polling goroutine. Calling it twice is harmless.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running || p.interval <= 0 {
		return
	}
	p.running = true
	go p.loop()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}
	close(p.stopCh)
	p.running = false
}

// Running reports whether the polling goroutine is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	if err := p.refresh(ctx); err != nil {
		p.logger.Warn().Err(err).Msg("scheduled refresh failed")
	}
}
