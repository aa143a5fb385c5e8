package fallback

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	defaultProbeInterval = 5 * time.Minute
	defaultProbeTimeout  = 10 * time.Second
)

// Monitor periodically probes every provider and feeds the outcomes back
// into the manager's health records.
type Monitor struct {
	manager  *Manager
	interval time.Duration
	timeout  time.Duration
	logger   *log.Logger

	// probing guards against overlapping timer fires: a tick that arrives
	// while a probe round is still running is skipped.
	probing sync.Mutex
}

// NewMonitor creates a health monitor. Zero interval/timeout use the
// defaults (5m probe interval, 10s probe timeout).
func NewMonitor(m *Manager, interval, timeout time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Monitor{
		manager:  m,
		interval: interval,
		timeout:  timeout,
		logger:   m.logger,
	}
}

// Run probes immediately, then on every tick until ctx is cancelled.
func (mon *Monitor) Run(ctx context.Context) {
	mon.ProbeAll(ctx)

	ticker := time.NewTicker(mon.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			mon.ProbeAll(ctx)
		}
	}
}

// ProbeAll checks every configured provider concurrently and waits for all
// probes to settle; an individual probe failure never aborts the batch.
func (mon *Monitor) ProbeAll(ctx context.Context) {
	if !mon.probing.TryLock() {
		mon.logger.Debug("probe round still running, skipping tick")
		return
	}
	defer mon.probing.Unlock()

	var wg sync.WaitGroup
	for _, p := range mon.manager.Providers() {
		if !p.Configured() {
			continue
		}
		wg.Add(1)
		go func(p providerPinger) {
			defer wg.Done()
			mon.probe(ctx, p)
		}(p)
	}
	wg.Wait()
}

type providerPinger interface {
	Name() string
	Ping(ctx context.Context) error
}

func (mon *Monitor) probe(ctx context.Context, p providerPinger) {
	probeCtx, cancel := context.WithTimeout(ctx, mon.timeout)
	defer cancel()

	start := time.Now()
	err := p.Ping(probeCtx)
	elapsed := time.Since(start)

	if err != nil {
		mon.manager.RecordFailure(p.Name(), err)
		mon.logger.Debug("health probe failed", "provider", p.Name(), "error", err)
		return
	}
	mon.manager.RecordSuccess(p.Name(), elapsed)
}
