package fallback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sethvargo/go-retry"

	"github.com/karimzidan/pmdoc/internal/llm"
)

// ErrNoProvidersAvailable is returned when zero providers are configured or
// every candidate has been exhausted.
var ErrNoProvidersAvailable = errors.New("no providers available")

// Options tune the manager. Zero values fall back to the defaults below.
type Options struct {
	// FailureThreshold is the consecutive-failure count at which a provider
	// is marked unhealthy.
	FailureThreshold int
	// MaxRetries is the per-provider retry count inside ExecuteWithFallback.
	MaxRetries int
	// RetryBase is the base delay of the exponential backoff.
	RetryBase time.Duration
	Logger    *log.Logger
}

const (
	defaultFailureThreshold = 5
	defaultMaxRetries       = 2
	defaultRetryBase        = 500 * time.Millisecond
)

// Manager owns the provider fallback order and per-provider health. All
// health state is in memory and rebuilt on startup.
type Manager struct {
	mu        sync.Mutex
	order     []llm.Provider
	health    map[string]*Health
	active    string
	threshold int

	maxRetries int
	retryBase  time.Duration

	history *History
	logger  *log.Logger
}

// NewManager creates a manager over the given providers in fallback order.
func NewManager(providers []llm.Provider, opts Options) *Manager {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = defaultFailureThreshold
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = defaultRetryBase
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	m := &Manager{
		order:      providers,
		health:     make(map[string]*Health),
		threshold:  opts.FailureThreshold,
		maxRetries: opts.MaxRetries,
		retryBase:  opts.RetryBase,
		history:    NewHistory(),
		logger:     opts.Logger,
	}
	for _, p := range providers {
		m.health[p.Name()] = &Health{}
	}
	return m
}

// History returns the fallback-event buffer.
func (m *Manager) History() *History { return m.history }

// Providers returns the fallback order.
func (m *Manager) Providers() []llm.Provider { return m.order }

// BestProvider returns the provider to use for the next request. The active
// provider is kept while it stays usable (session stickiness); otherwise the
// fallback order is scanned for the first usable configured candidate. When
// none qualifies, the first configured provider is returned regardless of
// health as a last resort. Errors only when zero providers are configured.
func (m *Manager) BestProvider() (llm.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bestProviderLocked()
}

func (m *Manager) bestProviderLocked() (llm.Provider, error) {
	if len(m.order) == 0 {
		return nil, ErrNoProvidersAvailable
	}

	if m.active != "" {
		for _, p := range m.order {
			if p.Name() == m.active && p.Configured() && m.health[p.Name()].usable() {
				return p, nil
			}
		}
	}

	for _, p := range m.order {
		if p.Configured() && m.health[p.Name()].usable() {
			m.active = p.Name()
			return p, nil
		}
	}

	// Last resort: every configured provider is unhealthy. Hand back the
	// first configured one anyway rather than failing outright.
	for _, p := range m.order {
		if p.Configured() {
			m.logger.Warn("all providers unhealthy, using first configured as last resort", "provider", p.Name())
			m.active = p.Name()
			return p, nil
		}
	}

	p := m.order[0]
	m.logger.Warn("no provider has credentials, using first in fallback order", "provider", p.Name())
	m.active = p.Name()
	return p, nil
}

// IsHealthy reports whether the named provider may currently be selected.
func (m *Manager) IsHealthy(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.health[name]
	return ok && h.usable()
}

// RecordSuccess folds a successful call outcome into the provider's health:
// the failure counter resets and an unhealthy provider recovers.
func (m *Manager) RecordSuccess(name string, responseTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordSuccessLocked(name, responseTime)
}

func (m *Manager) recordSuccessLocked(name string, responseTime time.Duration) {
	h, ok := m.health[name]
	if !ok {
		return
	}
	h.State = StateHealthy
	h.ConsecutiveFailures = 0
	h.TotalCalls++
	h.SuccessfulCalls++
	h.LastError = ""
	h.LastChecked = time.Now()
	h.blendResponseTime(responseTime)
}

// RecordFailure folds a failed call outcome into the provider's health,
// marking it unhealthy once the consecutive-failure threshold is crossed.
func (m *Manager) RecordFailure(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordFailureLocked(name, err)
}

func (m *Manager) recordFailureLocked(name string, err error) {
	h, ok := m.health[name]
	if !ok {
		return
	}
	h.ConsecutiveFailures++
	h.TotalCalls++
	h.FailedCalls++
	if err != nil {
		h.LastError = err.Error()
	}
	h.LastChecked = time.Now()
	if h.ConsecutiveFailures >= m.threshold {
		if h.State != StateUnhealthy {
			m.logger.Warn("provider marked unhealthy",
				"provider", name, "consecutive_failures", h.ConsecutiveFailures)
		}
		h.State = StateUnhealthy
	}
}

// HandleFailure records a failure against the provider and, if a usable
// configured candidate exists later in the fallback order (wrapping around,
// excluding the failed provider), switches the active provider to it. The
// switch is recorded as a fallback event either way.
func (m *Manager) HandleFailure(name string, cause error) (llm.Provider, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.recordFailureLocked(name, cause)

	start := 0
	for i, p := range m.order {
		if p.Name() == name {
			start = i + 1
			break
		}
	}

	reason := ""
	if cause != nil {
		reason = cause.Error()
	}

	for i := 0; i < len(m.order); i++ {
		p := m.order[(start+i)%len(m.order)]
		if p.Name() == name {
			continue
		}
		if p.Configured() && m.health[p.Name()].usable() {
			m.active = p.Name()
			m.history.Push(Event{
				Timestamp:    time.Now(),
				FromProvider: name,
				ToProvider:   p.Name(),
				Reason:       reason,
				Success:      true,
			})
			m.logger.Info("switched provider", "from", name, "to", p.Name())
			return p, true
		}
	}

	m.history.Push(Event{
		Timestamp:    time.Now(),
		FromProvider: name,
		Reason:       reason,
		Success:      false,
	})
	return nil, false
}

// Operation is one unit of provider-bound work executed under fallback.
type Operation func(ctx context.Context, p llm.Provider) (*llm.CompletionResponse, error)

// ExecuteWithFallback walks the fallback order, skipping unconfigured and
// unhealthy providers, and runs op against each viable candidate wrapped in
// exponential-backoff retries. The first success wins; no further providers
// are tried. When every candidate fails the aggregate error carries the
// last underlying failure.
func (m *Manager) ExecuteWithFallback(ctx context.Context, opName string, op Operation) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	candidates := make([]llm.Provider, 0, len(m.order))
	for _, p := range m.order {
		if p.Configured() && m.health[p.Name()].usable() {
			candidates = append(candidates, p)
		}
	}
	m.mu.Unlock()

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", opName, ErrNoProvidersAvailable)
	}

	var lastErr error
	for i, p := range candidates {
		start := time.Now()
		resp, err := m.executeWithRetry(ctx, p, op)
		if err == nil {
			m.mu.Lock()
			m.recordSuccessLocked(p.Name(), time.Since(start))
			m.active = p.Name()
			m.mu.Unlock()
			return resp, nil
		}

		lastErr = err
		m.RecordFailure(p.Name(), err)
		m.logger.Warn("provider failed, falling through",
			"operation", opName, "provider", p.Name(), "error", err)

		if i+1 < len(candidates) {
			m.history.Push(Event{
				Timestamp:    time.Now(),
				FromProvider: p.Name(),
				ToProvider:   candidates[i+1].Name(),
				Reason:       err.Error(),
				Success:      true,
			})
		} else {
			m.history.Push(Event{
				Timestamp:    time.Now(),
				FromProvider: p.Name(),
				Reason:       err.Error(),
				Success:      false,
			})
		}

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%s: all providers failed: %w", opName, lastErr)
}

// executeWithRetry runs op against a single provider under the retry
// collaborator. The final error is always surfaced, never swallowed.
func (m *Manager) executeWithRetry(ctx context.Context, p llm.Provider, op Operation) (*llm.CompletionResponse, error) {
	var resp *llm.CompletionResponse
	backoff := retry.WithMaxRetries(uint64(m.maxRetries), retry.NewExponential(m.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var opErr error
		resp, opErr = op(ctx, p)
		if opErr != nil {
			return retry.RetryableError(opErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// ActiveProvider returns the name of the currently active provider, if any.
func (m *Manager) ActiveProvider() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Status returns a health snapshot for every provider in fallback order.
func (m *Manager) Status() []ProviderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ProviderStatus, 0, len(m.order))
	for _, p := range m.order {
		h := m.health[p.Name()]
		out = append(out, ProviderStatus{
			Name:                p.Name(),
			State:               h.State.String(),
			Configured:          p.Configured(),
			Active:              p.Name() == m.active,
			ConsecutiveFailures: h.ConsecutiveFailures,
			AvgResponseMs:       h.AvgResponseTime.Milliseconds(),
			SuccessRate:         h.SuccessRate(),
			TotalCalls:          h.TotalCalls,
			LastError:           h.LastError,
			LastChecked:         h.LastChecked,
		})
	}
	return out
}
