package fallback

import "time"

// State is the liveness state of a provider.
type State int

const (
	// StateUnknown means the provider has not been probed or called yet.
	// Unknown providers are eligible for selection: they become Healthy on
	// the first success or Unhealthy after enough consecutive failures.
	StateUnknown State = iota
	StateHealthy
	StateUnhealthy
)

func (s State) String() string {
	switch s {
	case StateHealthy:
		return "healthy"
	case StateUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Health is the derived liveness/performance record for one provider.
// It is volatile: rebuilt from StateUnknown on every process start.
type Health struct {
	State               State
	ConsecutiveFailures int
	AvgResponseTime     time.Duration
	TotalCalls          int64
	SuccessfulCalls     int64
	FailedCalls         int64
	LastError           string
	LastChecked         time.Time
}

// usable reports whether the provider may be selected. Unknown counts as
// usable so a fresh process can serve before the first probe completes.
func (h *Health) usable() bool {
	return h.State != StateUnhealthy
}

// SuccessRate returns the rolling fraction of successful calls, or 1 when
// nothing has been recorded yet.
func (h *Health) SuccessRate() float64 {
	if h.TotalCalls == 0 {
		return 1
	}
	return float64(h.SuccessfulCalls) / float64(h.TotalCalls)
}

// blendResponseTime folds a new observation into the rolling average with a
// 50/50 exponential blend.
func (h *Health) blendResponseTime(d time.Duration) {
	if h.AvgResponseTime == 0 {
		h.AvgResponseTime = d
		return
	}
	h.AvgResponseTime = (h.AvgResponseTime + d) / 2
}

// ProviderStatus is the JSON snapshot of one provider's health, served by
// the admin API and the providers CLI command.
type ProviderStatus struct {
	Name                string    `json:"name"`
	State               string    `json:"state"`
	Configured          bool      `json:"configured"`
	Active              bool      `json:"active"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	AvgResponseMs       int64     `json:"avg_response_ms"`
	SuccessRate         float64   `json:"success_rate"`
	TotalCalls          int64     `json:"total_calls"`
	LastError           string    `json:"last_error,omitempty"`
	LastChecked         time.Time `json:"last_checked"`
}
