package authcore

import "sync/atomic"

// MetricID identifies one counter in the in-process metrics block.
type MetricID int

const (
	// MetricSignupSuccess counts created accounts.
	MetricSignupSuccess MetricID = iota
	// MetricSignupConflict counts duplicate-email rejections.
	MetricSignupConflict
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess
	// MetricLoginFailure counts rejected credential checks.
	MetricLoginFailure
	// MetricRefreshSuccess counts completed rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh attempts.
	MetricRefreshFailure
	// MetricRefreshReplayBlocked counts refresh attempts that failed the
	// exact-match check, i.e. replays of superseded pairs.
	MetricRefreshReplayBlocked
	// MetricValidateFailure counts guard-side rejections.
	MetricValidateFailure
	// MetricLogout counts logout calls, including no-op ones.
	MetricLogout
	// MetricPasswordResetSuccess counts completed password resets.
	MetricPasswordResetSuccess
	// MetricPasswordResetFailure counts rejected password resets.
	MetricPasswordResetFailure

	metricIDCount
)

// Metrics is a block of lock-free counters. A nil *Metrics is a valid no-op
// receiver so the core never branches on whether metrics are enabled.
type Metrics struct {
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics returns an empty metrics block.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id < 0 || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() map[MetricID]uint64 {
	out := make(map[MetricID]uint64, metricIDCount)
	if m == nil {
		return out
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		out[id] = m.counters[id].Load()
	}
	return out
}
