package passedit

import "sync/atomic"

// MetricID identifies one in-process counter.
type MetricID uint16

const (
	// MetricTokenIssued counts edit tokens issued for form renders.
	MetricTokenIssued MetricID = iota
	// MetricEditSuccess counts completed credential updates.
	MetricEditSuccess
	// MetricEditUnauthorized counts requests refused on capability.
	MetricEditUnauthorized
	// MetricSessionForgery counts submissions with a bad edit token.
	MetricSessionForgery
	// MetricPasswordMismatch counts submissions whose password confirmation differed.
	MetricPasswordMismatch
	// MetricInvalidEmail counts submissions with a malformed email.
	MetricInvalidEmail
	// MetricUnknownTarget counts submissions naming no registered account.
	MetricUnknownTarget
	// MetricNothingToUpdate counts submissions with every field blank.
	MetricNothingToUpdate
	// MetricStoreFailure counts directory writes that failed after checks passed.
	MetricStoreFailure
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of atomic counters. A disabled Metrics drops
// every increment.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter into a map.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
