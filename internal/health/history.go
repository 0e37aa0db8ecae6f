package health

import "sync"

// DefaultHistorySize is the number of snapshots retained for trend analysis.
const DefaultHistorySize = 100

// trendWindow is the number of recent snapshots the trend is derived from.
const trendWindow = 10

// History is a bounded FIFO of SystemHealth snapshots. The oldest snapshot
// is evicted when capacity is exceeded.
type History struct {
	mu        sync.RWMutex
	snapshots []SystemHealth
	capacity  int
}

// NewHistory creates a history buffer with the given capacity. A capacity
// of zero or less falls back to DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{capacity: capacity}
}

// Append adds a snapshot, evicting the oldest when full.
func (h *History) Append(s SystemHealth) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.snapshots = append(h.snapshots, s)
	if len(h.snapshots) > h.capacity {
		h.snapshots = h.snapshots[len(h.snapshots)-h.capacity:]
	}
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.snapshots)
}

// Recent returns up to n of the most recent snapshots, oldest first.
func (h *History) Recent(n int) []SystemHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n > len(h.snapshots) {
		n = len(h.snapshots)
	}
	out := make([]SystemHealth, n)
	copy(out, h.snapshots[len(h.snapshots)-n:])
	return out
}

// Trend derives the health trajectory from the last 10 snapshots: 8 or more
// healthy is improving, 5 or more is stable, fewer is degrading. With fewer
// than 2 snapshots there is not enough data to say.
func (h *History) Trend() Trend {
	recent := h.Recent(trendWindow)
	if len(recent) < 2 {
		return TrendInsufficientData
	}

	healthy := 0
	for _, s := range recent {
		if s.Status == StatusHealthy {
			healthy++
		}
	}

	switch {
	case healthy >= 8:
		return TrendImproving
	case healthy >= 5:
		return TrendStable
	default:
		return TrendDegrading
	}
}
