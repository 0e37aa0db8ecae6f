// Package health implements the self-healing monitoring core: per-service
// probes guarded by circuit breakers, round orchestration, aggregate status,
// bounded history, and automated recovery.
package health

// Status represents the health classification of a service or the system.
type Status string

const (
	// StatusHealthy indicates the service responded successfully.
	StatusHealthy Status = "healthy"

	// StatusDegraded indicates the service is responding but impaired.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy indicates the service failed its most recent check.
	StatusUnhealthy Status = "unhealthy"

	// StatusUnknown indicates the service has never been checked.
	StatusUnknown Status = "unknown"
)

// severity orders statuses for aggregation: the worst status dominates.
func (s Status) severity() int {
	switch s {
	case StatusUnhealthy:
		return 3
	case StatusDegraded:
		return 2
	case StatusHealthy:
		return 1
	default:
		return 0
	}
}

// Worse returns the more severe of two statuses.
func (s Status) Worse(other Status) Status {
	if other.severity() > s.severity() {
		return other
	}
	return s
}

// Trend classifies the recent health trajectory of the system.
type Trend string

const (
	// TrendImproving means at least 8 of the last 10 rounds were healthy.
	TrendImproving Trend = "improving"

	// TrendStable means at least 5 of the last 10 rounds were healthy.
	TrendStable Trend = "stable"

	// TrendDegrading means fewer than 5 of the last 10 rounds were healthy.
	TrendDegrading Trend = "degrading"

	// TrendInsufficientData means fewer than 2 rounds have completed.
	TrendInsufficientData Trend = "insufficient_data"
)
