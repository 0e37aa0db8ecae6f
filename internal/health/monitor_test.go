package health_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmransom56/enhanced-network-api-corporate-sub001/internal/health"
)

func newTestMonitor(t *testing.T) *health.Monitor {
	t.Helper()
	return health.NewMonitor(health.MonitorConfig{
		ProbeTimeout:     time.Second,
		CheckInterval:    time.Second,
		FailureThreshold: 3,
		RecoveryTimeout:  time.Minute,
		RecoveryDelay:    5 * time.Millisecond,
		Logger:           zerolog.Nop(),
	})
}

func healthyProbe(latency time.Duration) health.CheckFunc {
	return func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(latency):
			return nil
		}
	}
}

func TestMonitor_AllHealthyRound(t *testing.T) {
	monitor := newTestMonitor(t)
	for _, name := range []string{"api", "bridge", "topology-raw"} {
		monitor.Register(health.ServiceConfig{Name: name, Check: healthyProbe(50 * time.Millisecond)})
	}

	snapshot := monitor.RunRound(context.Background())

	assert.Equal(t, health.StatusHealthy, snapshot.Status)
	assert.Equal(t, 3, snapshot.Metrics.HealthyCount)
	assert.Zero(t, snapshot.Metrics.UnhealthyCount)
	assert.Zero(t, snapshot.Metrics.OpenBreakers)
	assert.InDelta(t, 50, snapshot.Metrics.AvgResponseTimeMillis, 40)
	assert.NotEmpty(t, snapshot.ID)
	assert.Greater(t, snapshot.UptimeSeconds, 0.0)

	for _, rec := range snapshot.Services {
		assert.Equal(t, health.StatusHealthy, rec.Status)
		assert.Zero(t, rec.ConsecutiveFailures)
		require.NotNil(t, rec.LastSuccess)
		require.NotNil(t, rec.ResponseTimeMillis)
	}
}

func TestMonitor_ProbesRunConcurrently(t *testing.T) {
	monitor := newTestMonitor(t)
	for _, name := range []string{"a", "b", "c", "d"} {
		monitor.Register(health.ServiceConfig{Name: name, Check: healthyProbe(60 * time.Millisecond)})
	}

	start := time.Now()
	monitor.RunRound(context.Background())
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 200*time.Millisecond,
		"four 60ms probes must fan out, not run sequentially")
}

func TestMonitor_UnhealthyDominatesAggregate(t *testing.T) {
	monitor := newTestMonitor(t)
	monitor.Register(health.ServiceConfig{Name: "good-1", Check: healthyProbe(0)})
	monitor.Register(health.ServiceConfig{Name: "good-2", Check: healthyProbe(0)})
	monitor.Register(health.ServiceConfig{Name: "bad", Check: func(context.Context) error {
		return errors.New("boom")
	}})

	snapshot := monitor.RunRound(context.Background())

	assert.Equal(t, health.StatusUnhealthy, snapshot.Status)
	assert.Equal(t, 2, snapshot.Metrics.HealthyCount)
	assert.Equal(t, 1, snapshot.Metrics.UnhealthyCount)

	bad := snapshot.Services["bad"]
	assert.Equal(t, health.StatusUnhealthy, bad.Status)
	assert.Equal(t, 1, bad.ConsecutiveFailures)
	assert.Equal(t, "boom", bad.ErrorMessage)
	assert.Nil(t, bad.LastSuccess)
	require.NotNil(t, bad.ResponseTimeMillis, "failures report latency too")
}

func TestMonitor_EmptyRoundIsUnknown(t *testing.T) {
	monitor := newTestMonitor(t)

	snapshot := monitor.RunRound(context.Background())
	assert.Equal(t, health.StatusUnknown, snapshot.Status)
	assert.Empty(t, snapshot.Services)
}

func TestMonitor_PanickingProbeIsIsolated(t *testing.T) {
	monitor := newTestMonitor(t)
	monitor.Register(health.ServiceConfig{Name: "panicky", Check: func(context.Context) error {
		panic("probe exploded")
	}})
	monitor.Register(health.ServiceConfig{Name: "steady", Check: healthyProbe(0)})

	snapshot := monitor.RunRound(context.Background())

	panicky := snapshot.Services["panicky"]
	assert.Equal(t, health.StatusUnhealthy, panicky.Status)
	assert.Contains(t, panicky.ErrorMessage, "probe panic")

	steady := snapshot.Services["steady"]
	assert.Equal(t, health.StatusHealthy, steady.Status)
	assert.Zero(t, steady.ConsecutiveFailures)
	assert.False(t, steady.LastCheck.IsZero())
}

func TestMonitor_ConsecutiveFailuresAccumulate(t *testing.T) {
	monitor := newTestMonitor(t)
	monitor.Register(health.ServiceConfig{Name: "flaky", Check: func(context.Context) error {
		return errors.New("still down")
	}})

	monitor.RunRound(context.Background())
	snapshot := monitor.RunRound(context.Background())

	assert.Equal(t, 2, snapshot.Services["flaky"].ConsecutiveFailures)
}

func TestMonitor_BreakerShortCircuitsAfterThreshold(t *testing.T) {
	monitor := newTestMonitor(t)

	var calls atomic.Int32
	monitor.Register(health.ServiceConfig{
		Name:     "bridge",
		Critical: true,
		Check: func(context.Context) error {
			calls.Add(1)
			return errors.New("bridge down")
		},
	})

	for i := 0; i < 3; i++ {
		monitor.RunRound(context.Background())
	}
	require.Equal(t, int32(3), calls.Load())

	// Fourth round: the breaker is open, the probe must not run.
	snapshot := monitor.RunRound(context.Background())
	assert.Equal(t, int32(3), calls.Load(), "open breaker must short-circuit the probe")

	bridge := snapshot.Services["bridge"]
	assert.Equal(t, health.StatusUnhealthy, bridge.Status)
	assert.Contains(t, bridge.ErrorMessage, "circuit breaker open")
	assert.Equal(t, 4, bridge.ConsecutiveFailures)
	assert.Equal(t, 1, snapshot.Metrics.OpenBreakers)
}

func TestMonitor_SnapshotImmutable(t *testing.T) {
	monitor := newTestMonitor(t)
	monitor.Register(health.ServiceConfig{Name: "api", Check: healthyProbe(0)})

	snapshot := monitor.RunRound(context.Background())
	require.Equal(t, health.StatusHealthy, snapshot.Services["api"].Status)

	monitor.Registry().Update(health.ServiceHealth{
		Name:                "api",
		Status:              health.StatusUnhealthy,
		ErrorMessage:        "mutated later",
		ConsecutiveFailures: 7,
	})

	assert.Equal(t, health.StatusHealthy, snapshot.Services["api"].Status,
		"registry mutation must not alter an emitted snapshot")
	assert.Zero(t, snapshot.Services["api"].ConsecutiveFailures)
}

func TestMonitor_ProbeTimeoutIsFailure(t *testing.T) {
	monitor := health.NewMonitor(health.MonitorConfig{
		ProbeTimeout:  30 * time.Millisecond,
		CheckInterval: time.Second,
		Logger:        zerolog.Nop(),
	})
	monitor.Register(health.ServiceConfig{Name: "slow", Check: healthyProbe(time.Second)})

	snapshot := monitor.RunRound(context.Background())

	slow := snapshot.Services["slow"]
	assert.Equal(t, health.StatusUnhealthy, slow.Status)
	assert.Equal(t, 1, slow.ConsecutiveFailures)
}

func TestMonitor_SummaryBeforeFirstRound(t *testing.T) {
	monitor := newTestMonitor(t)
	monitor.Register(health.ServiceConfig{Name: "api", Check: healthyProbe(0)})

	summary := monitor.HealthSummary()
	assert.Equal(t, health.StatusUnknown, summary.Status)
	assert.Nil(t, summary.Timestamp)
	assert.Equal(t, health.TrendInsufficientData, summary.Trend)
	assert.Empty(t, summary.RecentRecoveries)
}

func TestMonitor_SummaryAfterRounds(t *testing.T) {
	monitor := newTestMonitor(t)
	monitor.Register(health.ServiceConfig{Name: "api", Check: healthyProbe(0)})

	for i := 0; i < 3; i++ {
		monitor.RunRound(context.Background())
	}

	summary := monitor.HealthSummary()
	assert.Equal(t, health.StatusHealthy, summary.Status)
	require.NotNil(t, summary.Timestamp)
	require.NotNil(t, summary.Metrics)
	assert.Equal(t, 1, summary.Metrics.HealthyCount)
	assert.Equal(t, 3, monitor.History().Len())
}
