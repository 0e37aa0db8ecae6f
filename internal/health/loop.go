package health

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// StartMonitoring runs the background monitoring loop: one round per
// CheckInterval, with an auto-heal pass whenever the aggregate status is
// degraded or unhealthy. A bad round never terminates the loop; the only
// error return paths are misconfiguration at startup and context
// cancellation (which returns nil).
func (m *Monitor) StartMonitoring(ctx context.Context) error {
	if m.cfg.CheckInterval <= 0 {
		return fmt.Errorf("invalid check interval %s: must be positive", m.cfg.CheckInterval)
	}

	m.logger.Info().
		Dur("interval", m.cfg.CheckInterval).
		Int("services", len(m.serviceList())).
		Msg("health monitoring started")

	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		m.runGuarded(ctx)

		select {
		case <-ctx.Done():
			m.logger.Info().Msg("health monitoring stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// runGuarded executes one loop iteration, converting any panic into a
// logged error so the loop keeps its schedule.
func (m *Monitor) runGuarded(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error().
				Interface("error", r).
				Str("stack", string(debug.Stack())).
				Msg("monitoring round panicked, continuing")
		}
	}()

	snapshot := m.RunRound(ctx)
	m.logger.Info().
		Str("status", string(snapshot.Status)).
		Int("healthy", snapshot.Metrics.HealthyCount).
		Int("total", len(snapshot.Services)).
		Msg("health check round")

	if snapshot.Status == StatusDegraded || snapshot.Status == StatusUnhealthy {
		result := m.AutoHeal(ctx)
		m.logger.Info().
			Str("initial_status", string(result.InitialStatus)).
			Str("final_status", string(result.FinalStatus)).
			Strs("healed", result.HealedServices).
			Strs("still_failing", result.StillFailingServices).
			Bool("success", result.Success).
			Msg("auto-heal completed")
	}
}
