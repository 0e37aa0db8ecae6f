package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

// RecoveryAction attempts to restore one unhealthy service. Actions are
// pluggable and environment-specific; the default simply yields so the
// dependency gets time to recover before the verification re-probe.
type RecoveryAction func(ctx context.Context, name string) error

// reprobeRetries is how many extra verification probes AutoHeal makes after
// the first one, backing off between attempts.
const reprobeRetries = 2

// AutoHeal runs the recovery protocol once: a health round, a recovery
// action plus verification re-probe for every unhealthy service, and a
// final round. It is idempotent: on an already-healthy system it performs
// zero recovery actions and reports success with empty service lists.
// Recovery failures never abort healing of the remaining services.
func (m *Monitor) AutoHeal(ctx context.Context) HealResult {
	initial := m.RunRound(ctx)

	result := HealResult{
		ID:                   uuid.NewString(),
		Timestamp:            time.Now(),
		InitialStatus:        initial.Status,
		HealedServices:       []string{},
		StillFailingServices: []string{},
	}

	for _, svc := range m.serviceList() {
		rec, ok := initial.Services[svc.name]
		if !ok || rec.Status != StatusUnhealthy {
			continue
		}

		result.RecoveryAttempts++
		m.recordRecovery(fmt.Sprintf("attempting recovery of %s: %s", svc.name, rec.ErrorMessage))
		m.logger.Info().
			Str("service", svc.name).
			Str("error", rec.ErrorMessage).
			Msg("attempting service recovery")

		action := svc.recovery
		if action == nil {
			action = waitAndRetry
		}
		if err := action(ctx, svc.name); err != nil {
			m.recordRecovery(fmt.Sprintf("recovery action for %s failed: %v", svc.name, err))
			m.logger.Error().Err(err).
				Str("service", svc.name).
				Msg("recovery action failed")
		}

		if err := m.verifyRecovered(ctx, svc); err != nil {
			result.StillFailingServices = append(result.StillFailingServices, svc.name)
			m.recordRecovery(fmt.Sprintf("%s still unhealthy after recovery: %v", svc.name, err))
			m.logger.Warn().Err(err).
				Str("service", svc.name).
				Msg("service still unhealthy after recovery")
			continue
		}

		result.HealedServices = append(result.HealedServices, svc.name)
		m.recordRecovery(fmt.Sprintf("%s recovered", svc.name))
		m.logger.Info().Str("service", svc.name).Msg("service recovered")
	}

	final := m.RunRound(ctx)
	result.FinalStatus = final.Status
	result.Success = final.Status == StatusHealthy
	return result
}

// verifyRecovered waits for the recovery delay, then re-probes just this
// service with exponential backoff between attempts, updating the registry
// with each result.
func (m *Monitor) verifyRecovered(ctx context.Context, svc *service) error {
	timer := time.NewTimer(m.cfg.RecoveryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = m.cfg.RecoveryDelay
	bo.MaxInterval = 4 * m.cfg.RecoveryDelay
	bo.MaxElapsedTime = 0

	probe := func() error {
		rec := m.checkService(ctx, svc)
		m.registry.Update(rec)
		if rec.Status != StatusHealthy {
			if errors.Is(ctx.Err(), context.Canceled) {
				return backoff.Permanent(ctx.Err())
			}
			return errors.New(rec.ErrorMessage)
		}
		return nil
	}

	return backoff.Retry(probe,
		backoff.WithContext(backoff.WithMaxRetries(bo, reprobeRetries), ctx))
}

// waitAndRetry is the default recovery action. The monitored services have
// no in-process remediation hook, so recovery amounts to giving the
// dependency breathing room: the coordinator enforces the post-action delay
// before the verification re-probe.
func waitAndRetry(ctx context.Context, _ string) error {
	return ctx.Err()
}
