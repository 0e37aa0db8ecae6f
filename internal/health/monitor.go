package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// MonitorConfig holds configuration for the health monitor.
type MonitorConfig struct {
	// ProbeTimeout bounds each individual probe call. Default: 30 seconds
	ProbeTimeout time.Duration

	// CheckInterval is the period of the background monitoring loop.
	// Default: 30 seconds
	CheckInterval time.Duration

	// FailureThreshold is the consecutive-failure count that trips a
	// critical service's breaker. Default: 3
	FailureThreshold uint32

	// RecoveryTimeout is how long a tripped breaker stays open before a
	// half-open trial. Default: 60 seconds
	RecoveryTimeout time.Duration

	// RecoveryDelay is the pause between a recovery action and the
	// verification re-probe. Default: 1 second
	RecoveryDelay time.Duration

	// HistorySize bounds the snapshot history. Default: 100
	HistorySize int

	// Logger is used for round and recovery logging.
	Logger zerolog.Logger

	// Meter records round/probe metrics. If nil, metrics are no-ops.
	Meter metric.Meter
}

func (c *MonitorConfig) applyDefaults() {
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 30 * time.Second
	}
	if c.CheckInterval == 0 {
		c.CheckInterval = 30 * time.Second
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = 3
	}
	if c.RecoveryTimeout <= 0 {
		c.RecoveryTimeout = 60 * time.Second
	}
	if c.RecoveryDelay <= 0 {
		c.RecoveryDelay = time.Second
	}
	if c.HistorySize <= 0 {
		c.HistorySize = DefaultHistorySize
	}
	if c.Meter == nil {
		c.Meter = noop.NewMeterProvider().Meter("health")
	}
}

// ServiceConfig registers one monitored service with the monitor.
type ServiceConfig struct {
	// Name is the unique service identifier.
	Name string

	// Check is the probe invoked each round.
	Check CheckFunc

	// Critical wraps the probe in a circuit breaker.
	Critical bool

	// Recovery overrides the monitor's default recovery action.
	Recovery RecoveryAction
}

type service struct {
	name     string
	check    CheckFunc
	breaker  *Breaker
	recovery RecoveryAction
}

// Monitor orchestrates health rounds across all registered services,
// maintains the registry and history, and drives automated recovery.
// Construct once at startup; safe for concurrent readers.
type Monitor struct {
	cfg      MonitorConfig
	logger   zerolog.Logger
	registry *Registry
	history  *History

	mu       sync.RWMutex
	services []*service
	latest   *SystemHealth

	recMu       sync.Mutex
	recoveryLog []string

	startedAt time.Time

	roundsTotal   metric.Int64Counter
	probeFailures metric.Int64Counter
	probeDuration metric.Float64Histogram
}

// NewMonitor creates a health monitor. Services are added with Register
// before the first round.
func NewMonitor(cfg MonitorConfig) *Monitor {
	cfg.applyDefaults()

	m := &Monitor{
		cfg:       cfg,
		logger:    cfg.Logger,
		registry:  NewRegistry(),
		history:   NewHistory(cfg.HistorySize),
		startedAt: time.Now(),
	}

	m.roundsTotal, _ = cfg.Meter.Int64Counter("health.rounds.total",
		metric.WithDescription("Completed monitoring rounds"))
	m.probeFailures, _ = cfg.Meter.Int64Counter("health.probe.failures",
		metric.WithDescription("Failed probe calls by service"))
	m.probeDuration, _ = cfg.Meter.Float64Histogram("health.probe.duration",
		metric.WithDescription("Probe duration by service"),
		metric.WithUnit("ms"))

	return m
}

// Register adds a service to the monitoring set. Critical services get
// their own circuit breaker; breakers are independent so one stuck service
// never blocks checks of others.
func (m *Monitor) Register(sc ServiceConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	svc := &service{
		name:     sc.Name,
		check:    sc.Check,
		recovery: sc.Recovery,
	}
	if sc.Critical {
		svc.breaker = NewBreaker(BreakerConfig{
			Name:             sc.Name,
			FailureThreshold: m.cfg.FailureThreshold,
			RecoveryTimeout:  m.cfg.RecoveryTimeout,
		}, m.logger)
	}
	m.services = append(m.services, svc)
}

// RunRound executes one pass over all registered services: probes fan out
// concurrently, results join at a barrier, the registry is updated, and an
// immutable SystemHealth snapshot is produced and appended to history.
// Individual probe failures never abort the round.
func (m *Monitor) RunRound(ctx context.Context) SystemHealth {
	services := m.serviceList()

	results := make(chan ServiceHealth, len(services))
	var wg sync.WaitGroup
	for _, svc := range services {
		wg.Add(1)
		go func(svc *service) {
			defer wg.Done()
			results <- m.checkService(ctx, svc)
		}(svc)
	}
	wg.Wait()
	close(results)

	for rec := range results {
		m.registry.Update(rec)
	}

	snapshot := m.snapshot()
	m.history.Append(snapshot)

	m.mu.Lock()
	m.latest = &snapshot
	m.mu.Unlock()

	m.roundsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", string(snapshot.Status))))

	m.logger.Debug().
		Str("status", string(snapshot.Status)).
		Int("healthy", snapshot.Metrics.HealthyCount).
		Int("unhealthy", snapshot.Metrics.UnhealthyCount).
		Int("open_breakers", snapshot.Metrics.OpenBreakers).
		Msg("monitoring round completed")

	return snapshot
}

// checkService probes one service and produces its updated record. Panics
// inside a probe are converted to failures so one misbehaving probe cannot
// take down the round.
func (m *Monitor) checkService(ctx context.Context, svc *service) ServiceHealth {
	prev, _ := m.registry.Get(svc.name)

	cctx, cancel := context.WithTimeout(ctx, m.cfg.ProbeTimeout)
	defer cancel()

	start := time.Now()
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("probe panic: %v", r)
			}
		}()
		if svc.breaker != nil {
			err = svc.breaker.Call(cctx, svc.check)
		} else {
			err = svc.check(cctx)
		}
	}()

	elapsed := float64(time.Since(start).Microseconds()) / 1000.0
	now := time.Now()

	m.probeDuration.Record(ctx, elapsed,
		metric.WithAttributes(attribute.String("service", svc.name)))

	rec := ServiceHealth{
		Name:               svc.name,
		LastCheck:          now,
		ResponseTimeMillis: &elapsed,
		LastSuccess:        prev.LastSuccess,
	}

	if err != nil {
		rec.Status = StatusUnhealthy
		rec.ConsecutiveFailures = prev.ConsecutiveFailures + 1
		rec.ErrorMessage = err.Error()
		m.probeFailures.Add(ctx, 1,
			metric.WithAttributes(attribute.String("service", svc.name)))
		return rec
	}

	rec.Status = StatusHealthy
	rec.ConsecutiveFailures = 0
	success := now
	rec.LastSuccess = &success
	return rec
}

// snapshot assembles an immutable SystemHealth from the current registry.
func (m *Monitor) snapshot() SystemHealth {
	services := m.registry.Snapshot()

	var metrics Metrics
	status := StatusUnknown
	var totalMillis float64
	var reported int

	for _, rec := range services {
		switch rec.Status {
		case StatusHealthy:
			metrics.HealthyCount++
		case StatusDegraded:
			metrics.DegradedCount++
		case StatusUnhealthy:
			metrics.UnhealthyCount++
		default:
			metrics.UnknownCount++
		}
		status = status.Worse(rec.Status)
		if rec.ResponseTimeMillis != nil {
			totalMillis += *rec.ResponseTimeMillis
			reported++
		}
	}
	if reported > 0 {
		metrics.AvgResponseTimeMillis = totalMillis / float64(reported)
	}
	if len(services) == 0 {
		status = StatusUnknown
	} else if status == StatusUnknown {
		// Registered services with no failures dominate to healthy.
		status = StatusHealthy
	}

	for _, svc := range m.serviceList() {
		if svc.breaker != nil && svc.breaker.State() == gobreaker.StateOpen {
			metrics.OpenBreakers++
		}
	}

	return SystemHealth{
		ID:              uuid.NewString(),
		Status:          status,
		Timestamp:       time.Now(),
		Services:        services,
		Metrics:         metrics,
		UptimeSeconds:   time.Since(m.startedAt).Seconds(),
		RecoveryActions: m.recoveryEvents(0),
	}
}

// Latest returns the most recent snapshot, or found=false before the first
// round.
func (m *Monitor) Latest() (SystemHealth, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.latest == nil {
		return SystemHealth{Status: StatusUnknown}, false
	}
	return *m.latest, true
}

// History exposes the snapshot history for trend derivation and reporting.
func (m *Monitor) History() *History {
	return m.history
}

// Registry exposes the live service registry. External callers must treat
// returned records as read-only copies, which Get and Snapshot guarantee.
func (m *Monitor) Registry() *Registry {
	return m.registry
}

// HealthSummary returns the latest snapshot (status unknown before the
// first round), the derived trend, and the last 10 recovery events.
func (m *Monitor) HealthSummary() Summary {
	summary := Summary{
		Status:           StatusUnknown,
		Trend:            m.history.Trend(),
		UptimeSeconds:    time.Since(m.startedAt).Seconds(),
		RecentRecoveries: m.recoveryEvents(10),
	}

	if latest, ok := m.Latest(); ok {
		summary.Status = latest.Status
		ts := latest.Timestamp
		summary.Timestamp = &ts
		summary.Services = latest.Services
		metrics := latest.Metrics
		summary.Metrics = &metrics
	}
	return summary
}

// recordRecovery appends one line to the recovery event log.
func (m *Monitor) recordRecovery(event string) {
	m.recMu.Lock()
	defer m.recMu.Unlock()
	m.recoveryLog = append(m.recoveryLog, fmt.Sprintf("%s %s",
		time.Now().UTC().Format(time.RFC3339), event))
}

// recoveryEvents returns a copy of the recovery log. n limits the result to
// the most recent n entries; n <= 0 returns all.
func (m *Monitor) recoveryEvents(n int) []string {
	m.recMu.Lock()
	defer m.recMu.Unlock()

	events := m.recoveryLog
	if n > 0 && len(events) > n {
		events = events[len(events)-n:]
	}
	out := make([]string, len(events))
	copy(out, events)
	return out
}

func (m *Monitor) serviceList() []*service {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*service, len(m.services))
	copy(out, m.services)
	return out
}
