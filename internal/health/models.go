package health

import "time"

// ServiceHealth is the latest known health record for one monitored service.
type ServiceHealth struct {
	// Name is the stable service identifier.
	Name string `json:"name"`

	// Status is the current classification.
	Status Status `json:"status"`

	// ResponseTimeMillis is the duration of the most recent probe, set on
	// both success and failure. Nil until the first probe completes.
	ResponseTimeMillis *float64 `json:"responseTimeMs,omitempty"`

	// ErrorMessage describes the most recent failure; empty after a success.
	ErrorMessage string `json:"errorMessage,omitempty"`

	// LastCheck is the time of the most recent probe.
	LastCheck time.Time `json:"lastCheck"`

	// LastSuccess is the time of the most recent successful probe.
	// Nil until the first success.
	LastSuccess *time.Time `json:"lastSuccess,omitempty"`

	// ConsecutiveFailures counts failed probes since the last success.
	ConsecutiveFailures int `json:"consecutiveFailures"`
}

// clone returns a deep copy so published records never alias live state.
func (h ServiceHealth) clone() ServiceHealth {
	c := h
	if h.ResponseTimeMillis != nil {
		v := *h.ResponseTimeMillis
		c.ResponseTimeMillis = &v
	}
	if h.LastSuccess != nil {
		t := *h.LastSuccess
		c.LastSuccess = &t
	}
	return c
}

// Metrics summarizes one monitoring round.
type Metrics struct {
	HealthyCount   int `json:"healthyCount"`
	DegradedCount  int `json:"degradedCount"`
	UnhealthyCount int `json:"unhealthyCount"`
	UnknownCount   int `json:"unknownCount"`

	// AvgResponseTimeMillis averages over services that reported a probe
	// duration; zero when no service has reported one.
	AvgResponseTimeMillis float64 `json:"avgResponseTimeMs"`

	// OpenBreakers counts circuit breakers currently in the open state.
	OpenBreakers int `json:"openBreakers"`
}

// SystemHealth is an immutable snapshot of the whole system, produced once
// per monitoring round. Later mutation of the live registry never alters a
// previously emitted snapshot.
type SystemHealth struct {
	ID        string                   `json:"id"`
	Status    Status                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]ServiceHealth `json:"services"`
	Metrics   Metrics                  `json:"metrics"`

	// UptimeSeconds is the monitor's process uptime at snapshot time.
	UptimeSeconds float64 `json:"uptimeSeconds"`

	// RecoveryActions is a copy of the append-only recovery event log
	// recorded up to this point.
	RecoveryActions []string `json:"recoveryActions"`
}

// HealResult reports the outcome of one auto-heal pass.
type HealResult struct {
	ID                   string    `json:"id"`
	Timestamp            time.Time `json:"timestamp"`
	InitialStatus        Status    `json:"initialStatus"`
	FinalStatus          Status    `json:"finalStatus"`
	HealedServices       []string  `json:"healedServices"`
	StillFailingServices []string  `json:"stillFailingServices"`
	RecoveryAttempts     int       `json:"recoveryAttempts"`
	Success              bool      `json:"success"`
}

// Summary is the read-only view served to status endpoints: the latest
// snapshot (if any), the derived trend, and recent recovery events.
type Summary struct {
	Status           Status                   `json:"status"`
	Timestamp        *time.Time               `json:"timestamp,omitempty"`
	Services         map[string]ServiceHealth `json:"services,omitempty"`
	Metrics          *Metrics                 `json:"metrics,omitempty"`
	UptimeSeconds    float64                  `json:"uptimeSeconds"`
	Trend            Trend                    `json:"trend"`
	RecentRecoveries []string                 `json:"recentRecoveries"`
}
