package health

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when a breaker short-circuits a probe call.
// Operators can tell "dependency still failing, not yet retried" apart from
// "just failed now" by this message.
var ErrCircuitOpen = errors.New("circuit breaker open")

// CheckFunc performs a bounded-time check of one dependency. It must honor
// the context deadline and return nil on success.
type CheckFunc func(ctx context.Context) error

// BreakerConfig holds per-breaker configuration.
type BreakerConfig struct {
	// Name identifies the breaker for logging.
	Name string

	// FailureThreshold is the number of consecutive failures that trips the
	// breaker open. Default: 3
	FailureThreshold uint32

	// RecoveryTimeout is how long the breaker stays open before allowing a
	// single half-open trial call. Default: 60 seconds
	RecoveryTimeout time.Duration
}

// Breaker wraps a probe call with circuit-breaker protection. Closed calls
// pass through; after FailureThreshold consecutive failures the breaker
// opens and rejects calls until RecoveryTimeout elapses, then admits exactly
// one half-open trial. A successful trial closes the breaker and resets the
// failure count; a failed trial reopens it.
type Breaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

// NewBreaker creates a breaker for one critical service. State transitions
// are logged through the given logger.
func NewBreaker(cfg BreakerConfig, log zerolog.Logger) *Breaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.RecoveryTimeout == 0 {
		cfg.RecoveryTimeout = 60 * time.Second
	}

	settings := gobreaker.Settings{
		Name: cfg.Name,
		// Exactly one trial call in half-open.
		MaxRequests: 1,
		Timeout:     cfg.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("service", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

// Call executes the check through the breaker. When the breaker is open the
// check is not invoked and ErrCircuitOpen is returned immediately.
func (b *Breaker) Call(ctx context.Context, check CheckFunc) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, check(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}
	return err
}

// State returns the breaker's current state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
