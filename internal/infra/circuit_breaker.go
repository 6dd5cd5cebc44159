package infra

import (
	"errors"
	"sync"
	"time"
)

// Circuit breaker (Closed → Open → Half-Open) guarding the SMTP relay.
// Receipt emails are best-effort; when the relay is down we fast-fail and let
// the DLQ requeue cron retry later instead of blocking workers on timeouts.

// CBState represents the current circuit breaker state.
type CBState int

const (
	CBClosed   CBState = iota // normal — calls flow
	CBOpen                    // tripped — fast-fail all calls
	CBHalfOpen                // probing — one call allowed
)

func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when Execute is called while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreaker implements the pattern with thread-safe state transitions.
type CircuitBreaker struct {
	mu           sync.Mutex
	state        CBState
	failures     int
	successes    int
	trippedAt    time.Time
	maxFailures  int
	probeQuota   int
	openTimeout  time.Duration
}

// NewCircuitBreaker creates a breaker in Closed state. maxFailures consecutive
// failures trip it open; after openTimeout it half-opens and needs probeQuota
// consecutive successes to close again.
func NewCircuitBreaker(maxFailures, probeQuota int, openTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if probeQuota <= 0 {
		probeQuota = 2
	}
	if openTimeout <= 0 {
		openTimeout = time.Minute
	}
	return &CircuitBreaker{maxFailures: maxFailures, probeQuota: probeQuota, openTimeout: openTimeout}
}

// State returns the current state, auto-transitioning open → half-open once
// the open timeout has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CBOpen && time.Since(cb.trippedAt) >= cb.openTimeout {
		cb.state = CBHalfOpen
		cb.successes = 0
	}
	return cb.state
}

// Execute runs fn through the breaker, returning ErrCircuitOpen immediately
// while tripped.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil {
		cb.recordFailure()
		return err
	}
	cb.recordSuccess()
	return nil
}

func (cb *CircuitBreaker) recordFailure() {
	cb.failures++
	cb.trippedAt = time.Now()

	switch cb.state {
	case CBClosed:
		if cb.failures >= cb.maxFailures {
			cb.state = CBOpen
			cb.successes = 0
		}
	case CBHalfOpen:
		// Probe failed — back to open
		cb.state = CBOpen
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	switch cb.state {
	case CBClosed:
		cb.failures = 0
	case CBHalfOpen:
		cb.successes++
		if cb.successes >= cb.probeQuota {
			cb.state = CBClosed
			cb.failures = 0
			cb.successes = 0
		}
	}
}
