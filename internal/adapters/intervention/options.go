package intervention

import "time"

// DispatcherOption applies a configuration option to the Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithCooldown sets the minimum gap between notices for one person.
func WithCooldown(d time.Duration) DispatcherOption {
	return func(p *Dispatcher) {
		if d > 0 {
			p.cooldown = d
		}
	}
}

// WithAttemptTimeout bounds each delivery attempt.
func WithAttemptTimeout(d time.Duration) DispatcherOption {
	return func(p *Dispatcher) {
		if d > 0 {
			p.attemptTimeout = d
		}
	}
}

// WithRetry tunes the delivery backoff schedule.
func WithRetry(initial time.Duration, multiplier float64, maxRetries uint64) DispatcherOption {
	return func(p *Dispatcher) {
		if initial > 0 {
			p.initialInterval = initial
		}
		if multiplier > 1 {
			p.multiplier = multiplier
		}
		p.maxRetries = maxRetries
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) DispatcherOption {
	return func(p *Dispatcher) {
		if now != nil {
			p.now = now
		}
	}
}
