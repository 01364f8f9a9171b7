// Package ratelimit tracks per-source backoff and cooldown state for the
// ingestion pipeline. Each source's state is independent: concurrent
// updates from different sources never contend on the same lock.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Default pacing values, matching the per-source policy the pipeline
// ships with.
const (
	// DefaultBaseDelay is the pacing delay between requests to a healthy source.
	DefaultBaseDelay = 2 * time.Second
	// DefaultMaxDelay caps the exponential backoff delay.
	DefaultMaxDelay = 30 * time.Second
	// DefaultCooldown is how long a source is skipped after a hard limit.
	DefaultCooldown = 40 * time.Minute
)

// Config configures backoff and cooldown behavior.
type Config struct {
	// BaseDelay is the per-request delay for a source with no recent failures.
	BaseDelay time.Duration `mapstructure:"base_delay" yaml:"base_delay"`
	// MaxDelay is the ceiling for exponential backoff.
	MaxDelay time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
	// Cooldown is the skip window applied when a source signals a hard limit.
	Cooldown time.Duration `mapstructure:"cooldown" yaml:"cooldown"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
}

// State is a read-only snapshot of one source's rate-limit state.
type State struct {
	// Delay is the current per-request pacing delay.
	Delay time.Duration
	// Failures is the consecutive soft-failure count.
	Failures int
	// CooldownUntil is the end of the hard-limit cooldown window, zero if none.
	CooldownUntil time.Time
}

// sourceState is the mutable state for one source, guarded by its own lock.
type sourceState struct {
	mu            sync.Mutex
	delay         time.Duration
	failures      int
	cooldownUntil time.Time
}

// Limiter gates fetch attempts per source. Safe for concurrent use.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu     sync.RWMutex
	states map[string]*sourceState
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithNow overrides the clock, for tests.
func WithNow(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New creates a limiter with the given config.
func New(cfg Config, opts ...Option) *Limiter {
	cfg.SetDefaults()

	l := &Limiter{
		cfg:    cfg,
		now:    time.Now,
		states: make(map[string]*sourceState),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// state returns the state for a source, creating it on first use.
func (l *Limiter) state(source string) *sourceState {
	l.mu.RLock()
	s, ok := l.states[source]
	l.mu.RUnlock()
	if ok {
		return s
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok = l.states[source]; ok {
		return s
	}
	s = &sourceState{delay: l.cfg.BaseDelay}
	l.states[source] = s
	return s
}

// ShouldAttempt reports whether the source may be fetched this cycle.
// It returns false only while a hard-limit cooldown is in effect; the
// exponential-backoff delay paces individual requests and never skips a
// whole cycle.
func (l *Limiter) ShouldAttempt(source string) bool {
	s := l.state(source)
	s.mu.Lock()
	defer s.mu.Unlock()
	return !l.now().Before(s.cooldownUntil)
}

// CooldownRemaining returns how long until the source's cooldown elapses,
// or zero if no cooldown is active.
func (l *Limiter) CooldownRemaining(source string) time.Duration {
	s := l.state(source)
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.cooldownUntil.Sub(l.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Delay returns the current per-request pacing delay for the source.
func (l *Limiter) Delay(source string) time.Duration {
	s := l.state(source)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay
}

// OnSuccess resets the source's delay to base and clears the failure count.
func (l *Limiter) OnSuccess(source string) {
	s := l.state(source)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.delay = l.cfg.BaseDelay
	s.failures = 0
}

// OnFailure records a soft failure and raises the pacing delay to
// min(base * 2^failures, max).
func (l *Limiter) OnFailure(source string) {
	s := l.state(source)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures++
	backoff := time.Duration(float64(l.cfg.BaseDelay) * math.Pow(2, float64(s.failures)))
	if backoff > l.cfg.MaxDelay || backoff <= 0 {
		backoff = l.cfg.MaxDelay
	}
	s.delay = backoff
}

// OnHardLimit starts a cooldown window for the source. A zero or
// negative duration falls back to the configured cooldown. The window is
// independent of the exponential-backoff delay.
func (l *Limiter) OnHardLimit(source string, cooldown time.Duration) {
	if cooldown <= 0 {
		cooldown = l.cfg.Cooldown
	}

	s := l.state(source)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cooldownUntil = l.now().Add(cooldown)
}

// Snapshot returns a copy of the source's current state.
func (l *Limiter) Snapshot(source string) State {
	s := l.state(source)
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Delay:         s.delay,
		Failures:      s.failures,
		CooldownUntil: s.cooldownUntil,
	}
}
