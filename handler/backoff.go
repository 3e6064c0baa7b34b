package handler

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Backoff defaults applied to zero fields of BackoffConfig.
const (
	DefaultBackoffBase       = 100 * time.Millisecond
	DefaultBackoffCap        = 30 * time.Second
	DefaultBackoffResetAfter = 60 * time.Second
	DefaultBackoffJitter     = 0.1
)

// BackoffConfig configures a Backoff.
type BackoffConfig struct {
	// Base is the first delay after a failure.
	Base time.Duration
	// Cap bounds any single delay.
	Cap time.Duration
	// ResetAfter restarts the streak when no failure happened for this long.
	ResetAfter time.Duration
	// Deadline bounds the total waiting per failure streak. Once spent,
	// further failures are not delayed until the streak resets. Zero means
	// unbounded.
	Deadline time.Duration
	// Jitter is the multiplicative spread applied to each delay, below 1.
	// Zero selects DefaultBackoffJitter; a negative value disables it.
	Jitter float64
}

func (c *BackoffConfig) validate() error {
	if c.Base < 0 || c.Cap < 0 || c.ResetAfter < 0 || c.Deadline < 0 {
		return fmt.Errorf("%w: negative backoff duration", ErrInvalidConfig)
	}
	if c.Jitter >= 1 {
		return fmt.Errorf("%w: backoff jitter must be below 1, got %v", ErrInvalidConfig, c.Jitter)
	}
	switch {
	case c.Jitter == 0:
		c.Jitter = DefaultBackoffJitter
	case c.Jitter < 0:
		c.Jitter = 0
	}
	if c.Base == 0 {
		c.Base = DefaultBackoffBase
	}
	if c.Cap == 0 {
		c.Cap = DefaultBackoffCap
	}
	if c.ResetAfter == 0 {
		c.ResetAfter = DefaultBackoffResetAfter
	}
	if c.Cap < c.Base {
		return fmt.Errorf("%w: backoff cap %v below base %v", ErrInvalidConfig, c.Cap, c.Base)
	}
	return nil
}

// Backoff tracks an exponential retry delay for a handler worker. It is
// owned by a single goroutine and is not safe for concurrent use.
type Backoff struct {
	cfg BackoffConfig

	current     time.Duration
	failures    int
	streakStart time.Time
	lastFailure time.Time
	slept       time.Duration
	until       time.Time

	now    func() time.Time
	jitter func() float64
}

// NewBackoff validates cfg, applying defaults to zero fields.
func NewBackoff(cfg BackoffConfig) (*Backoff, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Backoff{cfg: cfg, now: time.Now, jitter: rand.Float64}, nil
}

// Config returns the effective configuration.
func (b *Backoff) Config() BackoffConfig {
	return b.cfg
}

// Failures returns the length of the current failure streak.
func (b *Backoff) Failures() int {
	return b.failures
}

// Success resets the streak.
func (b *Backoff) Success() {
	b.reset()
}

func (b *Backoff) reset() {
	b.current = 0
	b.failures = 0
	b.slept = 0
	b.streakStart = time.Time{}
	b.lastFailure = time.Time{}
	b.until = time.Time{}
}

// Failure records a failed attempt and returns the delay to observe
// before the next one.
func (b *Backoff) Failure() time.Duration {
	now := b.now()
	if b.failures > 0 && now.Sub(b.lastFailure) >= b.cfg.ResetAfter {
		b.reset()
	}
	if b.failures == 0 {
		b.streakStart = now
		b.current = b.cfg.Base
	} else {
		b.current = min(b.current*2, b.cfg.Cap)
	}
	b.failures++
	b.lastFailure = now

	delay := b.current
	if j := b.cfg.Jitter; j > 0 {
		delay = time.Duration(float64(delay) * (1 + (b.jitter()*2-1)*j))
	}
	delay = min(delay, b.cfg.Cap)
	if b.cfg.Deadline > 0 {
		delay = min(delay, max(b.cfg.Deadline-b.slept, 0))
	}
	b.slept += delay
	b.until = now.Add(delay)
	return delay
}

// Pending returns how long Wait would currently block.
func (b *Backoff) Pending() time.Duration {
	if b.until.IsZero() {
		return 0
	}
	return max(b.until.Sub(b.now()), 0)
}

// Wait blocks until the delay from the last Failure has passed or ctx is
// done. It returns ctx.Err() when interrupted.
func (b *Backoff) Wait(ctx context.Context) error {
	d := b.Pending()
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
