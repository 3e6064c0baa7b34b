package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBackoff(t *testing.T, cfg BackoffConfig) (*Backoff, *fakeClock) {
	t.Helper()
	b, err := NewBackoff(cfg)
	require.NoError(t, err)
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	b.now = clk.now
	b.jitter = func() float64 { return 0.5 }
	return b, clk
}

func TestBackoff_Defaults(t *testing.T) {
	b, err := NewBackoff(BackoffConfig{})
	require.NoError(t, err)
	cfg := b.Config()
	assert.Equal(t, DefaultBackoffBase, cfg.Base)
	assert.Equal(t, DefaultBackoffCap, cfg.Cap)
	assert.Equal(t, DefaultBackoffResetAfter, cfg.ResetAfter)
	assert.Equal(t, DefaultBackoffJitter, cfg.Jitter)

	b, err = NewBackoff(BackoffConfig{Jitter: -1})
	require.NoError(t, err)
	assert.Zero(t, b.Config().Jitter)
}

func TestBackoff_InvalidConfig(t *testing.T) {
	for _, cfg := range []BackoffConfig{
		{Base: -1},
		{Base: time.Second, Cap: time.Millisecond},
		{Jitter: 1},
	} {
		_, err := NewBackoff(cfg)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestBackoff_DoublesUpToCap(t *testing.T) {
	b, _ := newTestBackoff(t, BackoffConfig{Base: 10 * time.Millisecond, Cap: 50 * time.Millisecond})

	var got []time.Duration
	for i := 0; i < 5; i++ {
		got = append(got, b.Failure())
	}
	assert.Equal(t, []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
		50 * time.Millisecond,
		50 * time.Millisecond,
	}, got)
	assert.Equal(t, 5, b.Failures())
}

func TestBackoff_JitterStaysInBounds(t *testing.T) {
	b, err := NewBackoff(BackoffConfig{Base: 100 * time.Millisecond, Cap: time.Second, Jitter: 0.1})
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		b.Success()
		d := b.Failure()
		assert.GreaterOrEqual(t, d, 90*time.Millisecond)
		assert.LessOrEqual(t, d, 110*time.Millisecond)
	}
}

func TestBackoff_SuccessResets(t *testing.T) {
	b, _ := newTestBackoff(t, BackoffConfig{Base: 10 * time.Millisecond})
	b.Failure()
	b.Failure()
	b.Success()
	assert.Equal(t, 0, b.Failures())
	assert.Equal(t, time.Duration(0), b.Pending())
	assert.Equal(t, 10*time.Millisecond, b.Failure())
}

func TestBackoff_ResetsAfterQuietPeriod(t *testing.T) {
	b, clk := newTestBackoff(t, BackoffConfig{Base: 10 * time.Millisecond, ResetAfter: time.Second})
	b.Failure()
	b.Failure()
	clk.advance(2 * time.Second)
	assert.Equal(t, 10*time.Millisecond, b.Failure())
	assert.Equal(t, 1, b.Failures())
}

func TestBackoff_DeadlineBoundsStreak(t *testing.T) {
	b, _ := newTestBackoff(t, BackoffConfig{Base: 10 * time.Millisecond, Deadline: 25 * time.Millisecond})
	assert.Equal(t, 10*time.Millisecond, b.Failure())
	assert.Equal(t, 15*time.Millisecond, b.Failure())
	assert.Equal(t, time.Duration(0), b.Failure())

	b.Success()
	assert.Equal(t, 10*time.Millisecond, b.Failure())
}

func TestBackoff_WaitInterruptible(t *testing.T) {
	b, err := NewBackoff(BackoffConfig{Base: time.Hour, Cap: time.Hour})
	require.NoError(t, err)
	b.Failure()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	assert.ErrorIs(t, b.Wait(ctx), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBackoff_WaitSleepsPending(t *testing.T) {
	b, err := NewBackoff(BackoffConfig{Base: 20 * time.Millisecond})
	require.NoError(t, err)
	assert.NoError(t, b.Wait(context.Background()))

	b.Failure()
	start := time.Now()
	require.NoError(t, b.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
