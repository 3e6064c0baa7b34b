package handler

import (
	"fmt"
	"time"

	"github.com/philipp01105/fanlog/formatter"
)

const (
	// FlushTimeout bounds how long Flush waits for the worker.
	FlushTimeout = 2 * time.Second
	// DefaultDrainTimeout bounds how long Close waits for the worker to
	// drain its queue when Options.DrainTimeout is zero.
	DefaultDrainTimeout = 5 * time.Second
)

// Options holds the settings shared by every queued handler
type Options struct {
	// Name identifies the handler in diagnostics and metrics
	Name string
	// Capacity is the size of the bounded queue (required, > 0)
	Capacity int
	// Overflow is the policy applied when the queue is full (default: Drop)
	Overflow OverflowPolicy
	// BlockTimeout is the wait bound for the Timeout policy (required for Timeout)
	BlockTimeout time.Duration
	// Formatter to use (default: TextFormatter)
	Formatter formatter.Formatter
	// DrainTimeout bounds Close (default: 5s)
	DrainTimeout time.Duration
	// WarnInterval is the minimum interval between repeated warnings (default: 5s)
	WarnInterval time.Duration
}

// Validate reports configuration errors and fills defaults in place.
func (o *Options) Validate() error {
	if o.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidConfig, o.Capacity)
	}
	switch o.Overflow {
	case Drop, Block:
	case Timeout:
		if o.BlockTimeout <= 0 {
			return fmt.Errorf("%w: timeout policy requires a positive block timeout", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown overflow policy %d", ErrInvalidConfig, o.Overflow)
	}
	if o.DrainTimeout < 0 {
		return fmt.Errorf("%w: negative drain timeout", ErrInvalidConfig)
	}
	if o.DrainTimeout == 0 {
		o.DrainTimeout = DefaultDrainTimeout
	}
	if o.Formatter == nil {
		o.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
	return nil
}
