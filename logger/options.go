package logger

import (
	"errors"
	"fmt"
	"time"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/formatter"
)

const (
	// DefaultCapacity is the logger queue size used by DefaultOptions.
	DefaultCapacity = 1024
	// DefaultJoinTimeout bounds Close when Options.JoinTimeout is zero.
	DefaultJoinTimeout = 5 * time.Second
	// FlushTimeout bounds the first step of FlushHandlers.
	FlushTimeout = 2 * time.Second
)

var (
	// ErrInvalidOptions wraps logger construction errors.
	ErrInvalidOptions = errors.New("logger: invalid options")
	// ErrJoinTimeout is returned by Close when the worker did not finish
	// in time.
	ErrJoinTimeout = errors.New("logger: worker did not stop before timeout")
)

// Options configures a Logger
type Options struct {
	// Level is the initial threshold
	Level core.Level
	// Formatter renders the string returned by Log (default: TextFormatter)
	Formatter formatter.Formatter
	// Capacity is the size of the logger queue (required, > 0)
	Capacity int
	// DisableCaller skips capturing the call site
	DisableCaller bool
	// WarnInterval is the minimum interval between overflow warnings (default: 5s)
	WarnInterval time.Duration
	// JoinTimeout bounds Close (default: 5s)
	JoinTimeout time.Duration
}

// DefaultOptions returns the options registries use for new loggers.
func DefaultOptions() Options {
	return Options{Level: core.InfoLevel, Capacity: DefaultCapacity}
}

func (o *Options) validate() error {
	if o.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidOptions, o.Capacity)
	}
	if !o.Level.Valid() {
		return fmt.Errorf("%w: invalid level %d", ErrInvalidOptions, o.Level)
	}
	if o.JoinTimeout < 0 {
		return fmt.Errorf("%w: negative join timeout", ErrInvalidOptions)
	}
	if o.JoinTimeout == 0 {
		o.JoinTimeout = DefaultJoinTimeout
	}
	if o.Formatter == nil {
		o.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
	return nil
}
