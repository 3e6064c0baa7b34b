package handler

import (
	"errors"

	"github.com/philipp01105/fanlog/core"
)

var (
	// ErrDropped is returned by Handle when the record was discarded because
	// the queue stayed full under the handler's overflow policy.
	ErrDropped = errors.New("handler: record dropped")
	// ErrClosed is returned by Handle once Close has been called.
	ErrClosed = errors.New("handler: handler closed")
	// ErrInvalidConfig wraps every construction-time validation failure.
	ErrInvalidConfig = errors.New("handler: invalid config")
	// ErrCloseTimeout is returned by Close when the worker did not finish
	// draining within the drain timeout.
	ErrCloseTimeout = errors.New("handler: close timed out")
)

// Handler defines the interface for log handlers
type Handler interface {
	// Handle hands a record to the handler. The handler owns rec afterwards.
	// It returns nil, ErrDropped or ErrClosed.
	Handle(rec *core.Record) error

	// Flush blocks until everything queued before the call has been
	// written, or FlushTimeout elapses. It reports success.
	Flush() bool

	// Close stops accepting records, drains the queue and releases the
	// underlying resource. It is idempotent.
	Close() error
}

// StatsProvider is implemented by handlers that expose delivery counters.
type StatsProvider interface {
	Name() string
	Stats() Snapshot
}
