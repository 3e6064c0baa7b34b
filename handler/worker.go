package handler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/diag"
)

// Sink is the resource behind a Worker. All methods are called from the
// worker goroutine only, so implementations need no locking.
type Sink interface {
	// Write delivers one record. ctx is cancelled once Close begins; sinks
	// use it to cut backoff waits short, not to abort I/O.
	Write(ctx context.Context, rec *core.Record) error
	// Flush pushes buffered output to the resource.
	Flush() error
	// Close releases the resource.
	Close() error
}

// command is a unit of work on the worker queue: either a record or a
// flush request carrying an ack channel.
type command struct {
	rec *core.Record
	ack chan error
}

// Worker owns a bounded queue and a goroutine that feeds a Sink. It
// implements Handler; concrete handlers embed it.
type Worker struct {
	opts  Options
	sink  Sink
	stats *Stats

	queue chan command

	// mu guards closed and the queue's close. Producers hold the read lock
	// while sending.
	mu     sync.RWMutex
	closed bool

	quit   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
	sinkErr   error

	dropWarn   *diag.Warner
	closedWarn *diag.Warner
	errWarn    *diag.Warner
	panicWarn  *diag.Warner
}

// NewWorker validates opts and starts the worker goroutine for sink.
func NewWorker(opts Options, sink Sink) (*Worker, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: nil sink", ErrInvalidConfig)
	}
	ctx, cancel := context.WithCancel(context.Background())
	name := zap.String("handler", opts.Name)
	w := &Worker{
		opts:       opts,
		sink:       sink,
		stats:      NewStats(),
		queue:      make(chan command, opts.Capacity),
		quit:       make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		dropWarn:   diag.NewWarner("handler queue full, record dropped", opts.WarnInterval, name),
		closedWarn: diag.NewWarner("handler closed, record dropped", opts.WarnInterval, name),
		errWarn:    diag.NewWarner("handler failed to deliver record", opts.WarnInterval, name),
		panicWarn:  diag.NewWarner("handler recovered from panic", opts.WarnInterval, name),
	}
	go w.run()
	return w, nil
}

// Name returns the handler name from Options.
func (w *Worker) Name() string {
	return w.opts.Name
}

// Options returns the validated options the worker was built with.
func (w *Worker) Options() Options {
	return w.opts
}

// Stats returns a snapshot of the delivery counters.
func (w *Worker) Stats() Snapshot {
	return w.stats.GetSnapshot()
}

// Handle enqueues rec according to the overflow policy.
func (w *Worker) Handle(rec *core.Record) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return w.reject(rec)
	}

	cmd := command{rec: rec}
	select {
	case w.queue <- cmd:
		return nil
	default:
	}

	switch w.opts.Overflow {
	case Block:
		w.stats.IncrementBlocked()
		select {
		case w.queue <- cmd:
			return nil
		case <-w.quit:
			return w.reject(rec)
		}
	case Timeout:
		w.stats.IncrementBlocked()
		t := time.NewTimer(w.opts.BlockTimeout)
		defer t.Stop()
		select {
		case w.queue <- cmd:
			return nil
		case <-w.quit:
			return w.reject(rec)
		case <-t.C:
			w.drop(rec)
			return ErrDropped
		}
	default:
		w.drop(rec)
		return ErrDropped
	}
}

// reject counts a record refused because the handler is closing.
func (w *Worker) reject(rec *core.Record) error {
	w.stats.IncrementDropped()
	w.closedWarn.Warn(zap.String("logger", rec.Logger), zap.Stringer("level", rec.Level))
	return ErrClosed
}

func (w *Worker) drop(rec *core.Record) {
	w.stats.IncrementDropped()
	w.dropWarn.Warn(zap.String("logger", rec.Logger), zap.Stringer("level", rec.Level))
}

// Flush waits until every record queued before the call has reached the
// sink and the sink has flushed. The flush request itself is never
// dropped; it waits for queue space within FlushTimeout.
func (w *Worker) Flush() bool {
	ack := make(chan error, 1)
	t := time.NewTimer(FlushTimeout)
	defer t.Stop()

	w.mu.RLock()
	if w.closed {
		w.mu.RUnlock()
		return false
	}
	select {
	case w.queue <- command{ack: ack}:
	case <-w.quit:
		w.mu.RUnlock()
		return false
	case <-t.C:
		w.mu.RUnlock()
		return false
	}
	w.mu.RUnlock()

	select {
	case err := <-ack:
		return err == nil
	case <-t.C:
		return false
	}
}

// Close stops intake, lets the worker drain every queued record, then
// flushes and closes the sink. Producers blocked in Handle return
// ErrClosed. It waits at most DrainTimeout.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() {
		close(w.quit)
		w.cancel()

		w.mu.Lock()
		w.closed = true
		close(w.queue)
		w.mu.Unlock()

		t := time.NewTimer(w.opts.DrainTimeout)
		defer t.Stop()
		select {
		case <-w.done:
			w.closeErr = w.sinkErr
		case <-t.C:
			diag.Logger().Warn("handler did not drain before timeout",
				zap.String("handler", w.opts.Name),
				zap.Duration("timeout", w.opts.DrainTimeout),
				zap.Int("pending", len(w.queue)))
			w.closeErr = ErrCloseTimeout
		}
	})
	return w.closeErr
}

func (w *Worker) run() {
	defer close(w.done)
	for cmd := range w.queue {
		w.process(cmd)
	}
	w.sinkErr = w.shutdownSink()
}

func (w *Worker) process(cmd command) {
	defer func() {
		if r := recover(); r != nil {
			w.stats.IncrementErrors()
			w.panicWarn.Warn(zap.Any("panic", r))
			if cmd.ack != nil {
				cmd.ack <- fmt.Errorf("handler: panic during flush: %v", r)
			}
		}
	}()

	if cmd.ack != nil {
		cmd.ack <- w.sink.Flush()
		return
	}
	if err := w.sink.Write(w.ctx, cmd.rec); err != nil {
		w.stats.IncrementErrors()
		w.errWarn.Warn(zap.Error(err))
		return
	}
	w.stats.IncrementProcessed()
}

func (w *Worker) shutdownSink() (err error) {
	defer func() {
		if r := recover(); r != nil {
			w.panicWarn.Warn(zap.Any("panic", r))
			err = fmt.Errorf("handler: panic during close: %v", r)
		}
	}()
	return multierr.Combine(w.sink.Flush(), w.sink.Close())
}
