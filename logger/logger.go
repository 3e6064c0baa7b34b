package logger

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/diag"
	"github.com/philipp01105/fanlog/formatter"
	"github.com/philipp01105/fanlog/handler"
)

// Logger gates records by level and filters, formats them, and hands them
// to a worker goroutine that fans them out to the attached handlers.
// Logging never blocks on the logger's own queue: when it is full the
// record is dropped and counted.
type Logger struct {
	name     string
	registry *Registry
	opts     Options

	level     atomic.Int32
	propagate atomic.Bool
	dropped   atomic.Uint64

	// mu guards handlers, filters and formatter
	mu        sync.RWMutex
	handlers  []handler.Handler
	filters   []Filter
	formatter formatter.Formatter

	// sealMu guards sealed and the close of records. Producers hold the
	// read lock while sending.
	sealMu  sync.RWMutex
	sealed  bool
	records chan job

	shutdown  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error

	dropWarn   *diag.Warner
	formatWarn *diag.Warner
	panicWarn  *diag.Warner
}

// New creates a standalone logger, not attached to any registry, and
// starts its worker. Standalone loggers do not propagate.
func New(name string, opts Options) (*Logger, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	l := newLogger(name, nil, opts)
	l.start()
	return l, nil
}

// newLogger builds a logger without starting its worker. opts must be
// validated.
func newLogger(name string, reg *Registry, opts Options) *Logger {
	field := zap.String("logger", name)
	l := &Logger{
		name:       name,
		registry:   reg,
		opts:       opts,
		formatter:  opts.Formatter,
		records:    make(chan job, opts.Capacity),
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		dropWarn:   diag.NewWarner("logger queue full, record dropped", opts.WarnInterval, field),
		formatWarn: diag.NewWarner("logger failed to format record", opts.WarnInterval, field),
		panicWarn:  diag.NewWarner("logger worker recovered from panic", opts.WarnInterval, field),
	}
	l.level.Store(int32(opts.Level))
	l.propagate.Store(reg != nil)
	return l
}

func (l *Logger) start() {
	go l.run()
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.name
}

// Parent returns the name of the nearest existing ancestor, or "" for
// the root and standalone loggers.
func (l *Logger) Parent() string {
	if l.registry == nil {
		return ""
	}
	if p := l.registry.parentOf(l.name); p != nil {
		return p.name
	}
	return ""
}

// Level returns the current threshold
func (l *Logger) Level() core.Level {
	return core.Level(l.level.Load())
}

// SetLevel changes the threshold
func (l *Logger) SetLevel(level core.Level) {
	l.level.Store(int32(level))
}

// Enabled reports whether records at level pass the threshold
func (l *Logger) Enabled(level core.Level) bool {
	return level >= l.Level()
}

// Propagate reports whether records are forwarded to ancestors
func (l *Logger) Propagate() bool {
	return l.propagate.Load()
}

// SetPropagate enables or disables forwarding to ancestors
func (l *Logger) SetPropagate(on bool) {
	l.propagate.Store(on)
}

// Dropped returns the number of records lost to a full or closed queue
func (l *Logger) Dropped() uint64 {
	return l.dropped.Load()
}

// SetFormatter replaces the formatter used for the string Log returns
func (l *Logger) SetFormatter(f formatter.Formatter) {
	if f == nil {
		f = formatter.NewTextFormatter(formatter.Config{})
	}
	l.mu.Lock()
	l.formatter = f
	l.mu.Unlock()
}

// AddHandler attaches h. The same handler may be attached to several
// loggers.
func (l *Logger) AddHandler(h handler.Handler) {
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()
}

// RemoveHandler detaches the first handler identical to h and reports
// whether one was found.
func (l *Logger) RemoveHandler(h handler.Handler) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cur := range l.handlers {
		if sameObject(cur, h) {
			l.handlers = append(l.handlers[:i:i], l.handlers[i+1:]...)
			return true
		}
	}
	return false
}

// ClearHandlers detaches all handlers. Records already queued keep the
// handlers they were queued with.
func (l *Logger) ClearHandlers() {
	l.mu.Lock()
	l.handlers = nil
	l.mu.Unlock()
}

// Handlers returns a copy of the attached handlers
func (l *Logger) Handlers() []handler.Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]handler.Handler(nil), l.handlers...)
}

// AddFilter appends f to the filter chain
func (l *Logger) AddFilter(f Filter) {
	l.mu.Lock()
	l.filters = append(l.filters, f)
	l.mu.Unlock()
}

// RemoveFilter removes the first filter identical to f and reports
// whether one was found.
func (l *Logger) RemoveFilter(f Filter) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, cur := range l.filters {
		if sameObject(cur, f) {
			l.filters = append(l.filters[:i:i], l.filters[i+1:]...)
			return true
		}
	}
	return false
}

// ClearFilters removes all filters
func (l *Logger) ClearFilters() {
	l.mu.Lock()
	l.filters = nil
	l.mu.Unlock()
}

// Log gates, formats and enqueues a record. It returns the formatted
// text and true when the record passed the level and filters, whether or
// not the queue had room for it.
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) (string, bool) {
	return l.log(1, level, msg, nil, fields)
}

// Logf is like Log with a printf-style message
func (l *Logger) Logf(level core.Level, format string, args ...any) (string, bool) {
	if !l.Enabled(level) {
		return "", false
	}
	return l.dispatch(l.newRecord(1, level, fmt.Sprintf(format, args...), nil, nil))
}

// LogRecord gates, formats and enqueues a prepared record. The logger
// takes ownership of rec and sets its Logger name.
func (l *Logger) LogRecord(rec *core.Record) (string, bool) {
	if rec == nil || !l.Enabled(rec.Level) {
		return "", false
	}
	rec.Logger = l.name
	return l.dispatch(rec)
}

// Trace logs a message at TraceLevel
func (l *Logger) Trace(msg string, fields ...core.Field) {
	l.log(1, core.TraceLevel, msg, nil, fields)
}

// Debug logs a message at DebugLevel
func (l *Logger) Debug(msg string, fields ...core.Field) {
	l.log(1, core.DebugLevel, msg, nil, fields)
}

// Info logs a message at InfoLevel
func (l *Logger) Info(msg string, fields ...core.Field) {
	l.log(1, core.InfoLevel, msg, nil, fields)
}

// Warn logs a message at WarnLevel
func (l *Logger) Warn(msg string, fields ...core.Field) {
	l.log(1, core.WarnLevel, msg, nil, fields)
}

// Error logs a message at ErrorLevel
func (l *Logger) Error(msg string, fields ...core.Field) {
	l.log(1, core.ErrorLevel, msg, nil, fields)
}

// Critical logs a message at CriticalLevel
func (l *Logger) Critical(msg string, fields ...core.Field) {
	l.log(1, core.CriticalLevel, msg, nil, fields)
}

// Exception logs msg at ErrorLevel with err attached as the record's
// exception payload.
func (l *Logger) Exception(err error, msg string, fields ...core.Field) {
	if !l.Enabled(core.ErrorLevel) {
		return
	}
	rec := l.newRecord(1, core.ErrorLevel, msg, nil, fields)
	rec.Exception = core.ExceptionFromError(err)
	l.dispatch(rec)
}

// log builds and dispatches a record. skip is the number of frames
// between log and the user's call site.
func (l *Logger) log(skip int, level core.Level, msg string, base, fields []core.Field) (string, bool) {
	if !l.Enabled(level) {
		return "", false
	}
	return l.dispatch(l.newRecord(skip+1, level, msg, base, fields))
}

func (l *Logger) newRecord(skip int, level core.Level, msg string, base, fields []core.Field) *core.Record {
	rec := core.NewRecord(l.name, level, msg)
	if n := len(base) + len(fields); n > 0 {
		rec.Fields = make([]core.Field, 0, n)
		rec.Fields = append(rec.Fields, base...)
		rec.Fields = append(rec.Fields, fields...)
	}
	if !l.opts.DisableCaller {
		rec.Caller = core.GetCaller(skip + 1)
	}
	return rec
}

// dispatch applies the filters, formats rec and enqueues it together
// with a snapshot of the handlers it must reach.
func (l *Logger) dispatch(rec *core.Record) (string, bool) {
	// Filter slices are replaced on removal, so the snapshot stays valid
	// after the lock is released.
	l.mu.RLock()
	filters := l.filters
	targets := append([]handler.Handler(nil), l.handlers...)
	f := l.formatter
	l.mu.RUnlock()

	for _, filter := range filters {
		if !filter.Allow(rec) {
			return "", false
		}
	}

	out, err := formatter.FormatString(f, rec)
	if err != nil {
		l.formatWarn.Warn(zap.Error(err))
		out = rec.Message
	}

	targets = append(targets, l.ancestorHandlers()...)
	l.enqueue(job{rec: rec, handlers: targets})
	return out, true
}

// ancestorHandlers collects the handlers of each ancestor while the
// propagate flag along the chain allows it. Ancestors' levels and
// filters are not applied.
func (l *Logger) ancestorHandlers() []handler.Handler {
	if l.registry == nil || !l.Propagate() {
		return nil
	}
	var out []handler.Handler
	for p := l.registry.parentOf(l.name); p != nil; p = l.registry.parentOf(p.name) {
		out = append(out, p.Handlers()...)
		if !p.Propagate() {
			break
		}
	}
	return out
}

// FlushHandlers waits for the worker to pass every record queued before
// the call, then flushes each attached handler. It reports whether both
// steps succeeded.
func (l *Logger) FlushHandlers() bool {
	t := time.NewTimer(FlushTimeout)
	defer t.Stop()
	ack := make(chan struct{})
	if !l.enqueueMarker(job{ack: ack}, t.C) {
		return false
	}
	select {
	case <-ack:
	case <-t.C:
		return false
	}

	ok := true
	for _, h := range l.Handlers() {
		if !h.Flush() {
			ok = false
		}
	}
	return ok
}

// Close stops the worker after it has delivered every queued record. It
// does not close the handlers, which may be shared. Close is idempotent.
func (l *Logger) Close() error {
	l.closeOnce.Do(func() {
		l.beginShutdown()
		t := time.NewTimer(l.opts.JoinTimeout)
		defer t.Stop()
		select {
		case <-l.done:
		case <-t.C:
			diag.Logger().Warn("logger worker did not stop before timeout",
				zap.String("logger", l.name),
				zap.Duration("timeout", l.opts.JoinTimeout))
			l.closeErr = ErrJoinTimeout
		}
	})
	return l.closeErr
}
