package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/handler"
)

// job is one unit on the logger queue: a record with the handlers it was
// queued for, or a flush marker carrying only ack.
type job struct {
	rec      *core.Record
	handlers []handler.Handler
	ack      chan struct{}
}

// enqueue never blocks. A full or sealed queue drops the job.
func (l *Logger) enqueue(j job) bool {
	l.sealMu.RLock()
	defer l.sealMu.RUnlock()
	if !l.sealed {
		select {
		case l.records <- j:
			return true
		default:
		}
	}
	l.dropped.Add(1)
	l.dropWarn.Warn(zap.Stringer("level", j.rec.Level), zap.Bool("closed", l.sealed))
	return false
}

// enqueueMarker waits for room until expired fires; markers are not
// dropped while the logger is open.
func (l *Logger) enqueueMarker(j job, expired <-chan time.Time) bool {
	l.sealMu.RLock()
	defer l.sealMu.RUnlock()
	if l.sealed {
		return false
	}
	select {
	case l.records <- j:
		return true
	case <-expired:
		return false
	}
}

// beginShutdown seals the queue and signals the worker. Records queued
// before the seal are still delivered.
func (l *Logger) beginShutdown() {
	l.sealMu.Lock()
	if !l.sealed {
		l.sealed = true
		close(l.records)
	}
	l.sealMu.Unlock()

	select {
	case <-l.shutdown:
	default:
		close(l.shutdown)
	}
}

// run is the worker loop. The shutdown signal is polled before every
// blocking wait so that a continuously full queue cannot hide it.
func (l *Logger) run() {
	defer close(l.done)
	for {
		select {
		case <-l.shutdown:
			l.drain()
			return
		default:
		}

		select {
		case <-l.shutdown:
			l.drain()
			return
		case j, ok := <-l.records:
			if !ok {
				return
			}
			l.process(j)
		}
	}
}

// drain delivers everything left in the sealed queue, in order.
func (l *Logger) drain() {
	for j := range l.records {
		l.process(j)
	}
}

// process hands each target its own copy of the record.
func (l *Logger) process(j job) {
	if j.ack != nil {
		close(j.ack)
		return
	}
	last := len(j.handlers) - 1
	for i, h := range j.handlers {
		rec := j.rec
		if i < last {
			rec = rec.Clone()
		}
		l.deliver(h, rec)
	}
}

func (l *Logger) deliver(h handler.Handler, rec *core.Record) {
	defer func() {
		if r := recover(); r != nil {
			l.panicWarn.Warn(zap.Any("panic", r))
		}
	}()
	// Handlers account for their own drops.
	_ = h.Handle(rec)
}
