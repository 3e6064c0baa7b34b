package diag

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultWarnInterval is the interval used when a Warner is created with
// a non-positive interval.
const DefaultWarnInterval = 5 * time.Second

// Warner emits a warning at most once per interval. Occurrences between
// emissions are counted and reported with the next emission.
type Warner struct {
	msg     string
	fields  []zap.Field
	limiter *rate.Limiter
	pending atomic.Uint64
	total   atomic.Uint64
}

// NewWarner creates a Warner that logs msg with the given constant fields.
func NewWarner(msg string, interval time.Duration, fields ...zap.Field) *Warner {
	if interval <= 0 {
		interval = DefaultWarnInterval
	}
	return &Warner{
		msg:     msg,
		fields:  fields,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Warn records one occurrence and logs if the interval allows it. The
// extra fields describe the occurrence that triggers the emission.
// It reports whether a warning was written.
func (w *Warner) Warn(extra ...zap.Field) bool {
	w.total.Add(1)
	w.pending.Add(1)
	if !w.limiter.Allow() {
		return false
	}
	n := w.pending.Swap(0)
	fields := make([]zap.Field, 0, len(w.fields)+len(extra)+1)
	fields = append(fields, w.fields...)
	fields = append(fields, extra...)
	fields = append(fields, zap.Uint64("count", n))
	Logger().Warn(w.msg, fields...)
	return true
}

// Total returns the number of occurrences recorded since creation.
func (w *Warner) Total() uint64 {
	return w.total.Load()
}
