package logger

import (
	"context"
	"log/slog"

	"github.com/philipp01105/fanlog/core"
)

// SlogHandler adapts a Logger to slog.Handler, so the logger can serve as
// the backend of log/slog.
type SlogHandler struct {
	l     *Logger
	attrs []core.Field
	group string
}

// NewSlogHandler creates a slog.Handler that logs through l
func NewSlogHandler(l *Logger) *SlogHandler {
	return &SlogHandler{l: l}
}

// Enabled reports whether l's threshold admits level
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return s.l.Enabled(slogLevelToCore(level))
}

// Handle converts the slog record and logs it. Trace context in ctx is
// attached as fields.
func (s *SlogHandler) Handle(ctx context.Context, record slog.Record) error {
	rec := core.NewRecord(s.l.name, slogLevelToCore(record.Level), record.Message)
	if !record.Time.IsZero() {
		rec.Time = record.Time
	}
	if !s.l.opts.DisableCaller {
		rec.Caller = core.CallerFromPC(record.PC)
	}

	fields := make([]core.Field, 0, len(s.attrs)+record.NumAttrs())
	fields = append(fields, s.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendSlogAttr(fields, s.group, a)
		return true
	})
	if ctx != nil {
		fields = append(fields, (&Entry{}).WithContext(ctx).fields...)
	}
	if len(fields) > 0 {
		rec.Fields = fields
	}

	s.l.LogRecord(rec)
	return nil
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]core.Field, len(s.attrs), len(s.attrs)+len(attrs))
	copy(newAttrs, s.attrs)
	for _, a := range attrs {
		newAttrs = appendSlogAttr(newAttrs, s.group, a)
	}
	return &SlogHandler{l: s.l, attrs: newAttrs, group: s.group}
}

// WithGroup returns a new SlogHandler with the given group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	newGroup := name
	if s.group != "" {
		newGroup = s.group + "." + name
	}
	return &SlogHandler{l: s.l, attrs: s.attrs[:len(s.attrs):len(s.attrs)], group: newGroup}
}

// slogLevelToCore maps slog levels onto the six core levels.
func slogLevelToCore(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError+4:
		return core.CriticalLevel
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarnLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	case level >= slog.LevelDebug:
		return core.DebugLevel
	default:
		return core.TraceLevel
	}
}

// appendSlogAttr converts a and appends it, flattening groups into dotted
// keys.
func appendSlogAttr(dst []core.Field, group string, a slog.Attr) []core.Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}
	key := a.Key
	if group != "" && key != "" {
		key = group + "." + key
	} else if key == "" {
		key = group
	}

	switch a.Value.Kind() {
	case slog.KindGroup:
		for _, ga := range a.Value.Group() {
			dst = appendSlogAttr(dst, key, ga)
		}
		return dst
	case slog.KindString:
		return append(dst, core.Field{Key: key, Type: core.StringType, Str: a.Value.String()})
	case slog.KindInt64:
		return append(dst, core.Field{Key: key, Type: core.Int64Type, Int64: a.Value.Int64()})
	case slog.KindUint64:
		return append(dst, Uint64(key, a.Value.Uint64()))
	case slog.KindFloat64:
		return append(dst, core.Field{Key: key, Type: core.Float64Type, Float64: a.Value.Float64()})
	case slog.KindBool:
		return append(dst, Bool(key, a.Value.Bool()))
	case slog.KindTime:
		return append(dst, Time(key, a.Value.Time()))
	case slog.KindDuration:
		return append(dst, Duration(key, a.Value.Duration()))
	default:
		if err, ok := a.Value.Any().(error); ok {
			return append(dst, core.Field{Key: key, Type: core.ErrorType, Str: err.Error()})
		}
		return append(dst, core.Field{Key: key, Type: core.AnyType, Any: a.Value.Any()})
	}
}
