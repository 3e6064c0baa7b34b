package logger

import (
	"github.com/philipp01105/fanlog/core"
)

// Entry is a logger bound to a set of fields added to every record it
// logs
type Entry struct {
	l      *Logger
	fields []core.Field
}

// With returns an Entry that adds fields to every record
func (l *Logger) With(fields ...core.Field) *Entry {
	return &Entry{l: l, fields: append([]core.Field(nil), fields...)}
}

// With returns a new Entry carrying both sets of fields
func (e *Entry) With(fields ...core.Field) *Entry {
	merged := make([]core.Field, 0, len(e.fields)+len(fields))
	merged = append(merged, e.fields...)
	merged = append(merged, fields...)
	return &Entry{l: e.l, fields: merged}
}

// Logger returns the underlying logger
func (e *Entry) Logger() *Logger {
	return e.l
}

// Fields returns the bound fields
func (e *Entry) Fields() []core.Field {
	return e.fields
}

// Log is Logger.Log with the bound fields prepended
func (e *Entry) Log(level core.Level, msg string, fields ...core.Field) (string, bool) {
	return e.l.log(1, level, msg, e.fields, fields)
}

// Trace logs a message at TraceLevel
func (e *Entry) Trace(msg string, fields ...core.Field) {
	e.l.log(1, core.TraceLevel, msg, e.fields, fields)
}

// Debug logs a message at DebugLevel
func (e *Entry) Debug(msg string, fields ...core.Field) {
	e.l.log(1, core.DebugLevel, msg, e.fields, fields)
}

// Info logs a message at InfoLevel
func (e *Entry) Info(msg string, fields ...core.Field) {
	e.l.log(1, core.InfoLevel, msg, e.fields, fields)
}

// Warn logs a message at WarnLevel
func (e *Entry) Warn(msg string, fields ...core.Field) {
	e.l.log(1, core.WarnLevel, msg, e.fields, fields)
}

// Error logs a message at ErrorLevel
func (e *Entry) Error(msg string, fields ...core.Field) {
	e.l.log(1, core.ErrorLevel, msg, e.fields, fields)
}

// Critical logs a message at CriticalLevel
func (e *Entry) Critical(msg string, fields ...core.Field) {
	e.l.log(1, core.CriticalLevel, msg, e.fields, fields)
}
