package formatter

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/philipp01105/fanlog/core"
)

// TextFormatter formats log records as human-readable text:
//
//	2026-01-15T12:00:00Z [INFO] app.db: [db.go:42] message key=value
//
// Exception and stack payloads follow on their own lines.
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{Config: cfg}
}

// Format formats a record as text
func (f *TextFormatter) Format(rec *core.Record) ([]byte, error) {
	return render(f, rec), nil
}

// FormatTo formats a record and writes it directly to the writer
func (f *TextFormatter) FormatTo(rec *core.Record, w io.Writer) error {
	return renderTo(f, rec, w)
}

// levelTags are the bracketed level names with their surrounding spaces
var levelTags = [...]string{
	core.TraceLevel:    " [TRACE] ",
	core.DebugLevel:    " [DEBUG] ",
	core.InfoLevel:     " [INFO] ",
	core.WarnLevel:     " [WARNING] ",
	core.ErrorLevel:    " [ERROR] ",
	core.CriticalLevel: " [CRITICAL] ",
}

func (f *TextFormatter) appendRecord(buf *bytes.Buffer, rec *core.Record) {
	buf.Write(rec.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	if rec.Level.Valid() {
		buf.WriteString(levelTags[rec.Level])
	} else {
		buf.WriteString(" [UNKNOWN] ")
	}
	if rec.Logger != "" {
		buf.WriteString(rec.Logger)
		buf.WriteString(": ")
	}
	if f.IncludeCaller && rec.Caller.Defined {
		buf.WriteByte('[')
		buf.WriteString(rec.Caller.ShortFile)
		buf.WriteByte(':')
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(rec.Caller.Line), 10))
		buf.WriteString("] ")
	}
	buf.WriteString(rec.Message)
	for _, field := range rec.Fields {
		buf.WriteByte(' ')
		buf.WriteString(field.Key)
		buf.WriteByte('=')
		buf.WriteString(field.StringValue())
	}
	if rec.Exception != nil {
		buf.WriteByte('\n')
		buf.WriteString(rec.Exception.Text())
	}
	if rec.Stack != nil {
		buf.WriteByte('\n')
		buf.WriteString(rec.Stack.Text())
	}
	buf.WriteByte('\n')
}
