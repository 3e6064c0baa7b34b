package formatter

import (
	"bytes"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/philipp01105/fanlog/core"
)

// JSONFormatter formats log records as one JSON object per line. The
// object carries time, level, levelno, logger, message and process, then
// the caller (when enabled), the record fields in order, and finally the
// exception and stack text.
type JSONFormatter struct {
	Config
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(cfg Config) *JSONFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &JSONFormatter{Config: cfg}
}

// Format formats a record as JSON
func (f *JSONFormatter) Format(rec *core.Record) ([]byte, error) {
	return render(f, rec), nil
}

// FormatTo formats a record as JSON and writes it directly to the writer
func (f *JSONFormatter) FormatTo(rec *core.Record, w io.Writer) error {
	return renderTo(f, rec, w)
}

func (f *JSONFormatter) appendRecord(buf *bytes.Buffer, rec *core.Record) {
	o := jsonObject{buf: buf}
	buf.WriteByte('{')

	o.key("time")
	buf.WriteByte('"')
	buf.Write(rec.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteByte('"')

	o.str("level", rec.Level.String())
	o.int("levelno", int64(rec.Level.Number()))
	if rec.Logger != "" {
		o.str("logger", rec.Logger)
	}
	o.str("message", rec.Message)
	if rec.Process != 0 {
		o.int("process", int64(rec.Process))
	}

	if f.IncludeCaller && rec.Caller.Defined {
		o.key("caller")
		c := jsonObject{buf: buf}
		buf.WriteByte('{')
		c.str("file", rec.Caller.ShortFile)
		c.int("line", int64(rec.Caller.Line))
		if rec.Caller.Function != "" {
			c.str("function", rec.Caller.Function)
		}
		if rec.Caller.Module != "" {
			c.str("module", rec.Caller.Module)
		}
		buf.WriteByte('}')
	}

	for _, field := range rec.Fields {
		o.key(field.Key)
		appendFieldValue(buf, field)
	}

	if rec.Exception != nil {
		o.str("exception", rec.Exception.Text())
	}
	if rec.Stack != nil {
		o.str("stack", rec.Stack.Text())
	}

	buf.WriteString("}\n")
}

// jsonObject writes the members of one JSON object, inserting commas.
type jsonObject struct {
	buf     *bytes.Buffer
	started bool
}

func (o *jsonObject) key(k string) {
	if o.started {
		o.buf.WriteByte(',')
	}
	o.started = true
	appendQuoted(o.buf, k)
	o.buf.WriteByte(':')
}

func (o *jsonObject) str(k, v string) {
	o.key(k)
	appendQuoted(o.buf, v)
}

func (o *jsonObject) int(k string, v int64) {
	o.key(k)
	o.buf.Write(strconv.AppendInt(o.buf.AvailableBuffer(), v, 10))
}

const hexDigits = "0123456789abcdef"

// appendQuoted writes s as a quoted JSON string. Invalid UTF-8 is replaced
// with U+FFFD.
func appendQuoted(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c < utf8.RuneSelf {
			if c >= 0x20 && c != '"' && c != '\\' {
				i++
				continue
			}
			buf.WriteString(s[start:i])
			switch c {
			case '"', '\\':
				buf.WriteByte('\\')
				buf.WriteByte(c)
			case '\n':
				buf.WriteString(`\n`)
			case '\r':
				buf.WriteString(`\r`)
			case '\t':
				buf.WriteString(`\t`)
			default:
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[c>>4])
				buf.WriteByte(hexDigits[c&0xf])
			}
			i++
			start = i
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf.WriteString(s[start:i])
			buf.WriteString("\ufffd")
			i++
			start = i
			continue
		}
		i += size
	}
	buf.WriteString(s[start:])
	buf.WriteByte('"')
}

// appendFieldValue writes a field as a JSON value. Numbers and booleans
// stay unquoted; durations are written in nanoseconds.
func appendFieldValue(buf *bytes.Buffer, field core.Field) {
	switch field.Type {
	case core.IntType, core.Int64Type, core.DurationType:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), field.Int64, 10))
	case core.Float64Type:
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), field.Float64, 'f', -1, 64))
	case core.BoolType:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), field.Int64 == 1))
	case core.TimeType:
		buf.WriteByte('"')
		buf.Write(time.Unix(0, field.Int64).AppendFormat(buf.AvailableBuffer(), time.RFC3339Nano))
		buf.WriteByte('"')
	case core.StringType, core.ErrorType:
		appendQuoted(buf, field.Str)
	default:
		appendQuoted(buf, field.StringValue())
	}
}
