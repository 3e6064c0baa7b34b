package formatter

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/philipp01105/fanlog/core"
)

// Formatter defines the interface for log formatters
type Formatter interface {
	// Format formats a log record into bytes, newline terminated
	Format(rec *core.Record) ([]byte, error)
}

// WriterFormatter is an optional interface that formatters can implement
// to write directly to a writer without intermediate byte slice allocation.
type WriterFormatter interface {
	// FormatTo formats a log record and writes it directly to the writer
	FormatTo(rec *core.Record, w io.Writer) error
}

// Config holds common formatter configuration
type Config struct {
	// IncludeCaller enables caller information in log output
	IncludeCaller bool
	// TimestampFormat specifies the time format (empty for RFC3339)
	TimestampFormat string
}

// Built-in formatter identifiers accepted by Lookup.
const (
	TextID = "text"
	JSONID = "json"
)

// Lookup resolves a built-in formatter identifier.
func Lookup(id string) (Formatter, error) {
	switch id {
	case TextID, "":
		return NewTextFormatter(Config{}), nil
	case JSONID:
		return NewJSONFormatter(Config{}), nil
	default:
		return nil, fmt.Errorf("formatter: unknown formatter %q", id)
	}
}

// FormatString formats rec and strips the trailing newline.
func FormatString(f Formatter, rec *core.Record) (string, error) {
	data, err := f.Format(rec)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(data, []byte{'\n'})), nil
}

// bufferPool holds render buffers. Buffers that grew past maxPooled are
// dropped so one huge record does not pin memory.
var bufferPool = sync.Pool{
	New: func() any {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

const maxPooled = 64 << 10

// appender renders a record, newline terminated, into buf.
type appender interface {
	appendRecord(buf *bytes.Buffer, rec *core.Record)
}

// render returns a copy of a's rendering of rec.
func render(a appender, rec *core.Record) []byte {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	a.appendRecord(buf, rec)
	out := bytes.Clone(buf.Bytes())
	release(buf)
	return out
}

// renderTo writes a's rendering of rec to w with a single Write call.
func renderTo(a appender, rec *core.Record, w io.Writer) error {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	a.appendRecord(buf, rec)
	_, err := w.Write(buf.Bytes())
	release(buf)
	return err
}

func release(buf *bytes.Buffer) {
	if buf.Cap() <= maxPooled {
		bufferPool.Put(buf)
	}
}
