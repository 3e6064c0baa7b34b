// Package formatter defines how log records are serialized into bytes.
//
// It exposes two interfaces: Formatter, which returns a []byte, and
// WriterFormatter, which writes directly to an io.Writer. File handlers
// check for WriterFormatter at construction time and prefer it when
// available, eliminating the intermediate byte slice on the write path.
//
// Both built-in formatters implement both interfaces through one pooled
// render path. TextFormatter writes "time [LEVEL] logger: message k=v";
// JSONFormatter writes one object per line with the record's level,
// levelno, logger, message, process and fields.
//
// Formatters are shared between loggers and handler workers and must be
// safe for concurrent use. Lookup resolves the built-in identifiers
// "text" and "json" for configuration by name.
//
// Buffers larger than 64 KiB are not returned to the pool to prevent a
// single large log line from permanently inflating memory usage.
package formatter
