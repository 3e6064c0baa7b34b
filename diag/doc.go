// Package diag carries fanlog's own diagnostics.
//
// Loggers and handler workers must never report their failures through
// the logging pipeline they are part of, so internal warnings (queue
// overflow, connection failures, rotation errors, worker panics) go to a
// separate zap logger. By default it writes console-encoded warnings to
// stderr; applications and tests replace it with SetLogger.
//
// Warner batches repeated occurrences of the same condition into at most
// one warning per interval, each carrying the number of occurrences seen
// since the previous emission.
package diag
