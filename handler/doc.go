// Package handler provides the Handler contract and the queued worker that
// every built-in handler is built on.
//
// A Worker owns a bounded queue and a single goroutine that feeds a Sink.
// Producers never touch the sink. When the queue is full, the handler's
// OverflowPolicy decides: Drop discards the record immediately, Block
// waits for space, Timeout waits up to Options.BlockTimeout and then
// drops. Handle reports the outcome as nil, ErrDropped or ErrClosed.
//
// Flush enqueues a marker behind everything already queued and waits for
// the worker to reach it. Close stops intake, drains what is queued,
// flushes and closes the sink.
//
// Backoff holds the retry delay state used by network handlers, and
// MultiHandler fans one record out to several handlers.
//
// Built-in handlers live in subpackages:
//
//   - streamhandler writes to an io.Writer (stdout, stderr).
//   - filehandler writes to a file, optionally rotating by size.
//   - sockethandler sends length-prefixed frames over TCP or Unix sockets.
//   - httphandler posts records to an HTTP endpoint.
package handler
