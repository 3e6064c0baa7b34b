// Package streamhandler provides a queued handler that writes formatted
// records to an io.Writer (default: os.Stdout).
//
// The writer is only ever touched by the handler's worker goroutine, so
// writers that are not safe for concurrent use need no extra locking.
package streamhandler
