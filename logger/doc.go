// Package logger is the public API of fanlog. Most users only need to
// import this package.
//
// Loggers live in a Registry and are addressed by dotted names. The
// parent of "app.db" is "app" if that logger exists, otherwise the root.
// GetLogger creates loggers on first use:
//
//	log := logger.GetLogger("app.db")
//	log.AddHandler(fileHandler)
//	log.Info("connected", logger.String("host", host))
//
// Every Logger owns a bounded queue and a worker goroutine. Log checks
// the level and the filters on the caller's goroutine, formats the
// record, and enqueues it without blocking; a full queue drops the
// record and increments Dropped. The worker hands each record to the
// handlers that were attached when it was logged and, while Propagate is
// set, to the handlers of each ancestor. Ancestors' own levels and
// filters are not consulted.
//
// FlushHandlers waits until the worker has caught up and then flushes
// the handlers. Close stops the worker after it has delivered everything
// already queued. Handlers are shared between loggers and are closed by
// Registry.Shutdown, not by Logger.Close.
//
// The package-level functions log through the root of a default
// registry, which writes text to stderr:
//
//	logger.Info("ready", logger.Int("port", 8080))
//
// NewSlogHandler makes a Logger the backend of log/slog, and WithContext
// attaches OpenTelemetry trace and span ids.
package logger
