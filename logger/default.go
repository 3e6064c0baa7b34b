package logger

import (
	"os"
	"sync"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/handler"
	"github.com/philipp01105/fanlog/handler/streamhandler"
)

var (
	defaultRegistry *Registry
	defaultMu       sync.RWMutex
)

// newDefaultRegistry builds a registry whose root writes text to stderr.
func newDefaultRegistry() *Registry {
	reg, err := NewRegistry(DefaultOptions())
	if err != nil {
		panic(err)
	}
	h, err := streamhandler.NewStreamHandler(streamhandler.StreamConfig{
		Options: handler.Options{Name: "stderr", Capacity: DefaultCapacity},
		Writer:  os.Stderr,
	})
	if err != nil {
		panic(err)
	}
	reg.Root().AddHandler(h)
	return reg
}

// Default returns the default registry, creating it on first use
func Default() *Registry {
	defaultMu.RLock()
	reg := defaultRegistry
	defaultMu.RUnlock()
	if reg != nil {
		return reg
	}

	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = newDefaultRegistry()
	}
	return defaultRegistry
}

// SetDefault replaces the default registry and returns the previous one,
// which may be nil if it was never used
func SetDefault(r *Registry) *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultRegistry
	defaultRegistry = r
	return prev
}

// Shutdown shuts the default registry down. The next use creates a new one.
func Shutdown() error {
	defaultMu.Lock()
	reg := defaultRegistry
	defaultRegistry = nil
	defaultMu.Unlock()
	if reg == nil {
		return nil
	}
	return reg.Shutdown()
}

// Package-level convenience functions using the default registry

// GetLogger returns the named logger from the default registry
func GetLogger(name string) *Logger {
	return Default().GetLogger(name)
}

// Root returns the root logger of the default registry
func Root() *Logger {
	return Default().Root()
}

// Trace logs a trace message using the default root logger
func Trace(msg string, fields ...core.Field) {
	Root().log(1, core.TraceLevel, msg, nil, fields)
}

// Debug logs a debug message using the default root logger
func Debug(msg string, fields ...core.Field) {
	Root().log(1, core.DebugLevel, msg, nil, fields)
}

// Info logs an info message using the default root logger
func Info(msg string, fields ...core.Field) {
	Root().log(1, core.InfoLevel, msg, nil, fields)
}

// Warn logs a warning message using the default root logger
func Warn(msg string, fields ...core.Field) {
	Root().log(1, core.WarnLevel, msg, nil, fields)
}

// Error logs an error message using the default root logger
func Error(msg string, fields ...core.Field) {
	Root().log(1, core.ErrorLevel, msg, nil, fields)
}

// Critical logs a critical message using the default root logger
func Critical(msg string, fields ...core.Field) {
	Root().log(1, core.CriticalLevel, msg, nil, fields)
}

// With creates an entry on the default root logger with additional fields
func With(fields ...core.Field) *Entry {
	return Root().With(fields...)
}
