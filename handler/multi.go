package handler

import (
	"go.uber.org/multierr"

	"github.com/philipp01105/fanlog/core"
)

// MultiHandler sends each record to multiple handlers
type MultiHandler struct {
	handlers []Handler
}

// NewMultiHandler creates a new multi-handler
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	return &MultiHandler{handlers: handlers}
}

// Handlers returns the children
func (h *MultiHandler) Handlers() []Handler {
	return append([]Handler(nil), h.handlers...)
}

// Handle gives every child its own copy of rec. Child errors are combined.
func (h *MultiHandler) Handle(rec *core.Record) error {
	var err error
	for i, child := range h.handlers {
		r := rec
		if i < len(h.handlers)-1 {
			r = rec.Clone()
		}
		err = multierr.Append(err, child.Handle(r))
	}
	return err
}

// Flush flushes every child and reports whether all succeeded
func (h *MultiHandler) Flush() bool {
	ok := true
	for _, child := range h.handlers {
		if !child.Flush() {
			ok = false
		}
	}
	return ok
}

// Close closes all handlers
func (h *MultiHandler) Close() error {
	var err error
	for _, child := range h.handlers {
		err = multierr.Append(err, child.Close())
	}
	return err
}
