package logger

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/philipp01105/fanlog/handler"
)

// RootName is the name of every registry's root logger.
const RootName = "root"

// Registry owns a tree of named loggers. Names are dotted paths; the
// parent of "a.b.c" is the nearest existing logger among "a.b", "a" and
// the root.
type Registry struct {
	opts Options

	mu      sync.RWMutex
	loggers map[string]*Logger
	root    *Logger
}

// NewRegistry creates a registry whose loggers are built from opts.
func NewRegistry(opts Options) (*Registry, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	r := &Registry{opts: opts, loggers: make(map[string]*Logger)}
	r.root = r.newRoot()
	return r, nil
}

func (r *Registry) newRoot() *Logger {
	root := newLogger(RootName, r, r.opts)
	root.SetPropagate(false)
	root.start()
	return root
}

// Root returns the root logger
func (r *Registry) Root() *Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.root
}

// GetLogger returns the logger called name, creating it on first use.
// "" and RootName return the root logger.
func (r *Registry) GetLogger(name string) *Logger {
	if name == "" || name == RootName {
		return r.Root()
	}
	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.loggers[name]; ok {
		return l
	}
	l = newLogger(name, r, r.opts)
	l.start()
	r.loggers[name] = l
	return l
}

// Lookup returns an existing logger without creating one
func (r *Registry) Lookup(name string) (*Logger, bool) {
	if name == "" || name == RootName {
		return r.Root(), true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loggers[name]
	return l, ok
}

// Loggers returns every logger, root first, then by name
func (r *Registry) Loggers() []*Logger {
	r.mu.RLock()
	out := make([]*Logger, 0, len(r.loggers)+1)
	for _, l := range r.loggers {
		out = append(out, l)
	}
	root := r.root
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return append([]*Logger{root}, out...)
}

// parentOf returns the nearest existing ancestor of name, or nil for the
// root.
func (r *Registry) parentOf(name string) *Logger {
	if name == RootName {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for {
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			return r.root
		}
		name = name[:i]
		if l, ok := r.loggers[name]; ok {
			return l
		}
	}
}

// Reset closes every logger and starts over with a fresh root. Handlers
// are left open.
func (r *Registry) Reset() error {
	r.mu.Lock()
	old := make([]*Logger, 0, len(r.loggers)+1)
	old = append(old, r.root)
	for _, l := range r.loggers {
		old = append(old, l)
	}
	r.loggers = make(map[string]*Logger)
	r.root = r.newRoot()
	r.mu.Unlock()

	var err error
	for _, l := range old {
		err = multierr.Append(err, l.Close())
	}
	return err
}

// Shutdown closes every logger, then flushes and closes each distinct
// handler attached to any of them.
func (r *Registry) Shutdown() error {
	loggers := r.Loggers()
	var (
		err      error
		handlers []handler.Handler
	)
	for _, l := range loggers {
		err = multierr.Append(err, l.Close())
		for _, h := range l.Handlers() {
			if !containsHandler(handlers, h) {
				handlers = append(handlers, h)
			}
		}
	}
	for _, h := range handlers {
		h.Flush()
		err = multierr.Append(err, h.Close())
	}
	return err
}

func containsHandler(list []handler.Handler, h handler.Handler) bool {
	for _, cur := range list {
		if sameObject(cur, h) {
			return true
		}
	}
	return false
}
