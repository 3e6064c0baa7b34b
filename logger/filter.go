package logger

import (
	"reflect"
	"strings"

	"github.com/philipp01105/fanlog/core"
)

// Filter decides whether a record passes a logger's gate
type Filter interface {
	Allow(rec *core.Record) bool
}

// FilterFunc adapts a function to Filter. Function values cannot be
// compared, so a FilterFunc can only be removed through a pointer to it
// or by ClearFilters.
type FilterFunc func(rec *core.Record) bool

// Allow calls f(rec)
func (f FilterFunc) Allow(rec *core.Record) bool {
	return f(rec)
}

// NameFilter passes records from the named logger and its descendants
type NameFilter struct {
	name string
}

// NewNameFilter creates a NameFilter. An empty name passes everything.
func NewNameFilter(name string) *NameFilter {
	return &NameFilter{name: name}
}

// Allow reports whether rec.Logger is name or below it in the hierarchy
func (f *NameFilter) Allow(rec *core.Record) bool {
	if f.name == "" || rec.Logger == f.name {
		return true
	}
	return strings.HasPrefix(rec.Logger, f.name) && len(rec.Logger) > len(f.name) && rec.Logger[len(f.name)] == '.'
}

// LevelRangeFilter passes records with Min <= level <= Max
type LevelRangeFilter struct {
	Min, Max core.Level
}

// Allow reports whether rec.Level lies in the range
func (f *LevelRangeFilter) Allow(rec *core.Record) bool {
	return rec.Level >= f.Min && rec.Level <= f.Max
}

// sameObject reports identity equality. Values of non-comparable dynamic
// types never match.
func sameObject(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta == nil || ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
