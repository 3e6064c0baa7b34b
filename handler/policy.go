package handler

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// OverflowPolicy defines what a producer does when a handler's queue is full
type OverflowPolicy int

const (
	// Drop discards the record without blocking the caller
	Drop OverflowPolicy = iota
	// Block waits until space is available
	Block
	// Timeout waits up to Options.BlockTimeout, then drops
	Timeout
)

// String returns the string representation of the policy
func (p OverflowPolicy) String() string {
	switch p {
	case Drop:
		return "drop"
	case Block:
		return "block"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ParseOverflowPolicy converts a policy name to an OverflowPolicy.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "drop", "":
		return Drop, nil
	case "block":
		return Block, nil
	case "timeout":
		return Timeout, nil
	default:
		return Drop, fmt.Errorf("%w: unknown overflow policy %q", ErrInvalidConfig, s)
	}
}

// Stats tracks handler statistics
type Stats struct {
	// ProcessedTotal counts records written by the worker
	ProcessedTotal uint64
	// DroppedTotal counts records discarded by the overflow policy
	DroppedTotal uint64
	// BlockedTotal counts producers that had to wait for queue space
	BlockedTotal uint64
	// ErrorsTotal counts records the worker failed to deliver
	ErrorsTotal uint64
}

// NewStats creates a new Stats instance
func NewStats() *Stats {
	return &Stats{}
}

// IncrementDropped atomically increments the dropped counter
func (s *Stats) IncrementDropped() {
	atomic.AddUint64(&s.DroppedTotal, 1)
}

// IncrementBlocked atomically increments the blocked counter
func (s *Stats) IncrementBlocked() {
	atomic.AddUint64(&s.BlockedTotal, 1)
}

// IncrementProcessed atomically increments the processed counter
func (s *Stats) IncrementProcessed() {
	atomic.AddUint64(&s.ProcessedTotal, 1)
}

// IncrementErrors atomically increments the error counter
func (s *Stats) IncrementErrors() {
	atomic.AddUint64(&s.ErrorsTotal, 1)
}

// Reset resets all counters to zero
func (s *Stats) Reset() {
	atomic.StoreUint64(&s.ProcessedTotal, 0)
	atomic.StoreUint64(&s.DroppedTotal, 0)
	atomic.StoreUint64(&s.BlockedTotal, 0)
	atomic.StoreUint64(&s.ErrorsTotal, 0)
}

// Snapshot is a point-in-time copy of Stats
type Snapshot struct {
	ProcessedTotal uint64
	DroppedTotal   uint64
	BlockedTotal   uint64
	ErrorsTotal    uint64
}

// GetSnapshot returns a snapshot of current statistics
func (s *Stats) GetSnapshot() Snapshot {
	return Snapshot{
		ProcessedTotal: atomic.LoadUint64(&s.ProcessedTotal),
		DroppedTotal:   atomic.LoadUint64(&s.DroppedTotal),
		BlockedTotal:   atomic.LoadUint64(&s.BlockedTotal),
		ErrorsTotal:    atomic.LoadUint64(&s.ErrorsTotal),
	}
}
