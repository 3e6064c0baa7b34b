// Package core defines the shared types used across fanlog.
//
// It provides the Level type for severity gating, the Record type that
// represents a single log event, and the Field type for structured
// key-value metadata attached to a record.
//
// A Record is immutable once a logger has handed it off. When a record
// fans out to several handlers each handler receives its own copy made
// with Record.Clone, so a handler worker may keep or mutate its copy
// without coordinating with anybody else.
//
// Records can be serialized into a schema-versioned payload with
// EncodeRecord and restored with DecodeRecord. The socket handler uses
// this payload as its frame body.
package core
