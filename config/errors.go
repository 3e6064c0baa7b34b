package config

import "errors"

var (
	// ErrUnsupportedFormat is returned for document formats other than YAML and JSON.
	ErrUnsupportedFormat = errors.New("config: unsupported format")
	// ErrParse wraps syntax and decoding errors.
	ErrParse = errors.New("config: failed to parse document")
	// ErrInvalid reports a value the builder cannot accept.
	ErrInvalid = errors.New("config: invalid value")
	// ErrUnknownReference reports a formatter, filter or handler id that is
	// not defined.
	ErrUnknownReference = errors.New("config: unknown reference")
	// ErrDuplicate reports an id or logger name defined more than once.
	ErrDuplicate = errors.New("config: duplicate entry")
)
