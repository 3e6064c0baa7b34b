package core

import (
	"fmt"
	"strings"
)

// Level represents the severity level of a log record
type Level int8

const (
	// TraceLevel for very fine grained diagnostics
	TraceLevel Level = iota
	// DebugLevel for detailed debugging information
	DebugLevel
	// InfoLevel for general informational messages (default)
	InfoLevel
	// WarnLevel for warning messages
	WarnLevel
	// ErrorLevel for error messages
	ErrorLevel
	// CriticalLevel for failures the application may not survive
	CriticalLevel
)

var levelNames = [...]string{
	TraceLevel:    "TRACE",
	DebugLevel:    "DEBUG",
	InfoLevel:     "INFO",
	WarnLevel:     "WARNING",
	ErrorLevel:    "ERROR",
	CriticalLevel: "CRITICAL",
}

// levelNumbers follows the numeric scale used by the standard logging
// hierarchy so that remote collectors see familiar levelno values.
var levelNumbers = [...]int{
	TraceLevel:    5,
	DebugLevel:    10,
	InfoLevel:     20,
	WarnLevel:     30,
	ErrorLevel:    40,
	CriticalLevel: 50,
}

// String returns the string representation of the level
func (l Level) String() string {
	if l.Valid() {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// Number returns the numeric severity (5, 10, 20, 30, 40, 50).
func (l Level) Number() int {
	if l.Valid() {
		return levelNumbers[l]
	}
	return 0
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= TraceLevel && l <= CriticalLevel
}

// ParseLevel converts a level name or its numeric value to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE", "5":
		return TraceLevel, nil
	case "DEBUG", "10":
		return DebugLevel, nil
	case "INFO", "20":
		return InfoLevel, nil
	case "WARN", "WARNING", "30":
		return WarnLevel, nil
	case "ERROR", "40":
		return ErrorLevel, nil
	case "CRITICAL", "FATAL", "50":
		return CriticalLevel, nil
	default:
		return InfoLevel, fmt.Errorf("core: unknown level %q", s)
	}
}
