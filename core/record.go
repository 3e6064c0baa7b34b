package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Record represents a log record with all its metadata
type Record struct {
	Logger     string
	Level      Level
	Message    string
	Time       time.Time
	Caller     CallerInfo
	Process    int
	Thread     uint64
	ThreadName string
	Fields     []Field
	Exception  *ExceptionInfo
	Stack      *StackInfo
}

// CallerInfo contains information about the caller
type CallerInfo struct {
	File      string
	ShortFile string
	Line      int
	Function  string
	Module    string
	Defined   bool
}

// Frame is a single frame of a traceback or stack payload.
type Frame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
	Source   string `json:"source,omitempty"`
}

// ExceptionInfo is the structured form of an error captured with a record.
type ExceptionInfo struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Frames  []Frame        `json:"frames,omitempty"`
	Cause   *ExceptionInfo `json:"cause,omitempty"`
}

// StackInfo is the structured stack captured at the log call site.
type StackInfo struct {
	Frames []Frame `json:"frames"`
}

var pid = os.Getpid()

// NewRecord builds a record stamped with the current time and process id.
func NewRecord(logger string, level Level, msg string) *Record {
	return &Record{
		Logger:  logger,
		Level:   level,
		Message: msg,
		Time:    time.Now(),
		Process: pid,
	}
}

// Clone returns a deep copy of r. Handlers receive clones so that no two
// workers share mutable state.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.Fields != nil {
		c.Fields = make([]Field, len(r.Fields))
		copy(c.Fields, r.Fields)
	}
	c.Exception = r.Exception.clone()
	if r.Stack != nil {
		c.Stack = &StackInfo{Frames: cloneFrames(r.Stack.Frames)}
	}
	return &c
}

func (e *ExceptionInfo) clone() *ExceptionInfo {
	if e == nil {
		return nil
	}
	c := *e
	c.Frames = cloneFrames(e.Frames)
	c.Cause = e.Cause.clone()
	return &c
}

func cloneFrames(frames []Frame) []Frame {
	if frames == nil {
		return nil
	}
	out := make([]Frame, len(frames))
	copy(out, frames)
	return out
}

// Text renders the exception chain as a traceback, innermost cause first.
func (e *ExceptionInfo) Text() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	e.writeText(&sb)
	return strings.TrimSuffix(sb.String(), "\n")
}

func (e *ExceptionInfo) writeText(sb *strings.Builder) {
	if e.Cause != nil {
		e.Cause.writeText(sb)
		sb.WriteString("\nThe above exception was the direct cause of the following exception:\n\n")
	}
	if len(e.Frames) > 0 {
		sb.WriteString("Traceback (most recent call last):\n")
		writeFrames(sb, e.Frames)
	}
	sb.WriteString(e.Type)
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	sb.WriteByte('\n')
}

// Text renders the stack in traceback form.
func (s *StackInfo) Text() string {
	if s == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("Stack (most recent call last):\n")
	writeFrames(&sb, s.Frames)
	return strings.TrimSuffix(sb.String(), "\n")
}

func writeFrames(sb *strings.Builder, frames []Frame) {
	for _, f := range frames {
		sb.WriteString(`  File "`)
		sb.WriteString(f.File)
		sb.WriteString(`", line `)
		sb.WriteString(itoa(f.Line))
		sb.WriteString(", in ")
		sb.WriteString(f.Function)
		sb.WriteByte('\n')
		if f.Source != "" {
			sb.WriteString("    ")
			sb.WriteString(f.Source)
			sb.WriteByte('\n')
		}
	}
}

// GetCaller retrieves caller information
func GetCaller(skip int) CallerInfo {
	pc, file, line, ok := runtime.Caller(skip + 1)
	if !ok {
		return CallerInfo{}
	}

	fn := runtime.FuncForPC(pc)
	var funcName string
	if fn != nil {
		funcName = fn.Name()
	}

	return CallerInfo{
		File:      file,
		ShortFile: filepath.Base(file),
		Line:      line,
		Function:  funcName,
		Module:    moduleOf(funcName),
		Defined:   true,
	}
}

// CallerFromPC resolves a program counter, as carried by log/slog
// records, to caller information.
func CallerFromPC(pc uintptr) CallerInfo {
	if pc == 0 {
		return CallerInfo{}
	}
	f, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if f.File == "" {
		return CallerInfo{}
	}
	return CallerInfo{
		File:      f.File,
		ShortFile: filepath.Base(f.File),
		Line:      f.Line,
		Function:  f.Function,
		Module:    moduleOf(f.Function),
		Defined:   true,
	}
}

// ExceptionFromError converts err and its wrapped chain into an
// ExceptionInfo. The innermost error becomes the deepest Cause.
func ExceptionFromError(err error) *ExceptionInfo {
	if err == nil {
		return nil
	}
	info := &ExceptionInfo{Type: fmt.Sprintf("%T", err), Message: err.Error()}
	if next := errors.Unwrap(err); next != nil {
		info.Cause = ExceptionFromError(next)
	}
	return info
}

// CaptureStack records the goroutine's stack, skipping skip frames above
// the caller of CaptureStack.
func CaptureStack(skip int) *StackInfo {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var out []Frame
	for {
		f, more := frames.Next()
		out = append(out, Frame{File: f.File, Line: f.Line, Function: f.Function})
		if !more {
			break
		}
	}
	// Oldest call first, as in a traceback.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return &StackInfo{Frames: out}
}

// moduleOf extracts the package name from a fully qualified function name,
// e.g. "github.com/a/b/pkg.(*T).M" yields "pkg".
func moduleOf(funcName string) string {
	if funcName == "" {
		return ""
	}
	name := funcName
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return name
}
