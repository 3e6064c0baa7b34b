package filehandler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/diag"
	"github.com/philipp01105/fanlog/formatter"
	"github.com/philipp01105/fanlog/handler"
)

const defaultBufferSize = 4096

// FileConfig holds configuration for file handler
type FileConfig struct {
	handler.Options
	// Filename is the path to the log file
	Filename string
	// FlushRecordInterval forces a flush to the OS every N records (required, > 0)
	FlushRecordInterval int
	// BufferSize is the size of the write buffer in bytes (default: 4096)
	BufferSize int
}

// RotatingConfig holds configuration for a size-rotated file handler
type RotatingConfig struct {
	FileConfig
	// MaxBytes is the size threshold for rotation (0 = disabled)
	MaxBytes int64
	// BackupCount is the number of backups kept (0 = disabled)
	BackupCount int
}

func (c *FileConfig) validate() error {
	if c.Filename == "" {
		return fmt.Errorf("%w: filename is required", handler.ErrInvalidConfig)
	}
	if c.FlushRecordInterval <= 0 {
		return fmt.Errorf("%w: flush record interval must be > 0, got %d", handler.ErrInvalidConfig, c.FlushRecordInterval)
	}
	if c.BufferSize < 0 {
		return fmt.Errorf("%w: negative buffer size", handler.ErrInvalidConfig)
	}
	if c.BufferSize == 0 {
		c.BufferSize = defaultBufferSize
	}
	return c.Options.Validate()
}

// FileHandler writes formatted records to a file on its worker goroutine
type FileHandler struct {
	*handler.Worker
	sink *fileSink
}

// NewFileHandler opens (or creates) cfg.Filename for appending and starts
// the handler's worker.
func NewFileHandler(cfg FileConfig) (*FileHandler, error) {
	return newFileHandler(cfg, Rotation{})
}

// NewRotatingFileHandler is like NewFileHandler but rotates the file once
// a write would take it past MaxBytes, keeping BackupCount backups.
func NewRotatingFileHandler(cfg RotatingConfig) (*FileHandler, error) {
	return newFileHandler(cfg.FileConfig, Rotation{
		Path:        cfg.Filename,
		MaxBytes:    cfg.MaxBytes,
		BackupCount: cfg.BackupCount,
	})
}

func newFileHandler(cfg FileConfig, rot Rotation) (*FileHandler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := rot.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
		return nil, err
	}
	s := &fileSink{
		path:          cfg.Filename,
		formatter:     cfg.Formatter,
		flushInterval: cfg.FlushRecordInterval,
		rotation:      rot,
		rotateFiles:   rot.Rotate,
		sizeWriter:    &sizeTrackingWriter{},
		rotateWarn: diag.NewWarner("log rotation failed, appending to current file",
			cfg.WarnInterval, zap.String("handler", cfg.Name), zap.String("path", cfg.Filename)),
	}
	s.bufWriter = bufio.NewWriterSize(s.sizeWriter, cfg.BufferSize)
	if err := s.open(os.O_APPEND); err != nil {
		return nil, err
	}

	w, err := handler.NewWorker(cfg.Options, s)
	if err != nil {
		return nil, multierr.Append(err, s.file.Close())
	}
	return &FileHandler{Worker: w, sink: s}, nil
}

// Path returns the primary log file path.
func (h *FileHandler) Path() string {
	return h.sink.path
}

// sizeTrackingWriter wraps an io.Writer and tracks total bytes in the file
type sizeTrackingWriter struct {
	w       io.Writer
	written int64
}

func (s *sizeTrackingWriter) Write(p []byte) (n int, err error) {
	n, err = s.w.Write(p)
	s.written += int64(n)
	return
}

func (s *sizeTrackingWriter) reset(w io.Writer, size int64) {
	s.w = w
	s.written = size
}

// fileSink owns the file. It is used only from the worker goroutine.
type fileSink struct {
	path          string
	file          *os.File
	bufWriter     *bufio.Writer
	sizeWriter    *sizeTrackingWriter
	formatter     formatter.Formatter
	flushInterval int
	sinceFlush    int
	rotation      Rotation
	rotateFiles   func() error
	rotateWarn    *diag.Warner
}

// open opens the primary file with O_APPEND or O_TRUNC and points the
// buffered writer at it.
func (s *fileSink) open(mode int) error {
	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|mode, 0644)
	if err != nil {
		return err
	}
	info, err := file.Stat()
	if err != nil {
		return multierr.Append(err, file.Close())
	}
	s.file = file
	s.sizeWriter.reset(file, info.Size())
	s.bufWriter.Reset(s.sizeWriter)
	return nil
}

// size is the file size including bytes still in the buffer.
func (s *fileSink) size() int64 {
	return s.sizeWriter.written + int64(s.bufWriter.Buffered())
}

func (s *fileSink) Write(_ context.Context, rec *core.Record) error {
	if s.file == nil {
		if err := s.open(os.O_APPEND); err != nil {
			return err
		}
	}
	data, err := s.formatter.Format(rec)
	if err != nil {
		return err
	}

	if s.rotation.ShouldRotate(s.size(), int64(len(data))) {
		if err := s.rotate(); err != nil {
			s.rotateWarn.Warn(zap.Error(err))
			if s.file == nil {
				return err
			}
		}
	}

	if _, err := s.bufWriter.Write(data); err != nil {
		return err
	}
	s.sinceFlush++
	if s.sinceFlush >= s.flushInterval {
		s.sinceFlush = 0
		return s.bufWriter.Flush()
	}
	return nil
}

// rotate closes the file, renames the backups and reopens a fresh file.
// When renaming fails the current file is reopened for appending.
func (s *fileSink) rotate() error {
	if err := s.bufWriter.Flush(); err != nil {
		return err
	}
	if err := s.file.Close(); err != nil {
		return err
	}
	s.file = nil

	rotErr := s.rotateFiles()
	mode := os.O_TRUNC
	if rotErr != nil {
		mode = os.O_APPEND
	}
	if err := s.open(mode); err != nil {
		return multierr.Append(rotErr, err)
	}
	return rotErr
}

func (s *fileSink) Flush() error {
	if s.file == nil {
		return nil
	}
	s.sinceFlush = 0
	if err := s.bufWriter.Flush(); err != nil {
		return err
	}
	return s.file.Sync()
}

func (s *fileSink) Close() error {
	if s.file == nil {
		return nil
	}
	err := multierr.Append(s.bufWriter.Flush(), s.file.Close())
	s.file = nil
	return err
}
