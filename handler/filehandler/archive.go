package filehandler

import (
	"context"
	"fmt"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/formatter"
	"github.com/philipp01105/fanlog/handler"
)

// ArchiveConfig holds configuration for a lumberjack-managed log file.
// Backups are named with a timestamp rather than a number.
type ArchiveConfig struct {
	handler.Options
	// Filename is the path to the log file
	Filename string
	// MaxSizeMB is the size in megabytes before rollover (default: 100)
	MaxSizeMB int
	// MaxAgeDays removes backups older than this many days (0 = keep)
	MaxAgeDays int
	// MaxBackups is the number of backups kept (0 = keep all)
	MaxBackups int
	// Compress gzips rolled-over files
	Compress bool
	// LocalTime uses local time in backup names instead of UTC
	LocalTime bool
}

// ArchiveHandler writes formatted records through a lumberjack.Logger
type ArchiveHandler struct {
	*handler.Worker
	lj *lumberjack.Logger
}

// NewArchiveHandler creates an archive handler and starts its worker.
func NewArchiveHandler(cfg ArchiveConfig) (*ArchiveHandler, error) {
	if cfg.Filename == "" {
		return nil, fmt.Errorf("%w: filename is required", handler.ErrInvalidConfig)
	}
	if cfg.MaxSizeMB < 0 || cfg.MaxAgeDays < 0 || cfg.MaxBackups < 0 {
		return nil, fmt.Errorf("%w: negative archive limits", handler.ErrInvalidConfig)
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSizeMB,
		MaxAge:     cfg.MaxAgeDays,
		MaxBackups: cfg.MaxBackups,
		Compress:   cfg.Compress,
		LocalTime:  cfg.LocalTime,
	}
	w, err := handler.NewWorker(cfg.Options, &archiveSink{lj: lj, formatter: cfg.Formatter})
	if err != nil {
		return nil, err
	}
	return &ArchiveHandler{Worker: w, lj: lj}, nil
}

// Filename returns the active log file path.
func (h *ArchiveHandler) Filename() string {
	return h.lj.Filename
}

type archiveSink struct {
	lj        *lumberjack.Logger
	formatter formatter.Formatter
}

func (s *archiveSink) Write(_ context.Context, rec *core.Record) error {
	data, err := s.formatter.Format(rec)
	if err != nil {
		return err
	}
	_, err = s.lj.Write(data)
	return err
}

// Flush is a no-op: lumberjack writes straight to the file.
func (s *archiveSink) Flush() error {
	return nil
}

func (s *archiveSink) Close() error {
	return s.lj.Close()
}
