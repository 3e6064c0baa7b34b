package streamhandler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/formatter"
	"github.com/philipp01105/fanlog/handler"
)

// StreamConfig holds configuration for the stream handler
type StreamConfig struct {
	handler.Options
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
}

// StreamHandler writes formatted records to an io.Writer on its worker
type StreamHandler struct {
	*handler.Worker
}

// NewStreamHandler creates a stream handler and starts its worker.
func NewStreamHandler(cfg StreamConfig) (*StreamHandler, error) {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if err := cfg.Options.Validate(); err != nil {
		return nil, err
	}
	s := &streamSink{w: cfg.Writer, formatter: cfg.Formatter}
	s.writerFormatter, _ = cfg.Formatter.(formatter.WriterFormatter)
	w, err := handler.NewWorker(cfg.Options, s)
	if err != nil {
		return nil, err
	}
	return &StreamHandler{Worker: w}, nil
}

// WriterByName resolves "stdout", "stderr" or "" (stdout) to a writer.
func WriterByName(name string) (io.Writer, error) {
	switch strings.ToLower(name) {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return nil, fmt.Errorf("%w: unknown stream %q", handler.ErrInvalidConfig, name)
	}
}

type streamSink struct {
	w               io.Writer
	formatter       formatter.Formatter
	writerFormatter formatter.WriterFormatter
}

func (s *streamSink) Write(_ context.Context, rec *core.Record) error {
	if s.writerFormatter != nil {
		return s.writerFormatter.FormatTo(rec, s.w)
	}
	data, err := s.formatter.Format(rec)
	if err != nil {
		return err
	}
	_, err = s.w.Write(data)
	return err
}

func (s *streamSink) Flush() error {
	switch w := s.w.(type) {
	case *bufio.Writer:
		return w.Flush()
	case interface{ Flush() error }:
		return w.Flush()
	}
	return nil
}

// Close leaves the writer open; the handler does not own it.
func (s *streamSink) Close() error {
	return nil
}
