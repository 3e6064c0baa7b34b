// Command logrecv receives records sent by the socket handler and prints
// them, or relays them into loggers built from a configuration file.
//
// Usage:
//
//	logrecv [--network tcp|unix] [--listen ADDR] [--format text|json]
//	        [--level LEVEL] [--config FILE] [--max-frame-size N] [--verbose]
//
// With --config every record is logged through the logger of the same
// name in the configured registry, so levels, filters and handlers of
// that document apply. Without it records at or above --level are
// written to stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/fanlog/config"
	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/formatter"
	"github.com/philipp01105/fanlog/handler"
	"github.com/philipp01105/fanlog/handler/sockethandler"
	"github.com/philipp01105/fanlog/handler/streamhandler"
)

// Version is set with -ldflags "-X main.Version=..."
var Version = "dev"

const defaultListen = "127.0.0.1:9020"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "logrecv:", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "logrecv",
		Usage:   "receive records from fanlog socket handlers",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "network",
				Usage: "tcp, tcp4, tcp6 or unix",
				Value: "tcp",
			},
			&cli.StringFlag{
				Name:    "listen",
				Aliases: []string{"l"},
				Usage:   "address or socket path to listen on",
				Value:   defaultListen,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "output format: text or json",
				Value:   formatter.TextID,
			},
			&cli.StringFlag{
				Name:  "level",
				Usage: "lowest level printed to stdout",
				Value: "TRACE",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML or JSON logging configuration to relay records into",
			},
			&cli.IntFlag{
				Name:  "max-frame-size",
				Usage: "largest accepted frame payload in bytes",
				Value: sockethandler.DefaultMaxFrameSize,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log connection events",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	log := newLogger(cmd.Bool("verbose"))
	defer log.Sync() //nolint:errcheck // stderr

	deliver, closeOutput, err := newOutput(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeOutput(); err != nil {
			log.Warn("closing output", zap.Error(err))
		}
	}()

	srv, err := Listen(cmd.String("network"), cmd.String("listen"), cmd.Int("max-frame-size"), deliver, log)
	if err != nil {
		return err
	}
	log.Info("listening", zap.Stringer("addr", srv.Addr()))
	return srv.Serve(ctx)
}

// newOutput returns the per-record callback and its teardown.
func newOutput(cmd *cli.Command) (func(*core.Record), func() error, error) {
	if path := cmd.String("config"); path != "" {
		doc, err := config.LoadFile(path)
		if err != nil {
			return nil, nil, err
		}
		built, err := doc.Build()
		if err != nil {
			return nil, nil, err
		}
		return func(rec *core.Record) { built.Logger(rec.Logger).LogRecord(rec) }, built.Close, nil
	}

	f, err := formatter.Lookup(cmd.String("format"))
	if err != nil {
		return nil, nil, err
	}
	threshold, err := core.ParseLevel(cmd.String("level"))
	if err != nil {
		return nil, nil, err
	}
	out, err := streamhandler.NewStreamHandler(streamhandler.StreamConfig{
		Options: handler.Options{Name: "stdout", Capacity: 1024, Overflow: handler.Block, Formatter: f},
		Writer:  os.Stdout,
	})
	if err != nil {
		return nil, nil, err
	}
	return func(rec *core.Record) {
		if rec.Level >= threshold {
			_ = out.Handle(rec)
		}
	}, out.Close, nil
}

func newLogger(verbose bool) *zap.Logger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)).Named("logrecv")
}
