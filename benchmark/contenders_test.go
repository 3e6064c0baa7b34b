package benchmark

import (
	"io"
	"log/slog"
	"time"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/formatter"
	"github.com/philipp01105/fanlog/handler"
	"github.com/philipp01105/fanlog/handler/streamhandler"
	"github.com/philipp01105/fanlog/logger"
)

// contender runs the benchmark scenarios against one logging library.
// Every contender writes JSON at INFO to the writer it was built with.
type contender struct {
	// plain logs a message with no fields
	plain func(msg string)
	// request logs a message with method, path, status and latency
	request func(msg string)
	// disabled logs below the threshold
	disabled func(msg string)
	// scoped logs through a child carrying service, env and version
	scoped func(msg string)
	// dropped reports records lost by asynchronous contenders
	dropped func() uint64
	close   func()
}

type newContender func(w io.Writer) contender

var contenders = []struct {
	name string
	new  newContender
}{
	{"fanlog", newFanlog},
	{"zap", newZap},
	{"slog", newSlog},
	{"logrus", newLogrus},
	{"zerolog", newZerolog},
}

const latency = 150 * time.Millisecond

func newFanlog(w io.Writer) contender {
	json := formatter.NewJSONFormatter(formatter.Config{})
	h, err := streamhandler.NewStreamHandler(streamhandler.StreamConfig{
		Options: handler.Options{Name: "bench", Capacity: 8192, Formatter: json},
		Writer:  w,
	})
	if err != nil {
		panic(err)
	}
	l, err := logger.New("bench", logger.Options{
		Level:         core.InfoLevel,
		Formatter:     json,
		Capacity:      8192,
		DisableCaller: true,
	})
	if err != nil {
		panic(err)
	}
	l.AddHandler(h)
	child := l.With(
		logger.String("service", "api"),
		logger.String("env", "prod"),
		logger.String("version", "1.0.0"),
	)
	return contender{
		plain: func(msg string) { l.Info(msg) },
		request: func(msg string) {
			l.Info(msg,
				logger.String("method", "GET"),
				logger.String("path", "/api/users"),
				logger.Int("status", 200),
				logger.Duration("latency", latency),
			)
		},
		disabled: func(msg string) { l.Debug(msg) },
		scoped:   func(msg string) { child.Info(msg, logger.Int("status", 200)) },
		dropped:  func() uint64 { return l.Dropped() + h.Stats().DroppedTotal },
		close: func() {
			_ = l.Close()
			_ = h.Close()
		},
	}
}

func newZap(w io.Writer) contender {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	l := zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zap.InfoLevel))
	child := l.With(zap.String("service", "api"), zap.String("env", "prod"), zap.String("version", "1.0.0"))
	return contender{
		plain: func(msg string) { l.Info(msg) },
		request: func(msg string) {
			l.Info(msg,
				zap.String("method", "GET"),
				zap.String("path", "/api/users"),
				zap.Int("status", 200),
				zap.Duration("latency", latency),
			)
		},
		disabled: func(msg string) { l.Debug(msg) },
		scoped:   func(msg string) { child.Info(msg, zap.Int("status", 200)) },
		dropped:  func() uint64 { return 0 },
		close:    func() { _ = l.Sync() },
	}
}

func newSlog(w io.Writer) contender {
	l := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	child := l.With(slog.String("service", "api"), slog.String("env", "prod"), slog.String("version", "1.0.0"))
	return contender{
		plain: func(msg string) { l.Info(msg) },
		request: func(msg string) {
			l.Info(msg,
				slog.String("method", "GET"),
				slog.String("path", "/api/users"),
				slog.Int("status", 200),
				slog.Duration("latency", latency),
			)
		},
		disabled: func(msg string) { l.Debug(msg) },
		scoped:   func(msg string) { child.Info(msg, slog.Int("status", 200)) },
		dropped:  func() uint64 { return 0 },
		close:    func() {},
	}
}

func newLogrus(w io.Writer) contender {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	child := l.WithFields(logrus.Fields{"service": "api", "env": "prod", "version": "1.0.0"})
	return contender{
		plain: func(msg string) { l.Info(msg) },
		request: func(msg string) {
			l.WithFields(logrus.Fields{
				"method":  "GET",
				"path":    "/api/users",
				"status":  200,
				"latency": latency,
			}).Info(msg)
		},
		disabled: func(msg string) { l.Debug(msg) },
		scoped:   func(msg string) { child.WithField("status", 200).Info(msg) },
		dropped:  func() uint64 { return 0 },
		close:    func() {},
	}
}

func newZerolog(w io.Writer) contender {
	l := zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	child := l.With().Str("service", "api").Str("env", "prod").Str("version", "1.0.0").Logger()
	return contender{
		plain: func(msg string) { l.Info().Msg(msg) },
		request: func(msg string) {
			l.Info().
				Str("method", "GET").
				Str("path", "/api/users").
				Int("status", 200).
				Dur("latency", latency).
				Msg(msg)
		},
		disabled: func(msg string) { l.Debug().Msg(msg) },
		scoped:   func(msg string) { child.Info().Int("status", 200).Msg(msg) },
		dropped:  func() uint64 { return 0 },
		close:    func() {},
	}
}
