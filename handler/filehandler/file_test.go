package filehandler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/diag"
	"github.com/philipp01105/fanlog/formatter"
	"github.com/philipp01105/fanlog/handler"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// lumberjack's cleanup goroutine lives for the process.
		goleak.IgnoreAnyFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
}

// msgFormatter writes the bare message and a newline so sizes are exact.
type msgFormatter struct{}

func (msgFormatter) Format(rec *core.Record) ([]byte, error) {
	return []byte(rec.Message + "\n"), nil
}

var _ formatter.Formatter = msgFormatter{}

func opts() handler.Options {
	return handler.Options{Capacity: 64, Overflow: handler.Block, Formatter: msgFormatter{}}
}

func readFile(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	return string(data)
}

func TestFileHandler_FlushThenRead(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "logs", "app.log")
	h, err := NewFileHandler(FileConfig{Options: opts(), Filename: filename, FlushRecordInterval: 1000})
	require.NoError(t, err)
	defer h.Close()

	for _, m := range []string{"first", "second", "third"} {
		require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, m)))
	}
	require.True(t, h.Flush())
	assert.Equal(t, "first\nsecond\nthird\n", readFile(t, filename))
	assert.Equal(t, filename, h.Path())
}

func TestFileHandler_AppendsToExisting(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(filename, []byte("old\n"), 0644))

	h, err := NewFileHandler(FileConfig{Options: opts(), Filename: filename, FlushRecordInterval: 1})
	require.NoError(t, err)
	require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, "new")))
	require.NoError(t, h.Close())

	assert.Equal(t, "old\nnew\n", readFile(t, filename))
}

func TestFileHandler_FlushRecordInterval(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "app.log")
	h, err := NewFileHandler(FileConfig{Options: opts(), Filename: filename, FlushRecordInterval: 2})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, "a")))
	require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, "b")))
	require.Eventually(t, func() bool {
		data, _ := os.ReadFile(filename)
		return string(data) == "a\nb\n"
	}, time.Second, 5*time.Millisecond)
}

func TestFileHandler_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		run  func() error
	}{
		{"missing filename", func() error {
			_, err := NewFileHandler(FileConfig{Options: opts(), FlushRecordInterval: 1})
			return err
		}},
		{"zero flush interval", func() error {
			_, err := NewFileHandler(FileConfig{Options: opts(), Filename: filepath.Join(dir, "a.log")})
			return err
		}},
		{"zero capacity", func() error {
			_, err := NewFileHandler(FileConfig{Filename: filepath.Join(dir, "b.log"), FlushRecordInterval: 1})
			return err
		}},
		{"max bytes without backups", func() error {
			_, err := NewRotatingFileHandler(RotatingConfig{
				FileConfig: FileConfig{Options: opts(), Filename: filepath.Join(dir, "c.log"), FlushRecordInterval: 1},
				MaxBytes:   10,
			})
			return err
		}},
		{"backups without max bytes", func() error {
			_, err := NewRotatingFileHandler(RotatingConfig{
				FileConfig:  FileConfig{Options: opts(), Filename: filepath.Join(dir, "d.log"), FlushRecordInterval: 1},
				BackupCount: 2,
			})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), handler.ErrInvalidConfig)
		})
	}
}

func newRotating(t *testing.T, filename string, maxBytes int64, backups, flushEvery int) *FileHandler {
	t.Helper()
	h, err := NewRotatingFileHandler(RotatingConfig{
		FileConfig:  FileConfig{Options: opts(), Filename: filename, FlushRecordInterval: flushEvery},
		MaxBytes:    maxBytes,
		BackupCount: backups,
	})
	require.NoError(t, err)
	return h
}

func TestRotatingFileHandler_PromotesBackups(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "app.log")
	h := newRotating(t, filename, 20, 2, 1)

	// Every record is 12 bytes, so each write after the first rotates.
	for _, m := range []string{"record-0001", "record-0002", "record-0003", "record-0004"} {
		require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, m)))
		require.True(t, h.Flush())
	}
	require.NoError(t, h.Close())

	assert.Equal(t, "record-0004\n", readFile(t, filename))
	assert.Equal(t, "record-0003\n", readFile(t, filename+".1"))
	assert.Equal(t, "record-0002\n", readFile(t, filename+".2"))
	assert.NoFileExists(t, filename+".3")

	matches, err := filepath.Glob(filename + ".*")
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestRotatingFileHandler_CountsBufferedBytes(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "app.log")
	h := newRotating(t, filename, 20, 2, 1000)

	// 8 + 8 fits in 20, the third record would make 24.
	for _, m := range []string{"line-01", "line-02", "line-03"} {
		require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, m)))
	}
	require.True(t, h.Flush())
	require.NoError(t, h.Close())

	assert.Equal(t, "line-01\nline-02\n", readFile(t, filename+".1"))
	assert.Equal(t, "line-03\n", readFile(t, filename))
}

func TestRotatingFileHandler_OversizedRecordStillWritten(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "app.log")
	h := newRotating(t, filename, 5, 1, 1)

	long := strings.Repeat("x", 30)
	require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, long)))
	require.NoError(t, h.Close())

	assert.Equal(t, long+"\n", readFile(t, filename))
	assert.NoFileExists(t, filename+".1")
}

func TestRotatingFileHandler_PrunesStaleBackups(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(filename+".5", []byte("stale\n"), 0644))
	require.NoError(t, os.WriteFile(filename+".bak", []byte("keep\n"), 0644))

	h := newRotating(t, filename, 10, 2, 1)
	for _, m := range []string{"aaaaaaaa", "bbbbbbbb"} {
		require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, m)))
	}
	require.NoError(t, h.Close())

	assert.NoFileExists(t, filename+".5")
	assert.FileExists(t, filename+".bak")
	assert.Equal(t, "aaaaaaaa\n", readFile(t, filename+".1"))
}

func TestRotatingFileHandler_FailureFallsBackToAppend(t *testing.T) {
	obs, logs := observer.New(zap.WarnLevel)
	t.Cleanup(diag.SetLogger(zap.New(obs)))

	filename := filepath.Join(t.TempDir(), "app.log")
	h := newRotating(t, filename, 10, 2, 1)
	h.sink.rotateFiles = func() error { return errors.New("rename denied") }

	for _, m := range []string{"aaaaaaaa", "bbbbbbbb"} {
		require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, m)))
	}
	require.NoError(t, h.Close())

	assert.Equal(t, "aaaaaaaa\nbbbbbbbb\n", readFile(t, filename))
	assert.NoFileExists(t, filename+".1")
	require.Equal(t, 1, logs.FilterMessage("log rotation failed, appending to current file").Len())
}

func TestRotation_Validate(t *testing.T) {
	assert.NoError(t, Rotation{}.Validate())
	assert.NoError(t, Rotation{MaxBytes: 1, BackupCount: 1}.Validate())
	assert.ErrorIs(t, Rotation{MaxBytes: -1, BackupCount: 1}.Validate(), handler.ErrInvalidConfig)
	assert.False(t, Rotation{}.ShouldRotate(100, 100))
	assert.False(t, Rotation{MaxBytes: 10, BackupCount: 1}.ShouldRotate(0, 100))
	assert.True(t, Rotation{MaxBytes: 10, BackupCount: 1}.ShouldRotate(5, 6))
	assert.False(t, Rotation{MaxBytes: 10, BackupCount: 1}.ShouldRotate(5, 5))
}
