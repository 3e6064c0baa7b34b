package streamhandler

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/diag"
	"github.com/philipp01105/fanlog/formatter"
	"github.com/philipp01105/fanlog/handler"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestStreamHandler_WritesFormatted(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewStreamHandler(StreamConfig{
		Options: handler.Options{Capacity: 10, Formatter: formatter.NewTextFormatter(formatter.Config{})},
		Writer:  &buf,
	})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, "stream test")))
	require.True(t, h.Flush())
	assert.Contains(t, buf.String(), "stream test")
	assert.Contains(t, buf.String(), "[INFO] app:")
}

func TestStreamHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewStreamHandler(StreamConfig{
		Options: handler.Options{Capacity: 10, Formatter: formatter.NewJSONFormatter(formatter.Config{})},
		Writer:  &buf,
	})
	require.NoError(t, err)

	require.NoError(t, h.Handle(core.NewRecord("app", core.WarnLevel, "json test")))
	require.NoError(t, h.Close())
	assert.Contains(t, buf.String(), `"message":"json test"`)
}

func TestStreamHandler_InvalidCapacity(t *testing.T) {
	_, err := NewStreamHandler(StreamConfig{Writer: &bytes.Buffer{}})
	assert.ErrorIs(t, err, handler.ErrInvalidConfig)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestStreamHandler_WriteErrorsCounted(t *testing.T) {
	t.Cleanup(diag.SetLogger(zap.NewNop()))
	h, err := NewStreamHandler(StreamConfig{
		Options: handler.Options{Capacity: 4},
		Writer:  failingWriter{},
	})
	require.NoError(t, err)

	require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, "lost")))
	require.True(t, h.Flush())
	assert.Equal(t, uint64(1), h.Stats().ErrorsTotal)
	require.NoError(t, h.Close())
}

func TestWriterByName(t *testing.T) {
	w, err := WriterByName("STDERR")
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, w)

	w, err = WriterByName("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, w)

	_, err = WriterByName("printer")
	assert.ErrorIs(t, err, handler.ErrInvalidConfig)
	assert.True(t, strings.Contains(err.Error(), "printer"))
}
