package diag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	restore := SetLogger(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestWarner_BatchesWithinInterval(t *testing.T) {
	logs := observe(t)
	w := NewWarner("queue full", time.Hour, zap.String("logger", "app"))

	assert.True(t, w.Warn())
	for i := 0; i < 9; i++ {
		assert.False(t, w.Warn())
	}

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "queue full", entry.Message)
	assert.Equal(t, uint64(1), entry.ContextMap()["count"])
	assert.Equal(t, "app", entry.ContextMap()["logger"])
	assert.Equal(t, uint64(10), w.Total())
}

func TestWarner_ReportsCumulativeCount(t *testing.T) {
	logs := observe(t)
	w := NewWarner("dropped", 20*time.Millisecond)

	w.Warn()
	w.Warn()
	w.Warn()
	time.Sleep(40 * time.Millisecond)
	require.True(t, w.Warn())

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, uint64(3), logs.All()[1].ContextMap()["count"])
}

func TestSetLogger_Restore(t *testing.T) {
	orig := Logger()
	restore := SetLogger(nil)
	assert.NotSame(t, orig, Logger())
	restore()
	assert.Same(t, orig, Logger())
}
