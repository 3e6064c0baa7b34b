package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/philipp01105/fanlog/core"
)

func fieldMap(rec *core.Record) map[string]string {
	m := make(map[string]string, len(rec.Fields))
	for _, f := range rec.Fields {
		m[f.Key] = f.StringValue()
	}
	return m
}

func TestEntry_FieldsAccumulate(t *testing.T) {
	l := newTestLogger(t, "app")
	h := newRecorder()
	l.AddHandler(h)

	base := l.With(String("service", "api"))
	req := base.With(Int("request", 7))
	assert.Len(t, base.Fields(), 1)
	assert.Same(t, l, req.Logger())

	req.Info("handled", Bool("cached", true))
	out, ok := req.Log(core.WarnLevel, "slow")
	require.True(t, ok)
	assert.Contains(t, out, "service=api request=7")
	req.Debug("hidden")
	require.True(t, l.FlushHandlers())

	recs := h.records()
	require.Len(t, recs, 2)
	assert.Equal(t, map[string]string{"service": "api", "request": "7", "cached": "true"}, fieldMap(recs[0]))
	assert.Equal(t, "entry_test.go", recs[0].Caller.ShortFile)
}

func TestEntry_WithContext(t *testing.T) {
	l := newTestLogger(t, "app")
	h := newRecorder()
	l.AddHandler(h)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.WithContext(ctx).Info("traced")
	l.WithContext(context.Background()).Info("untraced")
	require.True(t, l.FlushHandlers())

	recs := h.records()
	require.Len(t, recs, 2)
	assert.Equal(t, map[string]string{
		"trace_id":      "4bf92f3577b34da6a3ce929d0e0e4736",
		"span_id":       "00f067aa0ba902b7",
		"trace_sampled": "true",
	}, fieldMap(recs[0]))
	assert.Empty(t, recs[1].Fields)
}

func TestNameFilter(t *testing.T) {
	f := NewNameFilter("app.web")
	for name, want := range map[string]bool{
		"app.web":      true,
		"app.web.api":  true,
		"app.webhooks": false,
		"app":          false,
		"other":        false,
	} {
		assert.Equal(t, want, f.Allow(core.NewRecord(name, core.InfoLevel, "")), name)
	}
	assert.True(t, NewNameFilter("").Allow(core.NewRecord("any", core.InfoLevel, "")))
}
