package httphandler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/diag"
	"github.com/philipp01105/fanlog/handler"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type captured struct {
	Method string
	Query  string
	Body   string
	Header http.Header
}

// endpoint answers with the scripted status codes in order, then 200.
type endpoint struct {
	mu       sync.Mutex
	statuses []int
	requests []captured
}

func (e *endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	e.mu.Lock()
	e.requests = append(e.requests, captured{Method: r.Method, Query: r.URL.RawQuery, Body: string(body), Header: r.Header.Clone()})
	status := http.StatusOK
	if len(e.statuses) > 0 {
		status, e.statuses = e.statuses[0], e.statuses[1:]
	}
	e.mu.Unlock()
	w.WriteHeader(status)
}

func (e *endpoint) seen() []captured {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]captured(nil), e.requests...)
}

func newServer(t *testing.T, statuses ...int) (*httptest.Server, *endpoint) {
	t.Helper()
	ep := &endpoint{statuses: statuses}
	srv := httptest.NewServer(ep)
	t.Cleanup(srv.Close)
	return srv, ep
}

func opts() handler.Options {
	return handler.Options{Name: "http", Capacity: 16, Overflow: handler.Block}
}

func fastBackoff() handler.BackoffConfig {
	return handler.BackoffConfig{Base: 10 * time.Millisecond, Cap: 50 * time.Millisecond}
}

func TestHTTPHandler_RetryableThenSuccess(t *testing.T) {
	t.Cleanup(diag.SetLogger(zap.NewNop()))
	srv, ep := newServer(t, http.StatusServiceUnavailable)

	h, err := NewHTTPHandler(HTTPConfig{Options: opts(), URL: srv.URL, Retries: 1, Backoff: fastBackoff()})
	require.NoError(t, err)

	require.NoError(t, h.Handle(core.NewRecord("app", core.ErrorLevel, "disk full")))
	require.True(t, h.Flush())
	require.NoError(t, h.Close())

	reqs := ep.seen()
	require.Len(t, reqs, 2)
	for _, r := range reqs {
		form, err := url.ParseQuery(r.Body)
		require.NoError(t, err)
		assert.Equal(t, "disk full", form.Get("msg"))
	}
	s := h.Stats()
	assert.Equal(t, uint64(1), s.ProcessedTotal)
	assert.Equal(t, uint64(0), s.ErrorsTotal)
}

func TestHTTPHandler_PermanentNotRetried(t *testing.T) {
	t.Cleanup(diag.SetLogger(zap.NewNop()))
	srv, ep := newServer(t, http.StatusBadRequest)

	h, err := NewHTTPHandler(HTTPConfig{Options: opts(), URL: srv.URL, Retries: 3, Backoff: fastBackoff()})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, "rejected")))
	require.True(t, h.Flush())
	time.Sleep(200 * time.Millisecond)

	assert.Len(t, ep.seen(), 1)
	assert.Equal(t, uint64(1), h.Stats().ErrorsTotal)
}

func TestHTTPHandler_RetryableDropsWithoutRetries(t *testing.T) {
	t.Cleanup(diag.SetLogger(zap.NewNop()))
	srv, ep := newServer(t, http.StatusTooManyRequests)

	h, err := NewHTTPHandler(HTTPConfig{
		Options: opts(),
		URL:     srv.URL,
		Backoff: handler.BackoffConfig{Base: 80 * time.Millisecond, Cap: 80 * time.Millisecond, Jitter: -1},
	})
	require.NoError(t, err)
	defer h.Close()

	require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, "first")))
	require.True(t, h.Flush())
	start := time.Now()
	require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, "second")))
	require.True(t, h.Flush())
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)

	reqs := ep.seen()
	require.Len(t, reqs, 2)
	first, _ := url.ParseQuery(reqs[0].Body)
	second, _ := url.ParseQuery(reqs[1].Body)
	assert.Equal(t, "first", first.Get("msg"))
	assert.Equal(t, "second", second.Get("msg"))
}

func TestHTTPHandler_GetWithQueryAndFields(t *testing.T) {
	srv, ep := newServer(t)

	h, err := NewHTTPHandler(HTTPConfig{
		Options: opts(),
		URL:     srv.URL + "/log?source=test",
		Method:  "get",
		Fields:  []string{"name", "msg", "levelname"},
	})
	require.NoError(t, err)

	require.NoError(t, h.Handle(core.NewRecord("app.web", core.WarnLevel, "a b&c")))
	require.NoError(t, h.Close())

	reqs := ep.seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodGet, reqs[0].Method)
	assert.Equal(t, "source=test&name=app.web&msg=a+b%26c&levelname=WARNING", reqs[0].Query)
	assert.Empty(t, reqs[0].Body)
}

func TestHTTPHandler_JSONWithAuthAndHeaders(t *testing.T) {
	srv, ep := newServer(t)

	h, err := NewHTTPHandler(HTTPConfig{
		Options:     opts(),
		URL:         srv.URL,
		Encoding:    EncodingJSON,
		Fields:      []string{"msg", "levelno"},
		BearerToken: "s3cret",
		Headers:     map[string]string{"X-Tenant": "blue"},
	})
	require.NoError(t, err)

	require.NoError(t, h.Handle(core.NewRecord("app", core.CriticalLevel, "meltdown")))
	require.NoError(t, h.Close())

	reqs := ep.seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, `{"msg":"meltdown","levelno":"50"}`, reqs[0].Body)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
	assert.Equal(t, "Bearer s3cret", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "blue", reqs[0].Header.Get("X-Tenant"))

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(reqs[0].Body), &decoded))
	assert.Equal(t, "meltdown", decoded["msg"])
}

func TestHTTPHandler_BasicAuth(t *testing.T) {
	srv, ep := newServer(t)

	h, err := NewHTTPHandler(HTTPConfig{Options: opts(), URL: srv.URL, Username: "ops", Password: "pw"})
	require.NoError(t, err)
	require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, "hi")))
	require.NoError(t, h.Close())

	reqs := ep.seen()
	require.Len(t, reqs, 1)
	req := &http.Request{Header: reqs[0].Header}
	user, pass, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "ops", user)
	assert.Equal(t, "pw", pass)
	assert.Equal(t, "application/x-www-form-urlencoded", reqs[0].Header.Get("Content-Type"))
}

func TestHTTPHandler_CloseDrainsQueue(t *testing.T) {
	srv, ep := newServer(t)

	h, err := NewHTTPHandler(HTTPConfig{Options: opts(), URL: srv.URL})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, h.Handle(core.NewRecord("app", core.InfoLevel, "queued")))
	}
	require.NoError(t, h.Close())
	assert.Len(t, ep.seen(), 10)
}

func TestHTTPHandler_InvalidConfig(t *testing.T) {
	for _, cfg := range []HTTPConfig{
		{Options: opts()},
		{Options: opts(), URL: "ftp://example.com"},
		{Options: opts(), URL: "http://example.com", Method: "PUT"},
		{Options: opts(), URL: "http://example.com", Method: "GET", Encoding: EncodingJSON},
		{Options: opts(), URL: "http://example.com", BearerToken: "t", Username: "u"},
		{Options: opts(), URL: "http://example.com", Retries: -1},
		{Options: handler.Options{}, URL: "http://example.com"},
	} {
		_, err := NewHTTPHandler(cfg)
		assert.ErrorIs(t, err, handler.ErrInvalidConfig)
	}
}
