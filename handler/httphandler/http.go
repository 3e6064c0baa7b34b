package httphandler

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/handler"
)

const (
	// DefaultRequestTimeout bounds one request when none is configured.
	DefaultRequestTimeout = 10 * time.Second

	maxDrainBody = 64 << 10
)

// HTTPConfig holds configuration for the HTTP handler
type HTTPConfig struct {
	handler.Options
	// URL is the endpoint (required, http or https)
	URL string
	// Method is GET or POST (default: POST)
	Method string
	// Encoding is the payload format (default: form)
	Encoding Encoding
	// Fields restricts the payload to these attribute keys (nil = all)
	Fields []string
	// Username and Password enable Basic authentication
	Username string
	Password string
	// BearerToken enables Bearer authentication
	BearerToken string
	// Headers are added to every request
	Headers map[string]string
	// RequestTimeout bounds each request (default: 10s)
	RequestTimeout time.Duration
	// InsecureSkipVerify disables certificate verification. Testing only.
	InsecureSkipVerify bool
	// Retries is how many more times a record is sent after a retryable
	// failure, waiting out the backoff between attempts (default: 0)
	Retries int
	// Backoff configures the delay after a retryable failure
	Backoff handler.BackoffConfig
}

func (c *HTTPConfig) validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: url is required", handler.ErrInvalidConfig)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", handler.ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported url scheme %q", handler.ErrInvalidConfig, u.Scheme)
	}
	c.Method = strings.ToUpper(c.Method)
	switch c.Method {
	case "":
		c.Method = http.MethodPost
	case http.MethodGet, http.MethodPost:
	default:
		return fmt.Errorf("%w: unsupported method %q", handler.ErrInvalidConfig, c.Method)
	}
	if c.Encoding == EncodingJSON && c.Method == http.MethodGet {
		return fmt.Errorf("%w: json encoding requires POST", handler.ErrInvalidConfig)
	}
	if c.Encoding != EncodingForm && c.Encoding != EncodingJSON {
		return fmt.Errorf("%w: unknown encoding %d", handler.ErrInvalidConfig, c.Encoding)
	}
	if c.BearerToken != "" && (c.Username != "" || c.Password != "") {
		return fmt.Errorf("%w: basic and bearer auth are exclusive", handler.ErrInvalidConfig)
	}
	if c.RequestTimeout < 0 || c.Retries < 0 {
		return fmt.Errorf("%w: negative http limits", handler.ErrInvalidConfig)
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	return c.Options.Validate()
}

// HTTPHandler delivers records to an HTTP endpoint
type HTTPHandler struct {
	*handler.Worker
	url string
}

// NewHTTPHandler validates cfg and starts the worker.
func NewHTTPHandler(cfg HTTPConfig) (*HTTPHandler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	backoff, err := handler.NewBackoff(cfg.Backoff)
	if err != nil {
		return nil, err
	}

	tr := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          16,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if cfg.InsecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for tests
	}

	s := &httpSink{
		client:   &http.Client{Timeout: cfg.RequestTimeout, Transport: tr},
		url:      cfg.URL,
		method:   cfg.Method,
		encoding: cfg.Encoding,
		username: cfg.Username,
		password: cfg.Password,
		bearer:   cfg.BearerToken,
		headers:  cfg.Headers,
		retries:  cfg.Retries,
		backoff:  backoff,
	}
	if cfg.Fields != nil {
		s.fields = make(map[string]struct{}, len(cfg.Fields))
		for _, f := range cfg.Fields {
			s.fields[f] = struct{}{}
		}
	}

	w, err := handler.NewWorker(cfg.Options, s)
	if err != nil {
		return nil, err
	}
	return &HTTPHandler{Worker: w, url: cfg.URL}, nil
}

// URL returns the endpoint.
func (h *HTTPHandler) URL() string {
	return h.url
}

// httpSink owns the client. It is used only from the worker goroutine.
type httpSink struct {
	client   *http.Client
	url      string
	method   string
	encoding Encoding
	fields   map[string]struct{}
	username string
	password string
	bearer   string
	headers  map[string]string
	retries  int
	backoff  *handler.Backoff
}

func (s *httpSink) Write(ctx context.Context, rec *core.Record) error {
	payload, err := s.encoding.encode(selectAttrs(rec.Attributes(), s.fields))
	if err != nil {
		return err
	}
	for attempt := 0; ; attempt++ {
		// An interrupted wait means shutdown; the record is still sent.
		_ = s.backoff.Wait(ctx)
		err := s.send(payload)
		if err == nil {
			s.backoff.Success()
			return nil
		}
		if !retryable(err) {
			return err
		}
		s.backoff.Failure()
		if attempt >= s.retries || ctx.Err() != nil {
			return err
		}
	}
}

func (s *httpSink) send(payload []byte) error {
	req, err := s.newRequest(payload)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBody))
	_ = resp.Body.Close()

	if o := Classify(resp.StatusCode); o != Success {
		return &StatusError{Code: resp.StatusCode, Outcome: o}
	}
	return nil
}

func (s *httpSink) newRequest(payload []byte) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	if s.method == http.MethodGet {
		sep := "?"
		if strings.Contains(s.url, "?") {
			sep = "&"
		}
		req, err = http.NewRequest(http.MethodGet, s.url+sep+string(payload), nil)
	} else {
		req, err = http.NewRequest(http.MethodPost, s.url, bytes.NewReader(payload))
		if err == nil {
			req.Header.Set("Content-Type", s.encoding.ContentType())
		}
	}
	if err != nil {
		return nil, err
	}

	switch {
	case s.bearer != "":
		req.Header.Set("Authorization", "Bearer "+s.bearer)
	case s.username != "" || s.password != "":
		req.SetBasicAuth(s.username, s.password)
	}
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// Flush is a no-op: requests are not buffered.
func (s *httpSink) Flush() error {
	return nil
}

func (s *httpSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
