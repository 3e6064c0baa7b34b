package sockethandler

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"time"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/handler"
)

// DefaultConnectTimeout bounds a connection attempt when none is configured.
const DefaultConnectTimeout = 5 * time.Second

// SocketConfig holds configuration for the socket handler
type SocketConfig struct {
	handler.Options
	// Network is "tcp" or "unix" (default: tcp)
	Network string
	// Address is host:port for tcp or a socket path for unix (required)
	Address string
	// TLS wraps the connection in TLS
	TLS bool
	// ServerName is the name verified against the server certificate
	// (default: host part of Address)
	ServerName string
	// InsecureSkipVerify disables certificate verification. Testing only.
	InsecureSkipVerify bool
	// ConnectTimeout bounds each dial (default: 5s)
	ConnectTimeout time.Duration
	// WriteTimeout bounds each frame write (0 = none)
	WriteTimeout time.Duration
	// MaxFrameSize caps the encoded record size (default: 16 MiB)
	MaxFrameSize int
	// Backoff configures the delay after a failed delivery
	Backoff handler.BackoffConfig
}

func (c *SocketConfig) validate() error {
	switch c.Network {
	case "":
		c.Network = "tcp"
	case "tcp", "tcp4", "tcp6", "unix":
	default:
		return fmt.Errorf("%w: unsupported network %q", handler.ErrInvalidConfig, c.Network)
	}
	if c.Address == "" {
		return fmt.Errorf("%w: address is required", handler.ErrInvalidConfig)
	}
	if c.ConnectTimeout < 0 || c.WriteTimeout < 0 || c.MaxFrameSize < 0 {
		return fmt.Errorf("%w: negative socket limits", handler.ErrInvalidConfig)
	}
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.MaxFrameSize == 0 {
		c.MaxFrameSize = DefaultMaxFrameSize
	}
	return c.Options.Validate()
}

func (c *SocketConfig) tlsConfig() (*tls.Config, error) {
	if !c.TLS {
		return nil, nil
	}
	name := c.ServerName
	if name == "" && c.Network != "unix" {
		host, _, err := net.SplitHostPort(c.Address)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", handler.ErrInvalidConfig, err)
		}
		name = host
	}
	if name == "" && !c.InsecureSkipVerify {
		return nil, fmt.Errorf("%w: tls needs a server name or insecure skip verify", handler.ErrInvalidConfig)
	}
	return &tls.Config{
		ServerName:         name,
		InsecureSkipVerify: c.InsecureSkipVerify, //nolint:gosec // opt-in for tests
		MinVersion:         tls.VersionTLS12,
	}, nil
}

// SocketHandler sends framed records over a stream socket
type SocketHandler struct {
	*handler.Worker
	network string
	address string
}

// NewSocketHandler validates cfg and starts the worker. It does not
// connect; the first record does.
func NewSocketHandler(cfg SocketConfig) (*SocketHandler, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	tlsCfg, err := cfg.tlsConfig()
	if err != nil {
		return nil, err
	}
	backoff, err := handler.NewBackoff(cfg.Backoff)
	if err != nil {
		return nil, err
	}
	s := &socketSink{
		network:      cfg.Network,
		address:      cfg.Address,
		dialer:       &net.Dialer{Timeout: cfg.ConnectTimeout},
		tls:          tlsCfg,
		writeTimeout: cfg.WriteTimeout,
		maxFrame:     cfg.MaxFrameSize,
		backoff:      backoff,
	}
	w, err := handler.NewWorker(cfg.Options, s)
	if err != nil {
		return nil, err
	}
	return &SocketHandler{Worker: w, network: cfg.Network, address: cfg.Address}, nil
}

// Address returns the network and address the handler sends to.
func (h *SocketHandler) Address() (network, address string) {
	return h.network, h.address
}

// socketSink owns the connection. It is used only from the worker goroutine.
type socketSink struct {
	network      string
	address      string
	dialer       *net.Dialer
	tls          *tls.Config
	writeTimeout time.Duration
	maxFrame     int
	backoff      *handler.Backoff
	conn         net.Conn
}

func (s *socketSink) Write(ctx context.Context, rec *core.Record) error {
	// An interrupted wait means shutdown; the record is still attempted.
	_ = s.backoff.Wait(ctx)

	payload, err := core.EncodeRecord(rec)
	if err != nil {
		return err
	}
	frame, err := EncodeFrame(payload, s.maxFrame)
	if err != nil {
		return err
	}

	if s.conn == nil {
		if err := s.connect(); err != nil {
			s.backoff.Failure()
			return err
		}
	}
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	if _, err := s.conn.Write(frame); err != nil {
		s.teardown()
		s.backoff.Failure()
		return fmt.Errorf("write to %s %s: %w", s.network, s.address, err)
	}
	s.backoff.Success()
	return nil
}

func (s *socketSink) connect() error {
	var (
		conn net.Conn
		err  error
	)
	if s.tls != nil {
		d := &tls.Dialer{NetDialer: s.dialer, Config: s.tls}
		conn, err = d.DialContext(context.Background(), s.network, s.address)
	} else {
		conn, err = s.dialer.DialContext(context.Background(), s.network, s.address)
	}
	if err != nil {
		return fmt.Errorf("connect to %s %s: %w", s.network, s.address, err)
	}
	s.conn = conn
	return nil
}

func (s *socketSink) teardown() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// Flush is a no-op: frames are written unbuffered.
func (s *socketSink) Flush() error {
	return nil
}

func (s *socketSink) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
