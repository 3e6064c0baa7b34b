package main

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/philipp01105/fanlog/core"
	"github.com/philipp01105/fanlog/handler/sockethandler"
)

// Server accepts socket handler connections and passes every decoded
// record to deliver. Each connection is read on its own goroutine, so
// deliver must be safe for concurrent use.
type Server struct {
	ln       net.Listener
	maxFrame int
	deliver  func(*core.Record)
	log      *zap.Logger

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	closed bool
	wg     sync.WaitGroup
}

// Listen binds network/address. A stale unix socket file is removed first.
func Listen(network, address string, maxFrame int, deliver func(*core.Record), log *zap.Logger) (*Server, error) {
	if network == "unix" {
		if err := os.Remove(address); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	ln, err := net.Listen(network, address)
	if err != nil {
		return nil, err
	}
	if maxFrame <= 0 {
		maxFrame = sockethandler.DefaultMaxFrameSize
	}
	return &Server{
		ln:       ln,
		maxFrame: maxFrame,
		deliver:  deliver,
		log:      log,
		conns:    make(map[net.Conn]struct{}),
	}, nil
}

// Addr returns the listening address
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve accepts connections until ctx is done or Close is called, then
// waits for open connections to finish.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			s.wg.Wait()
			if s.isClosed() {
				return nil
			}
			return err
		}
		if !s.track(conn) {
			_ = conn.Close()
			continue
		}
		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

// Close stops accepting and closes open connections
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()
	return s.ln.Close()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)
	defer conn.Close()

	peer := zap.Stringer("peer", conn.RemoteAddr())
	s.log.Debug("connection opened", peer)
	var n int
	for {
		rec, err := sockethandler.DecodeFrame(conn, s.maxFrame)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF), s.isClosed():
				s.log.Debug("connection closed", peer, zap.Int("records", n))
			default:
				// a bad frame desynchronizes the stream, so the connection is dropped
				s.log.Warn("dropping connection", peer, zap.Int("records", n), zap.Error(err))
			}
			return
		}
		n++
		s.deliver(rec)
	}
}
