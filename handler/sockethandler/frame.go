package sockethandler

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/philipp01105/fanlog/core"
)

const (
	// HeaderSize is the length prefix size in bytes.
	HeaderSize = 4
	// DefaultMaxFrameSize caps a frame payload when none is configured.
	DefaultMaxFrameSize = 16 << 20
)

// ErrFrameTooLarge is returned for payloads above the configured maximum.
var ErrFrameTooLarge = errors.New("sockethandler: frame too large")

// EncodeFrame prefixes payload with its length. Payloads longer than max
// are rejected, never truncated.
func EncodeFrame(payload []byte, max int) ([]byte, error) {
	if len(payload) > max {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrFrameTooLarge, len(payload), max)
	}
	frame := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame[:HeaderSize], uint32(len(payload)))
	copy(frame[HeaderSize:], payload)
	return frame, nil
}

// ReadFrame reads one frame from r and returns its payload. It returns
// io.EOF when r ends cleanly between frames.
func ReadFrame(r io.Reader, max int) ([]byte, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	n := binary.BigEndian.Uint32(header[:])
	if uint64(n) > uint64(max) {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrFrameTooLarge, n, max)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}

// DecodeFrame reads one frame from r and decodes the record it carries.
func DecodeFrame(r io.Reader, max int) (*core.Record, error) {
	payload, err := ReadFrame(r, max)
	if err != nil {
		return nil, err
	}
	return core.DecodeRecord(payload)
}
