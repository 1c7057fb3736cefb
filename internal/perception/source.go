package perception

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// ErrNoFrame is returned by a Source when no frame arrived within its poll
// window. The caller should check for stop and try again.
var ErrNoFrame = errors.New("perception: no frame")

// Source delivers segmented frames. Next returns io.EOF once the source is
// exhausted or closed.
type Source interface {
	Next(ctx context.Context) (Frame, error)
	Close() error
}

const DefaultReadTimeout = 100 * time.Millisecond

// UDPSource receives one frame per datagram from an external segmentation
// process. The payload is "x,y,area;x,y,area"; an empty payload is a frame
// with no blobs.
type UDPSource struct {
	conn        *net.UDPConn
	readTimeout time.Duration
	seq         uint64
	malformed   atomic.Int64
	buf         []byte
}

// ListenUDP binds addr (for example ":9870").
func ListenUDP(addr string, readTimeout time.Duration) (*UDPSource, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	return &UDPSource{conn: conn, readTimeout: readTimeout, buf: make([]byte, 2048)}, nil
}

func (s *UDPSource) Addr() net.Addr { return s.conn.LocalAddr() }

// Malformed counts datagrams that could not be parsed.
func (s *UDPSource) Malformed() int64 { return s.malformed.Load() }

func (s *UDPSource) Next(ctx context.Context) (Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}
		if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
			if errors.Is(err, net.ErrClosed) {
				return Frame{}, io.EOF
			}
			return Frame{}, err
		}

		n, _, err := s.conn.ReadFromUDP(s.buf)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return Frame{}, ErrNoFrame
			}
			if errors.Is(err, net.ErrClosed) {
				return Frame{}, io.EOF
			}
			return Frame{}, err
		}

		blobs, err := ParseBlobs(string(s.buf[:n]))
		if err != nil {
			s.malformed.Add(1)
			continue
		}
		s.seq++
		return Frame{Seq: s.seq, Blobs: blobs}, nil
	}
}

func (s *UDPSource) Close() error { return s.conn.Close() }

// ParseBlobs decodes the datagram payload.
func ParseBlobs(payload string) ([]Blob, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, nil
	}

	parts := strings.Split(payload, ";")
	blobs := make([]Blob, 0, len(parts))
	for i, p := range parts {
		fields := strings.Split(strings.TrimSpace(p), ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("blob %d: want 3 fields, got %d", i, len(fields))
		}
		var v [3]float64
		for j, f := range fields {
			x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("blob %d: %w", i, err)
			}
			v[j] = x
		}
		blobs = append(blobs, Blob{X: v[0], Y: v[1], Area: v[2]})
	}
	return blobs, nil
}

// FormatBlobs is the inverse of ParseBlobs.
func FormatBlobs(blobs []Blob) string {
	parts := make([]string, len(blobs))
	for i, b := range blobs {
		parts[i] = strconv.FormatFloat(b.X, 'f', -1, 64) + "," +
			strconv.FormatFloat(b.Y, 'f', -1, 64) + "," +
			strconv.FormatFloat(b.Area, 'f', -1, 64)
	}
	return strings.Join(parts, ";")
}
