package actuator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/san-kum/pantrack/internal/pantilt"
)

// Link implements pantilt.Actuator over any line oriented byte stream.
type Link struct {
	rw  io.ReadWriteCloser
	log *slog.Logger

	feedback  chan pantilt.Pair
	readErr   chan error
	malformed atomic.Int64

	closeOnce sync.Once
	closeErr  error
}

// NewLink starts reading feedback lines from rw in the background.
func NewLink(rw io.ReadWriteCloser, log *slog.Logger) *Link {
	l := &Link{
		rw:       rw,
		log:      log,
		feedback: make(chan pantilt.Pair, 1),
		readErr:  make(chan error, 1),
	}
	go l.readLoop()
	return l
}

func (l *Link) readLoop() {
	sc := bufio.NewScanner(l.rw)
	for sc.Scan() {
		kind, p, err := Parse(sc.Text())
		if err != nil || kind != KindFeedback {
			n := l.malformed.Add(1)
			l.log.Debug("skipping line", "line", sc.Text(), "malformed", n)
			continue
		}
		// keep only the freshest sample if the loop fell behind
		select {
		case l.feedback <- p:
		default:
			select {
			case <-l.feedback:
			default:
			}
			l.feedback <- p
		}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	l.readErr <- err
	close(l.feedback)
}

// Send writes one setpoint line and returns without waiting for feedback.
func (l *Link) Send(cmd pantilt.Pair) error {
	if _, err := io.WriteString(l.rw, Format(KindSetpoint, cmd)); err != nil {
		return fmt.Errorf("send setpoint: %w", err)
	}
	return nil
}

// Next blocks until the next feedback sample arrives.
func (l *Link) Next(ctx context.Context) (pantilt.Pair, error) {
	select {
	case <-ctx.Done():
		return pantilt.Pair{}, ctx.Err()
	case p, ok := <-l.feedback:
		if ok {
			return p, nil
		}
		err := <-l.readErr
		l.readErr <- err
		if errors.Is(err, io.EOF) {
			return pantilt.Pair{}, fmt.Errorf("feedback stream closed: %w", err)
		}
		return pantilt.Pair{}, fmt.Errorf("read feedback: %w", err)
	}
}

// Malformed counts lines that were not valid feedback.
func (l *Link) Malformed() int64 { return l.malformed.Load() }

func (l *Link) Close() error {
	l.closeOnce.Do(func() { l.closeErr = l.rw.Close() })
	return l.closeErr
}
