package command

import (
	"bufio"
	"context"
	"io"
)

const DefaultQueueSize = 16

// Queue is a bounded token buffer between an input context and the control
// loop. Neither side ever blocks on it.
type Queue struct {
	ch chan Token
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Token, size)}
}

// Push enqueues tok and reports false if the queue was full.
func (q *Queue) Push(tok Token) bool {
	select {
	case q.ch <- tok:
		return true
	default:
		return false
	}
}

// Poll drains everything currently queued. t is ignored; queued tokens are
// always due.
func (q *Queue) Poll(float64) []Token {
	var out []Token
	for {
		select {
		case tok := <-q.ch:
			out = append(out, tok)
		default:
			return out
		}
	}
}

// ReadLines parses one token per line from r and pushes it onto q until r is
// exhausted or ctx is done. Unknown lines are skipped; it returns the number
// of tokens dropped because the queue was full.
func ReadLines(ctx context.Context, r io.Reader, q *Queue) (dropped int, err error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if ctx.Err() != nil {
			return dropped, ctx.Err()
		}
		tok, ok := Parse(sc.Text())
		if !ok {
			continue
		}
		if !q.Push(tok) {
			dropped++
		}
	}
	return dropped, sc.Err()
}

// Multi polls several sources in order.
type Multi []Source

func (m Multi) Poll(t float64) []Token {
	var out []Token
	for _, s := range m {
		out = append(out, s.Poll(t)...)
	}
	return out
}
