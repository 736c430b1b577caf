package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when ctx ends before a line arrives.
var ErrInputCancelled = errors.New("input canceled")

type line struct {
	text string
	err  error
}

// LineReader hands out input lines while honouring context cancellation.
// A single goroutine owns the underlying reader; a read abandoned on
// cancellation is delivered to the next ReadLine instead of being lost.
type LineReader struct {
	src   *bufio.Scanner
	lines chan line
	once  sync.Once
}

// NewLineReader wraps r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		src:   bufio.NewScanner(r),
		lines: make(chan line),
	}
}

func (r *LineReader) pump() {
	for r.src.Scan() {
		r.lines <- line{text: r.src.Text()}
	}
	err := r.src.Err()
	if err == nil {
		err = io.EOF
	}
	for {
		r.lines <- line{err: err}
	}
}

// ReadLine returns the next line with surrounding whitespace removed.
// It returns io.EOF once the input is exhausted.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	r.once.Do(func() { go r.pump() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case l := <-r.lines:
		if l.err != nil {
			return "", l.err
		}
		return strings.TrimSpace(l.text), nil
	}
}
