package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// exitInterrupted is the conventional status for a process stopped by SIGINT.
const exitInterrupted = 130

// InterruptHandler turns the first SIGINT or SIGTERM into context
// cancellation, so commands can stop between rows and close the database
// cleanly. A second signal exits immediately.
type InterruptHandler struct {
	out         io.Writer
	exit        func(int)
	hint        string
	interrupted atomic.Bool
}

// NewInterruptHandler reports interrupts on out (stderr when nil).
func NewInterruptHandler(out io.Writer) *InterruptHandler {
	if out == nil {
		out = os.Stderr
	}
	return &InterruptHandler{out: out, exit: os.Exit}
}

// HandleInterrupts returns a context derived from ctx that is canceled on
// the first signal. hint tells the user what happened to their work.
func (h *InterruptHandler) HandleInterrupts(ctx context.Context, hint string) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	h.hint = hint

	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
		case <-ctx.Done():
			return
		}
		h.interrupted.Store(true)
		h.notify()
		cancel()

		<-signals
		h.exit(exitInterrupted)
	}()

	return ctx
}

func (h *InterruptHandler) notify() {
	msg := "\n" + FormatWarning("Interrupted, stopping (press Ctrl+C again to force quit)")
	if h.hint != "" {
		msg += "\n" + FormatInfo(h.hint)
	}
	if _, err := fmt.Fprintln(h.out, msg); err != nil {
		slog.Warn("failed to write interrupt notice", "error", err)
	}
}

// WasInterrupted reports whether a signal was received.
func (h *InterruptHandler) WasInterrupted() bool {
	return h.interrupted.Load()
}
