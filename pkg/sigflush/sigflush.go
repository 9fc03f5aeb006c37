// Package sigflush coordinates interrupt handling with state flushing.
//
// On SIGINT/SIGTERM the handler asks the confirm callback whether to stop.
// When confirmed, registered flush functions run (ledger, usage journal)
// before the context is canceled. A declined interrupt leaves the process
// running and the handler armed for the next signal.
package sigflush

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// Flusher persists in-memory state before shutdown.
type Flusher func() error

// Handler listens for interrupt signals.
type Handler struct {
	confirm  func() bool
	flushers []Flusher
	onError  func(error)
}

// New creates a Handler. confirm may be nil, in which case every
// interrupt is treated as confirmed. onError receives flush failures and
// may be nil.
func New(confirm func() bool, onError func(error), flushers ...Flusher) *Handler {
	return &Handler{confirm: confirm, flushers: flushers, onError: onError}
}

// Watch registers for SIGINT and SIGTERM and returns immediately.
// When a confirmed signal arrives, all flushers run and cancel is called.
// The goroutine exits when ctx is done.
func (h *Handler) Watch(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		for {
			select {
			case <-sigCh:
				if h.confirm != nil && !h.confirm() {
					continue
				}
				h.flush()
				cancel()
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (h *Handler) flush() {
	for _, f := range h.flushers {
		if err := f(); err != nil && h.onError != nil {
			h.onError(err)
		}
	}
}
