package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/rulebook/internal/logging"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// LogOptions selects the application logger.
type LogOptions struct {
	Debug  bool
	Level  string
	Format string
}

// createLogger configures the application logger.
// Without --debug or an explicit level it discards everything.
func createLogger(opts LogOptions) *slog.Logger {
	format := logging.WithFormat(logging.Format(opts.Format))
	if opts.Debug {
		return logging.New(slog.LevelDebug, format)
	}
	if opts.Level == "" {
		return logging.NewNop()
	}
	level, err := logging.ParseLevel(opts.Level)
	if err != nil {
		return logging.New(slog.LevelInfo, format)
	}
	return logging.New(level, format)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// interruptedBy returns the signal that cancelled ctx, if ctx is a
// SignalContext and a signal was received.
func interruptedBy(ctx context.Context) os.Signal {
	if sc, ok := ctx.(*SignalContext); ok {
		return sc.Signal()
	}
	return nil
}
