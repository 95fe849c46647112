package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/textfill/internal/logging"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/ports"
)

// Orchestrator is the part of fill.Orchestrator the runner drives.
type Orchestrator interface {
	HandleMessage(ctx context.Context, host any, data []byte, sink ports.StatusSink) (bool, error)
}

// AfterFillFunc runs after every handled submit with its terminal event,
// e.g. to persist the document.
type AfterFillFunc func(ctx context.Context, final domain.StatusEvent) error

// Runner handles the read-submit-report loop of a UI bridge.
type Runner struct {
	orchestrator Orchestrator
	Handler      IOHandler
	Logger       *slog.Logger
	AfterFill    AfterFillFunc
}

// NewRunner creates a Runner over orch. Without WithInputHandler it reads JSON
// lines from stdin and writes them to stdout.
func NewRunner(orch Orchestrator, opts ...Option) *Runner {
	r := &Runner{
		orchestrator: orch,
		Logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewJSONHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run processes inbound messages until the handler reports io.EOF or ctx is done.
// Bad messages are reported and skipped; they never end the loop.
func (r *Runner) Run(ctx context.Context, host any) error {
	for {
		data, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				r.Logger.Debug("runner stopped", "reason", err)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}

		tracker := &terminalTracker{next: r.Handler}
		handled, err := r.orchestrator.HandleMessage(ctx, host, data, tracker)
		if err != nil {
			r.Logger.Warn("rejected message", "error", err, "size", len(data))
			if outErr := r.Handler.SystemOutput(ctx, err.Error()); outErr != nil {
				return fmt.Errorf("output error: %w", outErr)
			}
			continue
		}
		if !handled {
			continue
		}

		if r.AfterFill != nil {
			if err := r.AfterFill(ctx, tracker.final); err != nil {
				return fmt.Errorf("after fill: %w", err)
			}
		}
	}
}

// terminalTracker forwards events and remembers the terminal one.
type terminalTracker struct {
	next  IOHandler
	final domain.StatusEvent
}

func (t *terminalTracker) Emit(ctx context.Context, ev domain.StatusEvent) error {
	if ev.Terminal() {
		t.final = ev
	}
	return t.next.Emit(ctx, ev)
}
