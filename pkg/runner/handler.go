package runner

import (
	"context"

	"github.com/aretw0/textfill/pkg/ports"
)

// IOHandler defines the strategy for interacting with the UI surface.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Input reads the next inbound message as a raw command.
	// It returns io.EOF when the surface is closed.
	Input(ctx context.Context) ([]byte, error)

	// Emit presents one status event. It is called from the orchestrator.
	ports.StatusSink

	// SystemOutput presents a meta-message (e.g. a rejected input) that is not a
	// status event.
	SystemOutput(ctx context.Context, msg string) error
}
