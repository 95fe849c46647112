package ports

import (
	"context"

	"github.com/aretw0/textfill/pkg/domain"
)

// StatusSink receives the status events of an invocation, in order.
type StatusSink interface {
	Emit(ctx context.Context, ev domain.StatusEvent) error
}

// StatusFunc adapts a function to StatusSink.
type StatusFunc func(ctx context.Context, ev domain.StatusEvent) error

func (f StatusFunc) Emit(ctx context.Context, ev domain.StatusEvent) error {
	return f(ctx, ev)
}
