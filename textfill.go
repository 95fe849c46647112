package textfill

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/textfill/internal/logging"
	textfillhttp "github.com/aretw0/textfill/pkg/adapters/http"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/fill"
	"github.com/aretw0/textfill/pkg/ports"
	"github.com/aretw0/textfill/pkg/selection"
	"github.com/prometheus/client_golang/prometheus"
)

// Filler is the high-level entry point for the textfill library.
// It wires a generation client, the optional retry decorator and lock, and
// the fill orchestrator behind a small API.
type Filler struct {
	orchestrator *fill.Orchestrator
	generator    ports.Generator

	endpoint      string
	timeout       time.Duration
	retryAttempts int
	retryBase     time.Duration
	locker        ports.DistributedLocker
	lockTTL       time.Duration
	lockWait      time.Duration
	hooks         domain.LifecycleHooks
	registerer    prometheus.Registerer
	accessor      selection.Accessor
	envelopeKeys  []string
	logger        *slog.Logger
}

// Option defines a functional option for configuring the Filler.
type Option func(*Filler)

// WithEndpoint sets the generation service URL.
func WithEndpoint(url string) Option {
	return func(f *Filler) {
		f.endpoint = url
	}
}

// WithTimeout bounds each generation request.
func WithTimeout(d time.Duration) Option {
	return func(f *Filler) {
		f.timeout = d
	}
}

// WithGenerator replaces the HTTP generation client, e.g. with an in-process service.
func WithGenerator(gen ports.Generator) Option {
	return func(f *Filler) {
		f.generator = gen
	}
}

// WithRetry retries transport failures up to attempts times with exponential backoff.
func WithRetry(attempts int, base time.Duration) Option {
	return func(f *Filler) {
		f.retryAttempts = attempts
		f.retryBase = base
	}
}

// WithLocker serializes fills of the same document through a distributed lock.
func WithLocker(locker ports.DistributedLocker, ttl, wait time.Duration) Option {
	return func(f *Filler) {
		f.locker = locker
		f.lockTTL = ttl
		f.lockWait = wait
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(f *Filler) {
		f.hooks = hooks
	}
}

// WithMetrics registers the orchestrator collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(f *Filler) {
		f.registerer = reg
	}
}

// WithSelectionAccessor changes where the selection is read from on the host.
func WithSelectionAccessor(a selection.Accessor) Option {
	return func(f *Filler) {
		f.accessor = a
	}
}

// WithEnvelopeKeys replaces the keys HandleMessage unwraps before decoding a command.
func WithEnvelopeKeys(keys ...string) Option {
	return func(f *Filler) {
		f.envelopeKeys = keys
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Filler) {
		f.logger = logger
	}
}

// New initializes a Filler. Without options it calls the public generation
// endpoint once per invocation.
func New(opts ...Option) *Filler {
	f := &Filler{}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logging.NewNop()
	}

	gen := f.generator
	if gen == nil {
		clientOpts := []textfillhttp.ClientOption{textfillhttp.WithLogger(f.logger)}
		if f.timeout > 0 {
			clientOpts = append(clientOpts, textfillhttp.WithTimeout(f.timeout))
		}
		gen = textfillhttp.NewClient(f.endpoint, clientOpts...)
	}
	if f.retryAttempts > 1 {
		gen = fill.Retry(gen, f.retryAttempts, f.retryBase, fill.WithRetryLogger(f.logger))
	}
	f.generator = gen

	fillOpts := []fill.Option{
		fill.WithLogger(f.logger),
		fill.WithLifecycleHooks(f.hooks),
	}
	if f.locker != nil {
		fillOpts = append(fillOpts, fill.WithLocker(f.locker, f.lockTTL, f.lockWait))
	}
	if f.accessor != nil {
		resolver := selection.NewResolver(selection.WithAccessor(f.accessor), selection.WithLogger(f.logger))
		fillOpts = append(fillOpts, fill.WithResolver(resolver))
	}
	if len(f.envelopeKeys) > 0 {
		fillOpts = append(fillOpts, fill.WithEnvelopeKeys(f.envelopeKeys...))
	}
	if f.registerer != nil {
		fillOpts = append(fillOpts, fill.WithMetrics(fill.NewMetrics(f.registerer)))
	}
	f.orchestrator = fill.New(gen, fillOpts...)
	return f
}

// Submit runs one fill invocation against host and returns its terminal event.
func (f *Filler) Submit(ctx context.Context, host any, description string, sink ports.StatusSink) domain.StatusEvent {
	return f.orchestrator.Submit(ctx, host, description, sink)
}

// HandleMessage decodes a raw UI command and runs it. Unknown command types are ignored.
func (f *Filler) HandleMessage(ctx context.Context, host any, data []byte, sink ports.StatusSink) (bool, error) {
	return f.orchestrator.HandleMessage(ctx, host, data, sink)
}

// Generate asks the configured generator for count texts without touching a host.
func (f *Filler) Generate(ctx context.Context, description string, count int) (domain.GenerationResult, error) {
	return f.generator.Generate(ctx, description, count)
}

// Busy reports whether an invocation is in flight.
func (f *Filler) Busy() bool {
	return f.orchestrator.Busy()
}

// Orchestrator returns the underlying orchestrator.
func (f *Filler) Orchestrator() *fill.Orchestrator {
	return f.orchestrator
}

// Generator returns the generator used by the orchestrator, including the retry decorator.
func (f *Filler) Generator() ports.Generator {
	return f.generator
}
