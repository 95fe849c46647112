package fill

import (
	"log/slog"
	"time"

	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/ports"
	"github.com/aretw0/textfill/pkg/selection"
)

// Option defines a functional option for configuring the Orchestrator.
type Option func(*Orchestrator)

// WithResolver replaces the selection resolver (and with it the selection-access strategy).
func WithResolver(r *selection.Resolver) Option {
	return func(o *Orchestrator) {
		o.resolver = r
	}
}

// WithEnvelopeKeys sets the envelope fields HandleMessage unwraps.
func WithEnvelopeKeys(keys ...string) Option {
	return func(o *Orchestrator) {
		o.envelopeKeys = keys
	}
}

// WithLocker enables cross-process serialization per document.
func WithLocker(locker ports.DistributedLocker, ttl, wait time.Duration) Option {
	return func(o *Orchestrator) {
		o.locker = locker
		o.lockTTL = ttl
		o.lockWait = wait
	}
}

// WithGenerationTimeout bounds the generation call (0 means no extra bound).
func WithGenerationTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.timeout = d
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithMetrics records invocations into Prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}
