package fill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/textfill/internal/logging"
	"github.com/aretw0/textfill/pkg/apply"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/ports"
	"github.com/aretw0/textfill/pkg/selection"
	"github.com/google/uuid"
)

// Outcome labels used for metrics and logs.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeNoSelection = "no_selection"
	OutcomeBusy        = "busy"
)

const (
	defaultLockTTL  = 2 * time.Minute
	defaultLockWait = 10 * time.Second
)

// Orchestrator runs fill invocations. It keeps no state between invocations
// other than the in-flight flag.
type Orchestrator struct {
	generator    ports.Generator
	resolver     *selection.Resolver
	envelopeKeys []string

	locker   ports.DistributedLocker
	lockTTL  time.Duration
	lockWait time.Duration

	timeout time.Duration
	hooks   domain.LifecycleHooks
	metrics *Metrics
	logger  *slog.Logger

	inFlight atomic.Bool
}

// New creates an Orchestrator that asks gen for texts.
func New(gen ports.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		generator:    gen,
		envelopeKeys: domain.DefaultEnvelopeKeys,
		lockTTL:      defaultLockTTL,
		lockWait:     defaultLockWait,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.resolver == nil {
		o.resolver = selection.NewResolver(selection.WithLogger(o.logger))
	}
	return o
}

// Busy reports whether an invocation is in flight.
func (o *Orchestrator) Busy() bool {
	return o.inFlight.Load()
}

// HandleMessage decodes a raw UI message (bare or wrapped in an envelope) and runs
// Submit when it is a submit command. Other command types are ignored and emit nothing.
func (o *Orchestrator) HandleMessage(ctx context.Context, host any, data []byte, sink ports.StatusSink) (handled bool, err error) {
	cmd, err := domain.DecodeCommand(data, o.envelopeKeys...)
	if err != nil {
		return false, err
	}
	if !cmd.IsSubmit() {
		o.logger.Debug("ignoring command", "type", cmd.Type)
		return false, nil
	}
	o.Submit(ctx, host, cmd.Text, sink)
	return true, nil
}

// invocation carries the request-scoped state of one Submit.
type invocation struct {
	id       string
	host     any
	sink     ports.StatusSink
	logger   *slog.Logger
	start    time.Time
	selected int
	applied  int
	cause    error
	done     bool
}

// Submit runs one invocation to its terminal state and returns the terminal event.
// It never panics and always emits exactly one terminal event to sink.
func (o *Orchestrator) Submit(ctx context.Context, host any, description string, sink ports.StatusSink) (final domain.StatusEvent) {
	inv := &invocation{
		id:    uuid.NewString(),
		host:  host,
		sink:  sink,
		start: time.Now(),
	}
	inv.logger = o.logger.With("invocation", inv.id)

	if !o.inFlight.CompareAndSwap(false, true) {
		inv.logger.Warn("submit rejected, another fill is in flight")
		// The running invocation owns the host; only the caller hears about it.
		inv.host = nil
		inv.cause = domain.ErrBusy
		return o.finish(ctx, inv, domain.Failed(domain.MsgBusy), OutcomeBusy)
	}
	defer o.inFlight.Store(false)

	defer func() {
		if rec := recover(); rec != nil {
			inv.logger.Error("fill panicked", "panic", fmt.Sprint(rec))
			if !inv.done {
				inv.cause = fmt.Errorf("panic: %v", rec)
				final = o.finish(ctx, inv, domain.Failed(domain.MsgUnknown), OutcomeError)
			}
		}
	}()

	o.emit(ctx, inv, domain.Loading(domain.MsgProcessing))

	if o.locker != nil {
		unlock, err := o.lock(ctx, host)
		if err != nil {
			inv.logger.Error("document lock failed", "error", err)
			inv.cause = err
			return o.finish(ctx, inv, domain.Failed(err.Error()), OutcomeError)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				inv.logger.Warn("document unlock failed", "error", err)
			}
		}()
	}

	targets := o.resolver.Resolve(host)
	inv.selected = len(targets)
	if len(targets) == 0 {
		inv.cause = domain.ErrNoSelection
		return o.finish(ctx, inv, domain.Failed(domain.MsgNoSelection), OutcomeNoSelection)
	}

	n := len(targets)
	o.emit(ctx, inv, domain.Loading(domain.GeneratingMessage(n)))

	texts, err := o.generate(ctx, inv, description, n)
	if err != nil {
		inv.logger.Error("generation failed", "error", err, "count", n)
		inv.cause = err
		return o.finish(ctx, inv, domain.Failed(messageOf(err)), OutcomeError)
	}

	for i := 0; i < n && i < len(texts); i++ {
		pathway, err := apply.Apply(targets[i], texts[i])
		if err != nil {
			inv.logger.Error("apply failed", "error", err, "index", i, "applied", inv.applied)
			inv.cause = err
			return o.finish(ctx, inv, domain.Failed(messageOf(err)), OutcomeError)
		}
		inv.applied++
		if o.hooks.OnApply != nil {
			ev := &domain.ApplyEvent{
				InvocationID: inv.id,
				Index:        i,
				Element:      targets[i].ID(),
				Pathway:      string(pathway),
				Text:         texts[i],
			}
			guard(inv, "apply hook", func() { o.hooks.OnApply(ctx, ev) })
		}
	}

	return o.finish(ctx, inv, domain.Succeeded(domain.FilledMessage(inv.applied)), OutcomeSuccess)
}

func (o *Orchestrator) generate(ctx context.Context, inv *invocation, description string, n int) (domain.GenerationResult, error) {
	genCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	texts, err := o.generator.Generate(genCtx, description, n)
	o.metrics.observeGeneration(time.Since(start))
	if err != nil {
		return nil, err
	}
	// A conforming generator never returns fewer texts; guard anyway so that no
	// element is written when it does.
	if len(texts) < n {
		return nil, &domain.InsufficientResultsError{Requested: n, Actual: len(texts)}
	}
	inv.logger.Debug("generation done", "count", n, "returned", len(texts), "elapsed", time.Since(start))
	return texts, nil
}

func (o *Orchestrator) lock(ctx context.Context, host any) (ports.UnlockFunc, error) {
	key := "default"
	if id, ok := host.(ports.DocumentIdentity); ok && id.DocumentID() != "" {
		key = id.DocumentID()
	}
	lockCtx := ctx
	if o.lockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, o.lockWait)
		defer cancel()
	}
	unlock, err := o.locker.Lock(lockCtx, key, o.lockTTL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.ErrBusy
		}
		return nil, fmt.Errorf("document lock: %w", err)
	}
	return unlock, nil
}

// emit delivers ev to the status hook and the sink. A panicking hook or sink
// loses only this delivery.
func (o *Orchestrator) emit(ctx context.Context, inv *invocation, ev domain.StatusEvent) {
	if o.hooks.OnStatus != nil {
		guard(inv, "status hook", func() { o.hooks.OnStatus(ctx, ev) })
	}
	if inv.sink == nil {
		return
	}
	guard(inv, "status sink", func() {
		if err := inv.sink.Emit(ctx, ev); err != nil {
			inv.logger.Warn("status delivery failed", "error", err, "status", ev.Type)
		}
	})
}

// finish emits the terminal event, relays it to the host notifier and records it.
// Once called, ev is the invocation's result whatever the callbacks do.
func (o *Orchestrator) finish(ctx context.Context, inv *invocation, ev domain.StatusEvent, outcome string) domain.StatusEvent {
	inv.done = true
	o.emit(ctx, inv, ev)
	notify(inv, ev.Message)

	elapsed := time.Since(inv.start)
	o.metrics.finish(outcome, inv.applied)
	inv.logger.Info("fill finished",
		"outcome", outcome,
		"selected", inv.selected,
		"applied", inv.applied,
		"elapsed", elapsed,
	)
	if o.hooks.OnFinish != nil {
		finished := &domain.InvocationEvent{
			Timestamp:    time.Now(),
			InvocationID: inv.id,
			Selected:     inv.selected,
			Applied:      inv.applied,
			Duration:     elapsed,
			Outcome:      ev,
			Err:          inv.cause,
		}
		guard(inv, "finish hook", func() { o.hooks.OnFinish(ctx, finished) })
	}
	return ev
}

// guard runs a caller-supplied callback and logs a panic instead of propagating it.
func guard(inv *invocation, what string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			inv.logger.Warn(what+" panicked", "panic", fmt.Sprint(rec))
		}
	}()
	fn()
}

// notify relays msg to the host notification surface, if any. Best effort.
func notify(inv *invocation, msg string) {
	n, ok := inv.host.(ports.Notifier)
	if !ok {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			inv.logger.Warn("host notify panicked", "panic", fmt.Sprint(rec))
		}
	}()
	n.Notify(msg)
}

func messageOf(err error) string {
	if err == nil || err.Error() == "" {
		return domain.MsgUnknown
	}
	return err.Error()
}
