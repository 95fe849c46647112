package fill

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/textfill/internal/logging"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/ports"
)

// RetryGenerator decorates a Generator with bounded exponential backoff.
// Only transport failures are retried; service, format and count errors are final.
type RetryGenerator struct {
	next     ports.Generator
	attempts int
	base     time.Duration
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// RetryOption configures a RetryGenerator.
type RetryOption func(*RetryGenerator)

// WithRetryLogger sets the logger used to report retries.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(r *RetryGenerator) {
		r.logger = logger
	}
}

// Retry wraps next. attempts < 1 is treated as 1 (no retry).
func Retry(next ports.Generator, attempts int, base time.Duration, opts ...RetryOption) *RetryGenerator {
	if attempts < 1 {
		attempts = 1
	}
	r := &RetryGenerator{
		next:     next,
		attempts: attempts,
		base:     base,
		logger:   logging.NewNop(),
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate calls the wrapped generator until it succeeds, fails with a
// non-transport error, the attempts run out or ctx is done.
func (r *RetryGenerator) Generate(ctx context.Context, description string, count int) (domain.GenerationResult, error) {
	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		texts, err := r.next.Generate(ctx, description, count)
		if err == nil {
			return texts, nil
		}
		lastErr = err
		if !domain.IsTransport(err) || attempt == r.attempts || ctx.Err() != nil {
			break
		}

		delay := r.base << (attempt - 1)
		r.logger.Warn("generation transport failure, retrying",
			"error", err,
			"attempt", attempt,
			"delay", delay,
		)
		if err := r.sleep(ctx, delay); err != nil {
			break
		}
	}
	return nil, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
