package fill

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scripted(errs ...error) (ports.Generator, *int) {
	calls := 0
	return ports.GeneratorFunc(func(ctx context.Context, description string, count int) (domain.GenerationResult, error) {
		i := calls
		calls++
		if i < len(errs) && errs[i] != nil {
			return nil, errs[i]
		}
		return domain.GenerationResult{"ok"}, nil
	}), &calls
}

func noSleep(r *RetryGenerator) {
	r.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
}

func TestRetry_RecoversFromTransportErrors(t *testing.T) {
	transport := &domain.TransportError{Err: errors.New("connection reset")}
	gen, calls := scripted(transport, transport)

	texts, err := Retry(gen, 3, time.Millisecond, noSleep).Generate(context.Background(), "x", 1)

	require.NoError(t, err)
	assert.Equal(t, domain.GenerationResult{"ok"}, texts)
	assert.Equal(t, 3, *calls)
}

func TestRetry_GivesUpAfterAttempts(t *testing.T) {
	transport := &domain.TransportError{Err: errors.New("timeout")}
	gen, calls := scripted(transport, transport, transport, transport)

	_, err := Retry(gen, 2, time.Millisecond, noSleep).Generate(context.Background(), "x", 1)

	assert.True(t, domain.IsTransport(err))
	assert.Equal(t, 2, *calls)
}

func TestRetry_DoesNotRetryServiceErrors(t *testing.T) {
	gen, calls := scripted(&domain.ServiceError{StatusCode: 400, Message: "bad description"})

	_, err := Retry(gen, 5, time.Millisecond, noSleep).Generate(context.Background(), "x", 1)

	var se *domain.ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 1, *calls)
}

func TestRetry_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	gen, calls := scripted(&domain.TransportError{Err: context.Canceled})

	_, err := Retry(gen, 5, time.Hour).Generate(ctx, "x", 1)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, *calls)
}

func TestRetry_Backoff(t *testing.T) {
	transport := &domain.TransportError{Err: errors.New("refused")}
	gen, _ := scripted(transport, transport, transport)

	var delays []time.Duration
	r := Retry(gen, 4, 10*time.Millisecond, func(r *RetryGenerator) {
		r.sleep = func(ctx context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		}
	})

	_, err := r.Generate(context.Background(), "x", 1)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond}, delays)
}
