package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/textfill"
	"github.com/aretw0/textfill/internal/config"
	"github.com/aretw0/textfill/internal/logging"
	"github.com/aretw0/textfill/pkg/adapters/redis"
	"github.com/aretw0/textfill/pkg/adapters/upstream"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/ports"
	"github.com/aretw0/textfill/pkg/selection"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultOpenAIBaseURL is used by the "openai" backend when no base_url is set.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// DefaultOpenAIModel is used by the "openai" backend when no model is set.
const DefaultOpenAIModel = "gpt-4o-mini"

// Options are the flags shared by every command.
type Options struct {
	ConfigPath string
	LogLevel   string
	Debug      bool
}

// Env is the loaded configuration plus the logger built from it.
type Env struct {
	Config config.Config
	Logger *slog.Logger
}

// Setup loads the configuration and builds the application logger.
// A --log-level flag wins over the file and the environment.
func Setup(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &Env{Config: cfg, Logger: logging.New(level)}, nil
}

// NewFiller builds a Filler from the configuration. The returned cleanup
// releases the Redis connection when a lock is configured.
func (e *Env) NewFiller(ctx context.Context, reg prometheus.Registerer, extra ...textfill.Option) (*textfill.Filler, func(), error) {
	cfg := e.Config
	accessor, err := selection.AccessorFor(cfg.Selection.Source)
	if err != nil {
		return nil, nil, err
	}
	opts := []textfill.Option{
		textfill.WithEndpoint(cfg.Endpoint),
		textfill.WithTimeout(cfg.Timeout),
		textfill.WithRetry(cfg.Retry.Attempts, cfg.Retry.BaseDelay),
		textfill.WithSelectionAccessor(accessor),
		textfill.WithLogger(e.Logger),
	}
	if len(cfg.Selection.EnvelopeKeys) > 0 {
		opts = append(opts, textfill.WithEnvelopeKeys(cfg.Selection.EnvelopeKeys...))
	}
	if e.Logger.Enabled(ctx, slog.LevelDebug) {
		opts = append(opts, textfill.WithLifecycleHooks(createDebugHooks(e.Logger)))
	}
	if reg != nil {
		opts = append(opts, textfill.WithMetrics(reg))
	}

	cleanup := func() {}
	if cfg.Redis.Addr != "" {
		var lockOpts []redis.Option
		if cfg.Redis.Prefix != "" {
			lockOpts = append(lockOpts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		locker, err := redis.Dial(ctx, cfg.Redis.Addr, lockOpts...)
		if err != nil {
			return nil, nil, err
		}
		e.Logger.Info("document lock enabled", "redis", cfg.Redis.Addr)
		opts = append(opts, textfill.WithLocker(locker, cfg.Redis.LockTTL, cfg.Redis.LockWait))
		cleanup = func() {
			if err := locker.Close(); err != nil {
				e.Logger.Warn("redis close failed", "error", err)
			}
		}
	}

	opts = append(opts, extra...)
	return textfill.New(opts...), cleanup, nil
}

// NewTextModel builds the upstream model selected by service.backend.
func NewTextModel(ctx context.Context, svc config.Service) (ports.TextModel, error) {
	switch strings.ToLower(svc.Backend) {
	case "", "qwen":
		return upstream.NewOpenAI(svc.APIKey,
			upstream.WithBaseURL(svc.BaseURL),
			upstream.WithModel(svc.Model),
		), nil
	case "openai":
		base := svc.BaseURL
		if base == "" {
			base = DefaultOpenAIBaseURL
		}
		model := svc.Model
		if model == "" {
			model = DefaultOpenAIModel
		}
		return upstream.NewOpenAI(svc.APIKey,
			upstream.WithBaseURL(base),
			upstream.WithModel(model),
		), nil
	case "gemini":
		return upstream.NewGemini(ctx, svc.APIKey, svc.Model)
	}
	return nil, fmt.Errorf("unknown service backend %q", svc.Backend)
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStatus: func(ctx context.Context, ev domain.StatusEvent) {
			logger.Debug("Status", "type", ev.Type, "message", ev.Message)
		},
		OnApply: func(ctx context.Context, e *domain.ApplyEvent) {
			logger.Debug("Apply", "index", e.Index, "element", e.Element, "pathway", e.Pathway)
		},
		OnFinish: func(ctx context.Context, e *domain.InvocationEvent) {
			logger.Debug("Finish", "invocation", e.InvocationID, "applied", e.Applied, "duration", e.Duration)
		},
	}
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
