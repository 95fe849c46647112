package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/textfill/pkg/adapters/genservice"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 5 * time.Second

// RunServe starts the generation service on addr (service.addr when empty).
func RunServe(ctx context.Context, env *Env, addr string) error {
	svc := env.Config.Service
	if addr == "" {
		addr = svc.Addr
	}
	model, err := NewTextModel(ctx, svc)
	if err != nil {
		return err
	}

	server := genservice.New(model,
		genservice.WithMaxConcurrent(svc.MaxConcurrent),
		genservice.WithMaxInput(svc.MaxInput),
		genservice.WithRegistry(prometheus.NewRegistry()),
		genservice.WithLogger(env.Logger),
	)
	env.Logger.Info("generation service configured", "backend", svc.Backend, "model", model.Name())
	return serveHTTP(ctx, addr, server.Handler(), env.Logger)
}

// serveHTTP runs handler on addr until ctx is done, then shuts down gracefully.
func serveHTTP(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("listening", "address", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("could not stop server: %w", err)
			}
		}
		logger.Info("server stopped gracefully")
		return nil
	}
}
