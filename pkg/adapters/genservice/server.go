package genservice

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/textfill/internal/logging"
	"github.com/aretw0/textfill/pkg/adapters/upstream"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/ports"
	"github.com/aretw0/textfill/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/semaphore"
)

const (
	// MaxCount is the largest number of texts one request may ask for.
	MaxCount = 50

	defaultMaxConcurrent = 8
	maxRequestBody       = 64 << 10
)

// Error messages returned in the {error} body.
const (
	msgInvalidBody   = "invalid request body"
	msgNoDescription = "description is required"
	msgBadCount      = "count must be between 1 and 50"
	msgBusy          = "generation service is busy, retry shortly"
	msgNoTexts       = "model returned no usable texts"
)

// Server answers generation requests with texts from a ports.TextModel.
type Server struct {
	model    ports.TextModel
	sem      *semaphore.Weighted
	maxInput int
	metrics  *Metrics
	registry *prometheus.Registry
	logger   *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMaxConcurrent bounds simultaneous upstream calls. Extra requests get 503.
func WithMaxConcurrent(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithMaxInput sets the description size limit in bytes.
func WithMaxInput(n int) Option {
	return func(s *Server) {
		s.maxInput = n
	}
}

// WithRegistry registers the service metrics in reg and serves reg on /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a Server on top of model.
func New(model ports.TextModel, opts ...Option) *Server {
	s := &Server{
		model:    model,
		sem:      semaphore.NewWeighted(defaultMaxConcurrent),
		maxInput: runner.DefaultMaxInputSize,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry != nil {
		s.metrics = NewMetrics(s.registry)
	}
	return s
}

// Handler returns the HTTP routes of the service.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/api/generate", s.handleGenerate)
	// Path the published plugin was built against.
	r.Post("/api/qwen-proxy", s.handleGenerate)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "model": s.model.Name()})
	})
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return EnableCORS(r)
}

// EnableCORS allows any origin; plugin iframes call the service cross-origin.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		s.logger.Warn("generate: invalid request body", "error", err)
		s.fail(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	texts, err := s.produce(r.Context(), req.Description, req.Count)
	if err != nil {
		status := http.StatusBadGateway
		var se *domain.ServiceError
		if errors.As(err, &se) {
			status = se.StatusCode
		}
		s.fail(w, status, err.Error())
		return
	}

	s.metrics.request(http.StatusOK)
	ok := true
	writeJSON(w, http.StatusOK, domain.GenerationResponse{Success: &ok, Texts: texts})
}

func (s *Server) fail(w http.ResponseWriter, status int, msg string) {
	s.metrics.request(status)
	writeJSON(w, status, errorBody{Error: msg})
}

// Generate produces count texts in-process, with the same validation and
// limits as the HTTP endpoint. It implements ports.Generator.
func (s *Server) Generate(ctx context.Context, description string, count int) (domain.GenerationResult, error) {
	texts, err := s.produce(ctx, description, count)
	if err != nil {
		return nil, err
	}
	if len(texts) < count {
		return nil, &domain.InsufficientResultsError{Requested: count, Actual: len(texts)}
	}
	return texts, nil
}

// produce returns at most count texts. A model that yields fewer is not an
// error here; the caller decides whether a shortfall is acceptable.
func (s *Server) produce(ctx context.Context, description string, count int) (domain.GenerationResult, error) {
	if count < 1 || count > MaxCount {
		return nil, &domain.ServiceError{StatusCode: http.StatusBadRequest, Message: msgBadCount}
	}
	clean, err := runner.SanitizeInputLimit(description, s.maxInput)
	if err != nil {
		return nil, &domain.ServiceError{StatusCode: http.StatusBadRequest, Message: err.Error()}
	}
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil, &domain.ServiceError{StatusCode: http.StatusBadRequest, Message: msgNoDescription}
	}

	if !s.sem.TryAcquire(1) {
		s.logger.Warn("generate: saturated")
		return nil, &domain.ServiceError{StatusCode: http.StatusServiceUnavailable, Message: msgBusy}
	}
	defer s.sem.Release(1)

	start := time.Now()
	output, err := s.model.Complete(ctx, upstream.SystemPrompt, upstream.BuildPrompt(clean, count))
	s.metrics.upstream(s.model.Name(), time.Since(start))
	if err != nil {
		s.logger.Error("generate: upstream failed", "model", s.model.Name(), "error", err)
		return nil, &domain.ServiceError{StatusCode: http.StatusBadGateway, Message: "upstream model failed: " + err.Error()}
	}

	texts := upstream.ParseTexts(output)
	s.logger.Debug("generate: done",
		"model", s.model.Name(),
		"requested", count,
		"parsed", len(texts),
		"elapsed", time.Since(start),
	)
	if len(texts) == 0 {
		return nil, &domain.ServiceError{StatusCode: http.StatusBadGateway, Message: msgNoTexts}
	}
	if len(texts) > count {
		texts = texts[:count]
	}
	return texts, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
