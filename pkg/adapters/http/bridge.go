package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/textfill/internal/logging"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxCommandSize = 64 << 10

// Orchestrator is the part of fill.Orchestrator the bridge drives.
type Orchestrator interface {
	HandleMessage(ctx context.Context, host any, data []byte, sink ports.StatusSink) (bool, error)
}

// Bridge exposes one host document to a browser-based UI: commands come in over
// POST /commands and status events go out on the response and on GET /events.
type Bridge struct {
	orchestrator Orchestrator
	host         any
	topic        string
	Streams      *StreamManager
	registry     *prometheus.Registry
	afterFill    func(ctx context.Context, final domain.StatusEvent) error
	logger       *slog.Logger
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithBridgeRegistry serves reg on /metrics.
func WithBridgeRegistry(reg *prometheus.Registry) BridgeOption {
	return func(b *Bridge) {
		b.registry = reg
	}
}

// WithAfterFill runs fn after each handled submit (e.g. to save the document).
func WithAfterFill(fn func(ctx context.Context, final domain.StatusEvent) error) BridgeOption {
	return func(b *Bridge) {
		b.afterFill = fn
	}
}

// WithBridgeLogger configures the structured logger.
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// NewBridge creates a bridge serving host.
func NewBridge(orch Orchestrator, host any, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		orchestrator: orch,
		host:         host,
		topic:        "default",
		Streams:      NewStreamManager(),
		logger:       logging.NewNop(),
	}
	if id, ok := host.(ports.DocumentIdentity); ok && id.DocumentID() != "" {
		b.topic = id.DocumentID()
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Handler returns the bridge routes.
func (b *Bridge) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/commands", b.handleCommand)
	r.Get("/events", b.handleEvents)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "document": b.topic})
	})
	if b.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{}))
	}
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// collector keeps an invocation's events for the HTTP response and fans them
// out to SSE subscribers.
type collector struct {
	mu      sync.Mutex
	events  []domain.StatusEvent
	streams *StreamManager
	topic   string
}

func (c *collector) Emit(ctx context.Context, ev domain.StatusEvent) error {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
	if data, err := json.Marshal(ev); err == nil {
		c.streams.Broadcast(c.topic, string(data))
	}
	return nil
}

// handleCommand handles POST /commands. The body is a bare or enveloped
// command; the response is the JSON array of status events it produced.
func (b *Bridge) handleCommand(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCommandSize))
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		b.logger.Warn("Command: unreadable body", "error", err)
		return
	}

	sink := &collector{streams: b.Streams, topic: b.topic, events: []domain.StatusEvent{}}
	handled, err := b.orchestrator.HandleMessage(r.Context(), b.host, body, sink)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid command: %v", err), http.StatusBadRequest)
		b.logger.Warn("Command: rejected", "error", err)
		return
	}

	if handled && b.afterFill != nil && len(sink.events) > 0 {
		final := sink.events[len(sink.events)-1]
		if err := b.afterFill(r.Context(), final); err != nil {
			http.Error(w, fmt.Sprintf("Save error: %v", err), http.StatusInternalServerError)
			b.logger.Error("Command: after fill failed", "error", err)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sink.events); err != nil {
		b.logger.Error("Command response encode failed", "error", err)
	}
}

// handleEvents handles GET /events (SSE). Every status event of every
// invocation on this document is streamed as one data line.
func (b *Bridge) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		b.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := b.Streams.Subscribe(b.topic)
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			b.logger.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // topic -> set of channels
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	if _, ok := sm.subscribers[topic]; !ok {
		sm.subscribers[topic] = make(map[chan<- string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[topic]; ok {
			if _, live := subs[ch]; !live {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, topic)
			}
		}
	}
}

// Subscribers returns the number of live subscriptions on topic.
func (sm *StreamManager) Subscribers(topic string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[topic])
}

func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Slow client.
			sm.logger.Warn("SSE: client buffer full, dropping message", "topic", topic)
		}
	}
}
