package selection

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/textfill/internal/logging"
	"github.com/aretw0/textfill/pkg/ports"
)

// DefaultTextMarkers are the type tags recognised as text layers (compared case-insensitively).
var DefaultTextMarkers = []string{"text", "textnode", "text_layer"}

// Resolver extracts the text elements of the current selection.
type Resolver struct {
	access  Accessor
	markers map[string]struct{}
	logger  *slog.Logger
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithAccessor replaces the selection-access strategy.
func WithAccessor(a Accessor) Option {
	return func(r *Resolver) {
		r.access = a
	}
}

// WithTextMarkers replaces the recognised text type tags.
func WithTextMarkers(markers ...string) Option {
	return func(r *Resolver) {
		r.markers = markerSet(markers)
	}
}

// WithLogger configures a logger for the Resolver.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// NewResolver creates a Resolver using DefaultAccessor and DefaultTextMarkers.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		access:  DefaultAccessor,
		markers: markerSet(DefaultTextMarkers),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func markerSet(markers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		set[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	return set
}

// Resolve returns the text elements of the host selection in host order.
// It never fails; any problem yields fewer (possibly zero) elements.
func (r *Resolver) Resolve(host any) (targets []ports.Node) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Warn("selection access panicked", "panic", fmt.Sprint(rec))
			targets = nil
		}
	}()

	raw, ok := r.access(host)
	if !ok {
		r.logger.Debug("no selection source reachable")
		return nil
	}

	nodes := Normalize(raw)
	targets = make([]ports.Node, 0, len(nodes))
	for i, n := range nodes {
		if r.IsText(n) {
			targets = append(targets, n)
			continue
		}
		r.logger.Debug("skipping non-text selection item", "index", i)
	}
	return targets
}

// IsText reports whether n is a text layer: a recognised type tag, or failing that,
// a readable text content. A panic while probing counts as "not text".
func (r *Resolver) IsText(n ports.Node) (ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Debug("probing selection item panicked", "panic", fmt.Sprint(rec))
			ok = false
		}
	}()

	if t, isTyped := n.(ports.Typed); isTyped {
		if _, known := r.markers[strings.ToLower(t.Type())]; known {
			return true
		}
	}
	if tc, hasText := n.(ports.TextContent); hasText {
		if _, present := tc.TextContent(); present {
			return true
		}
	}
	return false
}
