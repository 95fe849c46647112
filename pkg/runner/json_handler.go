package runner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/aretw0/textfill/internal/logging"
	"github.com/aretw0/textfill/pkg/domain"
)

// JSONHandler implements IOHandler for JSON-Lines communication.
type JSONHandler struct {
	Reader *bufio.Reader
	Writer io.Writer
	Logger *slog.Logger

	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Logger:  logging.NewNop(),
		encoder: json.NewEncoder(w),
	}
}

// Input returns the next non-blank line.
func (h *JSONHandler) Input(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, err := h.Reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			return line, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Emit writes the event as a single JSON line: {"type":"...","message":"..."}.
func (h *JSONHandler) Emit(ctx context.Context, ev domain.StatusEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(ev)
}

// SystemOutput goes to the log, never to the JSON stream: the stream only
// carries status events.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	h.Logger.Warn(msg)
	return nil
}
