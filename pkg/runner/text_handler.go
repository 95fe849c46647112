package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/textfill/pkg/domain"
	"github.com/muesli/termenv"
)

// TextHandler implements IOHandler for an interactive terminal. Every input line
// is a description submitted as-is.
type TextHandler struct {
	Reader *bufio.Reader
	Writer io.Writer
	Prompt string

	output *termenv.Output
	mu     sync.Mutex

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerProfile forces a colour profile (e.g. termenv.Ascii in tests).
func WithTextHandlerProfile(p termenv.Profile) TextHandlerOption {
	return func(h *TextHandler) {
		h.output = termenv.NewOutput(h.Writer, termenv.WithProfile(p))
	}
}

// WithTextHandlerPrompt replaces the "> " prompt.
func WithTextHandlerPrompt(prompt string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Prompt = prompt
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
		Prompt: "> ",
		output: termenv.NewOutput(w),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines on its own goroutine so Input can honour ctx.
func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

// Input prompts for a description and returns it as a submit command.
// Blank lines are skipped; "exit" and "quit" end the session with io.EOF.
func (h *TextHandler) Input(ctx context.Context) ([]byte, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			h.mu.Lock()
			fmt.Fprint(h.Writer, h.Prompt)
			h.mu.Unlock()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return nil, io.EOF
			}
			if res.err != nil {
				return nil, res.err
			}
			text := strings.TrimSpace(res.text)
			switch text {
			case "":
				continue
			case "exit", "quit":
				return nil, io.EOF
			}

			clean, err := SanitizeInput(text)
			if err != nil {
				_ = h.SystemOutput(ctx, fmt.Sprintf("%v. Please try again.", err))
				continue
			}
			return json.Marshal(domain.Command{Type: domain.CommandSubmit, Text: clean})
		}
	}
}

// Emit prints one status line.
func (h *TextHandler) Emit(ctx context.Context, ev domain.StatusEvent) error {
	var line termenv.Style
	switch ev.Type {
	case domain.StatusLoading:
		line = h.output.String("… " + ev.Message).Faint()
	case domain.StatusError:
		line = h.output.String("✗ " + ev.Message).Foreground(h.output.Color("1")).Bold()
	case domain.StatusSuccess:
		line = h.output.String("✓ " + ev.Message).Foreground(h.output.Color("2")).Bold()
	default:
		line = h.output.String(ev.Message)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.Writer, line.String())
	return err
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}
