package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/textfill/internal/logging"
	"github.com/aretw0/textfill/pkg/adapters/memory"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/fill"
	"github.com/aretw0/textfill/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

// GenerateResponse is the structured result of generate_texts.
type GenerateResponse struct {
	Texts []string `json:"texts" jsonschema_description:"The generated texts, in order"`
}

// FillResponse is the structured result of fill_document.
type FillResponse struct {
	Events []domain.StatusEvent `json:"events" jsonschema_description:"Status events emitted by the fill, in order"`
	Final  domain.StatusEvent   `json:"final" jsonschema_description:"The terminal event (success or error)"`
	Saved  bool                 `json:"saved" jsonschema_description:"Whether the document file was rewritten"`
}

// Server exposes text generation and document filling as MCP tools.
type Server struct {
	generator    ports.Generator
	orchestrator *fill.Orchestrator
	mcpServer    *server.MCPServer
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithOrchestrator replaces the orchestrator used by fill_document.
func WithOrchestrator(o *fill.Orchestrator) Option {
	return func(s *Server) {
		s.orchestrator = o
	}
}

// NewServer creates a new MCP Server instance around gen.
func NewServer(gen ports.Generator, version string, opts ...Option) *Server {
	s := &Server{
		generator: gen,
		mcpServer: server.NewMCPServer("textfill-mcp", strings.TrimSpace(version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.orchestrator == nil {
		s.orchestrator = fill.New(gen, fill.WithLogger(s.logger))
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	generateTool := mcp.NewTool("generate_texts",
		mcp.WithDescription("Generate distinct short texts for a natural-language description."),
		mcp.WithString("description", mcp.Required(), mcp.Description("What the texts should say, e.g. 'coffee shop taglines'")),
		mcp.WithNumber("count", mcp.Required(), mcp.Description("How many distinct texts to generate")),
		mcp.WithOutputSchema[GenerateResponse](),
	)
	s.mcpServer.AddTool(generateTool, mcp.NewStructuredToolHandler(s.handleGenerate))

	fillTool := mcp.NewTool("fill_document",
		mcp.WithDescription("Fill the selected text layers of a document fixture (YAML or JSON) and save it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the document file")),
		mcp.WithString("description", mcp.Required(), mcp.Description("What the texts should say")),
		mcp.WithString("page", mcp.Description("Page whose selection is filled (defaults to the document's current page)")),
		mcp.WithOutputSchema[FillResponse](),
	)
	s.mcpServer.AddTool(fillTool, mcp.NewStructuredToolHandler(s.handleFill))
}

func (s *Server) handleGenerate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GenerateResponse, error) {
	description, _ := args["description"].(string)
	count, ok := args["count"].(float64)
	if !ok || count < 1 || count != float64(int(count)) {
		return GenerateResponse{}, fmt.Errorf("count must be a positive integer")
	}

	n := int(count)
	texts, err := s.generator.Generate(ctx, description, n)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("generation failed: %w", err)
	}
	if len(texts) < n {
		return GenerateResponse{}, &domain.InsufficientResultsError{Requested: n, Actual: len(texts)}
	}
	return GenerateResponse{Texts: texts[:n]}, nil
}

// eventLog collects the status events of one fill.
type eventLog struct {
	mu     sync.Mutex
	events []domain.StatusEvent
}

func (l *eventLog) Emit(ctx context.Context, ev domain.StatusEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	return nil
}

func (s *Server) handleFill(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FillResponse, error) {
	path, _ := args["path"].(string)
	description, _ := args["description"].(string)
	if path == "" {
		return FillResponse{}, fmt.Errorf("path is required")
	}

	doc, err := memory.LoadDocument(path)
	if err != nil {
		return FillResponse{}, err
	}
	if page, _ := args["page"].(string); page != "" {
		doc.CurrentPage = page
	}

	before, err := doc.Marshal(false)
	if err != nil {
		return FillResponse{}, err
	}

	log := &eventLog{events: []domain.StatusEvent{}}
	final := s.orchestrator.Submit(ctx, doc.Host(), description, log)
	resp := FillResponse{Events: log.events, Final: final}

	// A partial failure may still have written earlier layers; persist any change.
	after, err := doc.Marshal(false)
	if err != nil {
		return resp, err
	}
	if !bytes.Equal(before, after) {
		if err := doc.Save(path); err != nil {
			return resp, fmt.Errorf("save document: %w", err)
		}
		resp.Saved = true
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("textfill://status", "Fill Orchestrator Status",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(map[string]bool{"busy": s.orchestrator.Busy()})
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "textfill://status",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
