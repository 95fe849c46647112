package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aretw0/textfill/internal/presentation/tui"
	textfillhttp "github.com/aretw0/textfill/pkg/adapters/http"
	"github.com/aretw0/textfill/pkg/adapters/memory"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/runner"
	"github.com/prometheus/client_golang/prometheus"
)

// BridgeOptions configures a long-running UI bridge over one document file.
type BridgeOptions struct {
	Path     string
	Text     bool
	HTTPAddr string
	In       io.Reader
	Out      io.Writer
}

// RunBridge serves UI commands for one document until the input ends or ctx is done.
// Every handled submit that changed the document saves it back to Path.
func RunBridge(ctx context.Context, env *Env, opts BridgeOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	doc, err := memory.LoadDocument(opts.Path)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	saver, err := newDocumentSaver(doc, opts.Path, env)
	if err != nil {
		return err
	}

	var reg *prometheus.Registry
	if opts.HTTPAddr != "" {
		reg = prometheus.NewRegistry()
	}
	filler, cleanup, err := env.NewFiller(ctx, registerer(reg))
	if err != nil {
		return err
	}
	defer cleanup()

	if opts.HTTPAddr != "" {
		bridge := textfillhttp.NewBridge(filler.Orchestrator(), doc.Host(),
			textfillhttp.WithBridgeRegistry(reg),
			textfillhttp.WithAfterFill(saver.Save),
			textfillhttp.WithBridgeLogger(env.Logger),
		)
		return serveHTTP(ctx, opts.HTTPAddr, bridge.Handler(), env.Logger)
	}

	var handler runner.IOHandler
	if opts.Text {
		tui.PrintBanner(opts.Out)
		printSystemMessage(opts.Out, "Filling %s. Describe the texts you want, or type exit.", opts.Path)
		handler = runner.NewTextHandler(opts.In, opts.Out)
	} else {
		jsonHandler := runner.NewJSONHandler(opts.In, opts.Out)
		jsonHandler.Logger = env.Logger
		handler = jsonHandler
	}

	r := runner.NewRunner(filler.Orchestrator(),
		runner.WithLogger(env.Logger),
		runner.WithInputHandler(handler),
		runner.WithAfterFill(saver.Save),
	)
	return r.Run(ctx, doc.Host())
}

// registerer avoids handing a typed nil registry to prometheus.
func registerer(reg *prometheus.Registry) prometheus.Registerer {
	if reg == nil {
		return nil
	}
	return reg
}

// documentSaver writes the document back whenever its serialized form changes.
type documentSaver struct {
	mu   sync.Mutex
	doc  *memory.Document
	path string
	last []byte
	env  *Env
}

func newDocumentSaver(doc *memory.Document, path string, env *Env) (*documentSaver, error) {
	last, err := doc.Marshal(false)
	if err != nil {
		return nil, err
	}
	return &documentSaver{doc: doc, path: path, last: last, env: env}, nil
}

// Save persists partial fills too; writes that already happened are never rolled back.
func (s *documentSaver) Save(ctx context.Context, final domain.StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.doc.Marshal(false)
	if err != nil {
		return err
	}
	if bytes.Equal(current, s.last) {
		return nil
	}
	if err := s.doc.Save(s.path); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	s.last = current
	s.env.Logger.Info("document saved", "path", s.path, "outcome", final.Type)
	return nil
}
