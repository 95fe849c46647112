package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/textfill"
	"github.com/aretw0/textfill/internal/presentation/tui"
	"github.com/aretw0/textfill/pkg/adapters/genservice"
	"github.com/aretw0/textfill/pkg/adapters/memory"
	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/runner"
	"github.com/muesli/termenv"
)

// ErrFillFailed is returned when the invocation ends with an error event.
var ErrFillFailed = errors.New("fill failed")

// FillOptions configures a one-shot fill of a document file.
type FillOptions struct {
	Path        string
	Description string
	Page        string
	// Local generates in process through the configured upstream model
	// instead of calling the remote endpoint.
	Local  bool
	DryRun bool
	Rich   bool
	Out    io.Writer
	Status io.Writer
}

// RunFill loads a document, fills its selection, saves any change and prints a report.
func RunFill(ctx context.Context, env *Env, opts FillOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Status == nil {
		opts.Status = os.Stderr
	}

	doc, err := memory.LoadDocument(opts.Path)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	if opts.Page != "" {
		doc.CurrentPage = opts.Page
	}

	var applied []domain.ApplyEvent
	hooks := createDebugHooks(env.Logger)
	logApply := hooks.OnApply
	hooks.OnApply = func(ctx context.Context, e *domain.ApplyEvent) {
		applied = append(applied, *e)
		logApply(ctx, e)
	}
	extra := []textfill.Option{textfill.WithLifecycleHooks(hooks)}

	if opts.Local {
		model, err := NewTextModel(ctx, env.Config.Service)
		if err != nil {
			return err
		}
		svc := genservice.New(model,
			genservice.WithMaxInput(env.Config.Service.MaxInput),
			genservice.WithLogger(env.Logger),
		)
		extra = append(extra, textfill.WithGenerator(svc))
	}

	filler, cleanup, err := env.NewFiller(ctx, nil, extra...)
	if err != nil {
		return err
	}
	defer cleanup()

	before, err := doc.Marshal(false)
	if err != nil {
		return err
	}

	profile := termenv.Ascii
	if opts.Rich {
		profile = termenv.ANSI256
	}
	status := runner.NewTextHandler(bytes.NewReader(nil), opts.Status, runner.WithTextHandlerProfile(profile))
	final := filler.Submit(ctx, doc.Host(), opts.Description, status)

	after, err := doc.Marshal(false)
	if err != nil {
		return err
	}
	if !opts.DryRun && !bytes.Equal(before, after) {
		if err := doc.Save(opts.Path); err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		env.Logger.Info("document saved", "path", opts.Path, "applied", len(applied))
	}

	render, err := tui.NewRenderer(opts.Rich)
	if err != nil {
		return err
	}
	report := tui.Report{
		Document:    opts.Path,
		Description: opts.Description,
		Applied:     applied,
		Final:       final,
	}
	out, err := render(report.Markdown())
	if err != nil {
		return err
	}
	fmt.Fprint(opts.Out, out)

	if final.Type == domain.StatusError {
		return fmt.Errorf("%w: %s", ErrFillFailed, final.Message)
	}
	return nil
}
