package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Renderer turns markdown into terminal output.
type Renderer func(string) (string, error)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// NewRenderer returns a glamour renderer. Rich output adapts to the terminal
// background; plain output uses the no-colour style for pipes and logs.
func NewRenderer(rich bool) (Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(100)}
	if rich {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts,
			glamour.WithStandardStyle("notty"),
			glamour.WithColorProfile(termenv.Ascii),
		)
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}
