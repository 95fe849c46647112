package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/textfill/pkg/domain"
)

// Report summarizes one fill for the terminal.
type Report struct {
	Document    string
	Description string
	Applied     []domain.ApplyEvent
	Final       domain.StatusEvent
}

// Markdown renders the report as a markdown document with one table row per
// written layer.
func (r Report) Markdown() string {
	var b strings.Builder

	icon := "✅"
	if r.Final.Type != domain.StatusSuccess {
		icon = "❌"
	}
	fmt.Fprintf(&b, "# %s %s\n\n", icon, r.Final.Message)
	if r.Document != "" {
		fmt.Fprintf(&b, "**Document:** `%s`  \n", r.Document)
	}
	fmt.Fprintf(&b, "**Request:** %s\n\n", escape(r.Description))

	if len(r.Applied) == 0 {
		b.WriteString("_No text layer was changed._\n")
		return b.String()
	}

	b.WriteString("| # | Layer | Pathway | Text |\n")
	b.WriteString("|---|-------|---------|------|\n")
	for _, a := range r.Applied {
		fmt.Fprintf(&b, "| %d | `%s` | %s | %s |\n", a.Index+1, a.Element, a.Pathway, escape(a.Text))
	}
	return b.String()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
