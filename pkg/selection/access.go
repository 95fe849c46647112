package selection

import (
	"fmt"
	"strings"

	"github.com/aretw0/textfill/pkg/ports"
)

// Accessor yields the raw selection value of a host.
// ok is false when the source is not reachable on this host.
type Accessor func(host any) (raw any, ok bool)

// Page reads the page-scoped selection.
func Page(host any) (any, bool) {
	if s, ok := host.(ports.PageSelector); ok {
		return s.PageSelection()
	}
	return nil, false
}

// Document reads the document-scoped selection.
func Document(host any) (any, bool) {
	if s, ok := host.(ports.DocumentSelector); ok {
		return s.DocumentSelection()
	}
	return nil, false
}

// Chain returns the first reachable source, in order.
func Chain(accessors ...Accessor) Accessor {
	return func(host any) (any, bool) {
		for _, access := range accessors {
			if raw, ok := access(host); ok {
				return raw, true
			}
		}
		return nil, false
	}
}

// DefaultAccessor probes the page selection first, then the document selection.
var DefaultAccessor = Chain(Page, Document)

// AccessorFor maps a configured source name to an Accessor:
// "auto" (or empty) is DefaultAccessor, "page" and "document" read only that scope.
func AccessorFor(source string) (Accessor, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", "auto":
		return DefaultAccessor, nil
	case "page":
		return Page, nil
	case "document":
		return Document, nil
	}
	return nil, fmt.Errorf("unknown selection source %q", source)
}
