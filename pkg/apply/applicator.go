// Package apply writes generated text into host elements.
//
// A host element can expose up to three ways of changing its text. Exactly one is used
// per write, chosen in this fixed order:
//
//  1. a settable text property (ports.CharactersProperty)
//  2. a text-setting method (ports.TextSetter)
//  3. a legacy text property (ports.LegacyTextProperty)
//
// An element with none of them yields domain.UnwritableElementError.
package apply

import (
	"fmt"

	"github.com/aretw0/textfill/pkg/domain"
	"github.com/aretw0/textfill/pkg/ports"
)

// Pathway names the capability used for a write.
type Pathway string

const (
	PathwayProperty Pathway = "property"
	PathwaySetter   Pathway = "setter"
	PathwayLegacy   Pathway = "legacy"
)

// Writer writes text through one capability pathway.
type Writer interface {
	Pathway() Pathway
	Write(text string) error
}

type propertyWriter struct{ node ports.CharactersProperty }

func (w propertyWriter) Pathway() Pathway { return PathwayProperty }

func (w propertyWriter) Write(text string) error {
	w.node.SetCharacters(text)
	return nil
}

type setterWriter struct{ node ports.TextSetter }

func (w setterWriter) Pathway() Pathway { return PathwaySetter }

func (w setterWriter) Write(text string) error {
	return w.node.SetText(text)
}

type legacyWriter struct{ node ports.LegacyTextProperty }

func (w legacyWriter) Pathway() Pathway { return PathwayLegacy }

func (w legacyWriter) Write(text string) error {
	w.node.SetLegacyText(text)
	return nil
}

// WriterFor probes n and returns the highest-priority writer it supports.
func WriterFor(n ports.Node) (Writer, bool) {
	if p, ok := n.(ports.CharactersProperty); ok && p.HasCharacters() {
		return propertyWriter{node: p}, true
	}
	if s, ok := n.(ports.TextSetter); ok {
		return setterWriter{node: s}, true
	}
	if l, ok := n.(ports.LegacyTextProperty); ok && l.HasLegacyText() {
		return legacyWriter{node: l}, true
	}
	return nil, false
}

// Apply writes text into n and reports which pathway was used.
// Failures, including panics raised by the host while writing, come back as
// *domain.UnwritableElementError.
func Apply(n ports.Node, text string) (pathway Pathway, err error) {
	id := nodeID(n)
	defer func() {
		if rec := recover(); rec != nil {
			err = &domain.UnwritableElementError{Element: id, Err: fmt.Errorf("host panic: %v", rec)}
		}
	}()

	w, ok := WriterFor(n)
	if !ok {
		return "", &domain.UnwritableElementError{Element: id}
	}
	if err := w.Write(text); err != nil {
		return w.Pathway(), &domain.UnwritableElementError{Element: id, Err: err}
	}
	return w.Pathway(), nil
}

func nodeID(n ports.Node) (id string) {
	defer func() {
		if recover() != nil {
			id = "?"
		}
	}()
	if n == nil {
		return ""
	}
	return n.ID()
}
