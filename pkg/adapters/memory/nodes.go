package memory

import (
	"errors"
	"sync"
)

// ErrLocked is returned by SetterNode.SetText when the layer is locked.
var ErrLocked = errors.New("layer is locked")

type base struct {
	mu       *sync.Mutex
	NodeID   string
	Name     string
	NodeType string
}

func (b *base) ID() string { return b.NodeID }
func (b *base) Type() string { return b.NodeType }

// CharactersNode is a text layer with a settable "characters" property.
type CharactersNode struct {
	base
	Characters string
}

func (n *CharactersNode) HasCharacters() bool { return true }

func (n *CharactersNode) SetCharacters(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Characters = text
}

func (n *CharactersNode) TextContent() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Characters, true
}

// SetterNode is a text layer that only exposes a SetText method.
type SetterNode struct {
	base
	Value  string
	Locked bool
}

func (n *SetterNode) SetText(text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Locked {
		return ErrLocked
	}
	n.Value = text
	return nil
}

// LegacyNode is a text layer from an older host API with a plain "text" property.
type LegacyNode struct {
	base
	Text string
}

// HasLegacyText mirrors the host probe: an empty legacy text reads as absent.
func (n *LegacyNode) HasLegacyText() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Text != ""
}

func (n *LegacyNode) SetLegacyText(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Text = text
}

// ShapeNode has no text capability at all (images, rectangles, frames).
type ShapeNode struct {
	base
}

// TextOf returns the current text of a node, and false for shapes.
func TextOf(n any) (string, bool) {
	switch v := n.(type) {
	case *CharactersNode:
		return v.TextContent()
	case *SetterNode:
		v.mu.Lock()
		defer v.mu.Unlock()
		return v.Value, true
	case *LegacyNode:
		v.mu.Lock()
		defer v.mu.Unlock()
		return v.Text, true
	}
	return "", false
}
