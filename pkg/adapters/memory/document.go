package memory

import (
	"sync"

	"github.com/aretw0/textfill/pkg/ports"
)

// Page is a page of a Document with its own selection.
// A nil Selection means the page exposes no selection at all.
type Page struct {
	Name      string
	Nodes     []ports.Node
	Selection []string
}

// Document is an in-memory host document.
// It implements ports.PageSelector, ports.DocumentSelector and ports.DocumentIdentity.
// Safe for concurrent use.
type Document struct {
	mu sync.Mutex

	ID          string
	Pages       []*Page
	CurrentPage string

	// Selection is the document-scoped selection, used when no page selection is reachable.
	Selection []string

	// SingleAsValue makes a one-item selection come back as the bare node,
	// like some hosts do.
	SingleAsValue bool

	// Notifications enables the host notification capability.
	Notifications bool

	notified []string
	index    map[string]ports.Node
}

// NewDocument creates an empty document with a single page.
func NewDocument(id string) *Document {
	d := &Document{
		ID:          id,
		CurrentPage: "Page 1",
		index:       make(map[string]ports.Node),
	}
	d.Pages = []*Page{{Name: d.CurrentPage}}
	return d
}

func (d *Document) lock() *sync.Mutex { return &d.mu }

// AddText adds a CharactersNode to the current page.
func (d *Document) AddText(id, characters string) *CharactersNode {
	n := &CharactersNode{base: d.newBase(id, "TEXT"), Characters: characters}
	d.add(n)
	return n
}

// AddSetter adds a SetterNode to the current page.
func (d *Document) AddSetter(id, value string) *SetterNode {
	n := &SetterNode{base: d.newBase(id, "TEXT"), Value: value}
	d.add(n)
	return n
}

// AddLegacy adds a LegacyNode to the current page.
func (d *Document) AddLegacy(id, text string) *LegacyNode {
	n := &LegacyNode{base: d.newBase(id, "text"), Text: text}
	d.add(n)
	return n
}

// AddShape adds a ShapeNode with the given type tag to the current page.
func (d *Document) AddShape(id, nodeType string) *ShapeNode {
	n := &ShapeNode{base: d.newBase(id, nodeType)}
	d.add(n)
	return n
}

func (d *Document) newBase(id, nodeType string) base {
	return base{mu: d.lock(), NodeID: id, Name: id, NodeType: nodeType}
}

func (d *Document) add(n ports.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	page := d.currentPageLocked()
	if page == nil {
		page = &Page{Name: d.CurrentPage}
		d.Pages = append(d.Pages, page)
	}
	page.Nodes = append(page.Nodes, n)
	if d.index == nil {
		d.index = make(map[string]ports.Node)
	}
	d.index[n.ID()] = n
}

// Select sets the current page's selection.
func (d *Document) Select(ids ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if page := d.currentPageLocked(); page != nil {
		page.Selection = append([]string{}, ids...)
	}
}

// Node looks up a node by ID.
func (d *Document) Node(id string) (ports.Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.index[id]
	return n, ok
}

// Text returns the current text of the node with the given ID.
func (d *Document) Text(id string) string {
	n, ok := d.Node(id)
	if !ok {
		return ""
	}
	text, _ := TextOf(n)
	return text
}

func (d *Document) currentPageLocked() *Page {
	for _, p := range d.Pages {
		if p.Name == d.CurrentPage {
			return p
		}
	}
	return nil
}

func (d *Document) resolveLocked(ids []string) any {
	nodes := make([]ports.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := d.index[id]; ok {
			nodes = append(nodes, n)
		}
	}
	if d.SingleAsValue && len(nodes) == 1 {
		return nodes[0]
	}
	return nodes
}

// PageSelection returns the current page's selection.
func (d *Document) PageSelection() (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	page := d.currentPageLocked()
	if page == nil || page.Selection == nil {
		return nil, false
	}
	return d.resolveLocked(page.Selection), true
}

// DocumentSelection returns the document-scoped selection.
func (d *Document) DocumentSelection() (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Selection == nil {
		return nil, false
	}
	return d.resolveLocked(d.Selection), true
}

// DocumentID identifies the document for distributed locking.
func (d *Document) DocumentID() string {
	return d.ID
}

// Notified returns the messages received through the notification capability.
func (d *Document) Notified() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.notified...)
}

// Host returns the value to hand to the orchestrator. When Notifications is
// disabled the returned host does not implement ports.Notifier.
func (d *Document) Host() any {
	if d.Notifications {
		return &notifyingHost{Document: d}
	}
	return d
}

type notifyingHost struct {
	*Document
}

func (h *notifyingHost) Notify(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.notified = append(h.notified, msg)
}
