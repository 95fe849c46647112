package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/textfill/pkg/ports"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// nodeSpec is the loose on-disk shape of a node. The variant is picked from
// which fields are present, the same way a host would be probed.
type nodeSpec struct {
	ID         string  `mapstructure:"id" yaml:"id" json:"id"`
	Type       string  `mapstructure:"type" yaml:"type,omitempty" json:"type,omitempty"`
	Characters *string `mapstructure:"characters" yaml:"characters,omitempty" json:"characters,omitempty"`
	SetText    *string `mapstructure:"set_text" yaml:"set_text,omitempty" json:"set_text,omitempty"`
	Locked     bool    `mapstructure:"locked" yaml:"locked,omitempty" json:"locked,omitempty"`
	Text       *string `mapstructure:"text" yaml:"text,omitempty" json:"text,omitempty"`
}

type pageFile struct {
	Name      string           `yaml:"name" json:"name"`
	Selection []string         `yaml:"selection,omitempty" json:"selection,omitempty"`
	Nodes     []map[string]any `yaml:"nodes" json:"nodes"`
}

type documentFile struct {
	ID            string     `yaml:"id" json:"id"`
	CurrentPage   string     `yaml:"current_page" json:"current_page"`
	Selection     []string   `yaml:"selection,omitempty" json:"selection,omitempty"`
	SingleAsValue bool       `yaml:"single_as_value,omitempty" json:"single_as_value,omitempty"`
	Notifications bool       `yaml:"notifications,omitempty" json:"notifications,omitempty"`
	Pages         []pageFile `yaml:"pages" json:"pages"`
}

// LoadDocument reads a document fixture (YAML, or JSON by extension).
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return ParseDocument(data, isJSON(path))
}

// ParseDocument decodes a document fixture.
func ParseDocument(data []byte, asJSON bool) (*Document, error) {
	var file documentFile
	if asJSON {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse document json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse document yaml: %w", err)
		}
	}

	doc := &Document{
		ID:            file.ID,
		CurrentPage:   file.CurrentPage,
		Selection:     file.Selection,
		SingleAsValue: file.SingleAsValue,
		Notifications: file.Notifications,
		index:         make(map[string]ports.Node),
	}
	for _, pf := range file.Pages {
		page := &Page{Name: pf.Name, Selection: pf.Selection}
		if doc.CurrentPage == "" {
			doc.CurrentPage = pf.Name
		}
		for i, raw := range pf.Nodes {
			var spec nodeSpec
			if err := mapstructure.WeakDecode(raw, &spec); err != nil {
				return nil, fmt.Errorf("page %q node %d: %w", pf.Name, i, err)
			}
			if spec.ID == "" {
				return nil, fmt.Errorf("page %q node %d: missing id", pf.Name, i)
			}
			if _, dup := doc.index[spec.ID]; dup {
				return nil, fmt.Errorf("duplicate node id %q", spec.ID)
			}
			n := doc.build(spec)
			page.Nodes = append(page.Nodes, n)
			doc.index[spec.ID] = n
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func (d *Document) build(spec nodeSpec) ports.Node {
	b := d.newBase(spec.ID, spec.Type)
	switch {
	case spec.Characters != nil:
		if b.NodeType == "" {
			b.NodeType = "TEXT"
		}
		return &CharactersNode{base: b, Characters: *spec.Characters}
	case spec.SetText != nil:
		if b.NodeType == "" {
			b.NodeType = "TEXT"
		}
		return &SetterNode{base: b, Value: *spec.SetText, Locked: spec.Locked}
	case spec.Text != nil:
		if b.NodeType == "" {
			b.NodeType = "text"
		}
		return &LegacyNode{base: b, Text: *spec.Text}
	default:
		return &ShapeNode{base: b}
	}
}

func specOf(n ports.Node) nodeSpec {
	spec := nodeSpec{ID: n.ID()}
	switch v := n.(type) {
	case *CharactersNode:
		spec.Type = v.NodeType
		text, _ := v.TextContent()
		spec.Characters = &text
	case *SetterNode:
		spec.Type = v.NodeType
		text, _ := TextOf(v)
		spec.SetText = &text
		spec.Locked = v.Locked
	case *LegacyNode:
		spec.Type = v.NodeType
		text, _ := TextOf(v)
		spec.Text = &text
	case *ShapeNode:
		spec.Type = v.NodeType
	}
	return spec
}

// Marshal encodes the document back into fixture form.
func (d *Document) Marshal(asJSON bool) ([]byte, error) {
	d.mu.Lock()
	file := documentFile{
		ID:            d.ID,
		CurrentPage:   d.CurrentPage,
		Selection:     d.Selection,
		SingleAsValue: d.SingleAsValue,
		Notifications: d.Notifications,
	}
	pages := append([]*Page(nil), d.Pages...)
	d.mu.Unlock()

	for _, p := range pages {
		pf := pageFile{Name: p.Name, Selection: p.Selection}
		for _, n := range p.Nodes {
			var raw map[string]any
			if err := mapstructure.Decode(specOf(n), &raw); err != nil {
				return nil, fmt.Errorf("encode node %q: %w", n.ID(), err)
			}
			pf.Nodes = append(pf.Nodes, compact(raw))
		}
		file.Pages = append(file.Pages, pf)
	}

	if asJSON {
		return json.MarshalIndent(file, "", "  ")
	}
	return yaml.Marshal(file)
}

// Save writes the document to path, picking the format from the extension.
func (d *Document) Save(path string) error {
	data, err := d.Marshal(isJSON(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// compact drops nil pointers and zero flags so fixtures stay readable.
func compact(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case *string:
			if val != nil {
				out[k] = *val
			}
		case bool:
			if val {
				out[k] = val
			}
		case string:
			if val != "" {
				out[k] = val
			}
		default:
			if v != nil {
				out[k] = v
			}
		}
	}
	return out
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
