package ports

// Node is an opaque host element handle.
type Node interface {
	// ID returns a host identifier used in logs and errors.
	ID() string
}

// Typed is implemented by nodes that expose a type tag (e.g. "TEXT").
type Typed interface {
	Type() string
}

// TextContent is implemented by nodes that expose readable text.
// ok is false when the property is absent on this particular node.
type TextContent interface {
	TextContent() (text string, ok bool)
}

// CharactersProperty is the primary write capability: a settable text property.
type CharactersProperty interface {
	HasCharacters() bool
	SetCharacters(text string)
}

// TextSetter is the secondary write capability: a text-setting method.
type TextSetter interface {
	SetText(text string) error
}

// LegacyTextProperty is the last-resort write capability: an older text property.
type LegacyTextProperty interface {
	HasLegacyText() bool
	SetLegacyText(text string)
}
