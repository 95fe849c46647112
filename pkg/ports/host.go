package ports

// PageSelector is implemented by hosts with a page-scoped selection.
// ok is false when no current page (or no selection on it) is reachable.
// The raw value may be a slice of nodes, a single node or nil.
type PageSelector interface {
	PageSelection() (raw any, ok bool)
}

// DocumentSelector is implemented by hosts with a document-scoped selection.
type DocumentSelector interface {
	DocumentSelection() (raw any, ok bool)
}

// Notifier is implemented by hosts with a native notification surface.
type Notifier interface {
	Notify(msg string)
}

// DocumentIdentity is implemented by hosts that can name the open document.
// It keys distributed locks.
type DocumentIdentity interface {
	DocumentID() string
}
