package golem

import "github.com/germtb/golem/dom"

// NewDocument creates a document whose custom elements upgrade through
// the default registry.
func NewDocument() *dom.Document {
	return Default().NewDocument()
}

// NewDocument creates a document wired to this registry.
func (r *Registry) NewDocument() *dom.Document {
	return dom.NewDocument(dom.Options{Upgrader: r})
}
