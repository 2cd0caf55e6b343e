// Package golem provides custom-element definition registration.
package golem

import (
	"fmt"
	"log"
	"sync"

	"github.com/germtb/golem/css"
	"github.com/germtb/golem/dom"
)

// Registry holds named component definitions and upgrades matching
// elements for the documents that use it. Most programs use the
// process-wide registry via the package-level Define and NewDocument;
// isolated registries serve tests and embedders hosting independent
// element namespaces.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]*Definition
	sheets *css.Manager
}

// NewRegistry creates an empty registry backed by the process-wide
// stylesheet cache.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

var (
	defaultRegistry *Registry
	registryOnce    sync.Once
)

// Default returns the process-wide registry, created on first use.
// Components registered from init functions land here.
func Default() *Registry {
	registryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// Define validates and registers a definition under tag on the default
// registry. See Registry.Define.
func Define(tag string, def Definition) (*Definition, error) {
	return Default().Define(tag, def)
}

// Define validates def eagerly and registers it under tag. Tag names
// follow the custom-element rule: lowercase, starting with a letter,
// with at least one interior hyphen. A malformed tag or definition is
// logged and rejected with nothing registered; the process continues.
//
// Re-defining an existing tag is not an error: the already-registered
// definition is returned unchanged and the new one is ignored.
func (r *Registry) Define(tag string, def Definition) (*Definition, error) {
	if err := validateTag(tag); err != nil {
		log.Printf("golem: cannot define %q: %v", tag, err)
		return nil, err
	}
	if err := def.normalize(tag); err != nil {
		log.Printf("golem: cannot define <%s>: %v", tag, err)
		return nil, fmt.Errorf("cannot define <%s>: %w", tag, err)
	}

	r.mu.Lock()
	if existing, ok := r.defs[tag]; ok {
		r.mu.Unlock()
		log.Printf("golem: <%s> is already defined, keeping the first definition", tag)
		return existing, nil
	}
	r.defs[tag] = &def
	r.mu.Unlock()
	return &def, nil
}

// Get returns the definition registered under tag.
func (r *Registry) Get(tag string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[tag]
	return def, ok
}

// Defined reports whether tag has a registered definition. Part of the
// dom.Upgrader contract.
func (r *Registry) Defined(tag string) bool {
	_, ok := r.Get(tag)
	return ok
}

// Upgrade constructs the component instance bound to el. Part of the
// dom.Upgrader contract; the document calls it once per element, at
// creation or on first insertion.
func (r *Registry) Upgrade(doc *dom.Document, el *dom.Element) dom.Lifecycle {
	def, ok := r.Get(el.Tag)
	if !ok {
		return nil
	}
	return newInstance(r, doc, el, def)
}

// UseSheets points the registry at a stylesheet manager other than the
// process-wide one. Set before documents start using the registry;
// tests inject managers with fake fetchers here.
func (r *Registry) UseSheets(m *css.Manager) {
	r.mu.Lock()
	r.sheets = m
	r.mu.Unlock()
}

func (r *Registry) sheetManager() *css.Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.sheets != nil {
		return r.sheets
	}
	return css.Sheets()
}

// validateTag enforces the custom-element naming rule: lowercase
// letters, digits and hyphens, starting with a letter, with at least
// one interior hyphen separating the conventional prefix.
func validateTag(tag string) error {
	if tag == "" {
		return fmt.Errorf("empty tag name")
	}
	if tag[0] < 'a' || tag[0] > 'z' {
		return fmt.Errorf("tag name %q must start with a lowercase letter", tag)
	}
	hyphen := false
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		switch {
		case c == '-':
			hyphen = true
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		default:
			return fmt.Errorf("tag name %q contains %q", tag, string(c))
		}
	}
	if !hyphen {
		return fmt.Errorf("tag name %q needs a hyphen", tag)
	}
	if tag[len(tag)-1] == '-' {
		return fmt.Errorf("tag name %q ends with a hyphen", tag)
	}
	return nil
}
